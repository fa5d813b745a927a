package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"style-filter-server/internal/common"
	"style-filter-server/internal/consts"
	"style-filter-server/internal/model"
	repo "style-filter-server/internal/repository"
	"style-filter-server/internal/storage"
	"style-filter-server/internal/utils"

	"gorm.io/gorm"
)

// ValidateFilterFile 校验单个上传文件（大小、扩展名、真实内容），返回小写扩展名。
func (s *FilterService) ValidateFilterFile(file *multipart.FileHeader) (string, error) {
	if file.Size > consts.MaxUploadFileSize {
		return "", common.NewPayloadTooLargeError(fmt.Sprintf(
			"文件 %s 大小为 %.2f MB，超过 %d MB 上限",
			file.Filename,
			float64(file.Size)/(1024*1024),
			consts.MaxUploadFileSize/(1024*1024),
		))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		return "", common.NewUnsupportedMediaError(fmt.Sprintf("文件 %s 无法识别类型", file.Filename))
	}

	src, err := file.Open()
	if err != nil {
		return "", common.NewValidationError("无法打开上传的文件")
	}
	defer func() { _ = src.Close() }()

	// 检查文件内容 (Magic Bytes)，防止伪造扩展名
	if valid, msg := utils.ValidateImageContent(src, ext); !valid {
		return "", common.NewUnsupportedMediaError(fmt.Sprintf("文件 %s 不是有效的图片: %s", file.Filename, msg))
	}

	return ext, nil
}

// UploadFilters 批量上传滤镜：先全部校验，再逐个上传到对象存储，最后批量入库。
// 任一环节失败都会尽力删除已上传的外部对象再报错，不留下孤儿资源。
func (s *FilterService) UploadFilters(ctx context.Context, files []*multipart.FileHeader, user *model.User) ([]model.StyleFilter, error) {
	if len(files) == 0 {
		return nil, common.NewValidationError("请选择要上传的文件")
	}
	if len(files) > consts.MaxUploadFiles {
		return nil, common.NewValidationError(fmt.Sprintf("单次最多上传 %d 个文件", consts.MaxUploadFiles))
	}

	// 全部校验通过才开始上传，避免无谓的外部写入
	exts := make([]string, len(files))
	for i, file := range files {
		ext, err := s.ValidateFilterFile(file)
		if err != nil {
			return nil, err
		}
		exts[i] = ext
	}

	results := make([]*storage.UploadResult, 0, len(files))
	for i, file := range files {
		result, err := s.uploadOne(ctx, file, exts[i])
		if err != nil {
			log.Printf("[Filter] 上传第 %d 个文件失败: %v，开始清理已上传对象", i+1, err)
			s.cleanupUploaded(ctx, results)
			return nil, common.NewInternalError("上传失败，请稍后重试")
		}
		results = append(results, result)
	}

	filters := make([]*model.StyleFilter, 0, len(results))
	for _, result := range results {
		imgID := result.ImgID
		authorID := user.ID
		filters = append(filters, &model.StyleFilter{
			ImgID:       &imgID,
			ImgURL:      result.ImgURL,
			BlurImgURL:  result.BlurImgURL,
			SmallImgURL: result.SmallImgURL,
			AuthorID:    &authorID,
		})
	}

	if err := s.filterStore.CreateMany(filters); err != nil {
		log.Printf("[Filter] 滤镜入库失败: %v，开始清理已上传对象", err)
		s.cleanupUploaded(ctx, results)
		return nil, common.NewInternalError("上传失败，请稍后重试")
	}

	out := make([]model.StyleFilter, len(filters))
	for i, f := range filters {
		out[i] = *f
	}
	return out, nil
}

func (s *FilterService) uploadOne(ctx context.Context, file *multipart.FileHeader, ext string) (*storage.UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("无法读取上传文件: %w", err)
	}
	defer func() { _ = src.Close() }()

	contentType := file.Header.Get("Content-Type")
	return s.storage.Upload(ctx, src, file.Size, contentType, ext)
}

// cleanupUploaded 补偿清理：删除本次已写入对象存储的图片。
// 对象存储在关系事务边界之外，只能尽力而为，失败仅记录日志。
func (s *FilterService) cleanupUploaded(ctx context.Context, results []*storage.UploadResult) {
	if len(results) == 0 {
		return
	}
	imgIDs := make([]string, 0, len(results))
	for _, r := range results {
		imgIDs = append(imgIDs, r.ImgID)
	}
	if err := s.storage.Delete(ctx, imgIDs); err != nil {
		log.Printf("[Filter] 清理已上传对象失败: %v", err)
	}
}

// ListFilters 分页获取滤镜，可按作者对外标识过滤。
func (s *FilterService) ListFilters(authorPublicID *string, limit, offset int) ([]model.StyleFilter, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	filters, total, err := s.filterStore.List(repo.ListFiltersParams{
		AuthorPublicID: authorPublicID,
		Offset:         offset,
		Limit:          limit,
	})
	if err != nil {
		log.Printf("[Filter] 查询滤镜列表失败: %v", err)
		return nil, 0, common.NewInternalError("查询失败，请稍后重试")
	}
	return filters, total, nil
}

// DeleteFilters 批量删除调用者自己的滤镜。
// 任一滤镜不属于调用者即整体拒绝，且不产生任何删除副作用。
// 存储侧先行尽力删除，随后硬删除数据库行。
func (s *FilterService) DeleteFilters(ctx context.Context, publicFilterIDs []string, user *model.User) error {
	if len(publicFilterIDs) == 0 {
		return common.NewValidationError("请指定要删除的滤镜")
	}

	filters, err := s.filterStore.FindByPublicIDs(publicFilterIDs)
	if err != nil {
		log.Printf("[Filter] 查询滤镜失败: %v", err)
		return common.NewInternalError("删除失败，请稍后重试")
	}
	if len(filters) == 0 {
		return common.NewNotFoundError("滤镜不存在")
	}

	for _, filter := range filters {
		if filter.AuthorID == nil || *filter.AuthorID != user.ID {
			return common.NewForbiddenError("只能删除自己上传的滤镜")
		}
	}

	imgIDs := make([]string, 0, len(filters))
	ids := make([]uint, 0, len(filters))
	for _, filter := range filters {
		ids = append(ids, filter.ID)
		if filter.ImgID != nil {
			imgIDs = append(imgIDs, *filter.ImgID)
		}
	}

	// 外部存储删除尽力而为，失败不阻塞行删除
	if len(imgIDs) > 0 {
		if err := s.storage.Delete(ctx, imgIDs); err != nil {
			log.Printf("[Filter] 删除存储对象失败: %v", err)
		}
	}

	if err := s.filterStore.DeleteByIDs(ids); err != nil {
		log.Printf("[Filter] 删除滤镜记录失败: %v", err)
		return common.NewInternalError("删除失败，请稍后重试")
	}
	return nil
}

// ReportFilter 举报或撤销举报一个滤镜，返回本次写入的封禁标记。
//
// 前置条件使操作对调用方幂等：未撤销前重复举报被拒绝而非静默吸收。
// 封禁判定采用本次增减之前的计数值与阈值比较（isBanned = priorCount > 25），
// 因此封禁标记总是比触发它的那次计数滞后一步 —— 这是沿用的既有行为，此处不纠正。
func (s *FilterService) ReportFilter(publicFilterID string, user *model.User, action consts.ReportAction) (bool, error) {
	if action != consts.ReportActionIncrement && action != consts.ReportActionDecrement {
		return false, common.NewValidationError("无效的举报操作类型")
	}

	filter, err := s.filterStore.FindByPublicID(publicFilterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, common.NewNotFoundError("滤镜不存在")
	}
	if err != nil {
		log.Printf("[Filter] 查询滤镜失败: %v", err)
		return false, common.NewInternalError("举报失败，请稍后重试")
	}

	increment := action == consts.ReportActionIncrement
	hasReported := user.ReportedFilterIDs.Has(filter.ID)

	if increment && hasReported {
		return false, common.NewValidationError("已举报过该滤镜")
	}
	if !increment && !hasReported {
		return false, common.NewValidationError("未举报过该滤镜")
	}

	banned := filter.ReportCount > consts.ReportBanThreshold

	var reportedIDs model.ReportedIDSet
	if increment {
		reportedIDs = user.ReportedFilterIDs.WithAdded(filter.ID)
	} else {
		reportedIDs = user.ReportedFilterIDs.WithRemoved(filter.ID)
	}

	// 计数、封禁标记与用户已举报集合在同一事务中落库
	if err := s.filterStore.ApplyReport(filter.ID, user.ID, increment, banned, reportedIDs); err != nil {
		log.Printf("[Filter] 更新举报状态失败 (filter=%d, user=%d): %v", filter.ID, user.ID, err)
		return false, common.NewInternalError("举报失败，请稍后重试")
	}

	user.ReportedFilterIDs = reportedIDs
	return banned, nil
}
