package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"style-filter-server/internal/common"
	"style-filter-server/internal/consts"
	"style-filter-server/internal/db"
	"style-filter-server/internal/model"
)

// pngContent 一段可被嗅探为 image/png 的内容
var pngContent = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func mustFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("写入分段失败: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("关闭 writer 失败: %v", err)
	}

	req := httptest.NewRequest("POST", "http://example/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(int64(len(content)) + 1024); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}

	fhs := req.MultipartForm.File["files"]
	if len(fhs) != 1 {
		t.Fatalf("期望 1 file header，实际为 %d", len(fhs))
	}
	return fhs[0]
}

func mustCreateFilter(t *testing.T, env *testEnv, author *model.User) *model.StyleFilter {
	t.Helper()
	authorID := author.ID
	imgID := "style-filters/seed.jpg"
	filter := &model.StyleFilter{
		ImgID:       &imgID,
		ImgURL:      "https://cdn.example.com/filters/seed.jpg",
		BlurImgURL:  "https://cdn.example.com/filters/seed.jpg?blur=1000",
		SmallImgURL: "https://cdn.example.com/filters/seed.jpg?width=400",
		AuthorID:    &authorID,
	}
	if err := db.DB.Create(filter).Error; err != nil {
		t.Fatalf("create filter: %v", err)
	}
	return filter
}

// 测试内容：校验拒绝超大文件与伪造扩展名。
func TestValidateFilterFile(t *testing.T) {
	env := setupServices(t)

	// 超过大小上限
	big := mustFileHeader(t, "big.png", pngContent)
	big.Size = consts.MaxUploadFileSize + 1
	_, err := env.filterService.ValidateFilterFile(big)
	assertServiceErrorCode(t, err, common.ErrorCodePayloadTooLarge)

	// PNG 内容伪装成 jpg
	forged := mustFileHeader(t, "forged.jpg", pngContent)
	_, err = env.filterService.ValidateFilterFile(forged)
	assertServiceErrorCode(t, err, common.ErrorCodeUnsupportedMedia)

	// 正常 PNG
	ok := mustFileHeader(t, "good.png", pngContent)
	ext, err := env.filterService.ValidateFilterFile(ok)
	if err != nil || ext != ".png" {
		t.Fatalf("期望校验通过且扩展名 .png, ext=%q err=%v", ext, err)
	}
}

// 测试内容：上传成功入库并产出三个派生地址。
func TestUploadFilters_Success(t *testing.T) {
	env := setupServices(t)
	user, _ := mustSignup(t, env, "uploader", "uploader@example.com")

	files := []*multipart.FileHeader{
		mustFileHeader(t, "one.png", pngContent),
		mustFileHeader(t, "two.png", pngContent),
	}

	filters, err := env.filterService.UploadFilters(context.Background(), files, user)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(filters) != 2 {
		t.Fatalf("期望入库 2 条，实际 %d", len(filters))
	}
	for _, f := range filters {
		if f.PublicFilterID == "" || f.ImgURL == "" || f.BlurImgURL == "" || f.SmallImgURL == "" {
			t.Fatalf("滤镜字段不完整: %+v", f)
		}
		if f.AuthorID == nil || *f.AuthorID != user.ID {
			t.Fatalf("滤镜作者归属错误: %+v", f)
		}
	}

	total, err := env.filterStore.CountAll()
	if err != nil || total != 2 {
		t.Fatalf("期望数据库中 2 条滤镜, total=%d err=%v", total, err)
	}
}

// 测试内容：任一文件校验失败则整批拒绝，不产生任何上传。
func TestUploadFilters_AllOrNothingValidation(t *testing.T) {
	env := setupServices(t)
	user, _ := mustSignup(t, env, "strict", "strict@example.com")

	files := []*multipart.FileHeader{
		mustFileHeader(t, "good.png", pngContent),
		mustFileHeader(t, "bad.txt", []byte("not an image")),
	}

	_, err := env.filterService.UploadFilters(context.Background(), files, user)
	assertServiceErrorCode(t, err, common.ErrorCodeUnsupportedMedia)

	if len(env.filterStorage.uploaded) != 0 {
		t.Fatalf("校验失败时不应有任何对象上传: %v", env.filterStorage.uploaded)
	}
}

// 测试内容：部分上传失败时补偿删除全部已上传对象，数据库无残留。
func TestUploadFilters_CompensatesOnFailure(t *testing.T) {
	env := setupServices(t)
	user, _ := mustSignup(t, env, "unlucky", "unlucky@example.com")

	// 第 3 个文件开始上传失败
	env.filterStorage.failAfter = 2

	files := []*multipart.FileHeader{
		mustFileHeader(t, "a.png", pngContent),
		mustFileHeader(t, "b.png", pngContent),
		mustFileHeader(t, "c.png", pngContent),
	}

	_, err := env.filterService.UploadFilters(context.Background(), files, user)
	assertServiceErrorCode(t, err, common.ErrorCodeInternal)

	// 已上传的 2 个对象全部被补偿删除
	if len(env.filterStorage.uploaded) != 2 {
		t.Fatalf("期望上传了 2 个对象后失败，实际 %d", len(env.filterStorage.uploaded))
	}
	if len(env.filterStorage.deleted) != 2 {
		t.Fatalf("期望补偿删除 2 个对象，实际删除 %v", env.filterStorage.deleted)
	}

	total, err := env.filterStore.CountAll()
	if err != nil || total != 0 {
		t.Fatalf("失败的批次不应入库, total=%d err=%v", total, err)
	}
}

// 测试内容：删除他人滤镜整体拒绝，且无任何副作用。
func TestDeleteFilters_ForbiddenWithoutSideEffects(t *testing.T) {
	env := setupServices(t)
	owner, _ := mustSignup(t, env, "owner", "owner@example.com")
	intruder, _ := mustSignup(t, env, "intruder", "intruder@example.com")

	mine := mustCreateFilter(t, env, intruder)
	others := mustCreateFilter(t, env, owner)

	// 混合批次中包含他人滤镜：整体拒绝
	err := env.filterService.DeleteFilters(context.Background(),
		[]string{mine.PublicFilterID, others.PublicFilterID}, intruder)
	assertServiceErrorCode(t, err, common.ErrorCodeForbidden)

	// 无任何删除副作用：存储未被调用，数据库行全部保留
	if env.filterStorage.deleteCalls != 0 {
		t.Fatalf("禁止的删除不应触达对象存储")
	}
	total, err2 := env.filterStore.CountAll()
	if err2 != nil || total != 2 {
		t.Fatalf("期望 2 条滤镜均保留, total=%d err=%v", total, err2)
	}
}

// 测试内容：删除不存在的滤镜返回 NotFound。
func TestDeleteFilters_NotFound(t *testing.T) {
	env := setupServices(t)
	user, _ := mustSignup(t, env, "lonely", "lonely@example.com")

	err := env.filterService.DeleteFilters(context.Background(), []string{"no-such-id"}, user)
	assertServiceErrorCode(t, err, common.ErrorCodeNotFound)
}

// 测试内容：删除自己的滤镜同时清理存储对象与数据库行。
func TestDeleteFilters_OwnerSucceeds(t *testing.T) {
	env := setupServices(t)
	owner, _ := mustSignup(t, env, "cleaner", "cleaner@example.com")
	filter := mustCreateFilter(t, env, owner)

	if err := env.filterService.DeleteFilters(context.Background(), []string{filter.PublicFilterID}, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(env.filterStorage.deleted) != 1 || env.filterStorage.deleted[0] != *filter.ImgID {
		t.Fatalf("期望存储对象被删除, deleted=%v", env.filterStorage.deleted)
	}
	total, err := env.filterStore.CountAll()
	if err != nil || total != 0 {
		t.Fatalf("期望数据库行被删除, total=%d err=%v", total, err)
	}
}

// 测试内容：举报前置条件 — 重复举报与无举报撤销均被拒绝。
func TestReportFilter_Preconditions(t *testing.T) {
	env := setupServices(t)
	author, _ := mustSignup(t, env, "author", "author@example.com")
	reporter, _ := mustSignup(t, env, "reporter", "reporter@example.com")
	filter := mustCreateFilter(t, env, author)

	// 未举报先撤销：拒绝
	_, err := env.filterService.ReportFilter(filter.PublicFilterID, reporter, consts.ReportActionDecrement)
	assertServiceErrorCode(t, err, common.ErrorCodeValidation)

	// 首次举报成功
	if _, err := env.filterService.ReportFilter(filter.PublicFilterID, reporter, consts.ReportActionIncrement); err != nil {
		t.Fatalf("first report: %v", err)
	}

	// 重复举报：拒绝
	_, err = env.filterService.ReportFilter(filter.PublicFilterID, reporter, consts.ReportActionIncrement)
	assertServiceErrorCode(t, err, common.ErrorCodeValidation)

	// 撤销后可再次举报
	if _, err := env.filterService.ReportFilter(filter.PublicFilterID, reporter, consts.ReportActionDecrement); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if _, err := env.filterService.ReportFilter(filter.PublicFilterID, reporter, consts.ReportActionIncrement); err != nil {
		t.Fatalf("report again: %v", err)
	}

	// 非法操作类型
	_, err = env.filterService.ReportFilter(filter.PublicFilterID, reporter, consts.ReportAction("explode"))
	assertServiceErrorCode(t, err, common.ErrorCodeValidation)

	// 不存在的滤镜
	_, err = env.filterService.ReportFilter("no-such-filter", reporter, consts.ReportActionIncrement)
	assertServiceErrorCode(t, err, common.ErrorCodeNotFound)
}

// 测试内容：封禁判定使用增减之前的计数值，封禁在第 26 次举报时才写入。
func TestReportFilter_BanThresholdLagsByOne(t *testing.T) {
	env := setupServices(t)
	author, _ := mustSignup(t, env, "popular", "popular@example.com")
	reporter, _ := mustSignup(t, env, "judge", "judge@example.com")
	filter := mustCreateFilter(t, env, author)

	// 预置计数为阈值 25：此时第 26 次举报的前值为 25，仍不触发封禁
	if err := db.DB.Model(&model.StyleFilter{}).Where("id = ?", filter.ID).
		Update("report_count", consts.ReportBanThreshold).Error; err != nil {
		t.Fatalf("preset count: %v", err)
	}

	banned, err := env.filterService.ReportFilter(filter.PublicFilterID, reporter, consts.ReportActionIncrement)
	if err != nil {
		t.Fatalf("report at threshold: %v", err)
	}
	if banned {
		t.Fatalf("前值等于阈值时不应封禁")
	}

	var mid model.StyleFilter
	if err := db.DB.First(&mid, filter.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if mid.ReportCount != consts.ReportBanThreshold+1 || mid.IsBanned {
		t.Fatalf("unexpected state after report 26: count=%d banned=%v", mid.ReportCount, mid.IsBanned)
	}

	// 下一个举报者把计数推到 27，此时前值 26 > 25，封禁写入
	second, _ := mustSignup(t, env, "judge2", "judge2@example.com")
	banned, err = env.filterService.ReportFilter(filter.PublicFilterID, second, consts.ReportActionIncrement)
	if err != nil {
		t.Fatalf("report above threshold: %v", err)
	}
	if !banned {
		t.Fatalf("前值超过阈值时应当封禁")
	}

	var final model.StyleFilter
	if err := db.DB.First(&final, filter.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !final.IsBanned {
		t.Fatalf("期望滤镜已封禁")
	}
}

// 测试内容：列表默认分页参数与作者过滤。
func TestListFilters_Defaults(t *testing.T) {
	env := setupServices(t)
	author, _ := mustSignup(t, env, "lister", "lister@example.com")
	for i := 0; i < 3; i++ {
		mustCreateFilter(t, env, author)
	}

	filters, total, err := env.filterService.ListFilters(nil, 0, -5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(filters) != 3 {
		t.Fatalf("期望返回全部 3 条, total=%d len=%d", total, len(filters))
	}

	byAuthor, total, err := env.filterService.ListFilters(&author.PublicUserID, 2, 0)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if total != 3 || len(byAuthor) != 2 {
		t.Fatalf("期望作者共 3 条、分页 2 条, total=%d len=%d", total, len(byAuthor))
	}
}
