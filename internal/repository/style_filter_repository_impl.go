package repository

import (
	"style-filter-server/internal/model"

	"gorm.io/gorm"
)

type StyleFilterRepository struct {
	db *gorm.DB
}

func (r *StyleFilterRepository) CreateMany(filters []*model.StyleFilter) error {
	if len(filters) == 0 {
		return nil
	}
	return r.db.Create(filters).Error
}

func (r *StyleFilterRepository) FindByPublicID(publicFilterID string) (*model.StyleFilter, error) {
	var filter model.StyleFilter
	if err := r.db.Where("public_filter_id = ?", publicFilterID).First(&filter).Error; err != nil {
		return nil, err
	}
	return &filter, nil
}

func (r *StyleFilterRepository) FindByPublicIDs(publicFilterIDs []string) ([]model.StyleFilter, error) {
	var filters []model.StyleFilter
	if err := r.db.Where("public_filter_id IN ?", publicFilterIDs).Find(&filters).Error; err != nil {
		return nil, err
	}
	return filters, nil
}

func (r *StyleFilterRepository) List(params ListFiltersParams) ([]model.StyleFilter, int64, error) {
	var filters []model.StyleFilter
	var total int64

	query := r.db.Model(&model.StyleFilter{})
	if params.AuthorPublicID != nil {
		query = query.Joins("JOIN users ON users.id = style_filters.author_id").
			Where("users.public_user_id = ?", *params.AuthorPublicID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("style_filters.created_at desc").
		Offset(params.Offset).Limit(params.Limit).
		Find(&filters).Error; err != nil {
		return nil, 0, err
	}

	return filters, total, nil
}

func (r *StyleFilterRepository) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&model.StyleFilter{}).Error
}

func (r *StyleFilterRepository) ApplyReport(filterID uint, userID uint, increment bool, banned bool, reportedIDs model.ReportedIDSet) error {
	delta := 1
	if !increment {
		delta = -1
	}

	// 计数增减、封禁标记与用户已举报集合必须同一事务落库，
	// 计数更新用 SQL 表达式在存储层原子完成，避免读改写丢失更新
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.StyleFilter{}).
			Where("id = ?", filterID).
			Updates(map[string]interface{}{
				"report_count": gorm.Expr("report_count + ?", delta),
				"is_banned":    banned,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("reported_filter_ids", reportedIDs).Error
	})
}

func (r *StyleFilterRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&model.StyleFilter{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
