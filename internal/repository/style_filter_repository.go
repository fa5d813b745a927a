package repository

import "style-filter-server/internal/model"

// ListFiltersParams 滤镜列表查询参数
type ListFiltersParams struct {
	// AuthorPublicID 按作者对外标识过滤；nil 表示不过滤
	AuthorPublicID *string
	Offset         int
	Limit          int
}

type StyleFilterStore interface {
	CreateMany(filters []*model.StyleFilter) error
	FindByPublicID(publicFilterID string) (*model.StyleFilter, error)
	FindByPublicIDs(publicFilterIDs []string) ([]model.StyleFilter, error)
	List(params ListFiltersParams) ([]model.StyleFilter, int64, error)
	DeleteByIDs(ids []uint) error
	// ApplyReport 在单个事务中更新滤镜举报计数/封禁标记与用户已举报集合
	ApplyReport(filterID uint, userID uint, increment bool, banned bool, reportedIDs model.ReportedIDSet) error
	CountAll() (int64, error)
}
