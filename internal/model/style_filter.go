package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StyleFilter 用户上传的风格滤镜图片，一次上传派生原图/模糊图/缩略图三个地址。
type StyleFilter struct {
	ID uint `json:"-" gorm:"primaryKey"`
	// PublicFilterID 对外暴露的滤镜标识，创建后不可变更
	PublicFilterID string `json:"filter_id" gorm:"type:char(36);uniqueIndex;not null;<-:create"`
	// ImgID 对象存储中的 key；直接提供 URL 而非上传时为 NULL
	ImgID       *string `json:"img_id" gorm:"size:128;index"`
	ImgURL      string  `json:"img_url" gorm:"size:512;not null"`
	BlurImgURL  string  `json:"blur_img_url" gorm:"size:512;not null"`
	SmallImgURL string  `json:"small_img_url" gorm:"size:512;not null"`
	IsOfficial  bool    `json:"is_official" gorm:"not null;default:false"`
	IsBanned    bool    `json:"is_banned" gorm:"not null;default:false"`
	ReportCount int     `json:"report_count" gorm:"not null;default:0;check:report_count >= 0"`
	// AuthorID 作者被删除时置 NULL，滤镜保留
	AuthorID  *uint     `json:"-" gorm:"index"`
	Author    *User     `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"-"`
}

func (f *StyleFilter) BeforeCreate(tx *gorm.DB) error {
	if f.PublicFilterID == "" {
		f.PublicFilterID = uuid.NewString()
	}
	return nil
}
