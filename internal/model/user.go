package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID uint `json:"-" gorm:"primaryKey"`
	// PublicUserID 对外暴露的用户标识，创建后不可变更
	PublicUserID      string        `json:"user_id" gorm:"type:char(36);uniqueIndex;not null;<-:create"`
	Username          string        `json:"username" gorm:"size:255;uniqueIndex;not null"`
	Email             string        `json:"email" gorm:"size:255;uniqueIndex;not null"`
	AvatarURL         string        `json:"avatar_url" gorm:"size:512"`
	IsActive          bool          `json:"is_active" gorm:"not null;default:true"`
	IsBanned          bool          `json:"is_banned" gorm:"not null;default:false"`
	// ReportedFilterIDs 该用户已举报的滤镜内部 ID 集合（JSON 序列化，无重复）
	ReportedFilterIDs ReportedIDSet `json:"-" gorm:"serializer:json;type:text"`
	CreatedAt         time.Time     `json:"created_at" gorm:"<-:create"`
	UpdatedAt         time.Time     `json:"-"`

	MagicLink    *MagicLink    `json:"-"`
	StyleFilters []StyleFilter `json:"-" gorm:"foreignKey:AuthorID"`
}

// BeforeCreate 生成对外用户标识
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.PublicUserID == "" {
		u.PublicUserID = uuid.NewString()
	}
	if u.ReportedFilterIDs == nil {
		u.ReportedFilterIDs = ReportedIDSet{}
	}
	return nil
}

// ReportedIDSet 去重的滤镜 ID 集合
type ReportedIDSet []uint

func (s ReportedIDSet) Has(id uint) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// WithAdded 返回加入 id 后的新集合；已存在时原样返回
func (s ReportedIDSet) WithAdded(id uint) ReportedIDSet {
	if s.Has(id) {
		return s
	}
	out := make(ReportedIDSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, id)
}

// WithRemoved 返回移除 id 后的新集合
func (s ReportedIDSet) WithRemoved(id uint) ReportedIDSet {
	out := make(ReportedIDSet, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
