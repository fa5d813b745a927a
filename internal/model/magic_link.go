package model

import "time"

// MagicLink 与用户一对一的魔法链接登录记录。
// 无待处理登录时 Token 与 ExpiresAt 均为 NULL；消费后置空而非删除行。
type MagicLink struct {
	ID uint `gorm:"primaryKey"`
	// Token 加密后的登录令牌，明文不落库
	Token     *string    `gorm:"size:512;index"`
	ExpiresAt *time.Time `gorm:""`
	UserID    uint       `gorm:"uniqueIndex;not null"`
	User      User       `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pending 是否存在待消费的登录链接
func (m *MagicLink) Pending() bool {
	return m.Token != nil && m.ExpiresAt != nil
}
