package repository

import (
	"time"

	"style-filter-server/internal/model"
)

type MagicLinkStore interface {
	// Upsert 为用户写入新的待消费链接；已有记录则覆盖（旧链接随之失效）
	Upsert(userID uint, encryptedToken string, expiresAt time.Time) error
	// FindValidByToken 按加密令牌匹配未过期记录，并关联返回持有者的对外标识
	FindValidByToken(encryptedToken string, now time.Time) (*model.MagicLink, string, error)
	// Invalidate 将令牌与过期时间置空，保留行本身；幂等
	Invalidate(linkID uint) error
	FindByUserID(userID uint) (*model.MagicLink, error)
}
