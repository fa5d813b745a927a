package service

import (
	"errors"
	"log"
	"style-filter-server/internal/common"
	"style-filter-server/internal/config"
	"style-filter-server/internal/model"
	"style-filter-server/internal/utils"
	"time"

	"gorm.io/gorm"
)

// 魔法链接生命周期：每个用户至多一条记录，状态在
// 无待处理链接 与 待消费(令牌, 过期时间) 之间迁移。

// UpsertMagicLink 为用户签发新的魔法链接并持久化，返回令牌明文。
// 无论当前状态如何都覆盖写入：未消费的旧链接随之失效，这是预期的重发行为。
func (s *AuthService) UpsertMagicLink(user *model.User) (string, error) {
	plain, encrypted, err := utils.CreateMagicLinkToken()
	if err != nil {
		log.Printf("[Auth] 生成魔法链接令牌失败: %v", err)
		return "", common.NewInternalError("生成登录链接失败，请稍后重试")
	}

	expireMinutes := config.Get().MagicLink.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 15
	}
	expiresAt := time.Now().Add(time.Duration(expireMinutes) * time.Minute)

	if err := s.magicLinkStore.Upsert(user.ID, encrypted, expiresAt); err != nil {
		log.Printf("[Auth] 写入魔法链接失败 (user=%d): %v", user.ID, err)
		return "", common.NewInternalError("生成登录链接失败，请稍后重试")
	}

	return plain, nil
}

// ResolveMagicLink 按令牌明文查找有效的魔法链接。
// 匹配在加密形式上进行：对来者提供的明文做确定性加密后按密文列等值查询。
// 记录不存在与已过期对调用方不可区分，统一返回"无效或已过期"。
func (s *AuthService) ResolveMagicLink(plainToken string) (*model.MagicLink, string, error) {
	encrypted, err := utils.EncryptToken(plainToken)
	if err != nil {
		log.Printf("[Auth] 加密令牌失败: %v", err)
		return nil, "", common.NewInternalError("登录失败，请稍后重试")
	}

	link, publicUserID, err := s.magicLinkStore.FindValidByToken(encrypted, time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", common.NewValidationError("魔法登录链接无效或已过期")
	}
	if err != nil {
		log.Printf("[Auth] 查询魔法链接失败: %v", err)
		return nil, "", common.NewInternalError("登录失败，请稍后重试")
	}

	return link, publicUserID, nil
}

// InvalidateMagicLink 消费后置空令牌与过期时间（逻辑删除，保留一对一关系）。幂等。
func (s *AuthService) InvalidateMagicLink(link *model.MagicLink) error {
	if err := s.magicLinkStore.Invalidate(link.ID); err != nil {
		log.Printf("[Auth] 置空魔法链接失败 (link=%d): %v", link.ID, err)
		return err
	}
	return nil
}
