package repository

import (
	"errors"
	"time"

	"style-filter-server/internal/model"

	"gorm.io/gorm"
)

type MagicLinkRepository struct {
	db *gorm.DB
}

func (r *MagicLinkRepository) Upsert(userID uint, encryptedToken string, expiresAt time.Time) error {
	var link model.MagicLink
	err := r.db.Where("user_id = ?", userID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		link = model.MagicLink{
			UserID:    userID,
			Token:     &encryptedToken,
			ExpiresAt: &expiresAt,
		}
		return r.db.Create(&link).Error
	}
	if err != nil {
		return err
	}

	// 覆盖写入：上一条待消费链接随之失效（重发语义）
	return r.db.Model(&link).Updates(map[string]interface{}{
		"token":      encryptedToken,
		"expires_at": expiresAt,
	}).Error
}

func (r *MagicLinkRepository) FindValidByToken(encryptedToken string, now time.Time) (*model.MagicLink, string, error) {
	var result struct {
		model.MagicLink
		PublicUserID string
	}

	err := r.db.Model(&model.MagicLink{}).
		Select("magic_links.*, users.public_user_id").
		Joins("JOIN users ON users.id = magic_links.user_id").
		Where("magic_links.token = ?", encryptedToken).
		Where("magic_links.expires_at IS NOT NULL AND magic_links.expires_at > ?", now).
		First(&result).Error
	if err != nil {
		return nil, "", err
	}

	link := result.MagicLink
	return &link, result.PublicUserID, nil
}

func (r *MagicLinkRepository) Invalidate(linkID uint) error {
	return r.db.Model(&model.MagicLink{}).
		Where("id = ?", linkID).
		Updates(map[string]interface{}{
			"token":      nil,
			"expires_at": nil,
		}).Error
}

func (r *MagicLinkRepository) FindByUserID(userID uint) (*model.MagicLink, error) {
	var link model.MagicLink
	if err := r.db.Where("user_id = ?", userID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
