package repository

import "gorm.io/gorm"

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func NewMagicLinkRepository(db *gorm.DB) *MagicLinkRepository {
	return &MagicLinkRepository{db: db}
}

func NewStyleFilterRepository(db *gorm.DB) *StyleFilterRepository {
	return &StyleFilterRepository{db: db}
}
