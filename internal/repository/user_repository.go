package repository

import "style-filter-server/internal/model"

type UserField string

const (
	UserFieldUsername UserField = "username"
	UserFieldEmail    UserField = "email"
)

type UserStore interface {
	FindByID(id uint) (*model.User, error)
	FindByPublicID(publicUserID string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	Create(user *model.User) error
	Delete(user *model.User) error
	FieldExists(field UserField, value string, excludeUserID *uint) (bool, error)
	UpdateProfileByID(userID uint, updates map[string]interface{}) error
	CountAll() (int64, error)
}
