package repository

import (
	"fmt"
	"style-filter-server/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

// immutableUserColumns 创建后不可再变更的列，更新前由仓储层拦截
var immutableUserColumns = map[string]bool{
	"public_user_id": true,
	"created_at":     true,
	"id":             true,
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByPublicID(publicUserID string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("public_user_id = ?", publicUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) Delete(user *model.User) error {
	// MagicLink 级联删除，StyleFilter 作者置 NULL，均由外键约束完成
	return r.db.Delete(user).Error
}

func (r *UserRepository) FieldExists(field UserField, value string, excludeUserID *uint) (bool, error) {
	query := r.db.Model(&model.User{})
	if excludeUserID != nil {
		query = query.Where("id != ?", *excludeUserID)
	}

	var count int64
	if err := query.Where(string(field)+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) UpdateProfileByID(userID uint, updates map[string]interface{}) error {
	// 写一次性字段保护：public_user_id 与 created_at 创建后不可变更
	for column := range updates {
		if immutableUserColumns[column] {
			return fmt.Errorf("字段 %s 创建后不可修改", column)
		}
	}

	var user model.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return err
	}
	return r.db.Model(&user).Updates(updates).Error
}

func (r *UserRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
