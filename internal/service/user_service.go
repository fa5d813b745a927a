package service

import (
	"log"
	"style-filter-server/internal/common"
	"style-filter-server/internal/model"
	repo "style-filter-server/internal/repository"
	"style-filter-server/internal/utils"
	"strings"
)

// UpdateProfile 更新用户资料（用户名/头像）。
// public_user_id 与 created_at 为写一次性字段，由仓储层拦截。
func (s *AuthService) UpdateProfile(user *model.User, username *string, avatarURL *string) (*model.User, error) {
	updates := map[string]interface{}{}

	if username != nil {
		name := strings.TrimSpace(*username)
		if valid, msg := utils.ValidateUsername(name); !valid {
			return nil, common.NewValidationError(msg)
		}
		if name != user.Username {
			exists, err := s.userStore.FieldExists(repo.UserFieldUsername, name, &user.ID)
			if err != nil {
				log.Printf("[User] 查询用户名是否存在失败: %v", err)
				return nil, common.NewInternalError("更新失败，请稍后重试")
			}
			if exists {
				return nil, common.NewValidationError("该用户名已被使用")
			}
			updates["username"] = name
		}
	}

	if avatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*avatarURL)
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.userStore.UpdateProfileByID(user.ID, updates); err != nil {
		log.Printf("[User] 更新用户资料失败 (user=%d): %v", user.ID, err)
		return nil, common.NewInternalError("更新失败，请稍后重试")
	}

	fresh, err := s.userStore.FindByID(user.ID)
	if err != nil {
		log.Printf("[User] 回读用户失败 (user=%d): %v", user.ID, err)
		return nil, common.NewInternalError("更新失败，请稍后重试")
	}
	return fresh, nil
}
