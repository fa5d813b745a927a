package service

import (
	"errors"
	"log"
	"style-filter-server/internal/common"
	"style-filter-server/internal/config"
	"style-filter-server/internal/consts"
	"style-filter-server/internal/model"
	repo "style-filter-server/internal/repository"
	"style-filter-server/internal/utils"
	"strings"

	"gorm.io/gorm"
)

// TokenPair 一次登录签发的访问令牌与刷新令牌
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Signup 注册新用户并签发首个魔法链接，返回用户与令牌明文。
// 邮箱与用户名均要求唯一。
func (s *AuthService) Signup(username, email string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if valid, msg := utils.ValidateUsername(username); !valid {
		return nil, "", common.NewValidationError(msg)
	}

	emailExists, err := s.userStore.FieldExists(repo.UserFieldEmail, email, nil)
	if err != nil {
		log.Printf("[Auth] 查询邮箱是否存在失败: %v", err)
		return nil, "", common.NewInternalError("注册失败，请稍后重试")
	}
	if emailExists {
		return nil, "", common.NewValidationError("该邮箱已被使用")
	}

	usernameExists, err := s.userStore.FieldExists(repo.UserFieldUsername, username, nil)
	if err != nil {
		log.Printf("[Auth] 查询用户名是否存在失败: %v", err)
		return nil, "", common.NewInternalError("注册失败，请稍后重试")
	}
	if usernameExists {
		return nil, "", common.NewValidationError("该用户名已被使用")
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		AvatarURL: defaultAvatarURL(),
		IsActive:  true,
	}
	if err := s.userStore.Create(user); err != nil {
		log.Printf("[Auth] 创建用户失败: %v", err)
		return nil, "", common.NewInternalError("注册失败，请稍后重试")
	}

	log.Printf("[Auth] 已为邮箱(%s)创建账号，ID %d", user.Email, user.ID)

	// 注册即签发魔法链接；签发失败时回滚已创建的用户，避免留下无法登录的半成品账号
	token, err := s.UpsertMagicLink(user)
	if err != nil {
		if delErr := s.userStore.Delete(user); delErr != nil {
			log.Printf("[Auth] 回滚用户失败 (user=%d): %v", user.ID, delErr)
		}
		return nil, "", err
	}

	return user, token, nil
}

// RequestLogin 为已注册邮箱重新签发魔法链接
func (s *AuthService) RequestLogin(email string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userStore.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", common.NewValidationError("账号不存在")
	}
	if err != nil {
		log.Printf("[Auth] 查询用户失败: %v", err)
		return nil, "", common.NewInternalError("登录失败，请稍后重试")
	}

	token, err := s.UpsertMagicLink(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CompleteLogin 用魔法链接令牌完成登录：校验链接、签发令牌对并使链接失效。
func (s *AuthService) CompleteLogin(plainToken string) (*model.User, *TokenPair, error) {
	link, publicUserID, err := s.ResolveMagicLink(plainToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userStore.FindByPublicID(publicUserID)
	if err != nil {
		log.Printf("[Auth] 魔法链接关联用户缺失 (public_id=%s): %v", publicUserID, err)
		return nil, nil, common.NewValidationError("账号不存在")
	}

	pair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	// 链接单次有效，签发成功后立即置空
	if err := s.InvalidateMagicLink(link); err != nil {
		return nil, nil, common.NewInternalError("登录失败，请稍后重试")
	}

	return user, pair, nil
}

// IssueTokenPair 为已验证身份的用户签发访问/刷新令牌。
// 访问令牌有效期短于刷新令牌；封禁或停用账号拒绝签发。
func (s *AuthService) IssueTokenPair(user *model.User) (*TokenPair, error) {
	if user.IsBanned {
		return nil, common.NewForbiddenError("该账号已被封禁")
	}
	if !user.IsActive {
		return nil, common.NewForbiddenError("该账号已停用")
	}

	accessToken, err := utils.GenerateAccessToken(user.PublicUserID)
	if err != nil {
		log.Printf("[Auth] 签发访问令牌失败: %v", err)
		return nil, common.NewInternalError("登录失败，请稍后重试")
	}
	refreshToken, err := utils.GenerateRefreshToken(user.PublicUserID)
	if err != nil {
		log.Printf("[Auth] 签发刷新令牌失败: %v", err)
		return nil, common.NewInternalError("登录失败，请稍后重试")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh 校验刷新令牌并签发新的访问令牌。
// 必须回库重新确认用户存在且未被封禁，不能只信任令牌声明。
func (s *AuthService) Refresh(refreshToken string) (*model.User, string, error) {
	claims, err := utils.ParseAuthToken(refreshToken, utils.TokenKindRefresh)
	if err != nil {
		return nil, "", common.NewUnauthorizedError("刷新令牌无效或已过期")
	}

	user, err := s.resolveActiveUser(claims.Subject)
	if err != nil {
		return nil, "", err
	}

	accessToken, err := utils.GenerateAccessToken(user.PublicUserID)
	if err != nil {
		log.Printf("[Auth] 刷新访问令牌失败: %v", err)
		return nil, "", common.NewInternalError("刷新失败，请稍后重试")
	}

	return user, accessToken, nil
}

// ResolveAccessUser 将访问令牌声明中的用户标识解析为存量用户。
// 用户不存在、被封禁或停用时按未授权处理。
func (s *AuthService) ResolveAccessUser(publicUserID string) (*model.User, error) {
	return s.resolveActiveUser(publicUserID)
}

func (s *AuthService) resolveActiveUser(publicUserID string) (*model.User, error) {
	user, err := s.userStore.FindByPublicID(publicUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewUnauthorizedError("账号不存在")
	}
	if err != nil {
		log.Printf("[Auth] 查询用户失败: %v", err)
		return nil, common.NewInternalError("认证失败，请稍后重试")
	}
	if user.IsBanned {
		return nil, common.NewForbiddenError("该账号已被封禁")
	}
	if !user.IsActive {
		return nil, common.NewForbiddenError("该账号已停用")
	}
	return user, nil
}

func defaultAvatarURL() string {
	cfg := config.Get()
	return strings.TrimRight(cfg.Storage.PublicURL, "/") + "/" + consts.DefaultAvatarPath
}
