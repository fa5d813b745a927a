package handler

import (
	"net/http"

	"style-filter-server/internal/common/httpx"
	"style-filter-server/internal/config"
	"style-filter-server/internal/consts"
	"style-filter-server/internal/service"
	"style-filter-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// Signup 注册新用户并发送首个魔法登录链接
func (h *Handler) Signup(c *gin.Context) {
	var req struct {
		Username      string `json:"username" binding:"required"`
		Email         string `json:"email" binding:"required,email"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	if err := service.VerifyCaptchaChallenge(req.CaptchaID, req.CaptchaAnswer); err != nil {
		httpx.WriteServiceError(c, err, "验证码校验失败")
		return
	}

	user, plainToken, err := h.authService.Signup(req.Username, req.Email)
	if err != nil {
		httpx.WriteServiceError(c, err, "注册失败，请稍后重试")
		return
	}

	service.DispatchMagicLinkEmail(user.Email, user.Username, plainToken)

	resp := gin.H{"message": "注册成功，登录链接已发送至您的邮箱"}
	if config.Get().Server.Mode != "release" {
		// 开发模式下没有可用的 SMTP，直接回显链接方便调试
		resp["login_url"] = service.BuildMagicLinkURL(plainToken)
	}
	c.JSON(http.StatusOK, resp)
}

// RequestLogin 为已注册邮箱签发新的魔法登录链接
func (h *Handler) RequestLogin(c *gin.Context) {
	var req struct {
		Email         string `json:"email" binding:"required,email"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	if err := service.VerifyCaptchaChallenge(req.CaptchaID, req.CaptchaAnswer); err != nil {
		httpx.WriteServiceError(c, err, "验证码校验失败")
		return
	}

	user, plainToken, err := h.authService.RequestLogin(req.Email)
	if err != nil {
		httpx.WriteServiceError(c, err, "登录链接生成失败，请稍后重试")
		return
	}

	service.DispatchMagicLinkEmail(user.Email, user.Username, plainToken)

	resp := gin.H{"message": "登录链接已发送至您的邮箱"}
	if config.Get().Server.Mode != "release" {
		resp["login_url"] = service.BuildMagicLinkURL(plainToken)
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteLogin 消费魔法链接令牌，签发访问/刷新令牌
func (h *Handler) CompleteLogin(c *gin.Context) {
	plainToken := c.Param("token")
	if plainToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少登录令牌"})
		return
	}

	user, pair, err := h.authService.CompleteLogin(plainToken)
	if err != nil {
		httpx.WriteServiceError(c, err, "登录失败，请稍后重试")
		return
	}

	setRefreshTokenCookie(c, pair.RefreshToken)

	c.JSON(http.StatusOK, gin.H{
		"message":      "登录成功",
		"access_token": pair.AccessToken,
		"user":         user,
	})
}

// Refresh 用 Cookie 中的刷新令牌换取新的访问令牌
func (h *Handler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(consts.RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少刷新令牌"})
		return
	}

	user, accessToken, err := h.authService.Refresh(refreshToken)
	if err != nil {
		clearRefreshTokenCookie(c)
		httpx.WriteServiceError(c, err, "刷新失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"user":         user,
	})
}

// Logout 清除刷新令牌 Cookie
func (h *Handler) Logout(c *gin.Context) {
	clearRefreshTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// 刷新令牌只走 Cookie：HttpOnly + SameSite Strict，前端脚本不可见
func setRefreshTokenCookie(c *gin.Context, refreshToken string) {
	secure := config.Get().Server.Mode == "release"
	maxAge := int(utils.RefreshTokenDuration().Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(consts.RefreshTokenCookie, refreshToken, maxAge, "/", "", secure, true)
}

func clearRefreshTokenCookie(c *gin.Context) {
	secure := config.Get().Server.Mode == "release"
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(consts.RefreshTokenCookie, "", -1, "/", "", secure, true)
}
