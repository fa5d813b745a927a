package handler

import (
	"net/http"

	"style-filter-server/internal/common/httpx"

	"github.com/gin-gonic/gin"
)

// GetMe 获取当前用户信息
func (h *Handler) GetMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe 更新当前用户的昵称或头像
func (h *Handler) UpdateMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Username  *string `json:"username"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}
	if req.Username == nil && req.AvatarURL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有需要更新的字段"})
		return
	}

	updated, err := h.authService.UpdateProfile(user, req.Username, req.AvatarURL)
	if err != nil {
		httpx.WriteServiceError(c, err, "更新失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "更新成功",
		"user":    updated,
	})
}
