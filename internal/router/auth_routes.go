package router

import (
	"style-filter-server/internal/handler"

	"github.com/gin-gonic/gin"
)

func registerAuthRoutes(api *gin.RouterGroup, authLimiter gin.HandlerFunc, h *handler.Handler) {
	api.POST("/auth/signup/email", authLimiter, h.Signup)
	api.POST("/auth/login/email", authLimiter, h.RequestLogin)
	api.GET("/auth/login/email/:token", authLimiter, h.CompleteLogin)

	api.GET("/auth/refresh", h.Refresh)
	api.GET("/auth/logout", h.Logout)

	api.GET("/captcha", handler.GetCaptcha)
}
