package router

import (
	"style-filter-server/internal/handler"
	"style-filter-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Router struct {
	handler *handler.Handler
}

func NewRouter(h *handler.Handler) *Router {
	return &Router{handler: h}
}

func (rt *Router) Init(r *gin.Engine) {
	// 注册全局安全标头中间件
	r.Use(middleware.SecurityHeaders())

	api := r.Group("/api")
	// 应用请求体大小限制中间件
	api.Use(middleware.BodyLimitMiddleware())

	// 认证限流：魔法链接入口共用同一个实例
	authLimiter := middleware.AuthRateLimit()

	registerPublicRoutes(api)
	registerAuthRoutes(api, authLimiter, rt.handler)
	registerUserRoutes(api, rt.handler)
	registerFilterRoutes(api, rt.handler)
}
