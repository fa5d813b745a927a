package router

import (
	"style-filter-server/internal/handler"
	"style-filter-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

func registerUserRoutes(api *gin.RouterGroup, h *handler.Handler) {
	userGroup := api.Group("/users")
	userGroup.Use(middleware.JWTAuth())
	userGroup.Use(middleware.UserStatusCheck())

	userGroup.GET("/me", h.GetMe)
	userGroup.PATCH("/me", h.UpdateMe)
}
