package router

import (
	"style-filter-server/internal/handler"
	"style-filter-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

func registerFilterRoutes(api *gin.RouterGroup, h *handler.Handler) {
	// 列表接口公开，游客也能浏览滤镜
	api.GET("/filters", h.ListFilters)

	filterGroup := api.Group("/filters")
	filterGroup.Use(middleware.JWTAuth())
	filterGroup.Use(middleware.UserStatusCheck())

	uploadBodyLimit := middleware.UploadBodyLimitMiddleware()
	filterGroup.POST("", uploadBodyLimit, h.UploadFilters)
	filterGroup.DELETE("", h.DeleteFilters)
	filterGroup.PATCH("/:id/report", h.ReportFilter)
}
