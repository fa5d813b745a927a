package handler

import (
	"net/http"
	"strconv"

	"style-filter-server/internal/common/httpx"
	"style-filter-server/internal/consts"
	"style-filter-server/internal/middleware"
	"style-filter-server/internal/model"

	"github.com/gin-gonic/gin"
)

// currentUser 从上下文取出访问令牌主体并回库解析为用户
func (h *Handler) currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(middleware.ContextPublicUserID)
	publicUserID, ok := value.(string)
	if !exists || !ok || publicUserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户信息"})
		return nil, false
	}

	user, err := h.authService.ResolveAccessUser(publicUserID)
	if err != nil {
		httpx.WriteServiceError(c, err, "认证失败，请稍后重试")
		return nil, false
	}
	return user, true
}

// UploadFilters 批量上传滤镜图片
func (h *Handler) UploadFilters(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误，需要 multipart 表单"})
		return
	}

	files := form.File["files"]
	filters, err := h.filterService.UploadFilters(c.Request.Context(), files, user)
	if err != nil {
		httpx.WriteServiceError(c, err, "上传失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "上传成功",
		"filters": filters,
	})
}

// ListFilters 分页获取滤镜列表，可按作者过滤
func (h *Handler) ListFilters(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var authorPublicID *string
	if author := c.Query("author"); author != "" {
		authorPublicID = &author
	}

	filters, total, err := h.filterService.ListFilters(authorPublicID, limit, offset)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filters": filters,
		"total":   total,
	})
}

// DeleteFilters 批量删除当前用户自己的滤镜
func (h *Handler) DeleteFilters(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		FilterIDs []string `json:"filter_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	if err := h.filterService.DeleteFilters(c.Request.Context(), req.FilterIDs, user); err != nil {
		httpx.WriteServiceError(c, err, "删除失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ReportFilter 举报或撤销举报一个滤镜
func (h *Handler) ReportFilter(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	publicFilterID := c.Param("id")

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	banned, err := h.filterService.ReportFilter(publicFilterID, user, consts.ReportAction(req.Action))
	if err != nil {
		httpx.WriteServiceError(c, err, "举报失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "操作成功",
		"is_banned": banned,
	})
}
