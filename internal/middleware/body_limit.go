package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"style-filter-server/internal/consts"

	"github.com/gin-gonic/gin"
)

// BodyLimitMiddleware 限制普通请求体大小
func BodyLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 上传接口单独限流，这里跳过
		path := c.Request.URL.Path
		if c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/filters") {
			c.Next()
			return
		}

		// 普通 JSON 请求 2MB 足够
		maxBytes := int64(2) * 1024 * 1024
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()
	}
}

// UploadBodyLimitMiddleware 限制滤镜上传接口的请求体大小
func UploadBodyLimitMiddleware() gin.HandlerFunc {
	// 单文件上限 x 单次最大文件数，再留一点 multipart 开销
	maxBytes := int64(consts.MaxUploadFileSize)*int64(consts.MaxUploadFiles) + 1024*1024

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes && c.Request.ContentLength != -1 {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("请求体大小不能超过 %dMB", maxBytes/(1024*1024))})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
