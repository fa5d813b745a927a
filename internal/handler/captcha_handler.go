package handler

import (
	"net/http"

	"style-filter-server/internal/config"
	"style-filter-server/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCaptcha 获取图形验证码
func GetCaptcha(c *gin.Context) {
	if !config.Get().Captcha.Enabled {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	challenge, err := service.MakeCaptchaChallenge()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "验证码生成失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enabled":       true,
		"captcha_id":    challenge.CaptchaID,
		"captcha_image": challenge.CaptchaImg,
	})
}
