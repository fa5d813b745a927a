package service

import (
	"strings"

	"style-filter-server/internal/common"
	"style-filter-server/internal/config"
	"style-filter-server/internal/utils"
)

// CaptchaChallenge 图形验证码挑战内容
type CaptchaChallenge struct {
	CaptchaID  string `json:"captcha_id"`
	CaptchaImg string `json:"captcha_img"`
}

// MakeCaptchaChallenge 生成一个图形验证码挑战。
func MakeCaptchaChallenge() (*CaptchaChallenge, error) {
	id, b64s, _, err := utils.MakeCaptcha()
	if err != nil {
		return nil, common.NewInternalError("验证码生成失败")
	}
	return &CaptchaChallenge{CaptchaID: id, CaptchaImg: b64s}, nil
}

// VerifyCaptchaChallenge 校验图形验证码；未开启验证码时直接放行。
func VerifyCaptchaChallenge(captchaID, captchaAnswer string) error {
	if !config.Get().Captcha.Enabled {
		return nil
	}

	if strings.TrimSpace(captchaID) == "" || strings.TrimSpace(captchaAnswer) == "" {
		return common.NewValidationError("验证码不能为空")
	}
	if !utils.VerifyCaptcha(captchaID, captchaAnswer) {
		return common.NewValidationError("验证码错误或已过期")
	}
	return nil
}
