package utils

import "github.com/mojocn/base64Captcha"

var captchaStore base64Captcha.Store = base64Captcha.DefaultMemStore

// SetCaptchaStore 替换验证码存储后端（如 Redis），用于多实例部署。
func SetCaptchaStore(s base64Captcha.Store) {
	if s != nil {
		captchaStore = s
	}
}

// 生成验证码

func MakeCaptcha() (id, b64s string, answer string, err error) {
	// height: 80, width: 240, length: 4(4位数), 0.7(噪点), 80(干扰线)
	// NewDriverDigit 生成数字验证码
	driver := base64Captcha.NewDriverDigit(80, 240, 4, 0.7, 80)

	// 创建验证码实例
	c := base64Captcha.NewCaptcha(driver, captchaStore)

	// 生成 (id 是验证码的唯一标识，b64s 是图片的 base64 字符串)
	return c.Generate()
}

// 校验验证码

func VerifyCaptcha(id string, answer string) bool {
	return captchaStore.Verify(id, answer, true)
}
