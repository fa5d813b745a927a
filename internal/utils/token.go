package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"style-filter-server/internal/config"
	"style-filter-server/internal/consts"
)

// ErrInvalidCiphertext 密文格式错误或密钥不匹配。
// 调用方必须按"无效令牌"处理，不得中断请求。
var ErrInvalidCiphertext = errors.New("无效的令牌密文")

// GenerateToken 生成加密安全的随机十六进制字符串，长度为 2*length 个字符。
// length 仅允许 16/32/64。
func GenerateToken(length int) (string, error) {
	switch length {
	case 16, 32, 64:
	default:
		return "", fmt.Errorf("不支持的令牌长度: %d", length)
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("生成随机字节失败: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func magicLinkKey() []byte {
	// 配置密钥经 SHA-256 派生为固定 32 字节的 AES-256 密钥
	sum := sha256.Sum256([]byte(config.Get().MagicLink.Secret))
	return sum[:]
}

// EncryptToken 用进程级密钥对令牌做可逆对称加密（AES-256-GCM）。
// nonce 由 HMAC-SHA256(key, token) 派生：同一明文总是得到同一密文，
// 存储侧可以直接按密文列做等值匹配，明文无需落库。
func EncryptToken(token string) (string, error) {
	key := magicLinkKey()

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(token))
	nonce := mac.Sum(nil)[:gcm.NonceSize()]

	sealed := gcm.Seal(nil, nonce, []byte(token), nil)
	return base64.RawURLEncoding.EncodeToString(append(nonce, sealed...)), nil
}

// DecryptToken EncryptToken 的逆运算。
// 密钥变更或密文被篡改时返回 ErrInvalidCiphertext。
func DecryptToken(encrypted string) (string, error) {
	key := magicLinkKey()

	raw, err := base64.RawURLEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) <= gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

// CreateMagicLinkToken 一步生成魔法链接令牌的明文与加密形式。
func CreateMagicLinkToken() (string, string, error) {
	token, err := GenerateToken(consts.MagicLinkTokenLength)
	if err != nil {
		return "", "", err
	}
	encrypted, err := EncryptToken(token)
	if err != nil {
		return "", "", err
	}
	return token, encrypted, nil
}
