package utils

import (
	"errors"
	"fmt"
	"style-filter-server/internal/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind 区分访问令牌与刷新令牌，两者使用独立密钥与有效期
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// AuthClaims 认证令牌载荷，Subject 为用户对外标识
type AuthClaims struct {
	Type string `json:"type"` // "access" 或 "refresh"
	jwt.RegisteredClaims
}

func jwtSecret(kind TokenKind) []byte {
	cfg := config.Get()
	if kind == TokenKindRefresh {
		return []byte(cfg.JWT.RefreshSecret)
	}
	return []byte(cfg.JWT.AccessSecret)
}

// AccessTokenDuration 访问令牌有效期
func AccessTokenDuration() time.Duration {
	return time.Duration(config.Get().JWT.AccessExpireMinutes) * time.Minute
}

// RefreshTokenDuration 刷新令牌有效期
func RefreshTokenDuration() time.Duration {
	return time.Duration(config.Get().JWT.RefreshExpireHours) * time.Hour
}

func GenerateAccessToken(publicUserID string) (string, error) {
	return generateAuthToken(publicUserID, TokenKindAccess, AccessTokenDuration())
}

func GenerateRefreshToken(publicUserID string) (string, error) {
	return generateAuthToken(publicUserID, TokenKindRefresh, RefreshTokenDuration())
}

func generateAuthToken(publicUserID string, kind TokenKind, duration time.Duration) (string, error) {
	claims := AuthClaims{
		Type: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   publicUserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "style-filter-server",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret(kind))
}

// ParseAuthToken 校验签名、有效期与令牌类型，不做数据库查询。
func ParseAuthToken(tokenString string, kind TokenKind) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名算法: %v", token.Header["alg"])
		}
		return jwtSecret(kind), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的令牌")
	}
	if claims.Type != string(kind) {
		return nil, errors.New("令牌类型不匹配")
	}
	if claims.Subject == "" {
		return nil, errors.New("令牌缺少用户标识")
	}
	return claims, nil
}
