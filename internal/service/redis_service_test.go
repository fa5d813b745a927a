package service

import (
	"testing"

	"style-filter-server/internal/config"
)

// 测试内容：Redis 键名按配置前缀拼接。
func TestRedisKey(t *testing.T) {
	config.InitConfig("")

	if key := RedisKey(); key != "style_filter" {
		t.Fatalf("非预期前缀: %q", key)
	}
	if key := RedisKey("captcha", "abc"); key != "style_filter:captcha:abc" {
		t.Fatalf("非预期键名: %q", key)
	}
}

// 测试内容：未启用 Redis 时客户端为 nil。
func TestGetRedisClient_DisabledReturnsNil(t *testing.T) {
	config.InitConfig("")

	if client := GetRedisClient(); client != nil {
		t.Fatalf("期望未启用时返回 nil")
	}
}
