package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"style-filter-server/internal/db"
	"style-filter-server/internal/model"
	"style-filter-server/internal/service"
	"style-filter-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// ContextPublicUserID 上下文中 JWT 主体的键名
const ContextPublicUserID = "public_user_id"

var (
	// statusCache 缓存用户状态，减少数据库查询
	// Key: publicUserID (string), Value: cachedStatus
	statusCache sync.Map
)

const statusCacheTTL = 1 * time.Minute

// 用户状态编码，用于缓存层
const (
	userStatusOK       = "ok"
	userStatusBanned   = "banned"
	userStatusInactive = "inactive"
	userStatusMissing  = "missing"
)

type cachedStatus struct {
	Status    string
	ExpiresAt time.Time
}

// ClearUserStatusCache 清除指定用户的状态缓存
func ClearUserStatusCache(publicUserID string) {
	statusCache.Delete(publicUserID)

	if redisClient := service.GetRedisClient(); redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		key := service.RedisKey("auth", "user_status", publicUserID)
		_ = redisClient.Del(ctx, key).Err()
	}
}

// JWTAuth 校验 Authorization 头中的访问令牌，并将用户对外标识写入上下文。
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "需要认证才能访问"})
			c.Abort()
			return
		}

		// 检查格式是否为 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 格式错误"})
			c.Abort()
			return
		}

		claims, err := utils.ParseAuthToken(parts[1], utils.TokenKindAccess)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 无效或已过期"})
			c.Abort()
			return
		}

		c.Set(ContextPublicUserID, claims.Subject)
		c.Next()
	}
}

// UserStatusCheck 检查用户是否仍然存在且未被封禁。
// 令牌本身不携带封禁状态，需要回查；结果做短 TTL 缓存。
func UserStatusCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextPublicUserID)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户信息"})
			c.Abort()
			return
		}

		publicUserID, ok := value.(string)
		if !ok || publicUserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的用户标识"})
			c.Abort()
			return
		}

		var (
			currentStatus string
			statusFound   bool
		)

		// 优先从 Redis 读取
		if redisClient := service.GetRedisClient(); redisClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			key := service.RedisKey("auth", "user_status", publicUserID)
			if cachedStatusStr, err := redisClient.Get(ctx, key).Result(); err == nil && cachedStatusStr != "" {
				currentStatus = cachedStatusStr
				statusFound = true
				statusCache.Store(publicUserID, cachedStatus{
					Status:    currentStatus,
					ExpiresAt: time.Now().Add(statusCacheTTL),
				})
			}
		}

		// Redis 未命中或不可用时，回退本地内存缓存
		if !statusFound {
			if val, ok := statusCache.Load(publicUserID); ok {
				cached, typeOk := val.(cachedStatus)
				if typeOk {
					if time.Now().Before(cached.ExpiresAt) {
						currentStatus = cached.Status
						statusFound = true
					} else {
						statusCache.Delete(publicUserID)
					}
				}
			}
		}

		// 缓存未命中或过期，查询数据库
		if !statusFound {
			var user model.User
			err := db.DB.Select("is_banned", "is_active").
				Where("public_user_id = ?", publicUserID).
				First(&user).Error
			switch {
			case err != nil:
				currentStatus = userStatusMissing
			case user.IsBanned:
				currentStatus = userStatusBanned
			case !user.IsActive:
				currentStatus = userStatusInactive
			default:
				currentStatus = userStatusOK
			}

			statusCache.Store(publicUserID, cachedStatus{
				Status:    currentStatus,
				ExpiresAt: time.Now().Add(statusCacheTTL),
			})

			if redisClient := service.GetRedisClient(); redisClient != nil {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()

				key := service.RedisKey("auth", "user_status", publicUserID)
				_ = redisClient.Set(ctx, key, currentStatus, statusCacheTTL).Err()
			}
		}

		switch currentStatus {
		case userStatusMissing:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
			c.Abort()
			return
		case userStatusBanned:
			c.JSON(http.StatusForbidden, gin.H{"error": "账号已被封禁"})
			c.Abort()
			return
		case userStatusInactive:
			c.JSON(http.StatusForbidden, gin.H{"error": "账号已停用"})
			c.Abort()
			return
		}

		c.Next()
	}
}
