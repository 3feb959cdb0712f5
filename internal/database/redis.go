package database

import (
	"fmt"
	"sync"
	"time"

	"accessnav/pkg/cache"
	"accessnav/pkg/config"

	"github.com/go-redis/redis/v8"
)

var (
	redisClient   *redis.Client
	redisOnce     sync.Once
	permCache     *cache.PermissionCache
	permCacheOnce sync.Once
)

// GetRedisClient 获取Redis客户端单例
func GetRedisClient() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	})
	return redisClient
}

// GetPermissionCache 获取权限缓存单例
func GetPermissionCache() *cache.PermissionCache {
	permCacheOnce.Do(func() {
		cfg := config.GetConfig()
		permCache = cache.NewPermissionCache(GetRedisClient(), &cache.Config{
			Prefix: cfg.Redis.Prefix,
			TTL:    10 * time.Minute,
		})
	})
	return permCache
}

// SetPermissionCache 注入权限缓存实例（测试场景）
func SetPermissionCache(c *cache.PermissionCache) {
	permCacheOnce.Do(func() {})
	permCache = c
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
