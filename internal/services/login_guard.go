package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// LoginGuard 登录失败限流
// 连续失败达到阈值后锁定一段时间。Redis不可用时放行，
// 登录安全性退化但不影响可用性。
type LoginGuard struct {
	client      *redis.Client
	prefix      string
	maxFailures int64
	lockPeriod  time.Duration
}

func NewLoginGuard(client *redis.Client, prefix string) *LoginGuard {
	if prefix == "" {
		prefix = "accessnav"
	}
	return &LoginGuard{
		client:      client,
		prefix:      prefix,
		maxFailures: 5,
		lockPeriod:  15 * time.Minute,
	}
}

func (g *LoginGuard) key(username string) string {
	return fmt.Sprintf("%s:login:fail:%s", g.prefix, username)
}

// IsLocked 用户是否处于锁定期
func (g *LoginGuard) IsLocked(username string) bool {
	ctx := context.Background()
	count, err := g.client.Get(ctx, g.key(username)).Int64()
	if err != nil {
		return false
	}
	return count >= g.maxFailures
}

// RecordFailure 记录一次登录失败
func (g *LoginGuard) RecordFailure(username string) {
	ctx := context.Background()
	key := g.key(username)
	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		g.client.Expire(ctx, key, g.lockPeriod)
	}
}

// Reset 登录成功后清除失败计数
func (g *LoginGuard) Reset(username string) {
	ctx := context.Background()
	g.client.Del(ctx, g.key(username))
}
