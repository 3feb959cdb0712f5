package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func setupLoginGuard(t *testing.T) (*LoginGuard, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLoginGuard(client, "test"), mr
}

func TestLoginGuard_LockAfterMaxFailures(t *testing.T) {
	guard, _ := setupLoginGuard(t)

	for i := 0; i < 4; i++ {
		guard.RecordFailure("alice")
		assert.False(t, guard.IsLocked("alice"))
	}

	guard.RecordFailure("alice")
	assert.True(t, guard.IsLocked("alice"))

	// 其他用户不受影响
	assert.False(t, guard.IsLocked("bob"))
}

func TestLoginGuard_ResetClearsCounter(t *testing.T) {
	guard, _ := setupLoginGuard(t)

	for i := 0; i < 5; i++ {
		guard.RecordFailure("alice")
	}
	assert.True(t, guard.IsLocked("alice"))

	guard.Reset("alice")
	assert.False(t, guard.IsLocked("alice"))
}

func TestLoginGuard_RedisDownFailsOpen(t *testing.T) {
	guard, mr := setupLoginGuard(t)

	guard.RecordFailure("alice")
	mr.Close()

	// Redis不可用时放行，不影响登录可用性
	assert.False(t, guard.IsLocked("alice"))
	guard.RecordFailure("alice")
	guard.Reset("alice")
}
