package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*PermissionCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewPermissionCache(client, &Config{Prefix: "test", TTL: time.Minute})
	return c, mr
}

// fill 模拟解析器的未命中回填：Get拿代数快照，Set带回
func fill(t *testing.T, c *PermissionCache, userID uint, codes []string) {
	t.Helper()

	_, gen, ok := c.Get(userID)
	require.False(t, ok)
	c.Set(userID, codes, gen)
}

func TestPermissionCache_GetSet(t *testing.T) {
	c, _ := setupCache(t)

	fill(t, c, 1, []string{"route.read", "route.list"})

	codes, _, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []string{"route.read", "route.list"}, codes)
}

func TestPermissionCache_Invalidate(t *testing.T) {
	c, _ := setupCache(t)

	fill(t, c, 1, []string{"route.read"})
	fill(t, c, 2, []string{"message.read"})

	// 全局代数递增后旧条目全部失效
	c.Invalidate()

	_, _, ok := c.Get(1)
	assert.False(t, ok)
	_, _, ok = c.Get(2)
	assert.False(t, ok)
}

func TestPermissionCache_InvalidateUser(t *testing.T) {
	c, _ := setupCache(t)

	fill(t, c, 1, []string{"route.read"})
	fill(t, c, 2, []string{"message.read"})

	c.InvalidateUser(1)

	_, _, ok := c.Get(1)
	assert.False(t, ok)

	codes, _, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, []string{"message.read"}, codes)
}

// 失效与回填并发：回填带的是未命中时的代数快照，落地前发生的
// 失效已递增代数，过期数据写在旧代数键上，不能再被读到
func TestPermissionCache_SetUnderStaleGenerationInvisible(t *testing.T) {
	t.Run("per-user invalidation wins", func(t *testing.T) {
		c, _ := setupCache(t)

		// 未命中，拿到代数快照后数据库读出旧权限集
		_, gen, ok := c.Get(1)
		require.False(t, ok)

		// 回填落地前发生了针对该用户的失效
		c.InvalidateUser(1)
		c.Set(1, []string{"route.read", "route.manage"}, gen)

		_, _, ok = c.Get(1)
		assert.False(t, ok)
	})

	t.Run("global invalidation wins", func(t *testing.T) {
		c, _ := setupCache(t)

		_, gen, ok := c.Get(1)
		require.False(t, ok)

		c.Invalidate()
		c.Set(1, []string{"route.read", "route.manage"}, gen)

		_, _, ok = c.Get(1)
		assert.False(t, ok)

		// 新代数下的回填正常生效
		fill(t, c, 1, []string{"route.read"})
		codes, _, ok := c.Get(1)
		require.True(t, ok)
		assert.Equal(t, []string{"route.read"}, codes)
	})
}

func TestPermissionCache_RedisDownDegradesToMiss(t *testing.T) {
	c, mr := setupCache(t)

	fill(t, c, 1, []string{"route.read"})
	mr.Close()

	// Redis不可用时一律按未命中处理，调用方回退数据库
	_, gen, ok := c.Get(1)
	assert.False(t, ok)

	// 异常期间拿到的快照无效，带回Set也只是空操作
	c.Set(2, []string{"route.read"}, gen)
}
