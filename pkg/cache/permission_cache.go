package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// PermissionCache 用户有效权限集的Redis缓存。
// 通过代数计数器（generation）实现同步失效：任何角色分配或
// 授权变更后立即递增代数（全局或单用户），旧代数下的缓存条目
// 即刻失效。写入必须携带读取未命中时拿到的代数快照，变更与
// 回填并发时回填落在旧代数键上，不会被后续读取命中，不存在
// 读到过期权限的窗口。Redis不可用时所有读取按未命中处理，
// 调用方回退数据库查询，正确性不依赖缓存。
type PermissionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Config 缓存配置
type Config struct {
	Prefix string
	TTL    time.Duration
}

// Generation 读取时观察到的代数快照，回填写入时原样带回
type Generation struct {
	global int64
	user   int64
	valid  bool
}

// NewPermissionCache 创建权限缓存实例
func NewPermissionCache(client *redis.Client, cfg *Config) *PermissionCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "accessnav"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PermissionCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *PermissionCache) genKey() string {
	return c.prefix + ":perm:gen"
}

func (c *PermissionCache) userGenKey(userID uint) string {
	return fmt.Sprintf("%s:perm:ugen:%d", c.prefix, userID)
}

func (c *PermissionCache) entryKey(gen Generation, userID uint) string {
	return fmt.Sprintf("%s:perm:%d:%d:%d", c.prefix, gen.global, gen.user, userID)
}

// snapshot 一次读出全局代数与用户代数，键不存在视为0
func (c *PermissionCache) snapshot(ctx context.Context, userID uint) (Generation, error) {
	values, err := c.client.MGet(ctx, c.genKey(), c.userGenKey(userID)).Result()
	if err != nil {
		return Generation{}, err
	}

	gen := Generation{valid: true}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Generation{}, err
		}
		if i == 0 {
			gen.global = n
		} else {
			gen.user = n
		}
	}
	return gen, nil
}

// Get 读取用户权限集，未命中或Redis异常时返回false。
// 返回的代数快照供调用方回填Set时使用。
func (c *PermissionCache) Get(userID uint) ([]string, Generation, bool) {
	ctx := context.Background()

	gen, err := c.snapshot(ctx, userID)
	if err != nil {
		return nil, Generation{}, false
	}

	data, err := c.client.Get(ctx, c.entryKey(gen, userID)).Bytes()
	if err != nil {
		return nil, gen, false
	}

	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, gen, false
	}
	return codes, gen, true
}

// Set 在指定代数快照下写入用户权限集，写入失败仅降级为无缓存。
// 快照之后发生过失效（代数已递增）时，此写入对后续读取不可见。
func (c *PermissionCache) Set(userID uint, codes []string, gen Generation) {
	if !gen.valid {
		return
	}
	ctx := context.Background()

	data, err := json.Marshal(codes)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.entryKey(gen, userID), data, c.ttl)
}

// Invalidate 使全部缓存条目失效（授权数据发生任何变更时调用）
func (c *PermissionCache) Invalidate() {
	ctx := context.Background()
	c.client.Incr(ctx, c.genKey())
}

// InvalidateUser 使单个用户的缓存条目失效
func (c *PermissionCache) InvalidateUser(userID uint) {
	ctx := context.Background()
	c.client.Incr(ctx, c.userGenKey(userID))
}

// Ping 测试Redis连接
func (c *PermissionCache) Ping() error {
	ctx := context.Background()
	return c.client.Ping(ctx).Err()
}
