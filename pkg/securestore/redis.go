package securestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// scanBatch Clear 时每批 SCAN 的数量
const scanBatch = 200

// RedisBackend 以 Redis 字符串存储，key 统一加前缀
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// ErrEmptyPrefix Redis 库与报价 pub/sub 共用，没有前缀时 Clear 会波及其他数据
var ErrEmptyPrefix = errors.New("securestore: redis backend requires a non-empty key prefix")

// globEscaper 转义 SCAN MATCH 的通配符
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// NewRedisBackend 创建 Redis 后端，prefix 不能为空
func NewRedisBackend(client *redis.Client, prefix string) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("securestore: redis client is required")
	}
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

// Get 实现 Backend
func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return v, true, nil
}

// Set 实现 Backend
func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete 实现 Backend
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Clear 只删除带前缀的 key
func (r *RedisBackend) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, globEscaper.Replace(r.prefix)+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
