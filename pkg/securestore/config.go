package securestore

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/logger"
)

// NewFromConfig 按配置选择后端并创建 Store；redis 后端需传入 client
func NewFromConfig(cfg config.StoreConfig, client *redis.Client, log logger.Logger) (*Store, error) {
	var backend Backend
	switch cfg.Backend {
	case config.BackendMemory:
		backend = NewMemoryBackend(cfg.QuotaBytes)
	case config.BackendFile:
		fb, err := NewFileBackend(cfg.Path, cfg.QuotaBytes)
		if err != nil {
			return nil, err
		}
		backend = fb
	case config.BackendRedis:
		rb, err := NewRedisBackend(client, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		backend = rb
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}

	return New(backend, Options{
		Passphrase: cfg.Passphrase,
		Salt:       cfg.Salt,
		Iterations: cfg.Iterations,
		Logger:     log,
	})
}
