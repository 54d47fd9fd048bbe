package cache

import (
	"context"

	"firebasebindings/internal/binding"
)

// NewCache builds the cache selected by config. A redis cache that cannot be
// reached degrades to a memory cache instead of failing startup.
func NewCache(ctx context.Context, config binding.CacheConfig, logger binding.Logger) binding.Cache {
	logger = logger.With("component", "cache")

	if config.Type == binding.CacheTypeRedis {
		if c := newRedisCache(ctx, config, logger); c != nil {
			return c
		}
	}

	logger.Info("using memory cache",
		"max_keys", config.MaxKeys,
		"cleanup_interval", config.CleanupInterval)

	return NewMemoryCache(MemoryCacheConfig{
		MaxKeys:         config.MaxKeys,
		CleanupInterval: config.CleanupInterval,
	})
}

func newRedisCache(ctx context.Context, config binding.CacheConfig, logger binding.Logger) binding.Cache {
	if config.RedisURL == "" {
		logger.Warn("redis cache selected without a URL, falling back to memory")
		return nil
	}

	c, err := NewRedisCache(ctx, RedisCacheConfig{
		URL:          config.RedisURL,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err != nil {
		logger.Warn("redis unavailable, falling back to memory", "error", err)
		return nil
	}

	logger.Info("using redis cache", "db", config.RedisDB)
	return c
}
