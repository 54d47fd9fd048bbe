package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"firebasebindings/internal/binding"

	"github.com/redis/go-redis/v9"
)

var _ binding.Cache = (*RedisCache)(nil)

// DefaultKeyPrefix namespaces every key the gateway writes to redis.
const DefaultKeyPrefix = "fbgateway:"

// RedisCache stores entries in redis under a key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string

	hits        atomic.Int64
	misses      atomic.Int64
	lastUpdated atomic.Int64
}

// RedisCacheConfig represents Redis cache configuration
type RedisCacheConfig struct {
	URL          string
	Password     string
	DB           int
	KeyPrefix    string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

// NewRedisCache connects to redis and pings it before returning.
func NewRedisCache(ctx context.Context, config RedisCacheConfig) (*RedisCache, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.Password != "" {
		opt.Password = config.Password
	}
	if config.DB != 0 {
		opt.DB = config.DB
	}
	if config.MaxRetries != 0 {
		opt.MaxRetries = config.MaxRetries
	}
	if config.PoolSize != 0 {
		opt.PoolSize = config.PoolSize
	}
	if config.MinIdleConns != 0 {
		opt.MinIdleConns = config.MinIdleConns
	}
	if config.DialTimeout != 0 {
		opt.DialTimeout = config.DialTimeout
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	c := &RedisCache{client: client, prefix: prefix}
	c.touch()
	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, binding.ErrCacheKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	c.hits.Add(1)
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	c.touch()
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	c.touch()
	return nil
}

func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, c.prefix+key).Result()
	return err == nil && n > 0
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Stats counts only keys under the cache prefix.
func (c *RedisCache) Stats() binding.CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := binding.CacheStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		LastUpdated: time.Unix(0, c.lastUpdated.Load()),
		Type:        binding.CacheTypeRedis,
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		stats.Keys++
	}
	return stats
}

func (c *RedisCache) touch() {
	c.lastUpdated.Store(time.Now().UnixNano())
}
