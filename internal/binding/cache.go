package binding

import (
	"context"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheType represents cache implementation types
type CacheType int

const (
	CacheTypeMemory CacheType = iota
	CacheTypeRedis
)

// String returns the string representation of the cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeRedis:
		return "redis"
	default:
		return "memory"
	}
}

// ParseCacheType parses a string to CacheType. Unknown names mean memory.
func ParseCacheType(s string) CacheType {
	switch s {
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeMemory
	}
}

// MarshalYAML writes the cache type by name.
func (c CacheType) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML accepts the cache type by name.
func (c *CacheType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	*c = ParseCacheType(name)
	return nil
}

// MarshalText lets CacheType appear by name in JSON.
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Cache is a byte-oriented key-value store with TTL support.
type Cache interface {
	// Get returns ErrCacheKeyNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Close() error
	Stats() CacheStats
}

// CacheStats represents cache statistics
type CacheStats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Keys        int64     `json:"keys"`
	LastUpdated time.Time `json:"last_updated"`
	Type        CacheType `json:"type"`
}

// LockManager serialises work per key.
type LockManager interface {
	Lock(key string)
	Unlock(key string)
}
