// Package cache provides the byte caches behind ID-token verification.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"firebasebindings/internal/binding"
)

var _ binding.Cache = (*MemoryCache)(nil)

// MemoryCache is a bounded in-process cache. When full, the oldest inserted
// key is evicted first.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	maxKeys int

	hits        atomic.Int64
	misses      atomic.Int64
	lastUpdated atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCacheConfig represents configuration for in-memory cache
type MemoryCacheConfig struct {
	MaxKeys         int
	CleanupInterval time.Duration
}

// NewMemoryCache creates a cache and starts its expiry sweeper.
func NewMemoryCache(config MemoryCacheConfig) *MemoryCache {
	if config.MaxKeys <= 0 {
		config.MaxKeys = 1000
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 10 * time.Minute
	}

	c := &MemoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxKeys: config.MaxKeys,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.touch()

	go c.sweep(config.CleanupInterval)

	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, binding.ErrCacheKeyNotFound
	}

	entry := el.Value.(*memoryEntry)
	if entry.expired(time.Now()) {
		c.removeLocked(el)
		c.misses.Add(1)
		return nil, binding.ErrCacheKeyNotFound
	}

	c.hits.Add(1)
	return entry.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.touch()
		return nil
	}

	for c.order.Len() >= c.maxKeys {
		c.removeLocked(c.order.Front())
	}

	c.entries[key] = c.order.PushBack(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	c.touch()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
		c.touch()
	}
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	return ok && !el.Value.(*memoryEntry).expired(time.Now())
}

// Close stops the sweeper. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

func (c *MemoryCache) Stats() binding.CacheStats {
	c.mu.Lock()
	keys := int64(c.order.Len())
	c.mu.Unlock()

	return binding.CacheStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Keys:        keys,
		LastUpdated: time.Unix(0, c.lastUpdated.Load()),
		Type:        binding.CacheTypeMemory,
	}
}

func (c *MemoryCache) sweep(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*memoryEntry).expired(now) {
			c.removeLocked(el)
		}
		el = next
	}
	c.touch()
}

func (c *MemoryCache) removeLocked(el *list.Element) {
	entry := c.order.Remove(el).(*memoryEntry)
	delete(c.entries, entry.key)
}

func (c *MemoryCache) touch() {
	c.lastUpdated.Store(time.Now().UnixNano())
}
