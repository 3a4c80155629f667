package cache

import (
	"context"
	"sync"
	"time"

	"booking-router/core/constants"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process Cache used by tests and by single-node runs
// without Redis.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) lookup(key string) (memoryEntry, bool) {
	e, ok := c.items[key]
	if !ok {
		return e, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.items, key)
		return e, false
	}
	return e, true
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lookup(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return e.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = c.entry(value, ttl)
	return nil
}

func (c *MemoryCache) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lookup(key); ok {
		return false, nil
	}
	c.items[key] = c.entry(value, ttl)
	return true, nil
}

func (c *MemoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *MemoryCache) AddToTokenBlacklist(ctx context.Context, token string) error {
	return c.Set(ctx, constants.CachePrefixBlacklist+token, "1", constants.TokenBlacklistTTL)
}

func (c *MemoryCache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := c.Get(ctx, constants.CachePrefixBlacklist+token)
	if err == ErrCacheMiss {
		return false, nil
	}
	return err == nil, err
}

func (c *MemoryCache) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	return e
}
