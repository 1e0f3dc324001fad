package finance

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTLCache memoizes computed values per key until their TTL runs out.
// Reads are concurrent; at most one compute per key is in flight and
// concurrent callers for that key wait for its result.
type TTLCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	gen     uint64
	group   singleflight.Group
	now     func() time.Time
}

func NewTTLCache[T any]() *TTLCache[T] {
	return &TTLCache[T]{entries: map[string]cacheEntry[T]{}, now: time.Now}
}

// cacheGet returns a fresh value for key.
func (c *TTLCache[T]) cacheGet(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[key]; ok && c.now().Before(entry.expiresAt) {
		return entry.value, true
	}
	var zero T
	return zero, false
}

// cacheSet stores v unless the cache was cleared since gen was read.
func (c *TTLCache[T]) cacheSet(key string, v T, ttl time.Duration, gen uint64) {
	c.mu.Lock()
	if c.gen == gen {
		now := c.now()
		for k, e := range c.entries {
			if k != key && !now.Before(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.entries[key] = cacheEntry[T]{value: v, expiresAt: now.Add(ttl)}
	}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result for ttl. Errors are returned as is and never cached.
func (c *TTLCache[T]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := c.cacheGet(key); ok {
		return v, nil
	}
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	// The generation is part of the flight key so a compute started before
	// Clear is never joined by callers arriving after it.
	res, err, _ := c.group.Do(strconv.FormatUint(gen, 10)+"|"+key, func() (any, error) {
		if v, ok := c.cacheGet(key); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil {
			return v, err
		}
		c.cacheSet(key, v, ttl, gen)
		return v, nil
	})
	v, _ := res.(T)
	return v, err
}

// Stale returns the last stored value for key even if it has expired.
func (c *TTLCache[T]) Stale(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry.value, ok
}

// Clear drops every entry so the next lookup recomputes.
func (c *TTLCache[T]) Clear() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry[T]{}
	c.gen++
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *TTLCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
