package intake

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold is the entry count past which mutating calls trigger an
// opportunistic sweep of expired entries.
const sweepThreshold = 4096

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryCache is a process-local Cache for single-instance deployments.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache builds an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Incr implements Cache.
func (c *MemoryCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeSweepLocked(now)

	entry, ok := c.entries[key]
	if !ok || now.After(entry.expiresAt) {
		entry = memoryEntry{count: 0, expiresAt: now.Add(ttl)}
	}
	entry.count++
	c.entries[key] = entry
	return entry.count, nil
}

// PutIfAbsent implements Cache.
func (c *MemoryCache) PutIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeSweepLocked(now)

	entry, ok := c.entries[key]
	if ok && now.Before(entry.expiresAt) {
		return false, nil
	}
	c.entries[key] = memoryEntry{count: 1, expiresAt: now.Add(ttl)}
	return true, nil
}

// Sweep implements Cache.
func (c *MemoryCache) Sweep(ctx context.Context) error {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(now)
	return nil
}

func (c *MemoryCache) maybeSweepLocked(now time.Time) {
	if len(c.entries) > sweepThreshold {
		c.sweepLocked(now)
	}
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
