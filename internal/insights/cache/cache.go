package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// Cache provides in-memory caching of lookup results with TTL and request collapsing.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	group   singleflight.Group
	done    chan struct{}
}

type cacheEntry struct {
	result    *types.PropertyData
	expiresAt time.Time
}

// NewCache creates a new Cache with the specified TTL.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	close(c.done)
}

// Key normalizes an address into a cache key: trimmed, lowercased, single-spaced.
func Key(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// GetOrFetch retrieves from cache or executes fetch. Concurrent callers for the same
// key share one fetch. fetch runs detached from the caller's cancellation so a caller
// leaving early does not fail the others; a waiting caller still returns on ctx.Done.
// Returns the result and whether it was a cache hit.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (*types.PropertyData, error)) (*types.PropertyData, bool, error) {
	if result, ok := c.get(key); ok {
		return result, true, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		result, err := fetch(fetchCtx)
		if err == nil && result != nil && c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = &cacheEntry{
				result:    result,
				expiresAt: time.Now().Add(c.ttl),
			}
			c.mu.Unlock()
		}
		return result, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		result, _ := res.Val.(*types.PropertyData)
		return result, false, nil
	case <-ctx.Done():
		return nil, false, context.Cause(ctx)
	}
}

func (c *Cache) get(key string) (*types.PropertyData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !time.Now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

// Invalidate removes a specific key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cleanup periodically removes expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}
