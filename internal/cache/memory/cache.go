// Package memory provides an in-process TTL cache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/JakeFAU/spirits-scraper/internal/cache"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Cache stores values in a map guarded by a RWMutex.
type Cache struct {
	mu    sync.RWMutex
	clock spirits.Clock
	items map[string]entry
}

// New returns an empty Cache.
func New(clock spirits.Clock) *Cache {
	return &Cache{clock: clock, items: make(map[string]entry)}
}

// Get returns the value for key or cache.ErrMiss.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, cache.ErrMiss
	}
	if !e.expires.IsZero() && !c.clock.Now().Before(e.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, cache.ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value under key. A non-positive ttl never expires.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = c.clock.Now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
