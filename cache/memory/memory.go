// Package memory provides an in-memory Cache with per-entry expiry.
package memory

import (
	"context"
	"sync"
	"time"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

// Cache is an in-memory key/value store with per-entry TTL. A
// background janitor sweeps expired entries; reads check expiry
// themselves, so the janitor is only housekeeping.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	done      chan struct{}
	closeOnce sync.Once
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

var _ recipehub.Cache = (*Cache)(nil)

// New creates a memory cache. sweepEvery is the janitor interval;
// zero or negative disables the janitor.
func New(sweepEvery time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go c.janitor(sweepEvery)
	}
	return c
}

// Get returns the value for key, or false if absent or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key. A non-positive TTL stores the entry
// without expiry.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Remove deletes key. Returns true if a live entry was removed.
func (c *Cache) Remove(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	delete(c.entries, key)
	return !e.expired(time.Now()), nil
}

// Exists reports whether key holds a live entry.
func (c *Cache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	return ok && !e.expired(time.Now()), nil
}

// Clear removes all entries.
func (c *Cache) Clear(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// Close stops the janitor. The cache stays usable after Close.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
