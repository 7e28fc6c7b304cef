// Package redis provides a Redis-backed Cache for recipehub.
//
// Values are stored as plain string keys with per-entry TTLs handled by
// Redis itself, which makes the cache shareable between processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

// Cache is a Redis-backed recipehub.Cache.
type Cache struct {
	client    goredis.Cmdable
	keyPrefix string
}

var _ recipehub.Cache = (*Cache)(nil)

// Option configures Cache.
type Option func(*Cache)

// WithKeyPrefix sets the Redis key prefix (default "recipehub:cache:").
func WithKeyPrefix(prefix string) Option {
	return func(c *Cache) { c.keyPrefix = prefix }
}

// New creates a new Redis-backed Cache. The client must be a connected
// *goredis.Client or *goredis.ClusterClient.
func New(client goredis.Cmdable, opts ...Option) *Cache {
	c := &Cache{
		client:    client,
		keyPrefix: "recipehub:cache:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(k string) string { return c.keyPrefix + k }

// Get returns the value for key, or false on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("recipehub/redis: get: %w", err)
	}
	return val, true, nil
}

// Set stores value under key. A non-positive TTL stores without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("recipehub/redis: set: %w", err)
	}
	return nil
}

// Remove deletes key. Returns true if an entry was removed.
func (c *Cache) Remove(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("recipehub/redis: del: %w", err)
	}
	return n > 0, nil
}

// Exists reports whether key holds a live entry.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("recipehub/redis: exists: %w", err)
	}
	return n > 0, nil
}

// Clear removes every entry under the configured prefix, scanning in
// batches so large caches don't block Redis.
func (c *Cache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("recipehub/redis: scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("recipehub/redis: del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
