package recipehub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cache durations by volatility of the underlying data. Taxonomies
// barely change, filtered lists churn daily, usage stats back
// dashboards. Random recipes are never cached at all.
const (
	TTLTaxonomy   = 30 * 24 * time.Hour
	TTLRecipeList = 24 * time.Hour
	TTLRecipe     = 7 * 24 * time.Hour
	TTLUsageStats = 2 * time.Minute
)

// Cache is the key/value collaborator the core stores consolidated
// results in. Values are JSON-encoded; each entry carries its own TTL
// (zero means no expiry). Implementations must be safe for concurrent
// use.
type Cache interface {
	// Get returns the stored value for key, or false if absent/expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Remove deletes key. Returns true if an entry was removed.
	Remove(ctx context.Context, key string) (bool, error)

	// Exists reports whether key holds a live entry.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// Key builds a deterministic cache key from an operation name and its
// arguments. String arguments are trimmed and case-folded so that
// equivalent logical queries always hit the same entry.
func Key(op string, args ...any) string {
	var b strings.Builder
	b.WriteString(op)
	for _, a := range args {
		b.WriteByte('_')
		switch v := a.(type) {
		case string:
			b.WriteString(strings.ToLower(strings.TrimSpace(v)))
		case int:
			b.WriteString(strconv.Itoa(v))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return b.String()
}

// CachedAs reads key from c and decodes it as a T. A nil cache, empty
// key, miss, or decode failure all read as a miss.
func CachedAs[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var zero T
	if c == nil || key == "" {
		return zero, false
	}
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false
	}
	return v, true
}

// StoreAs encodes v and stores it under key. Null values are not
// cached, so an absent result never masks a later successful fetch.
// Store failures are swallowed: caching is best-effort.
func StoreAs[T any](ctx context.Context, c Cache, key string, v T, ttl time.Duration) {
	if c == nil || key == "" || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return
	}
	_ = c.Set(ctx, key, raw, ttl)
}
