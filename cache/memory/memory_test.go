package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := New(0)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	// Overwrite.
	require.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Minute))
	v, _, _ = c.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), v)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New(0)

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 5*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))

	time.Sleep(20 * time.Millisecond)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := c.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	// Zero TTL means no expiry.
	_, ok, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_Remove(t *testing.T) {
	ctx := context.Background()
	c := New(0)

	removed, err := c.Remove(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	removed, err = c.Remove(ctx, "k")
	require.NoError(t, err)
	assert.True(t, removed)

	exists, _ := c.Exists(ctx, "k")
	assert.False(t, exists)
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := New(0)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestCache_JanitorSweepsExpired(t *testing.T) {
	ctx := context.Background()
	c := New(5 * time.Millisecond)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Minute))

	assert.Eventually(t, func() bool { return c.Len() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestCache_CloseIsIdempotentAndKeepsCacheUsable(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	c.Close()
	c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
