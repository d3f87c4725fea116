package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-grc/veridian/internal/cache"
)

func newRedisCache(t *testing.T) (*cache.Cache, *fakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	clock := newFakeClock()
	return cache.New(cache.NewRedisStore(client), cache.WithClock(clock.Now)), clock, mr
}

func TestRedisRoundTrip(t *testing.T) {
	c, _, _ := newRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "systems:entity:org-1:sys-1", map[string]int{"n": 3}, cache.Entity)

	var got map[string]int
	stale, ok := c.GetInto(ctx, "systems:entity:org-1:sys-1", &got)
	require.True(t, ok)
	assert.False(t, stale)
	assert.Equal(t, 3, got["n"])
}

func TestRedisStaleness(t *testing.T) {
	c, clock, _ := newRedisCache(t)
	ctx := context.Background()
	opts := cache.Options{TTL: 30 * time.Second, StaleWhileRevalidate: 30 * time.Second}

	c.Set(ctx, "dashboard:stats:org-1", 9, opts)

	clock.Advance(40 * time.Second)
	var got int
	stale, ok := c.GetInto(ctx, "dashboard:stats:org-1", &got)
	require.True(t, ok)
	assert.True(t, stale)
	assert.Equal(t, 9, got)

	clock.Advance(30 * time.Second)
	_, ok = c.GetInto(ctx, "dashboard:stats:org-1", &got)
	assert.False(t, ok)
}

func TestRedisKeyExpiry(t *testing.T) {
	c, _, mr := newRedisCache(t)
	ctx := context.Background()
	opts := cache.Options{TTL: 30 * time.Second, StaleWhileRevalidate: 30 * time.Second}

	c.Set(ctx, "k", 1, opts)
	require.True(t, mr.Exists("cache:k"))

	mr.FastForward(61 * time.Second)
	assert.False(t, mr.Exists("cache:k"), "redis expiry covers TTL plus staleness grace")
}

func TestRedisDeletePattern(t *testing.T) {
	c, _, mr := newRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "systems:list:org-1:aa", 1, cache.List)
	c.Set(ctx, "systems:entity:org-1:sys-1", 2, cache.Entity)
	c.Set(ctx, "systems:list:org-2:bb", 3, cache.List)
	mr.Set("unrelated", "raw")

	removed := c.DeletePattern(ctx, "systems:*:org-1:*")
	assert.Equal(t, 2, removed)
	assert.False(t, c.Has(ctx, "systems:list:org-1:aa"))
	assert.True(t, c.Has(ctx, "systems:list:org-2:bb"))
	assert.True(t, mr.Exists("unrelated"), "keys outside the cache keyspace are untouched")
}

func TestRedisClearScopedToCacheKeys(t *testing.T) {
	c, _, mr := newRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "a", 1, cache.Entity)
	c.Set(ctx, "b", 2, cache.Entity)
	mr.Set("session:tok", "payload")

	c.Clear(ctx)
	assert.False(t, c.Has(ctx, "a"))
	assert.False(t, c.Has(ctx, "b"))
	assert.True(t, mr.Exists("session:tok"))
}
