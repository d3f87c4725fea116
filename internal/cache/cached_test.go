package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-grc/veridian/internal/cache"
)

func TestCachedComputesOnMiss(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0

	got, err := cache.Cached(ctx, c, "cached:miss", cache.Entity, func(ctx context.Context) (string, error) {
		calls++
		return "computed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", got)
	assert.Equal(t, 1, calls)
	assert.True(t, c.Has(ctx, "cached:miss"), "computed value is stored")
}

func TestCachedHitSkipsCompute(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	compute := func(ctx context.Context) (string, error) {
		calls++
		return "computed", nil
	}

	_, err := cache.Cached(ctx, c, "cached:hit", cache.Entity, compute)
	require.NoError(t, err)
	got, err := cache.Cached(ctx, c, "cached:hit", cache.Entity, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", got)
	assert.Equal(t, 1, calls)
}

func TestCachedStaleHitSkipsCompute(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()
	calls := 0
	opts := cache.Options{TTL: 30 * time.Second, StaleWhileRevalidate: 30 * time.Second}
	compute := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := cache.Cached(ctx, c, "cached:stale", opts, compute)
	require.NoError(t, err)

	clock.Advance(45 * time.Second)

	got, err := cache.Cached(ctx, c, "cached:stale", opts, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "stale entries are served without recomputing")
	assert.Equal(t, 1, calls)
}

func TestCachedRecomputesAfterDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	compute := func(ctx context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, err := cache.Cached(ctx, c, "cached:del", cache.Entity, compute)
	require.NoError(t, err)
	c.Delete(ctx, "cached:del")
	_, err = cache.Cached(ctx, c, "cached:del", cache.Entity, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedErrorNotStored(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0

	_, err := cache.Cached(ctx, c, "cached:err", cache.Entity, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("upstream down")
	})
	require.Error(t, err)
	assert.False(t, c.Has(ctx, "cached:err"))

	got, err := cache.Cached(ctx, c, "cached:err", cache.Entity, func(ctx context.Context) (string, error) {
		calls++
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestCachedMixedTypesOnOneKey(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	stringDone := make(chan struct{})
	go func() {
		defer close(stringDone)
		_, _ = cache.Cached(ctx, c, "cached:mixed", cache.Entity, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "text", nil
		})
	}()
	<-started

	// A caller of a different type joins while the string compute is in
	// flight; its result must come from its own compute, never a zero value.
	intDone := make(chan struct{})
	var got int
	var err error
	go func() {
		defer close(intDone)
		got, err = cache.Cached(ctx, c, "cached:mixed", cache.Entity, func(ctx context.Context) (int, error) {
			return 42, nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)
	<-stringDone
	<-intDone

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestCachedFlightsScopedPerCache(t *testing.T) {
	clock := newFakeClock()
	c1 := cache.New(cache.NewMemoryStore(cache.WithMemoryClock(clock.Now)), cache.WithClock(clock.Now))
	c2 := cache.New(cache.NewMemoryStore(cache.WithMemoryClock(clock.Now)), cache.WithClock(clock.Now))
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = cache.Cached(ctx, c1, "shared:key", cache.Entity, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "slow", nil
		})
	}()
	<-started

	// The same key on another instance must not wait on c1's flight.
	got, err := cache.Cached(ctx, c2, "shared:key", cache.Entity, func(ctx context.Context) (string, error) {
		return "fast", nil
	})
	close(release)
	require.NoError(t, err)
	assert.Equal(t, "fast", got)
}

func TestCachedCollapsesConcurrentMisses(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Cached(ctx, c, "cached:herd", cache.Entity, compute)
		}(i)
	}

	// Let the goroutines pile up on the in-flight compute before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
	assert.Equal(t, int32(1), calls.Load(), "one compute serves every concurrent caller")
}
