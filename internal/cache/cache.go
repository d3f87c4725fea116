// Package cache provides a keyed value cache with independent TTL and
// stale-while-revalidate windows plus glob pattern invalidation.
//
// An entry is fresh until its TTL elapses, then stale but usable until the
// staleness grace period also elapses, then gone. Reads and writes never
// surface store errors to callers; anything inconsistent is a miss and the
// value gets recomputed.
package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options controls how long an entry stays fresh and how long past that it
// may still be served stale.
type Options struct {
	TTL                  time.Duration
	StaleWhileRevalidate time.Duration
}

// TTL presets per data volatility.
var (
	// Dashboard suits volatile aggregates.
	Dashboard = Options{TTL: 30 * time.Second, StaleWhileRevalidate: 30 * time.Second}
	// List suits paginated listings.
	List = Options{TTL: 60 * time.Second, StaleWhileRevalidate: 60 * time.Second}
	// Entity suits single-record detail.
	Entity = Options{TTL: 5 * time.Minute, StaleWhileRevalidate: time.Minute}
	// Metadata suits rarely-changing reference data.
	Metadata = Options{TTL: time.Hour, StaleWhileRevalidate: 5 * time.Minute}
)

// Stats holds cumulative hit/miss counters, reset only by process restart.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Store persists serialized envelopes. The memory implementation serves a
// single process; the redis implementation shares entries across instances.
type Store interface {
	Set(ctx context.Context, key string, payload []byte, expiry time.Duration) error
	// Get returns the payload and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	// DeletePattern removes every key matching the glob pattern and
	// returns how many were removed.
	DeletePattern(ctx context.Context, pattern string) (int, error)
	Clear(ctx context.Context) error
}

// envelope is the stored form: the value plus the timestamps needed to
// derive fresh/stale/expired on read.
type envelope struct {
	Value    json.RawMessage `json:"v"`
	StoredAt int64           `json:"at"`
	TTLMs    int64           `json:"ttl"`
	SWRMs    int64           `json:"swr"`
}

// MetricsRecorder receives cache outcomes for observability.
type MetricsRecorder interface {
	CacheHit()
	CacheMiss()
}

// Cache derives entry freshness over a Store. Each instance carries its own
// in-flight compute group, so deduplication in Cached never couples separate
// caches that happen to share key strings.
type Cache struct {
	store   Store
	now     func() time.Time
	metrics MetricsRecorder
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheOption customizes a Cache.
type CacheOption func(*Cache)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithMetrics records hits and misses.
func WithMetrics(metrics MetricsRecorder) CacheOption {
	return func(c *Cache) {
		c.metrics = metrics
	}
}

// New constructs a Cache over the given store.
func New(store Store, opts ...CacheOption) *Cache {
	c := &Cache{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key, overwriting any prior entry. Marshal or store
// failures are swallowed; the next read simply misses.
func (c *Cache) Set(ctx context.Context, key string, value any, opts Options) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	combined := opts.TTL + opts.StaleWhileRevalidate
	payload, err := json.Marshal(envelope{
		Value:    raw,
		StoredAt: c.now().UnixMilli(),
		TTLMs:    opts.TTL.Milliseconds(),
		SWRMs:    opts.StaleWhileRevalidate.Milliseconds(),
	})
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, key, payload, combined)
}

// GetInto loads the entry for key into dest. ok is false when the key is
// absent, expired, or unreadable; stale reports whether the value is past
// its TTL but within the staleness grace period.
func (c *Cache) GetInto(ctx context.Context, key string, dest any) (stale bool, ok bool) {
	env, age, found := c.load(ctx, key)
	if !found {
		c.miss()
		return false, false
	}
	if err := json.Unmarshal(env.Value, dest); err != nil {
		// Corrupted value, same as not cached.
		_ = c.store.Delete(ctx, key)
		c.miss()
		return false, false
	}
	c.hit()
	return age >= time.Duration(env.TTLMs)*time.Millisecond, true
}

// Has reports whether key holds a usable (fresh or stale) entry. It does not
// count toward stats.
func (c *Cache) Has(ctx context.Context, key string) bool {
	_, _, found := c.load(ctx, key)
	return found
}

// Delete removes a single entry.
func (c *Cache) Delete(ctx context.Context, key string) {
	_ = c.store.Delete(ctx, key)
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) {
	_ = c.store.Clear(ctx)
}

// DeletePattern removes every entry whose key matches the glob pattern,
// e.g. "dashboard:*", and returns the number removed.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) int {
	n, err := c.store.DeletePattern(ctx, pattern)
	if err != nil {
		return 0
	}
	return n
}

// Stats returns the cumulative hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *Cache) load(ctx context.Context, key string) (envelope, time.Duration, bool) {
	payload, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return envelope{}, 0, false
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		_ = c.store.Delete(ctx, key)
		return envelope{}, 0, false
	}
	age := c.now().Sub(time.UnixMilli(env.StoredAt))
	if age >= time.Duration(env.TTLMs+env.SWRMs)*time.Millisecond {
		_ = c.store.Delete(ctx, key)
		return envelope{}, 0, false
	}
	return env, age, true
}

func (c *Cache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHit()
	}
}

func (c *Cache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMiss()
	}
}
