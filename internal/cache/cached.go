package cache

import "context"

// Cached returns the value under key when a usable entry exists, fresh or
// stale, without invoking compute. On a miss it computes the value, stores
// it, and returns it. Concurrent misses for the same key on the same Cache
// collapse into one compute call.
func Cached[T any](ctx context.Context, c *Cache, key string, opts Options, compute func(context.Context) (T, error)) (T, error) {
	var out T
	if _, ok := c.GetInto(ctx, key, &out); ok {
		return out, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		value, err := compute(ctx)
		if err != nil {
			return value, err
		}
		c.Set(ctx, key, value, opts)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if value, ok := result.(T); ok {
		return value, nil
	}

	// Joined a flight that was computing a different type under this key.
	// That result is unusable here, so it counts as a miss: compute directly.
	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(ctx, key, value, opts)
	return value, nil
}
