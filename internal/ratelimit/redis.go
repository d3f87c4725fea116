package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// takeScript applies the fixed-window algorithm atomically. The count is
// capped at the limit so denied requests do not grow it.
var takeScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count >= tonumber(ARGV[1]) then
  return {count, redis.call('PTTL', KEYS[1]), 0}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {count, redis.call('PTTL', KEYS[1]), 1}
`)

// RedisStore shares window counters across process instances. Window expiry
// rides on key TTLs, so the redis server clock is authoritative.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Take implements Store.
func (s *RedisStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, bool, error) {
	res, err := takeScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, limit, window.Milliseconds()).Slice()
	if err != nil {
		return Window{}, false, err
	}
	if len(res) != 3 {
		return Window{}, false, errors.New("ratelimit: unexpected script reply")
	}
	count, _ := res[0].(int64)
	ttlMs, _ := res[1].(int64)
	allowed, _ := res[2].(int64)
	if ttlMs < 0 {
		ttlMs = window.Milliseconds()
	}
	return Window{
		Count:   int(count),
		ResetAt: now.Add(time.Duration(ttlMs) * time.Millisecond),
	}, allowed == 1, nil
}

// Peek implements Store.
func (s *RedisStore) Peek(ctx context.Context, key string, now time.Time) (*Window, error) {
	count, err := s.client.Get(ctx, redisKeyPrefix+key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	ttl, err := s.client.PTTL(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		return nil, nil
	}
	return &Window{Count: count, ResetAt: now.Add(ttl)}, nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = redisKeyPrefix + key
	}
	return s.client.Del(ctx, prefixed...).Err()
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
