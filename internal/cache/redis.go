package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cache:"

// RedisStore shares entries across process instances. Keys carry the
// combined TTL+staleness horizon as their redis expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, payload []byte, expiry time.Duration) error {
	return s.client.Set(ctx, redisKeyPrefix+key, payload, expiry).Err()
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// DeletePattern implements Store using SCAN MATCH over the prefixed keyspace.
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) (int, error) {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear implements Store, touching only this store's keyspace.
func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.DeletePattern(ctx, "*")
	return err
}
