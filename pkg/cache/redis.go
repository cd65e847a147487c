package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "snapshot:"

// RedisStore is a snapshot store backed by Redis. Each dataset maps to one
// flat key holding the JSON-encoded entry, with an optional operational
// expiry hint; staleness is always computed from the entry itself.
type RedisStore struct {
	client *redis.Client
	expiry time.Duration
}

// NewRedisStore creates a Redis-backed store. expiry == 0 keeps keys forever.
func NewRedisStore(client *redis.Client, expiry time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		expiry: expiry,
	}
}

// Set overwrites the entry for key.
func (s *RedisStore) Set(ctx context.Context, key string, record Record, ttl time.Duration) error {
	entry := Entry{
		Key:       key,
		Record:    record,
		FetchedAt: time.Now(),
		TTL:       ttl,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return newError(ErrorKindSerialize, "set", key, err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.expiry).Err(); err != nil {
		return newError(ErrorKindBackendUnavailable, "set", key, err)
	}
	return nil
}

// Get returns the current entry for key, if one exists.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, newError(ErrorKindBackendUnavailable, "get", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, newError(ErrorKindSerialize, "get", key, err)
	}
	return &entry, true, nil
}
