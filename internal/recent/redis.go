package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisKey holds the JSON list of recent roles.
	DefaultRedisKey = "fitcheck:recent_roles"

	maxTxAttempts = 5
)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps recent roles as one JSON value under a redis key.
type RedisStore struct {
	client *redis.Client
	key    string
	max    int
}

// NewRedisStore returns a store using client. Empty key falls back to DefaultRedisKey.
func NewRedisStore(client *redis.Client, key string, limit int) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if limit <= 0 {
		limit = DefaultMax
	}
	return &RedisStore{client: client, key: key, max: limit}
}

func (s *RedisStore) List(ctx context.Context) ([]Role, error) {
	return s.read(ctx, s.client)
}

// Add runs read-modify-write inside a WATCH transaction and retries when
// another writer touched the key in between.
func (s *RedisStore) Add(ctx context.Context, entry Entry) (Role, error) {
	role := NewRole(entry)

	update := func(tx *redis.Tx) error {
		roles, err := s.read(ctx, tx)
		if err != nil {
			return err
		}

		data, err := json.Marshal(Prepend(roles, role, s.max))
		if err != nil {
			return fmt.Errorf("encoding recent roles: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, update, s.key)
		if err == nil {
			return role, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return Role{}, fmt.Errorf("saving recent role to redis: %w", err)
	}

	return Role{}, fmt.Errorf("saving recent role to redis: %w", redis.TxFailedErr)
}

// Ping checks the redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) read(ctx context.Context, c getter) ([]Role, error) {
	raw, err := c.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Role{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recent roles from redis: %w", err)
	}

	var roles []Role
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, fmt.Errorf("decoding recent roles from redis: %w", err)
	}
	return roles, nil
}
