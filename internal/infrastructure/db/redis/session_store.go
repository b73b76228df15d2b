package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/backoffice/internal/core/ports"
)

const defaultPrefix = "backoffice:"

// SessionStore is a ports.KeyValueStore backed by Redis.
// Key format: <prefix><key>, e.g. backoffice:adminUser
type SessionStore struct {
	client *redis.Client
	prefix string
}

var _ ports.KeyValueStore = (*SessionStore)(nil)

// NewSessionStore wraps client. An empty prefix falls back to "backoffice:".
func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores value without expiry; the backend owns session lifetime.
func (s *SessionStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}

func (s *SessionStore) key(k string) string {
	return s.prefix + k
}

// Ping checks that Redis is reachable.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
