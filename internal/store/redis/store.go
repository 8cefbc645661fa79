package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/addressbook/internal/store"
)

// Store keeps slot values as plain Redis strings without TTL
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Get retrieves the value of a slot
func (s *Store) Get(ctx context.Context, name string) ([]byte, bool, error) {
	if name == "" {
		return nil, false, store.ErrEmptyKey
	}
	data, err := s.client.Get(ctx, Key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", name, err)
	}
	return data, true, nil
}

// Set replaces the value of a slot
func (s *Store) Set(ctx context.Context, name string, value []byte) error {
	if name == "" {
		return store.ErrEmptyKey
	}
	if err := s.client.Set(ctx, Key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

var (
	_ store.KV     = (*Store)(nil)
	_ store.Pinger = (*Store)(nil)
)
