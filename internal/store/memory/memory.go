package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/addressbook/internal/store"
)

// Store is an in-process key-value store. Values are copied on the way in
// and out so callers can never alias the stored bytes.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// New creates an empty memory store
func New() *Store {
	return &Store{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value under key
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, store.ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value under key
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return store.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	s.writes++
	return nil
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error { return nil }

// Writes returns how many Set calls succeeded
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.writes
}

var (
	_ store.KV     = (*Store)(nil)
	_ store.Pinger = (*Store)(nil)
)
