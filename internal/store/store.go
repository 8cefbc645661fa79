// Package store defines the key-value slot the contact collection lives in.
//
// Backends live in sub-packages (file, memory, redis, sqlite). Each one only
// has to get and set whole values under a key; the collection is always
// rewritten wholesale.
package store

import (
	"context"
	"errors"
)

// DefaultKey is the slot name used when none is configured.
const DefaultKey = "addressBookContacts"

// ErrEmptyKey is returned by backends when asked for an empty key.
var ErrEmptyKey = errors.New("empty key")

// KV is a minimal key-value store.
type KV interface {
	// Get returns the value under key. ok is false when the key is missing.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
