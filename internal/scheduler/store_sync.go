package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/store"
)

// ErrTargetNotEmpty is returned by Sync when the target already holds at
// least one element (or unreadable data) and overwrite was not requested.
var ErrTargetNotEmpty = errors.New("target backend already holds contacts")

// StoreSyncer copies the serialized collection from one backend to another,
// e.g. when moving from the file backend to sqlite or redis.
type StoreSyncer struct {
	src    store.KV
	dst    store.KV
	key    string
	logger logger.Logger
}

// NewStoreSyncer creates a new syncer for key
func NewStoreSyncer(
	src store.KV,
	dst store.KV,
	key string,
	log logger.Logger,
) *StoreSyncer {
	if key == "" {
		key = store.DefaultKey
	}
	return &StoreSyncer{
		src:    src,
		dst:    dst,
		key:    key,
		logger: log.With(logger.String("component", "migrate")),
	}
}

// Sync copies the slot. It returns the number of contacts copied; zero with
// a nil error means the source was empty.
func (ss *StoreSyncer) Sync(ctx context.Context, overwrite bool) (int, error) {
	ss.logger.Info("syncing contacts between backends", logger.String("key", ss.key))

	data, ok, err := ss.src.Get(ctx, ss.key)
	if err != nil {
		return 0, &domain.StorageError{Op: "load", Err: err}
	}
	if !ok {
		ss.logger.Info("no contacts found in source backend")
		return 0, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, &domain.StorageError{Op: "load", Err: fmt.Errorf("source is not a JSON array of contacts: %w", err)}
	}

	if !overwrite {
		held, err := ss.targetSize(ctx)
		if err != nil {
			return 0, err
		}
		if held != 0 {
			return 0, ErrTargetNotEmpty
		}
	}

	if err := ss.dst.Set(ctx, ss.key, data); err != nil {
		return 0, &domain.StorageError{Op: "save", Err: err}
	}

	ss.logger.Info("synced contacts",
		logger.Int("count", len(items)))

	return len(items), nil
}

// targetSize returns how many elements the target slot holds. A missing slot
// or an empty array is 0; a slot that is not an array counts as occupied (-1)
// so it is never overwritten silently.
func (ss *StoreSyncer) targetSize(ctx context.Context) (int, error) {
	data, ok, err := ss.dst.Get(ctx, ss.key)
	if err != nil {
		return 0, &domain.StorageError{Op: "load", Err: err}
	}
	if !ok {
		return 0, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return -1, nil
	}
	return len(items), nil
}
