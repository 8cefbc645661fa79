// Package contacts owns the canonical, ordered contact collection.
//
// The collection is held in memory and mirrored to a single key-value slot
// as a JSON array. Every mutation rewrites the whole slot; the in-memory
// copy is only swapped once that write has succeeded.
package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/metrics"
	"github.com/MrSnakeDoc/addressbook/internal/store"
)

// Options tunes a Store. Zero values fall back to defaults.
type Options struct {
	Key   string             // storage slot, defaults to store.DefaultKey
	Now   func() time.Time   // clock, defaults to time.Now
	NewID domain.IDGenerator // id source, defaults to domain.NewID
}

// Store is the contact collection. It is safe for concurrent use; every
// operation runs to completion under a single lock.
type Store struct {
	mu    sync.RWMutex
	items []domain.Contact

	kv     store.KV
	key    string
	logger logger.Logger
	now    func() time.Time
	newID  domain.IDGenerator
}

// Open builds a Store on kv and loads the collection once.
// A missing slot is an empty collection; unreadable data is a *domain.StorageError.
func Open(ctx context.Context, kv store.KV, log logger.Logger, opts Options) (*Store, error) {
	if opts.Key == "" {
		opts.Key = store.DefaultKey
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = domain.NewID
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &Store{
		kv:     kv,
		key:    opts.Key,
		logger: log.With(logger.String("component", "contacts")),
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return &domain.StorageError{Op: "load", Err: err}
	}
	if !ok {
		s.logger.Info("no stored contacts, starting empty", logger.String("key", s.key))
		s.items = []domain.Contact{}
		metrics.Contacts.Set(0)
		return nil
	}

	var items []domain.Contact
	if err := json.Unmarshal(data, &items); err != nil {
		return &domain.StorageError{Op: "load", Err: fmt.Errorf("stored collection is not a JSON array of contacts: %w", err)}
	}

	// the slot may have been edited by hand; ids must stay unique
	seen := make(map[string]bool, len(items))
	kept := items[:0]
	for _, c := range items {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		kept = append(kept, c)
	}
	if dropped := len(items) - len(kept); dropped > 0 {
		s.logger.Warn("dropped stored contacts with duplicate ids",
			logger.Int("dropped", dropped))
	}

	s.items = kept
	metrics.Contacts.Set(float64(len(kept)))
	s.logger.Info("loaded contacts",
		logger.String("key", s.key),
		logger.Int("count", len(kept)))
	return nil
}

// persist writes next to the slot and, on success, makes it the live collection.
// Callers must hold s.mu for writing.
func (s *Store) persist(ctx context.Context, next []domain.Contact) error {
	data, err := json.Marshal(next)
	if err != nil {
		metrics.StorageWrites.WithLabelValues("error").Inc()
		return &domain.StorageError{Op: "save", Err: fmt.Errorf("failed to marshal contacts: %w", err)}
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		metrics.StorageWrites.WithLabelValues("error").Inc()
		s.logger.Error("failed to persist contacts", logger.Error(err))
		return &domain.StorageError{Op: "save", Err: err}
	}
	metrics.StorageWrites.WithLabelValues("ok").Inc()
	metrics.Contacts.Set(float64(len(next)))
	s.items = next
	return nil
}

// cloneItems returns a new slice sharing the (never mutated in place) records.
func (s *Store) cloneItems() []domain.Contact {
	next := make([]domain.Contact, len(s.items), len(s.items)+1)
	copy(next, s.items)
	return next
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) timestamp() string {
	return domain.FormatTimestamp(s.now())
}

// CreateOrUpdate validates in and saves it.
//
// If editingID names an existing contact, that record is replaced in place:
// its id and createdAt are kept, updatedAt is refreshed. Otherwise a new
// contact is appended with in.ID (if free) or a fresh id. created reports
// which of the two happened.
func (s *Store) CreateOrUpdate(ctx context.Context, in domain.ContactInput, editingID string) (c domain.Contact, created bool, err error) {
	c, err = domain.Normalize(in)
	if err != nil {
		return domain.Contact{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	next := s.cloneItems()

	if idx := s.indexOf(editingID); idx >= 0 {
		existing := s.items[idx]
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		if c.CreatedAt == "" {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		next[idx] = c

		if err := s.persist(ctx, next); err != nil {
			return domain.Contact{}, false, err
		}
		metrics.Mutations.WithLabelValues("update").Inc()
		s.logger.Debug("contact updated", logger.String("id", c.ID))
		return c.Clone(), false, nil
	}

	switch {
	case c.ID == "":
		c.ID = domain.UniqueID(s.newID, func(id string) bool { return s.indexOf(id) >= 0 })
	case s.indexOf(c.ID) >= 0:
		return domain.Contact{}, false, &domain.ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("id %q is already used by another contact", c.ID),
		}
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	next = append(next, c)

	if err := s.persist(ctx, next); err != nil {
		return domain.Contact{}, false, err
	}
	metrics.Mutations.WithLabelValues("create").Inc()
	s.logger.Debug("contact created", logger.String("id", c.ID))
	return c.Clone(), true, nil
}

// Delete removes the contact with id. A missing id is a no-op and no write
// happens; removed reports whether anything changed.
func (s *Store) Delete(ctx context.Context, id string) (removed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := make([]domain.Contact, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	metrics.Mutations.WithLabelValues("delete").Inc()
	s.logger.Debug("contact deleted", logger.String("id", id))
	return true, nil
}

// ToggleBookmark flips the bookmark flag of id. Returns domain.ErrNotFound
// without side effects when id is unknown.
func (s *Store) ToggleBookmark(ctx context.Context, id string) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Contact{}, fmt.Errorf("toggle bookmark %q: %w", id, domain.ErrNotFound)
	}

	next := s.cloneItems()
	next[idx].IsBookmarked = !next[idx].IsBookmarked
	next[idx].UpdatedAt = s.timestamp()

	if err := s.persist(ctx, next); err != nil {
		return domain.Contact{}, err
	}
	metrics.Mutations.WithLabelValues("bookmark").Inc()
	s.logger.Debug("bookmark toggled",
		logger.String("id", id),
		logger.Bool("bookmarked", next[idx].IsBookmarked))
	return next[idx].Clone(), nil
}

// Search returns copies of the contacts matching query, narrowed to
// bookmarked ones when filter says so, in collection order.
func (s *Store) Search(query string, filter domain.BookmarkFilter) []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Filter(s.items, query, filter)
}

// Get returns a copy of the contact with id.
func (s *Store) Get(id string) (domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Contact{}, fmt.Errorf("get %q: %w", id, domain.ErrNotFound)
	}
	return s.items[idx].Clone(), nil
}

// All returns copies of every contact in collection order.
func (s *Store) All() []domain.Contact {
	return s.Search("", domain.FilterAll)
}

// Count returns the collection size.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// ExportView projects every contact to a flattened row.
func (s *Store) ExportView() []domain.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.Row, 0, len(s.items))
	for i := range s.items {
		rows = append(rows, domain.Flatten(&s.items[i]))
	}
	return rows
}

// Snapshot returns the collection as indented JSON, in the same shape as
// the persisted slot and the import format.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Contact, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c.Clone())
	}
	return json.MarshalIndent(out, "", "  ")
}

// Ping reports the backend health when the backend supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.kv.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
