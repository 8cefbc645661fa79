package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/sources/seed"
	"github.com/MrSnakeDoc/addressbook/internal/store"
)

// SeedLedgerKey is the slot, next to the collection slot, that records which
// seed ids have already been applied.
func SeedLedgerKey(collectionKey string) string {
	if collectionKey == "" {
		collectionKey = store.DefaultKey
	}
	return collectionKey + ".seeded"
}

// SeedReloader merges the seed file into the contact store, at start, on
// every tick and whenever the manual trigger fires. Each seed entry is
// applied once: an entry deleted by the user stays deleted on later reloads.
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	store         *contacts.Store
	ledger        store.KV
	ledgerKey     string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}

	mu sync.Mutex // serializes Reload
}

// NewSeedReloader creates a new seed reloader. Applied seed ids are kept in
// ledger under ledgerKey. A zero interval disables the ticker; the manual
// trigger still works.
func NewSeedReloader(
	seedFile string,
	st *contacts.Store,
	ledger store.KV,
	ledgerKey string,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		store:         st,
		ledger:        ledger,
		ledgerKey:     ledgerKey,
		logger:        log.With(logger.String("component", "seed")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the seed file once and then keeps reloading in the background
func (sr *SeedReloader) Start(ctx context.Context) error {
	if _, err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed load failed: %w", err)
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	if sr.interval > 0 {
		ticker = time.NewTicker(sr.interval)
		tick = ticker.C
	}

	go func() {
		defer close(sr.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				sr.reloadLogged(ctx)
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				sr.reloadLogged(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and waits for a running reload to finish.
// Only call it after a successful Start.
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
	<-sr.done
}

func (sr *SeedReloader) reloadLogged(ctx context.Context) {
	if _, err := sr.Reload(ctx); err != nil {
		sr.logger.Error("failed to reload seed file", logger.Error(err))
	}
}

// Reload reads the seed file and imports the entries that were never applied
// before. Entries already applied, whether still present or deleted since,
// are left alone, so an unchanged file imports nothing.
func (sr *SeedReloader) Reload(ctx context.Context) (contacts.ImportResult, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.logger.Info("reloading seed file", logger.String("path", sr.loader.Path()))

	config, err := sr.loader.Load()
	if err != nil {
		return contacts.ImportResult{}, fmt.Errorf("failed to load seed: %w", err)
	}

	candidates, skipped := sr.mapper.MapContacts(config)
	for _, s := range skipped {
		sr.logger.Warn("skipping seed entry",
			logger.Int("index", s.Index),
			logger.String("name", s.Name),
			logger.String("reason", s.Reason))
	}

	applied, err := sr.loadLedger(ctx)
	if err != nil {
		return contacts.ImportResult{}, err
	}

	pending := make([]domain.Contact, 0, len(candidates))
	for _, c := range candidates {
		if !applied[c.ID] {
			pending = append(pending, c)
		}
	}

	res := contacts.ImportResult{Conflicts: []string{}}
	if len(pending) > 0 {
		if res, err = sr.store.Import(ctx, pending); err != nil {
			return contacts.ImportResult{}, fmt.Errorf("failed to import seed: %w", err)
		}
		// ids already in the store (conflicts) count as applied too
		for _, c := range pending {
			applied[c.ID] = true
		}
		if err := sr.saveLedger(ctx, applied); err != nil {
			return contacts.ImportResult{}, err
		}
	}
	res.Invalid = len(skipped)
	res.Skipped += len(skipped)

	sr.logger.Info("seed file applied",
		logger.Int("imported", res.Imported),
		logger.Int("already_applied", len(candidates)-len(pending)),
		logger.Int("already_present", len(res.Conflicts)),
		logger.Int("invalid", res.Invalid))
	return res, nil
}

func (sr *SeedReloader) loadLedger(ctx context.Context) (map[string]bool, error) {
	data, ok, err := sr.ledger.Get(ctx, sr.ledgerKey)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	applied := map[string]bool{}
	if !ok {
		return applied, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, &domain.StorageError{Op: "load", Err: fmt.Errorf("seed ledger %s is not a JSON array of ids: %w", sr.ledgerKey, err)}
	}
	for _, id := range ids {
		applied[id] = true
	}
	return applied, nil
}

func (sr *SeedReloader) saveLedger(ctx context.Context, applied map[string]bool) error {
	ids := make([]string, 0, len(applied))
	for id := range applied {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	if err := sr.ledger.Set(ctx, sr.ledgerKey, data); err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}
