package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/store/file"
)

const (
	// DefaultBackupInterval is used when no interval is configured
	DefaultBackupInterval = time.Hour
)

// BackupWriter periodically writes a JSON snapshot of the store to a file.
// The snapshot is in import format, so it can be fed back with `import`.
type BackupWriter struct {
	store    *contacts.Store
	logger   logger.Logger
	path     string
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}

	mu   sync.Mutex
	last []byte
}

// NewBackupWriter creates a new backup writer
func NewBackupWriter(
	store *contacts.Store,
	log logger.Logger,
	path string,
	interval time.Duration,
) *BackupWriter {
	if interval <= 0 {
		interval = DefaultBackupInterval
	}

	return &BackupWriter{
		store:    store,
		logger:   log.With(logger.String("component", "backup")),
		path:     path,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start writes a first backup and then one per interval
func (bw *BackupWriter) Start(ctx context.Context) error {
	if _, err := bw.Backup(ctx); err != nil {
		bw.logger.Warn("initial backup failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(bw.interval)
	go func() {
		defer close(bw.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := bw.Backup(ctx); err != nil {
					bw.logger.Error("backup failed",
						logger.Error(err))
				}
			case <-bw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the ticker and waits for a running backup to finish.
// Only call it after Start.
func (bw *BackupWriter) Stop() {
	close(bw.stopCh)
	<-bw.done
}

// Backup writes the current snapshot unless it equals the last one written.
// written reports whether the file was touched.
func (bw *BackupWriter) Backup(_ context.Context) (written bool, err error) {
	snap, err := bw.store.Snapshot()
	if err != nil {
		return false, fmt.Errorf("failed to snapshot contacts: %w", err)
	}

	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.last != nil && bytes.Equal(snap, bw.last) {
		bw.logger.Debug("contacts unchanged, backup skipped")
		return false, nil
	}

	if err := file.WriteAtomic(bw.path, snap); err != nil {
		return false, err
	}
	bw.last = snap

	bw.logger.Info("backup written",
		logger.String("path", bw.path),
		logger.Int("contacts", bw.store.Count()))
	return true, nil
}
