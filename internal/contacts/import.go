package contacts

import (
	"context"
	"fmt"
	"io"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/metrics"
)

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported  int      `json:"imported_count"`
	Skipped   int      `json:"skipped_count"`
	Invalid   int      `json:"invalid_count"`
	Conflicts []string `json:"conflicts"`
}

// Import merges candidates into the collection. A candidate whose id is
// already present (stored or earlier in the same batch) is skipped and its
// id reported as a conflict; one without an id gets a fresh one. Accepted
// candidates are appended in order and persisted in one write.
func (s *Store) Import(ctx context.Context, candidates []domain.Contact) (ImportResult, error) {
	res := ImportResult{Conflicts: []string{}}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	taken := make(map[string]bool, len(s.items)+len(candidates))
	for _, c := range s.items {
		taken[c.ID] = true
	}

	next := s.cloneItems()
	for _, cand := range candidates {
		c := domain.PrepareImported(cand, now)
		if c.ID == "" {
			c.ID = domain.UniqueID(s.newID, func(id string) bool { return taken[id] })
		} else if taken[c.ID] {
			res.Skipped++
			res.Conflicts = append(res.Conflicts, c.ID)
			continue
		}
		taken[c.ID] = true
		next = append(next, c)
		res.Imported++
	}

	if res.Imported > 0 {
		if err := s.persist(ctx, next); err != nil {
			return ImportResult{}, err
		}
		metrics.Mutations.WithLabelValues("import").Inc()
	}

	metrics.ImportRecords.WithLabelValues("imported").Add(float64(res.Imported))
	metrics.ImportRecords.WithLabelValues("skipped").Add(float64(res.Skipped))
	s.logger.Info("contacts imported",
		logger.Int("imported", res.Imported),
		logger.Int("skipped", res.Skipped))
	return res, nil
}

// ImportJSON reads a JSON array of contacts from r and imports it.
// A payload that is not an array is a *domain.ImportFormatError and leaves
// the collection untouched. Undecodable elements count as both invalid and
// skipped.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader) (ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, &domain.ImportFormatError{Err: fmt.Errorf("failed to read payload: %w", err)}
	}

	candidates, invalid, err := domain.ParseImport(data)
	if err != nil {
		return ImportResult{}, err
	}

	res, err := s.Import(ctx, candidates)
	if err != nil {
		return ImportResult{}, err
	}
	res.Invalid = invalid
	res.Skipped += invalid
	metrics.ImportRecords.WithLabelValues("invalid").Add(float64(invalid))
	return res, nil
}
