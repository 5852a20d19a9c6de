package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/storage"
)

type indicatorKey struct {
	runID string
	date  time.Time
}

// SpikeIndicatorStore is an in-memory implementation of storage.SpikeIndicatorStore.
type SpikeIndicatorStore struct {
	mu   sync.RWMutex
	data map[indicatorKey]*domain.SpikeIndicator
}

// NewSpikeIndicatorStore creates a new in-memory spike indicator store.
func NewSpikeIndicatorStore() *SpikeIndicatorStore {
	return &SpikeIndicatorStore{
		data: make(map[indicatorKey]*domain.SpikeIndicator),
	}
}

// InsertBulk adds the rows of a run. Fails entire batch on duplicate (run_id, date).
func (s *SpikeIndicatorStore) InsertBulk(_ context.Context, rows []*domain.SpikeIndicator) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[indicatorKey]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.RunID == "" || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := indicatorKey{r.RunID, day(r.Date)}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		rowCopy.Date = day(r.Date)
		s.data[indicatorKey{r.RunID, rowCopy.Date}] = &rowCopy
	}

	return nil
}

// GetByRun retrieves all rows of a run, ordered by date ASC.
func (s *SpikeIndicatorStore) GetByRun(_ context.Context, runID string) ([]*domain.SpikeIndicator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SpikeIndicator
	for k, r := range s.data {
		if k.runID == runID {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.SpikeIndicatorStore = (*SpikeIndicatorStore)(nil)
