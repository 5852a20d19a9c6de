package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/storage"
)

type observationKey struct {
	seriesID string
	date     time.Time
}

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[observationKey]*domain.Observation
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[observationKey]*domain.Observation),
	}
}

// InsertBulk adds multiple observations. Fails entire batch on duplicate.
func (s *ObservationStore) InsertBulk(_ context.Context, obs []*domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[observationKey]struct{}, len(obs))

	// First pass: validate and check duplicates (existing + intra-batch)
	for _, o := range obs {
		if o == nil || o.SeriesID == "" || o.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := observationKey{o.SeriesID, day(o.Date)}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range obs {
		s.data[observationKey{o.SeriesID, day(o.Date)}] = copyObservation(o)
	}

	return nil
}

// GetBySeries retrieves all observations of a series, ordered by date ASC.
func (s *ObservationStore) GetBySeries(_ context.Context, seriesID string) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for k, o := range s.data {
		if k.seriesID == seriesID {
			result = append(result, copyObservation(o))
		}
	}
	sortObservations(result)

	return result, nil
}

// GetByDateRange retrieves observations within [start, end] (inclusive).
func (s *ObservationStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.Observation, error) {
	start, end = day(start), day(end)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for k, o := range s.data {
		if !k.date.Before(start) && !k.date.After(end) {
			result = append(result, copyObservation(o))
		}
	}
	sortObservations(result)

	return result, nil
}

func copyObservation(o *domain.Observation) *domain.Observation {
	c := *o
	c.Date = day(o.Date)
	if o.Value != nil {
		v := *o.Value
		c.Value = &v
	}
	return &c
}

func sortObservations(obs []*domain.Observation) {
	sort.Slice(obs, func(i, j int) bool {
		if !obs[i].Date.Equal(obs[j].Date) {
			return obs[i].Date.Before(obs[j].Date)
		}
		return obs[i].SeriesID < obs[j].SeriesID
	})
}

// day truncates t to midnight UTC.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ storage.ObservationStore = (*ObservationStore)(nil)
