package storage

import (
	"context"
	"time"

	"repo-rate-lab/internal/domain"
)

// ObservationStore provides access to rate_observations storage.
type ObservationStore interface {
	// InsertBulk adds multiple observations atomically. Fails entire batch on duplicate (series_id, date).
	InsertBulk(ctx context.Context, obs []*domain.Observation) error

	// GetBySeries retrieves all observations of a series, ordered by date ASC.
	GetBySeries(ctx context.Context, seriesID string) ([]*domain.Observation, error)

	// GetByDateRange retrieves observations of all series within [start, end] (inclusive),
	// ordered by date ASC, then series_id ASC.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Observation, error)
}

// SpikeIndicatorStore provides access to spike_indicators storage.
type SpikeIndicatorStore interface {
	// InsertBulk adds the indicator rows of a run. Fails entire batch on duplicate (run_id, date).
	InsertBulk(ctx context.Context, rows []*domain.SpikeIndicator) error

	// GetByRun retrieves all rows of a run, ordered by date ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.SpikeIndicator, error)
}
