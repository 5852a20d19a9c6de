package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/loader"
	"repo-rate-lab/internal/observability"
	"repo-rate-lab/internal/storage"
)

// ImportCSV loads a wide rate CSV and stores its non-missing cells as
// observations. The whole file is rejected if any (series, date) already exists.
// Returns the number of observations stored. m may be nil; backend labels its
// database metrics.
func ImportCSV(ctx context.Context, path string, store storage.ObservationStore, backend string, m *observability.Metrics) (int, error) {
	t, err := loader.LoadCSV(path)
	if err != nil {
		return 0, err
	}

	obs := loader.ToObservations(t)
	if len(obs) == 0 {
		log.Warn().Str("path", path).Msg("No observations to import")
		return 0, nil
	}

	start := time.Now()
	err = store.InsertBulk(ctx, obs)
	if m != nil {
		m.RecordDBQuery(backend, "insert_observations", time.Since(start), err)
	}
	if err != nil {
		return 0, fmt.Errorf("store observations: %w", err)
	}
	if m != nil {
		m.RecordRowsStored(observationsTable, len(obs))
	}

	log.Info().
		Str("path", path).
		Int("rows", t.Len()).
		Int("series", len(t.Names())).
		Int("observations", len(obs)).
		Msg("Imported rates")
	return len(obs), nil
}

// LoadRun reads the stored indicators of a run. Returns storage.ErrNotFound
// when the run has no rows.
func LoadRun(ctx context.Context, store storage.SpikeIndicatorStore, runID string) (*calculator.Indicators, error) {
	rows, err := store.GetByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, storage.ErrNotFound)
	}
	return calculator.FromRows(rows), nil
}
