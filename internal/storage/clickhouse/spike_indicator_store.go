package clickhouse

import (
	"context"
	"fmt"
	"time"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/storage"
)

// SpikeIndicatorStore implements storage.SpikeIndicatorStore using ClickHouse.
type SpikeIndicatorStore struct {
	conn *Conn
}

// NewSpikeIndicatorStore creates a new SpikeIndicatorStore.
func NewSpikeIndicatorStore(conn *Conn) *SpikeIndicatorStore {
	return &SpikeIndicatorStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SpikeIndicatorStore = (*SpikeIndicatorStore)(nil)

// InsertBulk adds the rows of a run. Fails entire batch on duplicate (run_id, date).
// MergeTree does not enforce uniqueness, so keys are checked before the batch is sent.
func (s *SpikeIndicatorStore) InsertBulk(ctx context.Context, rows []*domain.SpikeIndicator) error {
	if len(rows) == 0 {
		return nil
	}

	type key struct {
		runID string
		date  time.Time
	}
	seen := make(map[key]struct{}, len(rows))
	runs := make(map[string]struct{})
	for _, r := range rows {
		if r == nil || r.RunID == "" || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{r.RunID, dateOnly(r.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		runs[r.RunID] = struct{}{}
	}

	// Check for duplicates against existing rows, one query per run
	for runID := range runs {
		existing, err := s.dates(ctx, runID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, d := range existing {
			if _, dup := seen[key{runID, d}]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO spike_indicators (
			run_id, obs_date, sofr_above_fed_upper, sofr_2std_above_iorb,
			sofr_above_iorb, tri_party_above_upper
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.RunID, dateOnly(r.Date),
			r.SOFRAboveFedUpper, r.SOFR2StdAboveIORB,
			r.SOFRAboveIORB, r.TriPartyAboveUpper,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves all rows of a run, ordered by date ASC.
func (s *SpikeIndicatorStore) GetByRun(ctx context.Context, runID string) ([]*domain.SpikeIndicator, error) {
	query := `
		SELECT run_id, obs_date, sofr_above_fed_upper, sofr_2std_above_iorb,
			sofr_above_iorb, tri_party_above_upper
		FROM spike_indicators
		WHERE run_id = ?
		ORDER BY obs_date ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanSpikeIndicators(rows)
}

// dates returns the dates already stored for a run.
func (s *SpikeIndicatorStore) dates(ctx context.Context, runID string) ([]time.Time, error) {
	rows, err := s.conn.Query(ctx, `SELECT obs_date FROM spike_indicators WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, dateOnly(d))
	}
	return out, rows.Err()
}

// scanSpikeIndicators scans multiple rows.
func scanSpikeIndicators(rows chRows) ([]*domain.SpikeIndicator, error) {
	var out []*domain.SpikeIndicator

	for rows.Next() {
		var r domain.SpikeIndicator

		err := rows.Scan(
			&r.RunID, &r.Date,
			&r.SOFRAboveFedUpper, &r.SOFR2StdAboveIORB,
			&r.SOFRAboveIORB, &r.TriPartyAboveUpper,
		)
		if err != nil {
			return nil, fmt.Errorf("scan spike indicator row: %w", err)
		}

		r.Date = dateOnly(r.Date)
		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spike indicator rows: %w", err)
	}

	return out, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
