package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// InsertBulk adds multiple observations atomically. Fails entire batch on duplicate (series_id, date).
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []*domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	for _, o := range obs {
		if o == nil || o.SeriesID == "" || o.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO rate_observations (series_id, obs_date, value)
		VALUES ($1, $2, $3)
	`

	for _, o := range obs {
		_, err := tx.Exec(ctx, query, o.SeriesID, dateOnly(o.Date), o.Value)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert observation in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySeries retrieves all observations of a series, ordered by date ASC.
func (s *ObservationStore) GetBySeries(ctx context.Context, seriesID string) ([]*domain.Observation, error) {
	query := `
		SELECT series_id, obs_date, value
		FROM rate_observations
		WHERE series_id = $1
		ORDER BY obs_date ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("get observations by series: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByDateRange retrieves observations within [start, end] (inclusive).
func (s *ObservationStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Observation, error) {
	query := `
		SELECT series_id, obs_date, value
		FROM rate_observations
		WHERE obs_date >= $1 AND obs_date <= $2
		ORDER BY obs_date ASC, series_id ASC
	`

	rows, err := s.pool.Query(ctx, query, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("get observations by date range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// scanObservations scans multiple rows into a slice of Observation.
func scanObservations(rows pgx.Rows) ([]*domain.Observation, error) {
	var obs []*domain.Observation

	for rows.Next() {
		var o domain.Observation

		if err := rows.Scan(&o.SeriesID, &o.Date, &o.Value); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}

		o.Date = dateOnly(o.Date)
		obs = append(obs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}

	return obs, nil
}

// dateOnly truncates t to midnight UTC, matching the DATE column.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
