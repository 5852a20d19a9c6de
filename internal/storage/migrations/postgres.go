package migrations

import (
	"context"
	"fmt"

	"repo-rate-lab/internal/storage/postgres"
)

// RunPostgresMigrations creates rate_observations. Each file runs as one
// multi-statement Exec and uses IF NOT EXISTS, so repeated runs are no-ops.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
