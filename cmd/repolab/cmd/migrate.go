package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"repo-rate-lab/internal/storage/migrations"
)

// migrateCmd applies the embedded migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Creates rate_observations in PostgreSQL and spike_indicators in ClickHouse.
Each database is migrated only when its DSN is configured.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.PostgresDSN == "" && cfg.ClickhouseDSN == "" {
		return fmt.Errorf("neither POSTGRES_DSN nor CLICKHOUSE_DSN is configured")
	}

	if cfg.PostgresDSN != "" {
		pool, err := openPostgres(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}
		log.Info().Msg("PostgreSQL migrations applied")
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		log.Info().Msg("ClickHouse migrations applied")
	}

	return nil
}
