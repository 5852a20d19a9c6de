package cmd

import (
	"context"
	"fmt"

	"repo-rate-lab/internal/config"
	chstore "repo-rate-lab/internal/storage/clickhouse"
	pgstore "repo-rate-lab/internal/storage/postgres"
)

// Backend labels for database metrics.
const (
	backendPostgres   = "postgres"
	backendClickhouse = "clickhouse"
)

// openPostgres connects to the configured PostgreSQL database.
func openPostgres(ctx context.Context) (*pgstore.Pool, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("%s_POSTGRES_DSN is not set", config.EnvPrefix)
	}
	return pgstore.NewPool(ctx, cfg.PostgresDSN)
}

// openClickhouse connects to the configured ClickHouse database.
func openClickhouse(ctx context.Context) (*chstore.Conn, error) {
	if cfg.ClickhouseDSN == "" {
		return nil, fmt.Errorf("%s_CLICKHOUSE_DSN is not set", config.EnvPrefix)
	}
	return chstore.NewConn(ctx, cfg.ClickhouseDSN)
}
