package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"repo-rate-lab/internal/observability"
	"repo-rate-lab/internal/pipeline"
	pgstore "repo-rate-lab/internal/storage/postgres"
)

var importInput string

// importCmd loads a rate CSV into PostgreSQL.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a rate CSV into PostgreSQL",
	Long: `Stores every non-missing cell of the rate CSV in rate_observations. The
import is rejected as a whole if any (series, date) pair already exists.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importInput, "input", "", "input CSV path (overrides config)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := importInput
	if path == "" {
		path = cfg.InputPath()
	}

	pool, err := openPostgres(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	metrics := observability.NewMetrics("repolab")
	n, err := pipeline.ImportCSV(ctx, path, pgstore.NewObservationStore(pool), backendPostgres, metrics)
	if err != nil {
		return err
	}
	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d observations from %s\n", n, path)
	return nil
}
