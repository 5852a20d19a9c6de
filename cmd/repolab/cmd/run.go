package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/observability"
	"repo-rate-lab/internal/pipeline"
	chstore "repo-rate-lab/internal/storage/clickhouse"
	"repo-rate-lab/internal/storage/memory"
	pgstore "repo-rate-lab/internal/storage/postgres"
)

// Input sources for the run command.
const (
	sourceCSV      = "csv"
	sourcePostgres = "postgres"
	sourceFixtures = "fixtures"
)

var (
	runSource    string
	runInput     string
	runStartDate string
	runPersist   bool
)

// runCmd runs the full pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute indicators and write the spike report",
	Long: `Loads the rate table, derives spreads and ratios, writes is_spike.csv and the
spike report (REPORT_REPO_SPIKES.md, rate_summary.csv, repo_spikes.xlsx).

Examples:
  repolab run                              # CSV from REPOLAB_DATA_DIR/REPOLAB_INPUT_FILE
  repolab run --source postgres --persist  # observations from PostgreSQL, indicators to ClickHouse
  repolab run --source fixtures            # built-in September 2019 sample`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runSource, "source", sourceCSV, "input source: csv, postgres or fixtures")
	runCmd.Flags().StringVar(&runInput, "input", "", "input CSV path (overrides config)")
	runCmd.Flags().StringVar(&runStartDate, "start-date", "", "first date kept, YYYY-MM-DD (overrides config)")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "store indicators in ClickHouse")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runStartDate != "" {
		cfg.StartDate = runStartDate
	}
	start, err := cfg.Start()
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics("repolab")
	p := pipeline.NewPipeline(cfg.OutputDir).
		WithStartDate(start).
		WithMetrics(metrics, cfg.MetricsTextfile).
		WithCommand(reproduceCommand(cmd))

	switch runSource {
	case sourceCSV:
		p = p.WithCSVSource(inputPath())
	case sourcePostgres:
		pool, err := openPostgres(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		p = p.WithObservationStore(pgstore.NewObservationStore(pool), backendPostgres)
	case sourceFixtures:
		store := memory.NewObservationStore()
		if err := pipeline.LoadFixtures(ctx, store); err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		p = p.WithObservationStore(store, "memory")
	default:
		return fmt.Errorf("unknown source %q (want %s, %s or %s)", runSource, sourceCSV, sourcePostgres, sourceFixtures)
	}

	if runPersist {
		conn, err := openClickhouse(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()
		p = p.WithSpikeIndicatorStore(chstore.NewSpikeIndicatorStore(conn), backendClickhouse)
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	printRunSummary(cmd.OutOrStdout(), res)
	return nil
}

func inputPath() string {
	if runInput != "" {
		return runInput
	}
	return cfg.InputPath()
}

// reproduceCommand returns the command line recorded in the report.
func reproduceCommand(cmd *cobra.Command) string {
	parts := []string{"repolab", cmd.Name(), "--source", runSource}
	if runSource == sourceCSV {
		parts = append(parts, "--input", inputPath())
	}
	if cfg.StartDate != "" {
		parts = append(parts, "--start-date", cfg.StartDate)
	}
	return strings.Join(parts, " ")
}

func printRunSummary(w io.Writer, res *pipeline.Result) {
	r := res.Report
	fmt.Fprintf(w, "Run %s: %d rows", res.RunID, r.RowCount)
	if r.RowCount > 0 {
		fmt.Fprintf(w, " (%s to %s)", r.SampleStart.Format(domain.DateLayout), r.SampleEnd.Format(domain.DateLayout))
	}
	fmt.Fprintln(w)

	for _, ind := range r.Indicators {
		fmt.Fprintf(w, "  %-26s %d days\n", ind.Column, ind.Count)
	}
	if res.Sufficiency != nil && !res.Sufficiency.AllPass {
		fmt.Fprintln(w, "  WARNING: data sufficiency checks failed, see report")
	}
	if res.Persisted > 0 {
		fmt.Fprintf(w, "  stored %d indicator rows\n", res.Persisted)
	}

	fmt.Fprintln(w, "Files:")
	for _, f := range res.Files {
		fmt.Fprintf(w, "  - %s\n", f)
	}
}
