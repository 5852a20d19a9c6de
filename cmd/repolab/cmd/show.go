package cmd

import (
	"github.com/spf13/cobra"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/pipeline"
	chstore "repo-rate-lab/internal/storage/clickhouse"
)

var showRunID string

// showCmd prints stored indicators.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored indicators of a run as CSV",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showRunID, "run-id", "", "run ID printed by repolab run --persist")
	_ = showCmd.MarkFlagRequired("run-id")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	conn, err := openClickhouse(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	ind, err := pipeline.LoadRun(ctx, chstore.NewSpikeIndicatorStore(conn), showRunID)
	if err != nil {
		return err
	}
	return calculator.EncodeIndicators(cmd.OutOrStdout(), ind)
}
