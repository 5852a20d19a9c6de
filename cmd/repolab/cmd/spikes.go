package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"repo-rate-lab/internal/calculator"
	"repo-rate-lab/internal/loader"
)

var spikesInput string

// spikesCmd writes is_spike.csv without the report.
var spikesCmd = &cobra.Command{
	Use:   "spikes",
	Short: "Write is_spike.csv from a rate CSV",
	Long: `Reads the rate CSV, derives the spike indicators and writes is_spike.csv to
the output directory. The start date is not applied.`,
	RunE: runSpikes,
}

func init() {
	spikesCmd.Flags().StringVar(&spikesInput, "input", "", "input CSV path (overrides config)")
}

func runSpikes(cmd *cobra.Command, args []string) error {
	path := spikesInput
	if path == "" {
		path = cfg.InputPath()
	}

	t, err := loader.LoadCSV(path)
	if err != nil {
		return err
	}

	res, err := calculator.New(calculator.Config{OutputDir: cfg.OutputDir}).Run(t)
	if err != nil {
		return err
	}

	log.Info().
		Str("input", path).
		Int("rows", res.Indicators.Len()).
		Float64("threshold", res.Indicators.Threshold).
		Msg("Indicators written")
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}
