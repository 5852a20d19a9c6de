// Package cmd holds the repolab CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"repo-rate-lab/internal/config"
	"repo-rate-lab/internal/logger"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	// Common flags
	cfgFile   string
	verbose   bool
	outputDir string

	cfg        *config.Config
	logClosers io.Closer
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "repolab",
	Short: "Repo rate spike calculator",
	Long: `repolab derives spreads and ratios from a table of money-market rates and
flags repo rate spikes.

Commands:
    run       load rates, write is_spike.csv and the spike report
    spikes    write is_spike.csv only
    import    load a rate CSV into PostgreSQL
    show      print stored indicators of a run
    migrate   apply database migrations
    config    print configuration variables
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command and closes the log files, also when the
// command fails.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if cerr := closeLogs(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func closeLogs() error {
	if logClosers == nil {
		return nil
	}
	err := logClosers.Close()
	logClosers = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is repolab.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "output directory (overrides REPOLAB_OUTPUT_DIR)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(spikesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig loads configuration and initializes the global logger.
func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		if err := os.Setenv(config.EnvPrefix+"_CONFIG_FILE", cfgFile); err != nil {
			return err
		}
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if verbose {
		loaded.Logging.Level = "debug"
	}
	if outputDir != "" {
		loaded.OutputDir = outputDir
	}
	cfg = loaded

	closer, err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.Dir,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    "repolab",
		ServiceVersion: Version,
		Out:            cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logClosers = closer

	log.Debug().Str("command", cmd.Name()).Str("output_dir", cfg.OutputDir).Msg("Configuration loaded")
	return nil
}
