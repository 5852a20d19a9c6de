package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"repo-rate-lab/internal/config"
)

// configCmd prints configuration help.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print supported environment variables and the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := config.Usage(out); err != nil {
			return err
		}

		shown := *cfg
		shown.PostgresDSN = mask(shown.PostgresDSN)
		shown.ClickhouseDSN = mask(shown.ClickhouseDSN)

		data, err := yaml.Marshal(shown)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintf(out, "\nEffective configuration:\n\n%s", data)
		return nil
	},
}

// mask hides connection strings, which may carry passwords.
func mask(dsn string) string {
	if dsn == "" {
		return ""
	}
	return "****"
}
