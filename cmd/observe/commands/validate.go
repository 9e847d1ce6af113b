package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/observe/pkg/telemetry"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the adapter configuration without sending anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.LoadEnv(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			endpoint, project := "(none)", "(none)"
			if cfg.DSN != "" {
				dsn, err := telemetry.ParseDSN(cfg.DSN)
				if err != nil {
					return err
				}
				endpoint, project = dsn.Endpoint(), dsn.Project
			}

			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK\n")
			fmt.Fprintf(cmd.OutOrStdout(), "  endpoint:    %s\n", endpoint)
			fmt.Fprintf(cmd.OutOrStdout(), "  project:     %s\n", project)
			fmt.Fprintf(cmd.OutOrStdout(), "  sample rate: %g\n", cfg.EffectiveSampleRate())
			fmt.Fprintf(cmd.OutOrStdout(), "  exporter:    %s\n", cfg.Exporter)
			return nil
		},
	}
}
