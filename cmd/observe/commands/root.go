package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/observe/pkg/telemetry"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "observe",
		Short: "Observe - event telemetry adapter",
		Long: `Observe forwards an application's event invocations to an external
error/performance-tracking backend as nested transactions and spans,
with breadcrumbs, structured logs, probabilistic sampling, and failure
isolation.

Configuration comes from flags, an optional YAML file, and the
environment (SENTRY_DNS, SENTRY_SAMPLE_RATE).`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newDemoCommand())

	return rootCmd
}

// loadConfig builds the adapter config from the file flag, the environment,
// and the verbosity flag.
func loadConfig() (*telemetry.Config, error) {
	cfg := telemetry.DefaultConfig()
	if configPath != "" {
		loaded, err := telemetry.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
