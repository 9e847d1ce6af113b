package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfroyo/observe/pkg/event"
	"github.com/openfroyo/observe/pkg/telemetry"
)

func newDemoCommand() *cobra.Command {
	var failNested bool
	var stdout bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a nested demo trace against the configured exporter",
		Long: `Runs a three-level nested event trace (root -> child -> grandchild)
through the adapter and prints the resulting breadcrumb trail. With
--stdout the trace is printed instead of shipped, so no DSN is needed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if stdout {
				cfg.Exporter = "stdout"
			}

			tel, err := telemetry.Init(cfg)
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			dispatcher := event.NewDispatcher()
			tel.Attach(dispatcher)

			err = dispatcher.Run(cmd.Context(), "demo.request", func(ctx context.Context) error {
				return dispatcher.Run(ctx, "demo.query", func(ctx context.Context) error {
					return dispatcher.Run(ctx, "demo.render", func(ctx context.Context) error {
						time.Sleep(10 * time.Millisecond)
						if failNested {
							return fmt.Errorf("simulated render failure")
						}
						return nil
					})
				})
			})
			if err != nil && !failNested {
				return err
			}

			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tel.Flush(flushCtx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "breadcrumb trail:")
			for _, crumb := range tel.Breadcrumbs() {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s\n", crumb.Level, crumb.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failNested, "fail", false, "make the innermost event fail")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the trace instead of exporting it")

	return cmd
}
