package cli

import (
	"nburates/internal/app"
	"time"

	"github.com/spf13/cobra"
)

func scheduleCmd(opts *options) *cobra.Command {
	var (
		every     time.Duration
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "schedule [currencies]",
		Short: "Export today's rates periodically",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, cleanup, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				cfg.Scheduler.Currencies = []string{args[0]}
			}
			if cmd.Flags().Changed("every") {
				cfg.Scheduler.IntervalSeconds = int(every / time.Second)
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Scheduler.OutputDir = outputDir
			}

			a, err := app.New(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Schedule(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&every, "every", 24*time.Hour, "Export interval")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for exported files (default from config)")
	return cmd
}
