package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"nburates/internal/app"
	"nburates/internal/config"
	"nburates/internal/domain"
	"nburates/internal/platform/logging"
	"nburates/internal/rate"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "v1.2.0"

type options struct {
	configPath string
	logLevel   string
	logFile    string

	output    string
	strategy  string
	workers   int
	userAgent string

	now func() time.Time
}

// Execute runs the root command bound to SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(time.Now).ExecuteContext(ctx)
}

func NewRootCmd(now func() time.Time) *cobra.Command {
	opts := &options{now: now}

	rootCmd := &cobra.Command{
		Use:   "nburates <currencies> [start_date] [end_date]",
		Short: "Export National Bank of Ukraine exchange rates to xlsx",
		Long: "Fetches official NBU exchange rates for a comma-separated list of currency codes\n" +
			"over an inclusive date range (YYYY-MM-DD, defaults to today) and saves them to\n" +
			"rates_<currencies>_<start>_<end>.xlsx.",
		Version:       Version,
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config.yml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Append logs to this file instead of stdout")

	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file or directory (default: ./<base name>.xlsx)")
	rootCmd.Flags().StringVar(&opts.strategy, "strategy", "", "Fetch strategy: daily or range")
	rootCmd.Flags().IntVar(&opts.workers, "workers", 0, "Parallel lookups for the daily strategy")
	rootCmd.Flags().StringVar(&opts.userAgent, "user-agent", "", "User-Agent header sent to the NBU API")

	rootCmd.AddCommand(serveCmd(opts), scheduleCmd(opts))
	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, opts *options) (*config.AppConfig, *logrus.Logger, func(), error) {
	cfg, err := config.Init(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if flags.Changed("strategy") {
		cfg.NBU.Strategy = strings.ToLower(strings.TrimSpace(opts.strategy))
	}
	if flags.Changed("workers") {
		cfg.NBU.Workers = opts.workers
	}
	if flags.Changed("user-agent") {
		cfg.NBU.UserAgent = opts.userAgent
	}
	if err = cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, func() { _ = closer.Close() }, nil
}

func runExport(cmd *cobra.Command, opts *options, args []string) error {
	codes, err := rate.ParseCurrencies(args[0])
	if err != nil {
		return err
	}

	today := opts.now().Format(domain.DateLayout)
	start, end := today, today
	if len(args) > 1 {
		start = args[1]
	}
	if len(args) > 2 {
		end = args[2]
	}
	q, err := domain.NewRateQuery(codes, start, end)
	if err != nil {
		return err
	}

	cfg, log, cleanup, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	table, err := a.Service.Fetch(cmd.Context(), q)
	if err != nil {
		return err
	}

	path, err := outputPath(opts.output, q)
	if err != nil {
		return err
	}
	ok, err := a.Service.Export(table, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: could not write %s", domain.ErrExportFailure, path)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// outputPath resolves --output: empty means the base name in the working directory, an
// existing directory gets the base name appended.
func outputPath(output string, q domain.RateQuery) (string, error) {
	if output == "" {
		return q.FileName(), nil
	}
	info, err := os.Stat(output)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(output, q.FileName()), nil
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return output, nil
	}
	return "", fmt.Errorf("%w: output %q: %w", domain.ErrInvalidInput, output, err)
}
