package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/sweeper/pkg/cli"
	"mercator-hq/sweeper/pkg/config"
	"mercator-hq/sweeper/pkg/purge/retention"
	"mercator-hq/sweeper/pkg/purge/storage"
	"mercator-hq/sweeper/pkg/telemetry/logging"
	"mercator-hq/sweeper/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	outputFmt string
)

// skipSetup marks commands that run without configuration.
const skipSetup = "skip-setup"

// env holds what the root command prepared for the subcommands.
var env struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer *tracing.Tracer
	output cli.OutputFormat
}

var rootCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Sweeper - retention purges for code-analysis databases",
	Long: `Sweeper applies data-retention policies to a code-analysis database.

For every root project it:
  - deletes the snapshots of aborted analyses
  - drops file and directory history of past analyses
  - soft-purges past analyses, keeping their summary measures
  - disables components that are no longer part of the project
  - deletes closed issues older than the retention period

Configuration is read from --config (YAML) and SWEEPER_* environment
variables. Without --config the defaults and environment apply.`,
	Version:            Version,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command and exits with a code derived from its error.
func Execute() {
	ctx, stop := cli.SetupSignalHandler()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json, csv)")
}

func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	output, err := cli.ParseOutputFormat(outputFmt)
	if err != nil {
		return err
	}
	env.output = output

	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("config", err.Error())
	}
	cfg := config.GetConfig()
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	env.cfg = cfg

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	env.logger = logger

	tracing.Version = Version
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	env.tracer = tracer

	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if env.tracer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.tracer.Shutdown(ctx); err != nil {
		env.logger.Warn("failed to flush traces", "error", err)
	}
	return nil
}

// openStore opens the analysis database described by the configuration.
func openStore(cfg *config.StorageConfig) (*storage.SQLiteStore, error) {
	return storage.NewSQLiteStore(&storage.SQLiteConfig{
		Driver:        cfg.Driver,
		Path:          cfg.Path,
		MaxOpenConns:  cfg.MaxOpenConns,
		MaxIdleConns:  cfg.MaxIdleConns,
		WALMode:       cfg.WALMode,
		BusyTimeout:   cfg.BusyTimeout,
		MaxParameters: cfg.MaxParameters,
	})
}

// newPurger creates a purger logging and tracing through the root setup.
func newPurger(store *storage.SQLiteStore, opts ...retention.Option) *retention.Purger {
	opts = append([]retention.Option{
		retention.WithLogger(env.logger),
		retention.WithTracerProvider(env.tracer.Provider()),
	}, opts...)
	return retention.NewPurger(store, opts...)
}

// render prints a command result in the selected format.
func render(cmd *cobra.Command, data any) error {
	return cli.NewFormatter(env.output).FormatTo(cmd.OutOrStdout(), data)
}
