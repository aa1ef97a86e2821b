package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/sweeper/pkg/cli"
	"mercator-hq/sweeper/pkg/config"
	"mercator-hq/sweeper/pkg/purge"
	"mercator-hq/sweeper/pkg/purge/retention"
	"mercator-hq/sweeper/pkg/purge/storage"
	"mercator-hq/sweeper/pkg/telemetry/metrics"
)

// metricsShutdownTimeout bounds the graceful stop of the metrics server.
const metricsShutdownTimeout = 5 * time.Second

var scheduleFlags struct {
	runNow bool
	watch  bool
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Purge the configured roots on the retention schedule",
	Long: `Run in the foreground and purge the configured roots on the cron
schedule of retention.schedule. Failed purges are retried with exponential
backoff. Prometheus metrics are served on telemetry.metrics.listen_address.

The configuration is reloaded when the file changes (with --watch) or on
SIGHUP. Stop with Ctrl+C.

Example:
  sweeper schedule --config sweeper.yaml --run-now`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&scheduleFlags.runNow, "run-now", false, "purge every root once before waiting for the schedule")
	scheduleCmd.Flags().BoolVar(&scheduleFlags.watch, "watch", true, "reload the configuration file when it changes")
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := env.cfg
	logger := env.logger

	store, err := openStore(&cfg.Storage)
	if err != nil {
		return cli.NewCommandError("schedule", err)
	}
	defer store.Close()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	if err := collector.RegisterStore(store, storage.Tables()); err != nil {
		return cli.NewCommandError("schedule", err)
	}

	purger := newPurger(store, retention.WithStepRecorder(collector))
	listener := purge.MultiListener{purge.NewLogListener(logger), collector}
	scheduler := retention.NewScheduler(purger, &cfg.Retention, listener, retention.WithRunObserver(collector))

	var srv *http.Server
	errChan := make(chan error, 1)
	if cfg.Telemetry.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		srv = &http.Server{
			Addr:              cfg.Telemetry.Metrics.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("starting metrics server", "address", srv.Addr, "path", cfg.Telemetry.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("schedule", err)
	}
	defer scheduler.Stop()

	if next := scheduler.NextRun(); next != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Next purge at %s\n", next.Format(time.RFC3339))
	}

	if scheduleFlags.runNow {
		reportResults(scheduler.RunOnce(ctx))
	}

	update := func(next *config.Config) {
		if err := scheduler.Update(ctx, &next.Retention); err != nil {
			logger.Error("failed to apply reloaded retention settings", "error", err)
		}
	}

	if scheduleFlags.watch && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, logger)
		if err != nil {
			return cli.NewCommandError("schedule", err)
		}
		defer watcher.Close()
		go func() {
			if err := watcher.Watch(ctx, update); err != nil {
				logger.Error("configuration watcher failed", "error", err)
			}
		}()
	}

	hup, stopHup := cli.ReloadSignals()
	defer stopHup()

	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	for {
		select {
		case err := <-errChan:
			return cli.NewCommandError("schedule", err)

		case <-hup:
			if cfgFile == "" {
				logger.Warn("SIGHUP ignored, no configuration file")
				continue
			}
			next, err := config.ReloadConfig(cfgFile)
			if err != nil {
				logger.Error("configuration reload failed", "error", err)
				continue
			}
			update(next)

		case <-ctx.Done():
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("metrics server shutdown failed", "error", err)
				}
			}
			return nil
		}
	}
}

// reportResults logs the outcome of an immediate run.
func reportResults(results []retention.RunResult) {
	for _, r := range results {
		if r.Err != nil {
			env.logger.Error("purge failed", "root_uuid", r.RootUUID, "attempts", r.Attempts, "error", r.Err)
			continue
		}
		env.logger.Info("purge completed",
			"root_uuid", r.RootUUID,
			"attempts", r.Attempts,
			"snapshots_deleted", r.Report.SnapshotsDeleted,
			"snapshots_purged", r.Report.SnapshotsPurged,
			"issues_removed", r.Report.IssuesRemoved,
		)
	}
}
