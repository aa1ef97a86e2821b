// Package metrics provides Prometheus metrics for sweeper.
//
// # Overview
//
// The collector exports:
//   - Step metrics: duration and affected rows of every purge step
//   - Run metrics: run count by outcome, run duration, disabled components
//     and removed issues
//   - Store metrics: row count of each analysis table, read on scrape
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// Step metrics are fed by the purge profiler
//	purger := retention.NewPurger(store, retention.WithStepRecorder(collector))
//
//	// Run metrics
//	report, err := purger.Purge(ctx, policy, collector, nil)
//	collector.RecordRun(report, err, time.Since(start))
//
//	// Expose
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// All metric names are prefixed with the configured namespace, for instance
// sweeper_purge_step_duration_seconds.
package metrics
