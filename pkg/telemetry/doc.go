// Package telemetry groups the observability of the purge engine.
//
// # Components
//
//   - logging: structured slog logging carrying run and root identifiers
//   - metrics: Prometheus step, run and table-size metrics
//   - tracing: OpenTelemetry spans around purge runs and phases
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, _ := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(ctx)
//
//	purger := retention.NewPurger(store,
//		retention.WithLogger(logger),
//		retention.WithStepRecorder(collector),
//		retention.WithTracerProvider(tracer.Provider()),
//	)
//
// Every component is a no-op when disabled in the configuration.
package telemetry
