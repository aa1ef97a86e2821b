// Package tracing configures OpenTelemetry tracing for sweeper.
//
// # Overview
//
// Purge runs and project deletions open a "purge.run" or
// "purge.delete_project" span with one child span per phase. When tracing
// is enabled the spans are exported over OTLP/gRPC; otherwise a no-op
// provider keeps the overhead negligible.
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample every run
//   - never: Sample nothing
//   - ratio: Sample a fraction of runs
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	purger := retention.NewPurger(store, retention.WithTracerProvider(tracer.Provider()))
package tracing
