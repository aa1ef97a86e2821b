package metrics

import (
	"time"

	"mercator-hq/sweeper/pkg/config"
	"mercator-hq/sweeper/pkg/purge"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the entry point for all Prometheus metrics of sweeper.
// It is a purge.StepRecorder fed by the profiler of each run and a
// purge.Listener counting the notifications of a run.
//
// When metrics are disabled every method is a no-op.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	purgeMetrics *PurgeMetrics
}

var (
	_ purge.StepRecorder = (*Collector)(nil)
	_ purge.Listener     = (*Collector)(nil)
)

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "sweeper",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	c.purgeMetrics = NewPurgeMetrics(cfg, registry)

	return c
}

// RegisterStore adds the table row gauges of counter to the registry.
func (c *Collector) RegisterStore(counter RowCounter, tables []string) error {
	if !c.config.Enabled {
		return nil
	}
	return c.registry.Register(NewStoreCollector(c.config.Namespace, counter, tables))
}

// ObserveStep implements purge.StepRecorder.
func (c *Collector) ObserveStep(step string, elapsed time.Duration, rows int64) {
	if !c.config.Enabled {
		return
	}

	c.purgeMetrics.RecordStep(step, elapsed, rows)
}

// OnComponentDisabling implements purge.Listener.
func (c *Collector) OnComponentDisabling(string) {
	if !c.config.Enabled {
		return
	}

	c.purgeMetrics.RecordComponentDisabled()
}

// OnIssuesRemoval implements purge.Listener.
func (c *Collector) OnIssuesRemoval(_ string, issueKeys []string) {
	if !c.config.Enabled {
		return
	}

	c.purgeMetrics.RecordIssuesRemoved(len(issueKeys))
}

// RecordRun records the result of a purge run. err classifies the outcome;
// report, when non-nil, adds the snapshot counts.
//
// Example:
//
//	start := time.Now()
//	report, err := purger.Purge(ctx, policy, collector, nil)
//	collector.RecordRun(report, err, time.Since(start))
func (c *Collector) RecordRun(report *purge.Report, err error, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.purgeMetrics.RecordRun(Outcome(err), elapsed)
	if report != nil {
		c.purgeMetrics.RecordSnapshots("aborted", report.AbortedDeleted)
		c.purgeMetrics.RecordSnapshots("history", report.SnapshotsDeleted)
		c.purgeMetrics.RecordSnapshots("purged", report.SnapshotsPurged)
	}
}

// Outcome classifies a run error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case purge.IsPrecondition(err):
		return OutcomePrecondition
	default:
		return OutcomeFailure
	}
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
