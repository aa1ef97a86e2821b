package metrics

import (
	"time"

	"mercator-hq/sweeper/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

const purgeSubsystem = "purge"

// Run outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomePrecondition = "precondition"
)

// PurgeMetrics tracks purge runs and their steps.
//
// Metrics:
//   - sweeper_purge_step_duration_seconds: Duration of each step execution
//   - sweeper_purge_step_rows_total: Rows affected by each step
//   - sweeper_purge_runs_total: Runs by outcome
//   - sweeper_purge_run_duration_seconds: Duration of successful runs
//   - sweeper_purge_snapshots_total: Snapshots deleted or purged by kind
//   - sweeper_purge_components_disabled_total: Components disabled
//   - sweeper_purge_issues_removed_total: Closed issues removed
type PurgeMetrics struct {
	stepDuration       *prometheus.HistogramVec
	stepRows           *prometheus.CounterVec
	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Histogram
	snapshotsTotal     *prometheus.CounterVec
	componentsDisabled prometheus.Counter
	issuesRemoved      prometheus.Counter
}

// NewPurgeMetrics creates and registers purge metrics with the provided registry.
func NewPurgeMetrics(cfg *config.MetricsConfig, registry prometheus.Registerer) *PurgeMetrics {
	pm := &PurgeMetrics{
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: purgeSubsystem,
				Name:      "step_duration_seconds",
				Help:      "Duration of purge step executions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms to ~2min
			},
			[]string{"step"},
		),

		stepRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: purgeSubsystem,
				Name:      "step_rows_total",
				Help:      "Total number of rows affected by purge steps",
			},
			[]string{"step"},
		),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: purgeSubsystem,
				Name:      "runs_total",
				Help:      "Total number of purge runs by outcome",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: purgeSubsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of successful purge runs in seconds",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
			},
		),

		snapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: purgeSubsystem,
				Name:      "snapshots_total",
				Help:      "Total number of snapshots removed by purge runs, by kind",
			},
			[]string{"kind"},
		),

		componentsDisabled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: purgeSubsystem,
				Name:      "components_disabled_total",
				Help:      "Total number of components disabled by purge runs",
			},
		),

		issuesRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: purgeSubsystem,
				Name:      "issues_removed_total",
				Help:      "Total number of closed issues removed by purge runs",
			},
		),
	}

	registry.MustRegister(
		pm.stepDuration,
		pm.stepRows,
		pm.runsTotal,
		pm.runDuration,
		pm.snapshotsTotal,
		pm.componentsDisabled,
		pm.issuesRemoved,
	)

	return pm
}

// RecordStep records one execution of a purge step.
func (pm *PurgeMetrics) RecordStep(step string, elapsed time.Duration, rows int64) {
	pm.stepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
	if rows > 0 {
		pm.stepRows.WithLabelValues(step).Add(float64(rows))
	}
}

// RecordRun records the outcome of a run.
func (pm *PurgeMetrics) RecordRun(outcome string, elapsed time.Duration) {
	pm.runsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		pm.runDuration.Observe(elapsed.Seconds())
	}
}

// RecordSnapshots adds removed snapshots of one kind
// ("aborted", "history", "purged").
func (pm *PurgeMetrics) RecordSnapshots(kind string, n int64) {
	if n > 0 {
		pm.snapshotsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordComponentDisabled counts one disabled component.
func (pm *PurgeMetrics) RecordComponentDisabled() {
	pm.componentsDisabled.Inc()
}

// RecordIssuesRemoved adds removed issues.
func (pm *PurgeMetrics) RecordIssuesRemoved(n int) {
	if n > 0 {
		pm.issuesRemoved.Add(float64(n))
	}
}
