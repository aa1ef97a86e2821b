package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/sweeper/pkg/config"
	"mercator-hq/sweeper/pkg/purge"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_DefaultNamespace(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
}

func TestCollector_ObserveStep(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.ObserveStep("delete_snapshots", 3*time.Millisecond, 10)
	collector.ObserveStep("delete_snapshots", 5*time.Millisecond, 4)
	collector.ObserveStep("update_purge_status", time.Millisecond, 0)

	rows := testutil.ToFloat64(collector.purgeMetrics.stepRows.WithLabelValues("delete_snapshots"))
	if rows != 14 {
		t.Errorf("step rows = %v, want 14", rows)
	}

	if n := testutil.CollectAndCount(collector.purgeMetrics.stepDuration); n != 2 {
		t.Errorf("step duration series = %d, want 2", n)
	}
}

func TestCollector_Listener(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	var listener purge.Listener = collector
	listener.OnComponentDisabling("c1")
	listener.OnComponentDisabling("c2")
	listener.OnIssuesRemoval("root", []string{"i1", "i2", "i3"})
	listener.OnIssuesRemoval("root", nil)

	if got := testutil.ToFloat64(collector.purgeMetrics.componentsDisabled); got != 2 {
		t.Errorf("components disabled = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.purgeMetrics.issuesRemoved); got != 3 {
		t.Errorf("issues removed = %v, want 3", got)
	}
}

func TestCollector_RecordRun(t *testing.T) {
	tests := []struct {
		name    string
		report  *purge.Report
		err     error
		outcome string
	}{
		{
			name:    "success",
			report:  &purge.Report{AbortedDeleted: 1, SnapshotsDeleted: 2, SnapshotsPurged: 3},
			outcome: OutcomeSuccess,
		},
		{
			name:    "precondition",
			err:     purge.NewRunError("root", "load_tree", purge.NewPreconditionError("purge", purge.ErrRootNotFound)),
			outcome: OutcomePrecondition,
		},
		{
			name:    "failure",
			err:     purge.NewRunError("root", "commit", errors.New("disk full")),
			outcome: OutcomeFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := NewCollector(testConfig(), nil)
			collector.RecordRun(tt.report, tt.err, time.Second)

			if got := testutil.ToFloat64(collector.purgeMetrics.runsTotal.WithLabelValues(tt.outcome)); got != 1 {
				t.Errorf("runs{outcome=%s} = %v, want 1", tt.outcome, got)
			}
			if tt.report != nil {
				if got := testutil.ToFloat64(collector.purgeMetrics.snapshotsTotal.WithLabelValues("purged")); got != 3 {
					t.Errorf("purged snapshots = %v, want 3", got)
				}
			}
		})
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.ObserveStep("delete_snapshots", time.Millisecond, 5)
	collector.OnComponentDisabling("c1")
	collector.OnIssuesRemoval("root", []string{"i1"})
	collector.RecordRun(nil, nil, time.Second)

	if n := testutil.CollectAndCount(collector.purgeMetrics.stepRows); n != 0 {
		t.Errorf("step rows series = %d, want 0", n)
	}
	if got := testutil.ToFloat64(collector.purgeMetrics.componentsDisabled); got != 0 {
		t.Errorf("components disabled = %v, want 0", got)
	}
	if err := collector.RegisterStore(&fakeCounter{}, []string{"issues"}); err != nil {
		t.Errorf("RegisterStore() error = %v", err)
	}
}

func TestOutcome(t *testing.T) {
	if got := Outcome(nil); got != OutcomeSuccess {
		t.Errorf("Outcome(nil) = %q", got)
	}
	if got := Outcome(purge.NewPreconditionError("delete_project", purge.ErrInvalidRoot)); got != OutcomePrecondition {
		t.Errorf("Outcome(precondition) = %q", got)
	}
	if got := Outcome(errors.New("boom")); got != OutcomeFailure {
		t.Errorf("Outcome(boom) = %q", got)
	}
}

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) CountRows(_ context.Context, table, _ string, _ ...any) (int64, error) {
	n, ok := f.counts[table]
	if !ok {
		return 0, errors.New("no such table")
	}
	return n, nil
}

func TestStoreCollector(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{"snapshots": 5, "issues": 3}}
	c := NewStoreCollector("test", counter, []string{"snapshots", "issues", "missing"})

	expected := `
# HELP test_store_rows Number of rows in an analysis table
# TYPE test_store_rows gauge
test_store_rows{table="issues"} 3
test_store_rows{table="snapshots"} 5
# HELP test_store_scrape_errors_total Total number of failed table counts
# TYPE test_store_scrape_errors_total counter
test_store_scrape_errors_total 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	if err := collector.RegisterStore(&fakeCounter{counts: map[string]int64{"issues": 7}}, []string{"issues"}); err != nil {
		t.Fatalf("RegisterStore() error = %v", err)
	}
	collector.ObserveStep("delete_issues", time.Millisecond, 7)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`test_purge_step_rows_total{step="delete_issues"} 7`,
		`test_store_rows{table="issues"} 7`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q:\n%s", want, body)
		}
	}
}
