package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mercator-hq/sweeper/pkg/config"
	"mercator-hq/sweeper/pkg/purge"
)

func testRetention(roots ...string) *config.RetentionConfig {
	return &config.RetentionConfig{
		ClosedIssuesMaxAgeDays: 30,
		Roots:                  roots,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

type observedRun struct {
	report *purge.Report
	err    error
}

// runRecorder records the runs reported to a RunObserver.
type runRecorder struct {
	mu   sync.Mutex
	runs []observedRun
}

func (r *runRecorder) RecordRun(report *purge.Report, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, observedRun{report, err})
}

func TestScheduler_RunOnce(t *testing.T) {
	store := createProjectStore(t, 0)
	observer := &runRecorder{}
	scheduler := NewScheduler(newTestPurger(store), testRetention("root"), nil, WithRunObserver(observer))

	results := scheduler.RunOnce(context.Background())

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Err != nil || r.Attempts != 1 || r.Report == nil {
		t.Fatalf("result = %+v", r)
	}
	if r.Report.ComponentsDisabled != 1 {
		t.Errorf("report = %+v", r.Report)
	}
	if len(observer.runs) != 1 || observer.runs[0].err != nil {
		t.Errorf("observed runs = %+v", observer.runs)
	}
}

func TestScheduler_RetriesTransientFailures(t *testing.T) {
	store := &flakyStore{Store: createProjectStore(t, 0), failures: 1}
	observer := &runRecorder{}
	scheduler := NewScheduler(newTestPurger(store), testRetention("root"), nil, WithRunObserver(observer))

	r := scheduler.RunOnce(context.Background())[0]

	if r.Err != nil {
		t.Fatalf("run failed: %v", r.Err)
	}
	if r.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", r.Attempts)
	}
	// One outcome per root, whatever the number of attempts
	if len(observer.runs) != 1 {
		t.Errorf("observed %d runs, want 1", len(observer.runs))
	}
}

func TestScheduler_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &flakyStore{Store: createProjectStore(t, 0), failures: 100}
	cfg := testRetention("root")
	cfg.Retry.MaxAttempts = 2
	scheduler := NewScheduler(newTestPurger(store), cfg, nil)

	r := scheduler.RunOnce(context.Background())[0]

	if !errors.Is(r.Err, errInjected) {
		t.Errorf("error = %v, want injected failure", r.Err)
	}
	if r.Attempts != 2 || store.Begins() != 2 {
		t.Errorf("attempts = %d, begins = %d, want 2", r.Attempts, store.Begins())
	}
}

func TestScheduler_PreconditionIsNotRetried(t *testing.T) {
	store := createProjectStore(t, 0)
	observer := &runRecorder{}
	scheduler := NewScheduler(newTestPurger(store), testRetention("missing", "root"), nil, WithRunObserver(observer))

	results := scheduler.RunOnce(context.Background())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !purge.IsPrecondition(results[0].Err) || results[0].Attempts != 1 {
		t.Errorf("missing root result = %+v", results[0])
	}
	// A failed root does not stop the others
	if results[1].Err != nil {
		t.Errorf("root result error = %v", results[1].Err)
	}
	if len(observer.runs) != 2 || !purge.IsPrecondition(observer.runs[0].err) {
		t.Errorf("observed runs = %+v", observer.runs)
	}
}

func TestScheduler_RunOnceCancelled(t *testing.T) {
	store := createProjectStore(t, 0)
	scheduler := NewScheduler(newTestPurger(store), testRetention("root"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := scheduler.RunOnce(ctx)[0]
	if !errors.Is(r.Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", r.Err)
	}
	if n := count(t, store, "projects", "enabled = 0"); n != 0 {
		t.Error("cancelled run changed data")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	store := createProjectStore(t, 0)
	cfg := testRetention("root")
	cfg.Schedule = "0 3 * * *"
	scheduler := NewScheduler(newTestPurger(store), cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !scheduler.IsRunning() {
		t.Error("scheduler not running after Start")
	}
	next := scheduler.NextRun()
	if next == nil || next.Hour() != 3 {
		t.Errorf("NextRun() = %v, want 03:00", next)
	}
	if err := scheduler.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}

	scheduler.Stop()
	if scheduler.IsRunning() {
		t.Error("scheduler running after Stop")
	}
	scheduler.Stop()
}

func TestScheduler_StopsWithContext(t *testing.T) {
	store := createProjectStore(t, 0)
	cfg := testRetention("root")
	cfg.Schedule = "@every 1h"
	scheduler := NewScheduler(newTestPurger(store), cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if scheduler.IsRunning() {
		t.Error("scheduler still running after context cancellation")
	}
}

func TestScheduler_StartWithoutSchedule(t *testing.T) {
	store := createProjectStore(t, 0)
	scheduler := NewScheduler(newTestPurger(store), testRetention("root"), nil)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if scheduler.IsRunning() || scheduler.NextRun() != nil {
		t.Error("scheduler without schedule should stay idle")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	store := createProjectStore(t, 0)
	cfg := testRetention("root")
	cfg.Schedule = "not a cron"
	scheduler := NewScheduler(newTestPurger(store), cfg, nil)

	if err := scheduler.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestScheduler_Update(t *testing.T) {
	store := createProjectStore(t, 0)
	cfg := testRetention()
	cfg.Schedule = "0 3 * * *"
	scheduler := NewScheduler(newTestPurger(store), cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer scheduler.Stop()

	// No roots yet
	if results := scheduler.RunOnce(ctx); len(results) != 0 {
		t.Errorf("got %d results before update", len(results))
	}

	updated := testRetention("root")
	updated.Schedule = "0 5 * * *"
	if err := scheduler.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	// The scheduler keeps its own copy
	updated.Roots[0] = "missing"

	if next := scheduler.NextRun(); next == nil || next.Hour() != 5 {
		t.Errorf("NextRun() = %v, want 05:00", next)
	}
	results := scheduler.RunOnce(ctx)
	if len(results) != 1 || results[0].RootUUID != "root" || results[0].Err != nil {
		t.Errorf("results after update = %+v", results)
	}

	updated.Schedule = ""
	if err := scheduler.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if scheduler.NextRun() != nil {
		t.Error("schedule not removed")
	}
}
