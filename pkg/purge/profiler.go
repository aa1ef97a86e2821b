package purge

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// StepRecorder receives every step measured by a Profiler.
// The Prometheus collector in pkg/telemetry/metrics implements it.
type StepRecorder interface {
	ObserveStep(step string, elapsed time.Duration, rows int64)
}

// StepStats aggregates the executions of one purge step.
type StepStats struct {
	Step  string        `json:"step"`
	Calls int           `json:"calls"`
	Rows  int64         `json:"rows"`
	Total time.Duration `json:"total"`
}

// Profiler records the time and row count of each purge step of a run.
// It is observational only: nothing in the purge reads it back.
// Create one per run with NewProfiler.
type Profiler struct {
	mu       sync.Mutex
	steps    map[string]*StepStats
	order    []string
	recorder StepRecorder
	now      func() time.Time
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithRecorder forwards every measured step to r.
func WithRecorder(r StepRecorder) ProfilerOption {
	return func(p *Profiler) {
		p.recorder = r
	}
}

// WithProfilerClock replaces time.Now, for tests.
func WithProfilerClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates an empty profiler.
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		steps: make(map[string]*StepStats),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins measuring step and returns the function that stops the
// measurement with the number of affected rows.
//
//	done := profiler.Start("delete_snapshot_measures")
//	n, err := session.DeleteSnapshotMeasures(ctx, uuids)
//	done(n)
func (p *Profiler) Start(step string) func(rows int64) {
	if p == nil {
		return func(int64) {}
	}
	started := p.now()
	return func(rows int64) {
		p.Record(step, p.now().Sub(started), rows)
	}
}

// Record adds one execution of step.
func (p *Profiler) Record(step string, elapsed time.Duration, rows int64) {
	if p == nil {
		return
	}

	p.mu.Lock()
	s, ok := p.steps[step]
	if !ok {
		s = &StepStats{Step: step}
		p.steps[step] = s
		p.order = append(p.order, step)
	}
	s.Calls++
	s.Rows += rows
	s.Total += elapsed
	recorder := p.recorder
	p.mu.Unlock()

	if recorder != nil {
		recorder.ObserveStep(step, elapsed, rows)
	}
}

// Stats returns the aggregated steps in first-seen order.
func (p *Profiler) Stats() []StepStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]StepStats, 0, len(p.order))
	for _, step := range p.order {
		out = append(out, *p.steps[step])
	}
	return out
}

// Step returns the aggregate for one step.
func (p *Profiler) Step(step string) (StepStats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.steps[step]
	if !ok {
		return StepStats{}, false
	}
	return *s, true
}

// Reset clears all recorded steps.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.steps = make(map[string]*StepStats)
	p.order = nil
}

// Dump writes the slowest steps first, one line per step.
func (p *Profiler) Dump(total time.Duration) string {
	stats := p.Stats()
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total > stats[j].Total
	})

	var sb strings.Builder
	for _, s := range stats {
		pct := 0.0
		if total > 0 {
			pct = float64(s.Total) * 100 / float64(total)
		}
		fmt.Fprintf(&sb, "%s: %s (%.0f%%, %d calls, %d rows)\n", s.Step, s.Total.Round(time.Millisecond), pct, s.Calls, s.Rows)
	}
	return sb.String()
}

// Log emits one debug record per step.
func (p *Profiler) Log(logger *slog.Logger) {
	for _, s := range p.Stats() {
		logger.Debug("purge step",
			"step", s.Step,
			"calls", s.Calls,
			"rows", s.Rows,
			"elapsed_ms", s.Total.Milliseconds(),
		)
	}
}
