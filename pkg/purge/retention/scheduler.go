package retention

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/robfig/cron/v3"

	"mercator-hq/sweeper/pkg/config"
	"mercator-hq/sweeper/pkg/purge"
	"mercator-hq/sweeper/pkg/telemetry/logging"
)

// RunResult is the outcome of one scheduled purge of a root.
type RunResult struct {
	RootUUID string
	Report   *purge.Report
	Attempts int
	Err      error
}

// RunObserver is told the final outcome of every scheduled root purge.
// The metrics collector implements it.
type RunObserver interface {
	RecordRun(report *purge.Report, err error, elapsed time.Duration)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRunObserver reports every scheduled root purge to o.
func WithRunObserver(o RunObserver) SchedulerOption {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// Scheduler purges the configured roots on a cron schedule. Roots are purged
// one after the other, so two runs never overlap. A failed run is retried
// with exponential backoff unless its error is a precondition failure.
type Scheduler struct {
	purger   *Purger
	listener purge.Listener
	observer RunObserver
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	cfg     config.RetentionConfig
	cron    *cron.Cron
	entry   cron.EntryID
	running bool
	runMu   sync.Mutex
}

// NewScheduler creates a scheduler running purger with cfg.
func NewScheduler(purger *Purger, cfg *config.RetentionConfig, listener purge.Listener, opts ...SchedulerOption) *Scheduler {
	if listener == nil {
		listener = purge.NopListener{}
	}
	s := &Scheduler{
		purger:   purger,
		listener: listener,
		logger:   purger.logger,
		now:      purger.now,
		cfg:      cloneRetention(cfg),
		cron:     cron.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cloneRetention(cfg *config.RetentionConfig) config.RetentionConfig {
	c := *cfg
	c.Roots = slices.Clone(cfg.Roots)
	c.ScopesWithoutHistory = slices.Clone(cfg.ScopesWithoutHistory)
	return c
}

// Start schedules the purges. If no schedule is configured the scheduler
// does nothing. The scheduler stops when ctx is cancelled.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.cfg.Schedule == "" {
		s.logger.Info("purge schedule not configured, skipping scheduler")
		return nil
	}

	if err := s.scheduleLocked(ctx, s.cfg.Schedule); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("purge scheduler started",
		"schedule", s.cfg.Schedule,
		"roots", len(s.cfg.Roots),
		"max_attempts", s.cfg.Retry.MaxAttempts,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) scheduleLocked(ctx context.Context, schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}

	id, err := s.cron.AddFunc(schedule, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule purge: %w", err)
	}
	s.entry = id
	return nil
}

// Update replaces the retention settings, for instance after the
// configuration file changed. A new schedule takes effect immediately on a
// running scheduler.
func (s *Scheduler) Update(ctx context.Context, cfg *config.RetentionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.cfg.Schedule
	s.cfg = cloneRetention(cfg)

	if s.running && cfg.Schedule != previous {
		if cfg.Schedule == "" {
			s.cron.Remove(s.entry)
			s.entry = 0
		} else if err := s.scheduleLocked(ctx, cfg.Schedule); err != nil {
			return err
		}
	}

	s.logger.Info("purge settings updated", "schedule", cfg.Schedule, "roots", len(cfg.Roots))
	return nil
}

// RunOnce purges every configured root now and returns one result per root.
// Concurrent calls are serialized.
func (s *Scheduler) RunOnce(ctx context.Context) []RunResult {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	cfg := cloneRetention(&s.cfg)
	s.mu.Unlock()

	s.logger.Info("starting scheduled purge", "roots", len(cfg.Roots))

	results := make([]RunResult, 0, len(cfg.Roots))
	for _, root := range cfg.Roots {
		if ctx.Err() != nil {
			results = append(results, RunResult{RootUUID: root, Err: ctx.Err()})
			continue
		}
		results = append(results, s.purgeRoot(ctx, &cfg, root))
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.logger.Error("scheduled purge completed with failures", "roots", len(results), "failed", failed)
	} else {
		s.logger.Info("scheduled purge completed", "roots", len(results))
	}
	return results
}

func (s *Scheduler) purgeRoot(ctx context.Context, cfg *config.RetentionConfig, root string) RunResult {
	result := RunResult{RootUUID: root}
	ctx = logging.WithRoot(ctx, root)
	started := s.now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.Retry.InitialInterval
	b.MaxInterval = cfg.Retry.MaxInterval

	attempts := max(cfg.Retry.MaxAttempts, 1)
	report, err := backoff.Retry(ctx, func() (*purge.Report, error) {
		result.Attempts++
		policy := PolicyFromConfig(cfg, purge.IDUUIDPair{UUID: root}, s.now())
		report, err := s.purger.Purge(ctx, policy, s.listener, nil)
		if err != nil && purge.IsPrecondition(err) {
			return nil, backoff.Permanent(err)
		}
		return report, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.logger.WarnContext(ctx, "purge attempt failed, retrying", "error", err, "retry_in", wait)
		}),
	)

	result.Report = report
	result.Err = err
	if s.observer != nil {
		s.observer.RecordRun(report, err, s.now().Sub(started))
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled purge failed", "attempts", result.Attempts, "error", err)
	}
	return result
}

// Stop stops the scheduler and waits for a running purge to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c := s.cron
	s.mu.Unlock()

	// The running job may need s.mu, so wait without holding it
	<-c.Stop().Done()
	s.logger.Info("purge scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled purge time, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry == 0 {
		return nil
	}
	entry := s.cron.Entry(s.entry)
	if !entry.Valid() || entry.Next.IsZero() {
		return nil
	}
	next := entry.Next
	return &next
}
