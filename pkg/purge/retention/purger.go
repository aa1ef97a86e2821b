package retention

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/sweeper/pkg/purge"
)

const tracerName = "mercator-hq/sweeper/pkg/purge/retention"

// Run phases, reported in RunError and span names.
const (
	PhaseBegin         = "begin"
	PhaseLoadTree      = "load_tree"
	PhaseCleanProjects = "clean_projects"
	PhaseDisableOrphan = "disable_orphans"
	PhaseClosedIssues  = "delete_closed_issues"
	PhaseCommit        = "commit"
)

// Purger runs retention purges and project deletions against a store.
// Each call uses its own session; callers must not run two purges on the
// same root concurrently.
type Purger struct {
	store    purge.Store
	logger   *slog.Logger
	now      func() time.Time
	tracer   trace.Tracer
	recorder purge.StepRecorder
}

// Option configures a Purger.
type Option func(*Purger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Purger) {
		p.logger = logger
	}
}

// WithClock replaces time.Now. The clock stamps resolved issues.
func WithClock(now func() time.Time) Option {
	return func(p *Purger) {
		p.now = now
	}
}

// WithStepRecorder forwards the steps of profilers created by the purger.
func WithStepRecorder(r purge.StepRecorder) Option {
	return func(p *Purger) {
		p.recorder = r
	}
}

// WithTracerProvider sets the provider of the run spans. The global provider
// is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Purger) {
		p.tracer = tp.Tracer(tracerName)
	}
}

// NewPurger creates a purger on store.
func NewPurger(store purge.Store, opts ...Option) *Purger {
	p := &Purger{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "purge.retention")
	return p
}

func (p *Purger) newProfiler() *purge.Profiler {
	if p.recorder != nil {
		return purge.NewProfiler(purge.WithRecorder(p.recorder))
	}
	return purge.NewProfiler()
}

// run holds the state of one Purge call.
type run struct {
	*Purger
	policy   purge.Policy
	listener purge.Listener
	session  purge.Session
	commands *Commands
	report   *purge.Report
	logger   *slog.Logger
}

// Purge applies policy to the root project and its modules in one
// transaction:
//
//  1. aborted builds are deleted and each past analysis is cleaned: snapshots
//     of the scopes without history are deleted, then the analysis is soft
//     purged;
//  2. components left without a last snapshot are disabled;
//  3. issues closed before the policy cutoff are deleted.
//
// The listener is notified inline; its panics are logged and ignored.
// A nil listener or profiler is allowed. On failure nothing is committed and
// the error is a *purge.RunError.
func (p *Purger) Purge(ctx context.Context, policy purge.Policy, listener purge.Listener, profiler *purge.Profiler) (*purge.Report, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if listener == nil {
		listener = purge.NopListener{}
	}
	if profiler == nil {
		profiler = p.newProfiler()
	}

	root := policy.Root().UUID
	r := &run{
		Purger:   p,
		policy:   policy,
		listener: listener,
		report: &purge.Report{
			RunID:     uuid.NewString(),
			RootUUID:  root,
			StartedAt: p.now(),
		},
	}
	r.logger = p.logger.With("root_uuid", root, "run_id", r.report.RunID)

	ctx, span := p.tracer.Start(ctx, "purge.run", trace.WithAttributes(
		attribute.String("purge.root_uuid", root),
		attribute.String("purge.run_id", r.report.RunID),
	))
	defer span.End()

	fail := func(phase string, err error) (*purge.Report, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, phase)
		r.logger.Error("purge failed", "phase", phase, "error", err)
		return nil, purge.NewRunError(root, phase, err)
	}

	session, err := p.store.Begin(ctx)
	if err != nil {
		return fail(PhaseBegin, err)
	}
	defer func() {
		// No-op once committed
		if err := session.Rollback(); err != nil {
			r.logger.Warn("rollback failed", "error", err)
		}
	}()
	r.session = session
	r.commands = NewCommands(session, profiler, r.logger)

	var projects []purge.Component
	err = p.phase(ctx, PhaseLoadTree, func(ctx context.Context) error {
		projects, err = session.SelectProjectTree(ctx, root)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			return purge.NewPreconditionError("purge", purge.ErrRootNotFound)
		}
		return nil
	})
	if err != nil {
		return fail(PhaseLoadTree, err)
	}
	r.report.Projects = len(projects)

	if err := p.phase(ctx, PhaseCleanProjects, func(ctx context.Context) error {
		for _, project := range projects {
			if err := r.cleanProject(ctx, project); err != nil {
				return fmt.Errorf("project %s: %w", project.UUID, err)
			}
		}
		return nil
	}); err != nil {
		return fail(PhaseCleanProjects, err)
	}

	if err := p.phase(ctx, PhaseDisableOrphan, func(ctx context.Context) error {
		for _, project := range projects {
			if err := r.disableOrphans(ctx, project); err != nil {
				return fmt.Errorf("project %s: %w", project.UUID, err)
			}
		}
		return nil
	}); err != nil {
		return fail(PhaseDisableOrphan, err)
	}

	if err := p.phase(ctx, PhaseClosedIssues, r.deleteOldClosedIssues); err != nil {
		return fail(PhaseClosedIssues, err)
	}

	if err := session.Commit(); err != nil {
		return fail(PhaseCommit, err)
	}

	r.report.Duration = p.now().Sub(r.report.StartedAt)
	r.report.Steps = profiler.Stats()

	span.SetAttributes(
		attribute.Int("purge.projects", r.report.Projects),
		attribute.Int("purge.components_disabled", r.report.ComponentsDisabled),
		attribute.Int("purge.issues_removed", r.report.IssuesRemoved),
	)
	span.SetStatus(codes.Ok, "")

	r.logger.Info("purge completed",
		"projects", r.report.Projects,
		"analyses_cleaned", r.report.AnalysesCleaned,
		"aborted_snapshots_deleted", r.report.AbortedDeleted,
		"snapshots_deleted", r.report.SnapshotsDeleted,
		"snapshots_purged", r.report.SnapshotsPurged,
		"components_disabled", r.report.ComponentsDisabled,
		"issues_removed", r.report.IssuesRemoved,
		"duration_ms", r.report.Duration.Milliseconds(),
	)
	profiler.Log(r.logger)

	return r.report, nil
}

// phase runs fn inside a child span.
func (p *Purger) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "purge."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *run) cleanProject(ctx context.Context, project purge.Component) error {
	r.logger.Debug("cleaning project", "project_uuid", project.UUID)

	aborted, err := r.commands.DeleteSnapshots(ctx, purge.NewSnapshotQuery().
		WithIsLast(false).
		WithStatus(purge.StatusUnprocessed).
		WithRootComponentUUID(project.UUID))
	if err != nil {
		return err
	}
	r.report.AbortedDeleted += aborted

	analyses, err := r.commands.SelectSnapshotUUIDs(ctx, purge.NewSnapshotQuery().
		WithComponentUUID(project.UUID).
		WithIsLast(false).
		WithNotPurged(true))
	if err != nil {
		return err
	}

	scopes := r.policy.ScopesWithoutHistoricalData()
	for _, analysis := range analyses {
		r.logger.Debug("cleaning analysis", "analysis_uuid", analysis)

		// Scoped deletes must precede the purge flag: a flagged analysis is
		// never selected again.
		if len(scopes) > 0 {
			n, err := r.commands.DeleteSnapshots(ctx, purge.NewSnapshotQuery().
				WithIsLast(false).
				WithScopes(scopes...).
				WithAnalysisUUID(analysis))
			if err != nil {
				return err
			}
			r.report.SnapshotsDeleted += n
		}

		n, err := r.commands.PurgeSnapshots(ctx,
			purge.NewSnapshotQuery().WithAnalysisUUID(analysis).WithNotPurged(true),
			purge.NewSnapshotQuery().WithSnapshotUUID(analysis).WithNotPurged(true))
		if err != nil {
			return err
		}
		r.report.SnapshotsPurged += n
		r.report.AnalysesCleaned++
	}
	return nil
}

func (r *run) disableOrphans(ctx context.Context, project purge.Component) error {
	// Drain the cursor before issuing updates on the same transaction
	var orphans []purge.IDUUIDPair
	for pair, err := range r.session.SelectComponentsToDisable(ctx, project.UUID) {
		if err != nil {
			return err
		}
		orphans = append(orphans, pair)
	}

	for _, orphan := range orphans {
		if err := r.commands.DisableComponent(ctx, orphan.UUID, r.now()); err != nil {
			return fmt.Errorf("component %s: %w", orphan.UUID, err)
		}
		r.report.ComponentsDisabled++
		r.notify("component_disabling", func() {
			r.listener.OnComponentDisabling(orphan.UUID)
		})
	}

	if len(orphans) > 0 {
		r.logger.Debug("components disabled", "project_uuid", project.UUID, "count", len(orphans))
	}
	return nil
}

func (r *run) deleteOldClosedIssues(ctx context.Context) error {
	root := r.policy.Root().UUID
	keys, err := r.commands.SelectOldClosedIssueKeys(ctx, root, r.policy.MaxLiveDateOfClosedIssues())
	if err != nil {
		return err
	}
	if _, err := r.commands.DeleteIssues(ctx, keys); err != nil {
		return err
	}
	r.report.IssuesRemoved = len(keys)

	r.notify("issues_removal", func() {
		r.listener.OnIssuesRemoval(root, keys)
	})
	return nil
}

// notify calls a listener; a panic is logged and does not abort the run.
func (r *run) notify(event string, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Warn("purge listener panicked", "event", event, "panic", v)
		}
	}()
	fn()
}

// DeleteProject removes the root project, every component under it and all
// their data, then the file sources and build activity of the project.
func (p *Purger) DeleteProject(ctx context.Context, rootUUID string) error {
	if rootUUID == "" {
		return purge.NewPreconditionError("delete_project", purge.ErrInvalidRoot)
	}

	logger := p.logger.With("root_uuid", rootUUID)
	ctx, span := p.tracer.Start(ctx, "purge.delete_project",
		trace.WithAttributes(attribute.String("purge.root_uuid", rootUUID)))
	defer span.End()

	profiler := p.newProfiler()
	err := p.inSession(ctx, profiler, func(ctx context.Context, session purge.Session, commands *Commands) error {
		components, err := session.SelectComponentsByRoot(ctx, rootUUID)
		if err != nil {
			return err
		}
		if len(components) == 0 {
			return purge.NewPreconditionError("delete_project", purge.ErrRootNotFound)
		}

		deleted, err := commands.DeleteComponents(ctx, components)
		if err != nil {
			return err
		}
		if _, err := commands.DeleteFileSources(ctx, rootUUID); err != nil {
			return err
		}
		if _, err := commands.DeleteCeActivity(ctx, rootUUID); err != nil {
			return err
		}

		logger.Info("project deleted", "components_deleted", deleted)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete project failed")
		return err
	}
	profiler.Log(logger)
	return nil
}

// DeleteSnapshots deletes the snapshots matched by queries, with their
// children, in one transaction. Returns the number of snapshots deleted.
func (p *Purger) DeleteSnapshots(ctx context.Context, profiler *purge.Profiler, queries ...purge.SnapshotQuery) (int64, error) {
	if profiler == nil {
		profiler = p.newProfiler()
	}

	var deleted int64
	err := p.inSession(ctx, profiler, func(ctx context.Context, _ purge.Session, commands *Commands) error {
		n, err := commands.DeleteSnapshots(ctx, queries...)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// SelectPurgeableAnalyses lists the processed analyses of a component, with
// and without version event, oldest first.
func (p *Purger) SelectPurgeableAnalyses(ctx context.Context, componentUUID string) ([]purge.PurgeableAnalysis, error) {
	session, err := p.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()

	withEvent, err := session.SelectPurgeableAnalyses(ctx, componentUUID, true)
	if err != nil {
		return nil, err
	}
	withoutEvent, err := session.SelectPurgeableAnalyses(ctx, componentUUID, false)
	if err != nil {
		return nil, err
	}

	analyses := append(withEvent, withoutEvent...)
	slices.SortStableFunc(analyses, func(a, b purge.PurgeableAnalysis) int {
		return cmp.Compare(a.Date.UnixMilli(), b.Date.UnixMilli())
	})
	return analyses, nil
}

// inSession runs fn in a new session and commits when it succeeds.
func (p *Purger) inSession(ctx context.Context, profiler *purge.Profiler, fn func(context.Context, purge.Session, *Commands) error) (err error) {
	session, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := session.Rollback(); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
	}()

	if err := fn(ctx, session, NewCommands(session, profiler, p.logger)); err != nil {
		return err
	}
	return session.Commit()
}
