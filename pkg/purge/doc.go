// Package purge defines the data model and building blocks of the analysis
// retention engine.
//
// # Overview
//
// The engine removes historical analysis data of a project tree while keeping
// the database consistent:
//
//   - Aborted analyses (unprocessed, never last) are deleted
//   - Snapshots of scopes without history (directories, files) are deleted
//     once their analysis is no longer the last one
//   - Remaining old analyses are soft-purged: detail measures and duplications
//     go, the snapshot row stays with purge_status set
//   - Components without a last snapshot are disabled and their open issues closed
//   - Closed issues older than a cutoff are deleted with their change history
//
// The orchestration lives in pkg/purge/retention and the SQLite backend in
// pkg/purge/storage. This package holds what both share:
//
//   - SnapshotQuery: immutable, all-optional snapshot filter
//   - Policy: root project, scopes without history, closed-issue cutoff
//   - Session and Store: the transactional boundary to the database
//   - ExecuteLargeInputs / ExecuteLargeUpdates: chunking of unbounded key lists
//   - Profiler: per-step timings of a run
//   - Listener: notifications for downstream cache invalidation
//
// # Ordering
//
// Dependent rows are always deleted before the rows owning them: measures,
// duplications and events before snapshots; issue changes before issues. A
// run executes in one Session and commits only after its last phase, so a
// failure at any point leaves the database as it was.
//
// # Usage
//
//	policy := purge.NewPolicy(
//	    purge.IDUUIDPair{UUID: rootUUID},
//	    []string{purge.ScopeDirectory, purge.ScopeFile},
//	    time.Now().AddDate(0, 0, -30),
//	)
//	profiler := purge.NewProfiler()
//	report, err := purger.Purge(ctx, policy, purge.NopListener{}, profiler)
package purge
