// Package retention runs the cascading purge of a project-analysis store.
//
// # Purge Runs
//
// A Purger applies a purge.Policy to a root project inside one transaction.
// The run cleans every project of the tree, disables the components left
// without a last snapshot, then expires old closed issues:
//
//	purger := retention.NewPurger(store, retention.WithLogger(logger))
//	policy := retention.PolicyFromConfig(&cfg.Retention, purge.IDUUIDPair{UUID: rootUUID}, time.Now())
//
//	report, err := purger.Purge(ctx, policy, listener, purge.NewProfiler())
//	if err != nil {
//	    var runErr *purge.RunError
//	    if errors.As(err, &runErr) {
//	        log.Printf("purge of %s failed in %s", runErr.RootUUID, runErr.Phase)
//	    }
//	}
//
// Nothing is committed unless every phase succeeds. The purge itself never
// retries; the Scheduler does.
//
// # Ordering
//
// Rows owned by a snapshot (measures, duplications, events) are deleted
// before the snapshot, issue changes before their issue. Within one
// analysis the scoped hard delete precedes the soft purge, because a
// snapshot flagged as purged is never selected again.
//
// # Batching
//
// List arguments never exceed the session's MaxParameters: Commands splits
// them with purge.ExecuteLargeUpdates.
//
// # Scheduling
//
// Scheduler purges the configured roots on a cron expression, one root at a
// time, retrying failed runs with exponential backoff:
//
//	scheduler := retention.NewScheduler(purger, &cfg.Retention, listener)
//	if err := scheduler.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer scheduler.Stop()
//
// If no schedule is configured, Start returns immediately without error.
package retention
