package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/sweeper/pkg/purge"
)

// Profiler step names. They are stable: dashboards and logs key on them.
const (
	StepSelectSnapshots          = "select_snapshot_uuids"
	StepDeleteSnapshotMeasures   = "delete_snapshot_measures"
	StepDeleteWastedMeasures     = "delete_snapshot_wasted_measures"
	StepDeleteDuplications       = "delete_snapshot_duplications"
	StepDeleteSnapshotEvents     = "delete_snapshot_events"
	StepDeleteSnapshots          = "delete_snapshots"
	StepUpdatePurgeStatus        = "update_purge_status"
	StepDeleteResourceIndex      = "delete_resource_index"
	StepSetSnapshotIsLastToFalse = "set_snapshot_is_last_to_false"
	StepDeleteFileSourcesByFile  = "delete_file_sources_by_file"
	StepDisableComponent         = "disable_component"
	StepResolveIssues            = "resolve_component_issues"
	StepDeleteComponentEvents    = "delete_component_events"
	StepDeleteIssueChanges       = "delete_issue_changes"
	StepDeleteIssues             = "delete_issues"
	StepDeleteComponents         = "delete_components"
	StepDeleteFileSources        = "delete_file_sources"
	StepDeleteCeActivity         = "delete_ce_activity"
	StepSelectClosedIssues       = "select_old_closed_issue_keys"
)

// Commands groups the cascading deletes of a purge run on one session.
// Every list argument is split into chunks of session.MaxParameters keys,
// and every statement is measured by the profiler.
type Commands struct {
	session  purge.Session
	profiler *purge.Profiler
	logger   *slog.Logger
	size     int
}

// NewCommands creates the commands of a run. A nil profiler disables
// measurements.
func NewCommands(session purge.Session, profiler *purge.Profiler, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{
		session:  session,
		profiler: profiler,
		logger:   logger.With("component", "purge.commands"),
		size:     session.MaxParameters(),
	}
}

type listStatement func(ctx context.Context, keys []string) (int64, error)

// batched runs stmt over keys in chunks and records the total under step.
func (c *Commands) batched(ctx context.Context, step string, keys []string, stmt listStatement) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	done := c.profiler.Start(step)
	n, err := purge.ExecuteLargeUpdates(keys, c.size, func(chunk []string) (int64, error) {
		return stmt(ctx, chunk)
	})
	done(n)
	return n, err
}

// single runs a statement without list argument and records it under step.
func (c *Commands) single(step string, stmt func() (int64, error)) (int64, error) {
	done := c.profiler.Start(step)
	n, err := stmt()
	done(n)
	return n, err
}

// SelectSnapshotUUIDs returns the UUIDs of the snapshots matching query.
func (c *Commands) SelectSnapshotUUIDs(ctx context.Context, query purge.SnapshotQuery) ([]string, error) {
	done := c.profiler.Start(StepSelectSnapshots)
	uuids, err := c.session.SelectSnapshotUUIDs(ctx, query)
	done(int64(len(uuids)))
	return uuids, err
}

// DeleteSnapshots deletes the snapshots matched by each query with their
// measures, duplications and events. Queries are resolved one after the
// other, so a query matching rows removed by a previous one selects nothing.
// Returns the number of snapshot rows deleted.
func (c *Commands) DeleteSnapshots(ctx context.Context, queries ...purge.SnapshotQuery) (int64, error) {
	var total int64
	for _, query := range queries {
		uuids, err := c.SelectSnapshotUUIDs(ctx, query)
		if err != nil {
			return total, err
		}
		if len(uuids) == 0 {
			continue
		}

		c.logger.Debug("deleting snapshots", "query", query.String(), "count", len(uuids))

		n, err := c.deleteSnapshotUUIDs(ctx, uuids)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// deleteSnapshotUUIDs removes owned rows before the snapshot rows.
func (c *Commands) deleteSnapshotUUIDs(ctx context.Context, uuids []string) (int64, error) {
	if _, err := c.batched(ctx, StepDeleteSnapshotMeasures, uuids, c.session.DeleteSnapshotMeasures); err != nil {
		return 0, err
	}
	if _, err := c.batched(ctx, StepDeleteDuplications, uuids, c.session.DeleteSnapshotDuplications); err != nil {
		return 0, err
	}
	if _, err := c.batched(ctx, StepDeleteSnapshotEvents, uuids, c.session.DeleteSnapshotEvents); err != nil {
		return 0, err
	}
	return c.batched(ctx, StepDeleteSnapshots, uuids, c.session.DeleteSnapshots)
}

// PurgeSnapshots is the soft purge: the detail measures and duplications of
// the snapshots matched by selectQuery are deleted, then the snapshots
// matched by markQuery are flagged as purged. Returns the number of rows
// flagged, which is zero when the same purge runs again.
func (c *Commands) PurgeSnapshots(ctx context.Context, selectQuery, markQuery purge.SnapshotQuery) (int64, error) {
	uuids, err := c.SelectSnapshotUUIDs(ctx, selectQuery)
	if err != nil {
		return 0, err
	}
	if _, err := c.batched(ctx, StepDeleteWastedMeasures, uuids, c.session.DeleteSnapshotWastedMeasures); err != nil {
		return 0, err
	}
	if _, err := c.batched(ctx, StepDeleteDuplications, uuids, c.session.DeleteSnapshotDuplications); err != nil {
		return 0, err
	}

	marked, err := c.SelectSnapshotUUIDs(ctx, markQuery)
	if err != nil {
		return 0, err
	}
	return c.batched(ctx, StepUpdatePurgeStatus, marked, c.session.UpdatePurgeStatus)
}

// DisableComponent detaches a component that no longer has a last snapshot:
// its search index and file sources are removed, stale last flags cleared,
// the component disabled and its open issues closed as removed at now.
func (c *Commands) DisableComponent(ctx context.Context, uuid string, now time.Time) error {
	if _, err := c.batched(ctx, StepDeleteResourceIndex, []string{uuid}, c.session.DeleteResourceIndex); err != nil {
		return err
	}
	if _, err := c.single(StepSetSnapshotIsLastToFalse, func() (int64, error) {
		return c.session.SetSnapshotIsLastToFalse(ctx, uuid)
	}); err != nil {
		return err
	}
	if _, err := c.single(StepDeleteFileSourcesByFile, func() (int64, error) {
		return c.session.DeleteFileSourcesByFileUUID(ctx, uuid)
	}); err != nil {
		return err
	}
	if _, err := c.single(StepDisableComponent, func() (int64, error) {
		return c.session.DisableComponent(ctx, uuid)
	}); err != nil {
		return err
	}
	_, err := c.single(StepResolveIssues, func() (int64, error) {
		return c.session.ResolveComponentIssuesNotAlreadyResolved(ctx, uuid, now)
	})
	return err
}

// DeleteComponents removes components and everything attached to them:
// search index, snapshots with their children, issue changes, issues and
// events. Returns the number of component rows deleted.
func (c *Commands) DeleteComponents(ctx context.Context, components []purge.IDUUIDPair) (int64, error) {
	uuids := make([]string, len(components))
	for i, component := range components {
		uuids[i] = component.UUID
	}

	return purge.ExecuteLargeUpdates(uuids, c.size, func(chunk []string) (int64, error) {
		if _, err := c.batched(ctx, StepDeleteResourceIndex, chunk, c.session.DeleteResourceIndex); err != nil {
			return 0, err
		}

		done := c.profiler.Start(StepSelectSnapshots)
		snapshots, err := c.session.SelectSnapshotUUIDsByComponents(ctx, chunk)
		done(int64(len(snapshots)))
		if err != nil {
			return 0, err
		}
		if _, err := c.deleteSnapshotUUIDs(ctx, snapshots); err != nil {
			return 0, err
		}

		if _, err := c.batched(ctx, StepDeleteIssueChanges, chunk, c.session.DeleteComponentIssueChanges); err != nil {
			return 0, err
		}
		if _, err := c.batched(ctx, StepDeleteIssues, chunk, c.session.DeleteComponentIssues); err != nil {
			return 0, err
		}
		if _, err := c.batched(ctx, StepDeleteComponentEvents, chunk, c.session.DeleteComponentEvents); err != nil {
			return 0, err
		}
		return c.batched(ctx, StepDeleteComponents, chunk, c.session.DeleteComponents)
	})
}

// DeleteFileSources removes the file sources of every file of the root project.
func (c *Commands) DeleteFileSources(ctx context.Context, rootUUID string) (int64, error) {
	return c.single(StepDeleteFileSources, func() (int64, error) {
		return c.session.DeleteFileSourcesByProject(ctx, rootUUID)
	})
}

// DeleteCeActivity removes the build activity of the root project.
func (c *Commands) DeleteCeActivity(ctx context.Context, rootUUID string) (int64, error) {
	return c.single(StepDeleteCeActivity, func() (int64, error) {
		return c.session.DeleteCeActivityByComponent(ctx, rootUUID)
	})
}

// SelectOldClosedIssueKeys returns the keys of the issues of the root closed
// strictly before cutoff.
func (c *Commands) SelectOldClosedIssueKeys(ctx context.Context, rootUUID string, cutoff time.Time) ([]string, error) {
	done := c.profiler.Start(StepSelectClosedIssues)
	keys, err := c.session.SelectOldClosedIssueKeys(ctx, rootUUID, cutoff)
	done(int64(len(keys)))
	return keys, err
}

// DeleteIssues removes issues by key, change history first.
func (c *Commands) DeleteIssues(ctx context.Context, keys []string) (int64, error) {
	if _, err := c.batched(ctx, StepDeleteIssueChanges, keys, c.session.DeleteIssueChangesByIssueKeys); err != nil {
		return 0, err
	}
	return c.batched(ctx, StepDeleteIssues, keys, c.session.DeleteIssuesByKeys)
}
