package purge

import (
	"context"
	"iter"
	"time"
)

// Store opens transactional sessions on the analysis database.
type Store interface {
	// Begin starts a session. Everything done through it is discarded unless
	// Commit succeeds.
	Begin(ctx context.Context) (Session, error)

	// Close releases the resources held by the store.
	Close() error
}

// Session is one transaction on the analysis database. It exposes the
// statements the purge needs; list arguments must not exceed MaxParameters.
//
// A session is used by a single goroutine. After Commit or Rollback every
// method fails with ErrSessionFinalized.
type Session interface {
	// MaxParameters is the maximum length of a list argument.
	MaxParameters() int

	// Tree resolution.
	SelectProjectTree(ctx context.Context, rootUUID string) ([]Component, error)
	SelectComponentsByRoot(ctx context.Context, rootUUID string) ([]IDUUIDPair, error)

	// Snapshot selection and deletion.
	SelectSnapshotUUIDs(ctx context.Context, query SnapshotQuery) ([]string, error)
	SelectSnapshotUUIDsByComponents(ctx context.Context, componentUUIDs []string) ([]string, error)
	SelectPurgeableAnalyses(ctx context.Context, componentUUID string, withVersionEvent bool) ([]PurgeableAnalysis, error)
	DeleteSnapshotMeasures(ctx context.Context, snapshotUUIDs []string) (int64, error)
	DeleteSnapshotWastedMeasures(ctx context.Context, snapshotUUIDs []string) (int64, error)
	DeleteSnapshotDuplications(ctx context.Context, snapshotUUIDs []string) (int64, error)
	DeleteSnapshotEvents(ctx context.Context, snapshotUUIDs []string) (int64, error)
	DeleteSnapshots(ctx context.Context, snapshotUUIDs []string) (int64, error)
	UpdatePurgeStatus(ctx context.Context, snapshotUUIDs []string) (int64, error)

	// Orphan components. SelectComponentsToDisable yields lazily; the
	// sequence must be drained before the session is used for anything else.
	SelectComponentsToDisable(ctx context.Context, projectUUID string) iter.Seq2[IDUUIDPair, error]
	DeleteResourceIndex(ctx context.Context, componentUUIDs []string) (int64, error)
	SetSnapshotIsLastToFalse(ctx context.Context, componentUUID string) (int64, error)
	DeleteFileSourcesByFileUUID(ctx context.Context, fileUUID string) (int64, error)
	DisableComponent(ctx context.Context, componentUUID string) (int64, error)
	ResolveComponentIssuesNotAlreadyResolved(ctx context.Context, componentUUID string, now time.Time) (int64, error)

	// Whole-component removal.
	DeleteComponentEvents(ctx context.Context, componentUUIDs []string) (int64, error)
	DeleteComponentIssueChanges(ctx context.Context, componentUUIDs []string) (int64, error)
	DeleteComponentIssues(ctx context.Context, componentUUIDs []string) (int64, error)
	DeleteComponents(ctx context.Context, componentUUIDs []string) (int64, error)
	DeleteFileSourcesByProject(ctx context.Context, rootUUID string) (int64, error)
	DeleteCeActivityByComponent(ctx context.Context, componentUUID string) (int64, error)

	// Closed issues.
	SelectOldClosedIssueKeys(ctx context.Context, rootUUID string, before time.Time) ([]string, error)
	DeleteIssueChangesByIssueKeys(ctx context.Context, issueKeys []string) (int64, error)
	DeleteIssuesByKeys(ctx context.Context, issueKeys []string) (int64, error)

	Commit() error
	Rollback() error
}
