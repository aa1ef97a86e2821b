package storage

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"time"

	"mercator-hq/sweeper/pkg/purge"
)

// sqliteSession implements purge.Session on one transaction.
type sqliteSession struct {
	tx            *sql.Tx
	backend       string
	maxParameters int
	done          bool
}

var _ purge.Session = (*sqliteSession)(nil)

func (s *sqliteSession) MaxParameters() int {
	return s.maxParameters
}

func (s *sqliteSession) check(op string) error {
	if s.done {
		return purge.NewPreconditionError(op, purge.ErrSessionFinalized)
	}
	return nil
}

func (s *sqliteSession) storageErr(op string, err error) error {
	return purge.NewStorageError(s.backend, op, err)
}

// Commit commits the transaction.
func (s *sqliteSession) Commit() error {
	if err := s.check("commit"); err != nil {
		return err
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return s.storageErr("commit", err)
	}
	return nil
}

// Rollback discards the transaction. Rolling back a finalized session is a no-op.
func (s *sqliteSession) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil {
		return s.storageErr("rollback", err)
	}
	return nil
}

// placeholders returns "?,?,...,?" with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// execIn runs a statement whose single %s is replaced by the IN list of keys.
func (s *sqliteSession) execIn(ctx context.Context, op, template string, keys []string) (int64, error) {
	if err := s.check(op); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if len(keys) > s.maxParameters {
		return 0, s.storageErr(op, fmt.Errorf("%d parameters exceed the limit of %d", len(keys), s.maxParameters))
	}

	// nolint:gosec // G201: the template only receives ? markers
	query := fmt.Sprintf(template, placeholders(len(keys)))
	return s.exec(ctx, op, query, stringArgs(keys)...)
}

func (s *sqliteSession) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	if err := s.check(op); err != nil {
		return 0, err
	}
	result, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.storageErr(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, s.storageErr(op, err)
	}
	return n, nil
}

func (s *sqliteSession) queryStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	if err := s.check(op); err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, s.storageErr(op, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(op, err)
	}
	return values, nil
}

const componentColumns = `p.id, p.uuid, p.root_uuid, p.project_uuid, p.parent_uuid, p.scope,
	p.qualifier, p.name, p.long_name, p.enabled`

func scanComponent(rows *sql.Rows) (purge.Component, error) {
	var (
		c                                 purge.Component
		id                                sql.NullInt64
		parent, qualifier, name, longName sql.NullString
	)
	err := rows.Scan(&id, &c.UUID, &c.RootUUID, &c.ProjectUUID, &parent, &c.Scope,
		&qualifier, &name, &longName, &c.Enabled)
	if err != nil {
		return c, err
	}
	if id.Valid {
		v := id.Int64
		c.ID = &v
	}
	c.ParentUUID = parent.String
	c.Qualifier = qualifier.String
	c.Name = name.String
	c.LongName = longName.String
	return c, nil
}

// SelectProjectTree walks parent links down from the root and returns the
// project-scope components, root first.
func (s *sqliteSession) SelectProjectTree(ctx context.Context, rootUUID string) ([]purge.Component, error) {
	const op = "select_project_tree"
	if err := s.check(op); err != nil {
		return nil, err
	}

	query := `
		WITH RECURSIVE tree(uuid) AS (
			SELECT uuid FROM projects WHERE uuid = ?
			UNION ALL
			SELECT p.uuid FROM projects p JOIN tree t ON p.parent_uuid = t.uuid
		)
		SELECT ` + componentColumns + `
		FROM projects p JOIN tree t ON p.uuid = t.uuid
		WHERE p.scope = ?
		ORDER BY CASE WHEN p.uuid = ? THEN 0 ELSE 1 END, p.id, p.uuid`

	rows, err := s.tx.QueryContext(ctx, query, rootUUID, purge.ScopeProject, rootUUID)
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	defer rows.Close()

	components := []purge.Component{}
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, s.storageErr(op, err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(op, err)
	}
	return components, nil
}

// SelectComponentsByRoot returns every component of the tree, whatever its scope.
func (s *sqliteSession) SelectComponentsByRoot(ctx context.Context, rootUUID string) ([]purge.IDUUIDPair, error) {
	const op = "select_components_by_root"
	if err := s.check(op); err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, `SELECT id, uuid FROM projects WHERE root_uuid = ? ORDER BY uuid`, rootUUID)
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	defer rows.Close()

	pairs := []purge.IDUUIDPair{}
	for rows.Next() {
		pair, err := scanPair(rows)
		if err != nil {
			return nil, s.storageErr(op, err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(op, err)
	}
	return pairs, nil
}

func scanPair(rows *sql.Rows) (purge.IDUUIDPair, error) {
	var (
		pair purge.IDUUIDPair
		id   sql.NullInt64
	)
	if err := rows.Scan(&id, &pair.UUID); err != nil {
		return pair, err
	}
	if id.Valid {
		v := id.Int64
		pair.ID = &v
	}
	return pair, nil
}

// buildSnapshotWhere builds the WHERE clause of a snapshot query.
// Returns the clause (without "WHERE") and its arguments.
func buildSnapshotWhere(q purge.SnapshotQuery) (string, []any) {
	var conditions []string
	var args []any

	if v, ok := q.SnapshotUUID(); ok {
		conditions = append(conditions, "s.uuid = ?")
		args = append(args, v)
	}
	if v, ok := q.AnalysisUUID(); ok {
		conditions = append(conditions, "s.analysis_uuid = ?")
		args = append(args, v)
	}
	if v, ok := q.RootComponentUUID(); ok {
		conditions = append(conditions, "s.root_component_uuid = ?")
		args = append(args, v)
	}
	if v, ok := q.ComponentUUID(); ok {
		conditions = append(conditions, "s.component_uuid = ?")
		args = append(args, v)
	}
	if scopes, ok := q.Scopes(); ok {
		if len(scopes) == 0 {
			conditions = append(conditions, "1 = 0")
		} else {
			conditions = append(conditions, "s.scope IN ("+placeholders(len(scopes))+")")
			args = append(args, stringArgs(scopes)...)
		}
	}
	if status, ok := q.Status(); ok {
		if len(status) == 0 {
			conditions = append(conditions, "1 = 0")
		} else {
			conditions = append(conditions, "s.status IN ("+placeholders(len(status))+")")
			args = append(args, stringArgs(status)...)
		}
	}
	if v, ok := q.IsLast(); ok {
		conditions = append(conditions, "s.islast = ?")
		args = append(args, v)
	}
	if v, ok := q.NotPurged(); ok {
		if v {
			conditions = append(conditions, "(s.purge_status IS NULL OR s.purge_status = 0)")
		} else {
			conditions = append(conditions, "s.purge_status = 1")
		}
	}
	if v, ok := q.VersionEvent(); ok {
		exists := "EXISTS (SELECT 1 FROM events e WHERE e.analysis_uuid = s.analysis_uuid AND e.category = ?)"
		if !v {
			exists = "NOT " + exists
		}
		conditions = append(conditions, exists)
		args = append(args, purge.EventCategoryVersion)
	}

	return strings.Join(conditions, " AND "), args
}

// SelectSnapshotUUIDs returns the UUIDs of the snapshots matching query.
func (s *sqliteSession) SelectSnapshotUUIDs(ctx context.Context, query purge.SnapshotQuery) ([]string, error) {
	where, args := buildSnapshotWhere(query)
	sqlQuery := "SELECT s.uuid FROM snapshots s"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	return s.queryStrings(ctx, "select_snapshot_uuids", sqlQuery, args...)
}

func (s *sqliteSession) SelectSnapshotUUIDsByComponents(ctx context.Context, componentUUIDs []string) ([]string, error) {
	const op = "select_snapshot_uuids_by_components"
	if len(componentUUIDs) == 0 {
		return []string{}, s.check(op)
	}
	if len(componentUUIDs) > s.maxParameters {
		return nil, s.storageErr(op, fmt.Errorf("%d parameters exceed the limit of %d", len(componentUUIDs), s.maxParameters))
	}
	query := "SELECT uuid FROM snapshots WHERE component_uuid IN (" + placeholders(len(componentUUIDs)) + ")"
	return s.queryStrings(ctx, op, query, stringArgs(componentUUIDs)...)
}

// SelectPurgeableAnalyses returns the processed analyses of a component with
// or without a version event.
func (s *sqliteSession) SelectPurgeableAnalyses(ctx context.Context, componentUUID string, withVersionEvent bool) ([]purge.PurgeableAnalysis, error) {
	const op = "select_purgeable_analyses"
	if err := s.check(op); err != nil {
		return nil, err
	}

	exists := "EXISTS (SELECT 1 FROM events e WHERE e.analysis_uuid = s.uuid AND e.category = ?)"
	if !withVersionEvent {
		exists = "NOT " + exists
	}
	query := `
		SELECT s.uuid, s.created_at, s.islast
		FROM snapshots s
		WHERE s.component_uuid = ? AND s.status = ? AND s.uuid = s.analysis_uuid
		AND ` + exists

	rows, err := s.tx.QueryContext(ctx, query, componentUUID, purge.StatusProcessed, purge.EventCategoryVersion)
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	defer rows.Close()

	analyses := []purge.PurgeableAnalysis{}
	for rows.Next() {
		var (
			a       purge.PurgeableAnalysis
			created int64
		)
		if err := rows.Scan(&a.AnalysisUUID, &created, &a.IsLast); err != nil {
			return nil, s.storageErr(op, err)
		}
		a.Date = fromMillis(created)
		a.HasVersionEvent = withVersionEvent
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(op, err)
	}
	return analyses, nil
}

func (s *sqliteSession) DeleteSnapshotMeasures(ctx context.Context, snapshotUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_snapshot_measures",
		"DELETE FROM project_measures WHERE snapshot_uuid IN (%s)", snapshotUUIDs)
}

// DeleteSnapshotWastedMeasures removes the rule and person measures, which are
// not kept in history.
func (s *sqliteSession) DeleteSnapshotWastedMeasures(ctx context.Context, snapshotUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_snapshot_wasted_measures",
		"DELETE FROM project_measures WHERE snapshot_uuid IN (%s) AND (rule_id IS NOT NULL OR person_id IS NOT NULL)", snapshotUUIDs)
}

func (s *sqliteSession) DeleteSnapshotDuplications(ctx context.Context, snapshotUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_snapshot_duplications",
		"DELETE FROM duplications_index WHERE snapshot_uuid IN (%s)", snapshotUUIDs)
}

func (s *sqliteSession) DeleteSnapshotEvents(ctx context.Context, snapshotUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_snapshot_events",
		"DELETE FROM events WHERE analysis_uuid IN (%s)", snapshotUUIDs)
}

func (s *sqliteSession) DeleteSnapshots(ctx context.Context, snapshotUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_snapshots",
		"DELETE FROM snapshots WHERE uuid IN (%s)", snapshotUUIDs)
}

func (s *sqliteSession) UpdatePurgeStatus(ctx context.Context, snapshotUUIDs []string) (int64, error) {
	return s.execIn(ctx, "update_purge_status",
		"UPDATE snapshots SET purge_status = 1 WHERE uuid IN (%s) AND (purge_status IS NULL OR purge_status = 0)", snapshotUUIDs)
}

// SelectComponentsToDisable yields the enabled components of a project that
// have no last snapshot. Rows are read lazily from the cursor.
func (s *sqliteSession) SelectComponentsToDisable(ctx context.Context, projectUUID string) iter.Seq2[purge.IDUUIDPair, error] {
	const op = "select_components_to_disable"
	return func(yield func(purge.IDUUIDPair, error) bool) {
		if err := s.check(op); err != nil {
			yield(purge.IDUUIDPair{}, err)
			return
		}

		rows, err := s.tx.QueryContext(ctx, `
			SELECT p.id, p.uuid FROM projects p
			WHERE p.project_uuid = ? AND p.enabled = 1
			AND NOT EXISTS (SELECT 1 FROM snapshots s WHERE s.islast = 1 AND s.component_uuid = p.uuid)
			ORDER BY p.uuid`, projectUUID)
		if err != nil {
			yield(purge.IDUUIDPair{}, s.storageErr(op, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			pair, err := scanPair(rows)
			if err != nil {
				yield(purge.IDUUIDPair{}, s.storageErr(op, err))
				return
			}
			if !yield(pair, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(purge.IDUUIDPair{}, s.storageErr(op, err))
		}
	}
}

func (s *sqliteSession) DeleteResourceIndex(ctx context.Context, componentUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_resource_index",
		"DELETE FROM resource_index WHERE component_uuid IN (%s)", componentUUIDs)
}

func (s *sqliteSession) SetSnapshotIsLastToFalse(ctx context.Context, componentUUID string) (int64, error) {
	return s.exec(ctx, "set_snapshot_is_last_to_false",
		"UPDATE snapshots SET islast = 0 WHERE component_uuid = ? AND islast = 1", componentUUID)
}

func (s *sqliteSession) DeleteFileSourcesByFileUUID(ctx context.Context, fileUUID string) (int64, error) {
	return s.exec(ctx, "delete_file_sources_by_file",
		"DELETE FROM file_sources WHERE file_uuid = ?", fileUUID)
}

func (s *sqliteSession) DisableComponent(ctx context.Context, componentUUID string) (int64, error) {
	return s.exec(ctx, "disable_component",
		"UPDATE projects SET enabled = 0 WHERE uuid = ?", componentUUID)
}

// ResolveComponentIssuesNotAlreadyResolved closes the unresolved issues of a
// component with the REMOVED resolution.
func (s *sqliteSession) ResolveComponentIssuesNotAlreadyResolved(ctx context.Context, componentUUID string, now time.Time) (int64, error) {
	ms := toMillis(now)
	return s.exec(ctx, "resolve_component_issues", `
		UPDATE issues
		SET status = ?, resolution = ?, updated_at = ?, issue_close_date = ?
		WHERE component_uuid = ? AND resolution IS NULL`,
		purge.IssueStatusClosed, purge.ResolutionRemoved, ms, ms, componentUUID)
}

func (s *sqliteSession) DeleteComponentEvents(ctx context.Context, componentUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_component_events",
		"DELETE FROM events WHERE component_uuid IN (%s)", componentUUIDs)
}

func (s *sqliteSession) DeleteComponentIssueChanges(ctx context.Context, componentUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_component_issue_changes",
		"DELETE FROM issue_changes WHERE issue_key IN (SELECT kee FROM issues WHERE component_uuid IN (%s))", componentUUIDs)
}

func (s *sqliteSession) DeleteComponentIssues(ctx context.Context, componentUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_component_issues",
		"DELETE FROM issues WHERE component_uuid IN (%s)", componentUUIDs)
}

func (s *sqliteSession) DeleteComponents(ctx context.Context, componentUUIDs []string) (int64, error) {
	return s.execIn(ctx, "delete_components",
		"DELETE FROM projects WHERE uuid IN (%s)", componentUUIDs)
}

func (s *sqliteSession) DeleteFileSourcesByProject(ctx context.Context, rootUUID string) (int64, error) {
	return s.exec(ctx, "delete_file_sources", "DELETE FROM file_sources WHERE project_uuid = ?", rootUUID)
}

func (s *sqliteSession) DeleteCeActivityByComponent(ctx context.Context, componentUUID string) (int64, error) {
	return s.exec(ctx, "delete_ce_activity", "DELETE FROM ce_activity WHERE component_uuid = ?", componentUUID)
}

// SelectOldClosedIssueKeys returns the closed issues of a root closed strictly before the cutoff.
func (s *sqliteSession) SelectOldClosedIssueKeys(ctx context.Context, rootUUID string, before time.Time) ([]string, error) {
	return s.queryStrings(ctx, "select_old_closed_issue_keys", `
		SELECT kee FROM issues
		WHERE project_uuid = ? AND status = ? AND issue_close_date IS NOT NULL AND issue_close_date < ?
		ORDER BY kee`,
		rootUUID, purge.IssueStatusClosed, toMillis(before))
}

func (s *sqliteSession) DeleteIssueChangesByIssueKeys(ctx context.Context, issueKeys []string) (int64, error) {
	return s.execIn(ctx, "delete_issue_changes",
		"DELETE FROM issue_changes WHERE issue_key IN (%s)", issueKeys)
}

func (s *sqliteSession) DeleteIssuesByKeys(ctx context.Context, issueKeys []string) (int64, error) {
	return s.execIn(ctx, "delete_issues",
		"DELETE FROM issues WHERE kee IN (%s)", issueKeys)
}
