package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mercator-hq/sweeper/pkg/purge"
)

// Fixture is a dataset loaded into the store in one transaction.
// It is read from YAML by LoadFixture; rows without a UUID get a random one.
type Fixture struct {
	Components    []purge.Component     `yaml:"components"`
	Snapshots     []purge.Snapshot      `yaml:"snapshots"`
	Measures      []purge.Measure       `yaml:"measures"`
	Duplications  []purge.Duplication   `yaml:"duplications"`
	Events        []purge.Event         `yaml:"events"`
	Issues        []purge.Issue         `yaml:"issues"`
	IssueChanges  []purge.IssueChange   `yaml:"issue_changes"`
	FileSources   []purge.FileSource    `yaml:"file_sources"`
	ResourceIndex []purge.ResourceIndex `yaml:"resource_index"`
	CeActivities  []purge.CeActivity    `yaml:"ce_activity"`
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LoadFixture reads a YAML dataset from path and inserts it.
func (s *SQLiteStore) LoadFixture(ctx context.Context, path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %q: %w", path, err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %q: %w", path, err)
	}

	if err := s.Insert(ctx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Insert writes every row of f in a single transaction.
func (s *SQLiteStore) Insert(ctx context.Context, f *Fixture) error {
	f.assignUUIDs()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return purge.NewStorageError(s.config.Driver, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertAll(ctx, tx, f); err != nil {
		return purge.NewStorageError(s.config.Driver, "insert", err)
	}

	if err := tx.Commit(); err != nil {
		return purge.NewStorageError(s.config.Driver, "commit", err)
	}
	return nil
}

// insertAll writes parents before the rows referencing them.
func insertAll(ctx context.Context, db execer, f *Fixture) error {
	if err := each(ctx, db, f.Components, insertComponent); err != nil {
		return err
	}
	if err := each(ctx, db, f.Snapshots, insertSnapshot); err != nil {
		return err
	}
	if err := each(ctx, db, f.Measures, insertMeasure); err != nil {
		return err
	}
	if err := each(ctx, db, f.Duplications, insertDuplication); err != nil {
		return err
	}
	if err := each(ctx, db, f.Events, insertEvent); err != nil {
		return err
	}
	if err := each(ctx, db, f.Issues, insertIssue); err != nil {
		return err
	}
	if err := each(ctx, db, f.IssueChanges, insertIssueChange); err != nil {
		return err
	}
	if err := each(ctx, db, f.FileSources, insertFileSource); err != nil {
		return err
	}
	if err := each(ctx, db, f.ResourceIndex, insertResourceIndex); err != nil {
		return err
	}
	return each(ctx, db, f.CeActivities, insertCeActivity)
}

func each[T any](ctx context.Context, db execer, rows []T, insert func(context.Context, execer, T) error) error {
	for _, row := range rows {
		if err := insert(ctx, db, row); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fixture) assignUUIDs() {
	for i := range f.Components {
		if f.Components[i].UUID == "" {
			f.Components[i].UUID = uuid.NewString()
		}
	}
	for i := range f.Snapshots {
		if f.Snapshots[i].UUID == "" {
			f.Snapshots[i].UUID = uuid.NewString()
		}
		if f.Snapshots[i].AnalysisUUID == "" {
			f.Snapshots[i].AnalysisUUID = f.Snapshots[i].UUID
		}
	}
	for i := range f.Events {
		if f.Events[i].UUID == "" {
			f.Events[i].UUID = uuid.NewString()
		}
	}
	for i := range f.Issues {
		if f.Issues[i].Key == "" {
			f.Issues[i].Key = uuid.NewString()
		}
	}
	for i := range f.IssueChanges {
		if f.IssueChanges[i].UUID == "" {
			f.IssueChanges[i].UUID = uuid.NewString()
		}
	}
	for i := range f.FileSources {
		if f.FileSources[i].UUID == "" {
			f.FileSources[i].UUID = uuid.NewString()
		}
	}
	for i := range f.CeActivities {
		if f.CeActivities[i].UUID == "" {
			f.CeActivities[i].UUID = uuid.NewString()
		}
	}
}

// nullString converts empty strings to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func insertComponent(ctx context.Context, db execer, c purge.Component) error {
	var id any
	if c.ID != nil {
		id = *c.ID
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO projects (uuid, id, root_uuid, project_uuid, parent_uuid, scope, qualifier, name, long_name, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UUID, id, c.RootUUID, c.ProjectUUID, nullString(c.ParentUUID), c.Scope,
		nullString(c.Qualifier), nullString(c.Name), nullString(c.LongName), c.Enabled)
	return err
}

func insertSnapshot(ctx context.Context, db execer, v purge.Snapshot) error {
	var purgeStatus any
	if v.Purged {
		purgeStatus = 1
	}
	status := v.Status
	if status == "" {
		status = purge.StatusUnprocessed
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO snapshots (uuid, component_uuid, root_component_uuid, analysis_uuid, scope, status, islast, purge_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.UUID, v.ComponentUUID, v.RootComponentUUID, v.AnalysisUUID, v.Scope, status, v.IsLast, purgeStatus, toMillis(v.CreatedAt))
	return err
}

func insertMeasure(ctx context.Context, db execer, v purge.Measure) error {
	var ruleID, personID any
	if v.RuleID != nil {
		ruleID = *v.RuleID
	}
	if v.PersonID != nil {
		personID = *v.PersonID
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO project_measures (snapshot_uuid, component_uuid, metric_key, value, rule_id, person_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.SnapshotUUID, v.ComponentUUID, v.MetricKey, v.Value, ruleID, personID)
	return err
}

func insertDuplication(ctx context.Context, db execer, v purge.Duplication) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO duplications_index (snapshot_uuid, component_uuid, hash, start_line, end_line)
		VALUES (?, ?, ?, ?, ?)`,
		v.SnapshotUUID, v.ComponentUUID, v.Hash, v.StartLine, v.EndLine)
	return err
}

func insertEvent(ctx context.Context, db execer, v purge.Event) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO events (uuid, analysis_uuid, component_uuid, category, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.UUID, v.AnalysisUUID, v.ComponentUUID, nullString(v.Category), nullString(v.Name), toMillis(v.CreatedAt))
	return err
}

func insertIssue(ctx context.Context, db execer, v purge.Issue) error {
	var closeDate any
	if v.CloseDate != nil {
		closeDate = toMillis(*v.CloseDate)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO issues (kee, component_uuid, project_uuid, status, resolution, issue_close_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.Key, v.ComponentUUID, v.ProjectUUID, v.Status, nullString(v.Resolution), closeDate, toMillis(v.UpdatedAt))
	return err
}

func insertIssueChange(ctx context.Context, db execer, v purge.IssueChange) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO issue_changes (uuid, issue_key, change_type, change_data, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		v.UUID, v.IssueKey, nullString(v.Type), nullString(v.Data), toMillis(v.CreatedAt))
	return err
}

func insertFileSource(ctx context.Context, db execer, v purge.FileSource) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO file_sources (uuid, project_uuid, file_uuid, data) VALUES (?, ?, ?, ?)`,
		v.UUID, v.ProjectUUID, v.FileUUID, nullString(v.Data))
	return err
}

func insertResourceIndex(ctx context.Context, db execer, v purge.ResourceIndex) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO resource_index (kee, component_uuid, root_uuid) VALUES (?, ?, ?)`,
		v.Kee, v.ComponentUUID, v.RootUUID)
	return err
}

func insertCeActivity(ctx context.Context, db execer, v purge.CeActivity) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO ce_activity (uuid, component_uuid, status, submitted_at) VALUES (?, ?, ?, ?)`,
		v.UUID, v.ComponentUUID, v.Status, toMillis(v.SubmittedAt))
	return err
}
