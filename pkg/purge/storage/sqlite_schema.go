package storage

import (
	"maps"
	"slices"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements creating the analysis database schema.
// Dates are stored as Unix milliseconds.
const Schema = `
-- Component tree
CREATE TABLE IF NOT EXISTS projects (
    uuid TEXT PRIMARY KEY,
    id INTEGER UNIQUE,
    root_uuid TEXT NOT NULL,
    project_uuid TEXT NOT NULL,
    parent_uuid TEXT,
    scope TEXT NOT NULL,
    qualifier TEXT,
    name TEXT,
    long_name TEXT,
    enabled INTEGER NOT NULL DEFAULT 1
);

-- One row per analysed component per analysis
CREATE TABLE IF NOT EXISTS snapshots (
    uuid TEXT PRIMARY KEY,
    component_uuid TEXT NOT NULL,
    root_component_uuid TEXT NOT NULL,
    analysis_uuid TEXT NOT NULL,
    scope TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'U',
    islast INTEGER NOT NULL DEFAULT 0,
    purge_status INTEGER,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS project_measures (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    snapshot_uuid TEXT NOT NULL,
    component_uuid TEXT NOT NULL,
    metric_key TEXT NOT NULL,
    value REAL,
    rule_id INTEGER,
    person_id INTEGER
);

CREATE TABLE IF NOT EXISTS duplications_index (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    snapshot_uuid TEXT NOT NULL,
    component_uuid TEXT NOT NULL,
    hash TEXT NOT NULL,
    start_line INTEGER,
    end_line INTEGER
);

CREATE TABLE IF NOT EXISTS events (
    uuid TEXT PRIMARY KEY,
    analysis_uuid TEXT NOT NULL,
    component_uuid TEXT NOT NULL,
    category TEXT,
    name TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
    kee TEXT PRIMARY KEY,
    component_uuid TEXT NOT NULL,
    project_uuid TEXT NOT NULL,
    status TEXT NOT NULL,
    resolution TEXT,
    issue_close_date INTEGER,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS issue_changes (
    uuid TEXT PRIMARY KEY,
    issue_key TEXT NOT NULL,
    change_type TEXT,
    change_data TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS file_sources (
    uuid TEXT PRIMARY KEY,
    project_uuid TEXT NOT NULL,
    file_uuid TEXT NOT NULL,
    data TEXT
);

CREATE TABLE IF NOT EXISTS resource_index (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kee TEXT NOT NULL,
    component_uuid TEXT NOT NULL,
    root_uuid TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ce_activity (
    uuid TEXT PRIMARY KEY,
    component_uuid TEXT NOT NULL,
    status TEXT NOT NULL,
    submitted_at INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_root_uuid ON projects(root_uuid);
CREATE INDEX IF NOT EXISTS idx_projects_project_uuid ON projects(project_uuid);
CREATE INDEX IF NOT EXISTS idx_projects_parent_uuid ON projects(parent_uuid);
CREATE INDEX IF NOT EXISTS idx_snapshots_component ON snapshots(component_uuid);
CREATE INDEX IF NOT EXISTS idx_snapshots_root_component ON snapshots(root_component_uuid);
CREATE INDEX IF NOT EXISTS idx_snapshots_analysis ON snapshots(analysis_uuid);
CREATE INDEX IF NOT EXISTS idx_measures_snapshot ON project_measures(snapshot_uuid);
CREATE INDEX IF NOT EXISTS idx_duplications_snapshot ON duplications_index(snapshot_uuid);
CREATE INDEX IF NOT EXISTS idx_events_analysis ON events(analysis_uuid);
CREATE INDEX IF NOT EXISTS idx_issues_component ON issues(component_uuid);
CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_uuid);
CREATE INDEX IF NOT EXISTS idx_issue_changes_issue_key ON issue_changes(issue_key);
CREATE INDEX IF NOT EXISTS idx_file_sources_file ON file_sources(file_uuid);
CREATE INDEX IF NOT EXISTS idx_resource_index_component ON resource_index(component_uuid);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// tables lists the tables CountRows accepts.
var tables = map[string]bool{
	"projects":           true,
	"snapshots":          true,
	"project_measures":   true,
	"duplications_index": true,
	"events":             true,
	"issues":             true,
	"issue_changes":      true,
	"file_sources":       true,
	"resource_index":     true,
	"ce_activity":        true,
}

// Tables returns the names of the analysis tables, sorted.
func Tables() []string {
	return slices.Sorted(maps.Keys(tables))
}
