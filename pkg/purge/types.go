package purge

import "time"

// Component scopes.
const (
	// ScopeProject tags projects and modules.
	ScopeProject = "PRJ"
	// ScopeDirectory tags directories.
	ScopeDirectory = "DIR"
	// ScopeFile tags files.
	ScopeFile = "FIL"
)

// Snapshot status codes.
const (
	// StatusProcessed marks a snapshot whose analysis completed.
	StatusProcessed = "P"
	// StatusUnprocessed marks a snapshot of an aborted analysis.
	StatusUnprocessed = "U"
)

// Issue statuses and resolutions written by the purge.
const (
	IssueStatusOpen     = "OPEN"
	IssueStatusResolved = "RESOLVED"
	IssueStatusClosed   = "CLOSED"

	// ResolutionRemoved is set on issues of a disabled component.
	ResolutionRemoved = "REMOVED"
)

// EventCategoryVersion is the event category of version markers.
const EventCategoryVersion = "Version"

// Component is a node of the project tree.
type Component struct {
	// ID is the legacy numeric id. It is nil for rows only known by UUID.
	ID *int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// UUID is the durable key of the component.
	UUID string `json:"uuid" yaml:"uuid"`

	// RootUUID is the UUID of the top-level project of the tree.
	RootUUID string `json:"root_uuid" yaml:"root_uuid"`

	// ProjectUUID is the nearest enclosing project-scope component.
	// Projects and modules point to themselves.
	ProjectUUID string `json:"project_uuid" yaml:"project_uuid"`

	// ParentUUID is empty for the root only.
	ParentUUID string `json:"parent_uuid,omitempty" yaml:"parent_uuid,omitempty"`

	Scope     string `json:"scope" yaml:"scope"`
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Name      string `json:"name" yaml:"name"`
	LongName  string `json:"long_name,omitempty" yaml:"long_name,omitempty"`
	Enabled   bool   `json:"enabled" yaml:"enabled"`
}

// Pair returns the id/uuid pair of the component.
func (c Component) Pair() IDUUIDPair {
	return IDUUIDPair{ID: c.ID, UUID: c.UUID}
}

// IDUUIDPair identifies a component by UUID with its optional legacy id.
type IDUUIDPair struct {
	ID   *int64
	UUID string
}

// Snapshot is one analysis of one component.
type Snapshot struct {
	UUID              string    `json:"uuid" yaml:"uuid"`
	ComponentUUID     string    `json:"component_uuid" yaml:"component_uuid"`
	RootComponentUUID string    `json:"root_component_uuid" yaml:"root_component_uuid"`
	AnalysisUUID      string    `json:"analysis_uuid" yaml:"analysis_uuid"`
	Scope             string    `json:"scope" yaml:"scope"`
	Status            string    `json:"status" yaml:"status"`
	IsLast            bool      `json:"is_last" yaml:"is_last"`
	Purged            bool      `json:"purged" yaml:"purged"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
}

// Measure is a metric value attached to a snapshot.
// Measures carrying a rule or person id are detail data removed by the soft purge.
type Measure struct {
	SnapshotUUID  string  `yaml:"snapshot_uuid"`
	ComponentUUID string  `yaml:"component_uuid"`
	MetricKey     string  `yaml:"metric_key"`
	Value         float64 `yaml:"value"`
	RuleID        *int64  `yaml:"rule_id,omitempty"`
	PersonID      *int64  `yaml:"person_id,omitempty"`
}

// Duplication is a duplication-index row of a snapshot.
type Duplication struct {
	SnapshotUUID  string `yaml:"snapshot_uuid"`
	ComponentUUID string `yaml:"component_uuid"`
	Hash          string `yaml:"hash"`
	StartLine     int    `yaml:"start_line"`
	EndLine       int    `yaml:"end_line"`
}

// Event is an analysis event such as a version marker.
type Event struct {
	UUID          string    `yaml:"uuid"`
	AnalysisUUID  string    `yaml:"analysis_uuid"`
	ComponentUUID string    `yaml:"component_uuid"`
	Category      string    `yaml:"category"`
	Name          string    `yaml:"name"`
	CreatedAt     time.Time `yaml:"created_at"`
}

// Issue is a defect finding on a component.
type Issue struct {
	Key           string     `json:"key" yaml:"key"`
	ComponentUUID string     `json:"component_uuid" yaml:"component_uuid"`
	ProjectUUID   string     `json:"project_uuid" yaml:"project_uuid"`
	Status        string     `json:"status" yaml:"status"`
	Resolution    string     `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	CloseDate     *time.Time `json:"close_date,omitempty" yaml:"close_date,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"updated_at"`
}

// IssueChange is a change-history row of an issue.
type IssueChange struct {
	UUID      string    `yaml:"uuid"`
	IssueKey  string    `yaml:"issue_key"`
	Type      string    `yaml:"type"`
	Data      string    `yaml:"data"`
	CreatedAt time.Time `yaml:"created_at"`
}

// FileSource is the stored source of a file.
type FileSource struct {
	UUID        string `yaml:"uuid"`
	ProjectUUID string `yaml:"project_uuid"`
	FileUUID    string `yaml:"file_uuid"`
	Data        string `yaml:"data"`
}

// ResourceIndex is a search-index row of a component.
type ResourceIndex struct {
	ComponentUUID string `yaml:"component_uuid"`
	RootUUID      string `yaml:"root_uuid"`
	Kee           string `yaml:"kee"`
}

// CeActivity is a continuous-build activity record.
type CeActivity struct {
	UUID          string    `yaml:"uuid"`
	ComponentUUID string    `yaml:"component_uuid"`
	Status        string    `yaml:"status"`
	SubmittedAt   time.Time `yaml:"submitted_at"`
}

// PurgeableAnalysis describes a project analysis eligible for retention decisions.
type PurgeableAnalysis struct {
	AnalysisUUID    string    `json:"analysis_uuid"`
	Date            time.Time `json:"date"`
	HasVersionEvent bool      `json:"has_version_event"`
	IsLast          bool      `json:"is_last"`
}
