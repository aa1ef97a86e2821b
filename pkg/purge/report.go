package purge

import "time"

// Report summarizes a purge run.
type Report struct {
	RunID              string        `json:"run_id"`
	RootUUID           string        `json:"root_uuid"`
	Projects           int           `json:"projects"`
	AbortedDeleted     int64         `json:"aborted_snapshots_deleted"`
	AnalysesCleaned    int           `json:"analyses_cleaned"`
	SnapshotsDeleted   int64         `json:"snapshots_deleted"`
	SnapshotsPurged    int64         `json:"snapshots_purged"`
	ComponentsDisabled int           `json:"components_disabled"`
	IssuesRemoved      int           `json:"issues_removed"`
	StartedAt          time.Time     `json:"started_at"`
	Duration           time.Duration `json:"duration"`
	Steps              []StepStats   `json:"steps,omitempty"`
}
