package main

import (
	"testing"
	"time"

	"mercator-hq/sweeper/pkg/cli"
)

var (
	_ cli.Table = reportTable(nil)
	_ cli.Table = analysisTable(nil)
	_ cli.Table = stepTable(nil)
)

func TestReportTable(t *testing.T) {
	table := reportTable{{
		RootUUID:           "root-1",
		Projects:           2,
		AnalysesCleaned:    3,
		AbortedDeleted:     1,
		SnapshotsDeleted:   10,
		SnapshotsPurged:    4,
		ComponentsDisabled: 1,
		IssuesRemoved:      5,
		Duration:           1500 * time.Microsecond,
	}}

	rows := table.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := []string{"root-1", "2", "3", "1", "10", "4", "1", "5", "2ms"}
	if len(rows[0]) != len(table.Header()) {
		t.Fatalf("row has %d cells, header has %d", len(rows[0]), len(table.Header()))
	}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("cell %d (%s) = %q, want %q", i, table.Header()[i], rows[0][i], want[i])
		}
	}
}

func TestAnalysisTable(t *testing.T) {
	date := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	table := analysisTable{{AnalysisUUID: "a1", Date: date, HasVersionEvent: true, IsLast: false}}

	got := table.Rows()[0]
	want := []string{"a1", "2026-03-01T12:00:00Z", "true", "false"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStepTable(t *testing.T) {
	table := stepTable{{Step: "deleteSnapshots", Calls: 2, Rows: 7, Total: 3 * time.Millisecond}}

	got := table.Rows()[0]
	want := []string{"deleteSnapshots", "2", "7", "3ms"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, got[i], want[i])
		}
	}
}
