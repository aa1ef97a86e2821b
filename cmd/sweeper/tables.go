package main

import (
	"strconv"
	"time"

	"mercator-hq/sweeper/pkg/purge"
)

// reportTable renders purge reports one row per root.
type reportTable []*purge.Report

func (t reportTable) Header() []string {
	return []string{"ROOT", "PROJECTS", "ANALYSES", "ABORTED", "DELETED", "PURGED", "DISABLED", "ISSUES", "DURATION"}
}

func (t reportTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.RootUUID,
			strconv.Itoa(r.Projects),
			strconv.Itoa(r.AnalysesCleaned),
			strconv.FormatInt(r.AbortedDeleted, 10),
			strconv.FormatInt(r.SnapshotsDeleted, 10),
			strconv.FormatInt(r.SnapshotsPurged, 10),
			strconv.Itoa(r.ComponentsDisabled),
			strconv.Itoa(r.IssuesRemoved),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}

// analysisTable renders purgeable analyses oldest first.
type analysisTable []purge.PurgeableAnalysis

func (t analysisTable) Header() []string {
	return []string{"ANALYSIS", "DATE", "VERSION_EVENT", "LAST"}
}

func (t analysisTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, a := range t {
		rows = append(rows, []string{
			a.AnalysisUUID,
			a.Date.UTC().Format(time.RFC3339),
			strconv.FormatBool(a.HasVersionEvent),
			strconv.FormatBool(a.IsLast),
		})
	}
	return rows
}

// stepTable renders profiler steps.
type stepTable []purge.StepStats

func (t stepTable) Header() []string {
	return []string{"STEP", "CALLS", "ROWS", "ELAPSED"}
}

func (t stepTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, s := range t {
		rows = append(rows, []string{
			s.Step,
			strconv.Itoa(s.Calls),
			strconv.FormatInt(s.Rows, 10),
			s.Total.Round(time.Microsecond).String(),
		})
	}
	return rows
}
