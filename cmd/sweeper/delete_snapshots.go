package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/sweeper/pkg/cli"
	"mercator-hq/sweeper/pkg/purge"
)

var deleteSnapshotsFlags struct {
	snapshot      string
	analysis      string
	component     string
	rootComponent string
	scopes        []string
	status        []string
	isLast        bool
	notPurged     bool
}

var deleteSnapshotsCmd = &cobra.Command{
	Use:   "delete-snapshots",
	Short: "Delete the snapshots matching a query",
	Long: `Delete the snapshots matching a query, with their measures,
duplications and events, in one transaction. At least one filter is required.

Examples:
  # Delete one analysis of a project
  sweeper delete-snapshots --analysis 2d1e...

  # Delete the aborted builds of a project
  sweeper delete-snapshots --root-component 7f3c... --status U --last=false`,
	RunE: runDeleteSnapshots,
}

func init() {
	rootCmd.AddCommand(deleteSnapshotsCmd)

	f := deleteSnapshotsCmd.Flags()
	f.StringVar(&deleteSnapshotsFlags.snapshot, "snapshot", "", "snapshot UUID")
	f.StringVar(&deleteSnapshotsFlags.analysis, "analysis", "", "analysis UUID")
	f.StringVar(&deleteSnapshotsFlags.component, "component", "", "component UUID")
	f.StringVar(&deleteSnapshotsFlags.rootComponent, "root-component", "", "root component UUID")
	f.StringSliceVar(&deleteSnapshotsFlags.scopes, "scope", nil, "component scopes (PRJ, DIR, FIL)")
	f.StringSliceVar(&deleteSnapshotsFlags.status, "status", nil, "snapshot statuses (P, U)")
	f.BoolVar(&deleteSnapshotsFlags.isLast, "last", false, "only last (true) or only past (false) snapshots")
	f.BoolVar(&deleteSnapshotsFlags.notPurged, "not-purged", false, "only snapshots not yet purged")
}

// snapshotQueryFromFlags builds the query of the set flags only.
func snapshotQueryFromFlags(cmd *cobra.Command) purge.SnapshotQuery {
	q := purge.NewSnapshotQuery()
	f := cmd.Flags()
	if f.Changed("snapshot") {
		q = q.WithSnapshotUUID(deleteSnapshotsFlags.snapshot)
	}
	if f.Changed("analysis") {
		q = q.WithAnalysisUUID(deleteSnapshotsFlags.analysis)
	}
	if f.Changed("component") {
		q = q.WithComponentUUID(deleteSnapshotsFlags.component)
	}
	if f.Changed("root-component") {
		q = q.WithRootComponentUUID(deleteSnapshotsFlags.rootComponent)
	}
	if f.Changed("scope") {
		q = q.WithScopes(deleteSnapshotsFlags.scopes...)
	}
	if f.Changed("status") {
		q = q.WithStatus(deleteSnapshotsFlags.status...)
	}
	if f.Changed("last") {
		q = q.WithIsLast(deleteSnapshotsFlags.isLast)
	}
	if f.Changed("not-purged") {
		q = q.WithNotPurged(deleteSnapshotsFlags.notPurged)
	}
	return q
}

func runDeleteSnapshots(cmd *cobra.Command, _ []string) error {
	query := snapshotQueryFromFlags(cmd)
	if query.IsEmpty() {
		return cli.NewConfigError("query", "at least one snapshot filter is required")
	}

	store, err := openStore(&env.cfg.Storage)
	if err != nil {
		return cli.NewCommandError("delete-snapshots", err)
	}
	defer store.Close()

	profiler := purge.NewProfiler()
	deleted, err := newPurger(store).DeleteSnapshots(cmd.Context(), profiler, query)
	if err != nil {
		return cli.NewCommandError("delete-snapshots", err)
	}

	if env.output == cli.FormatJSON {
		return render(cmd, map[string]any{
			"query":   query.String(),
			"deleted": deleted,
			"steps":   profiler.Stats(),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d snapshots deleted (%s)\n", deleted, query)
	return nil
}
