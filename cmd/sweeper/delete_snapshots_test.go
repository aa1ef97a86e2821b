package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newDeleteSnapshotsTestCmd returns a command sharing the flags of
// deleteSnapshotsCmd. Only set flags reach the query, so resetting Changed
// isolates the cases.
func newDeleteSnapshotsTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "delete-snapshots"}
	cmd.Flags().AddFlagSet(deleteSnapshotsCmd.Flags())
	t.Cleanup(func() {
		deleteSnapshotsCmd.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
		})
	})
	return cmd
}

func TestSnapshotQueryFromFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantEmpty bool
		want      string
	}{
		{
			name:      "no flags",
			wantEmpty: true,
			want:      "{}",
		},
		{
			name: "analysis",
			args: []string{"--analysis", "a1"},
			want: "{analysis=a1}",
		},
		{
			name: "aborted builds of a root",
			args: []string{"--root-component", "r1", "--status", "U", "--last=false"},
			want: "{root_component=r1 status=[U] is_last=false}",
		},
		{
			name: "explicit false is a filter",
			args: []string{"--not-purged=false"},
			want: "{not_purged=false}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newDeleteSnapshotsTestCmd(t)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}

			q := snapshotQueryFromFlags(cmd)
			if q.IsEmpty() != tt.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", q.IsEmpty(), tt.wantEmpty)
			}
			if got := q.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
