package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/sweeper/pkg/cli"
)

var deleteProjectFlags struct {
	yes bool
}

var deleteProjectCmd = &cobra.Command{
	Use:   "delete-project ROOT_UUID",
	Short: "Delete a root project and all of its data",
	Long: `Delete a root project, every component under it and all of their
snapshots, measures, events, issues, file sources and build activity.

The deletion is irreversible and requires --yes.

Example:
  sweeper delete-project 7f3c... --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleteProject,
}

func init() {
	rootCmd.AddCommand(deleteProjectCmd)

	deleteProjectCmd.Flags().BoolVarP(&deleteProjectFlags.yes, "yes", "y", false, "confirm the deletion")
}

func runDeleteProject(cmd *cobra.Command, args []string) error {
	root := args[0]
	if !deleteProjectFlags.yes {
		return cli.NewConfigError("yes", fmt.Sprintf("refusing to delete project %s without --yes", root))
	}

	store, err := openStore(&env.cfg.Storage)
	if err != nil {
		return cli.NewCommandError("delete-project", err)
	}
	defer store.Close()

	if err := newPurger(store).DeleteProject(cmd.Context(), root); err != nil {
		return cli.NewCommandError("delete-project", err)
	}

	if env.output == cli.FormatJSON {
		return render(cmd, map[string]string{"deleted": root})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Project %s deleted\n", root)
	return nil
}
