package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/sweeper/pkg/cli"
)

var seedCmd = &cobra.Command{
	Use:   "seed FIXTURE.yaml...",
	Short: "Load YAML datasets into the analysis database",
	Long: `Load one or more YAML datasets into the analysis database, each in
its own transaction. Rows without a UUID get a random one.

Example:
  sweeper seed testdata/project.yaml --config sweeper.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	store, err := openStore(&env.cfg.Storage)
	if err != nil {
		return cli.NewCommandError("seed", err)
	}
	defer store.Close()

	for _, path := range args {
		f, err := store.LoadFixture(cmd.Context(), path)
		if err != nil {
			return cli.NewCommandError("seed", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d components, %d snapshots, %d issues\n",
			path, len(f.Components), len(f.Snapshots), len(f.Issues))
	}
	return nil
}
