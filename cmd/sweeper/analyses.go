package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/sweeper/pkg/cli"
)

var analysesCmd = &cobra.Command{
	Use:   "analyses COMPONENT_UUID",
	Short: "List the processed analyses of a component",
	Long: `List the processed analyses of a component, oldest first, with
whether each carries a version event and whether it is the last one.

Example:
  sweeper analyses 7f3c... --output csv`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyses,
}

func init() {
	rootCmd.AddCommand(analysesCmd)
}

func runAnalyses(cmd *cobra.Command, args []string) error {
	store, err := openStore(&env.cfg.Storage)
	if err != nil {
		return cli.NewCommandError("analyses", err)
	}
	defer store.Close()

	analyses, err := newPurger(store).SelectPurgeableAnalyses(cmd.Context(), args[0])
	if err != nil {
		return cli.NewCommandError("analyses", err)
	}

	if env.output == cli.FormatJSON {
		return render(cmd, analyses)
	}
	return render(cmd, analysisTable(analyses))
}
