package main

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/sweeper/pkg/cli"
	"mercator-hq/sweeper/pkg/purge"
	"mercator-hq/sweeper/pkg/purge/retention"
)

var purgeFlags struct {
	roots                  []string
	cleanDirectories       bool
	scopes                 []string
	closedIssuesMaxAgeDays int
	steps                  bool
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Apply the retention policy to root projects",
	Long: `Apply the retention policy to one or more root projects.

Each root is purged in its own transaction: a failure leaves that root
untouched and the remaining roots are still purged.

Examples:
  # Purge the roots listed in retention.roots
  sweeper purge --config sweeper.yaml

  # Purge two roots, keeping closed issues for a week
  sweeper purge --root 7f3c... --root 91ab... --closed-issues-max-age-days 7

  # Show the time spent in each step
  sweeper purge --root 7f3c... --steps`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)

	purgeCmd.Flags().StringSliceVarP(&purgeFlags.roots, "root", "r", nil, "root project UUID (repeatable, default: retention.roots)")
	purgeCmd.Flags().BoolVar(&purgeFlags.cleanDirectories, "clean-directories", false, "also drop directory history")
	purgeCmd.Flags().StringSliceVar(&purgeFlags.scopes, "scope", nil, "extra scope without history (DIR, FIL)")
	purgeCmd.Flags().IntVar(&purgeFlags.closedIssuesMaxAgeDays, "closed-issues-max-age-days", 0, "days a closed issue is kept")
	purgeCmd.Flags().BoolVar(&purgeFlags.steps, "steps", false, "print the profiled steps of each run")
}

func runPurge(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings := env.cfg.Retention
	if cmd.Flags().Changed("clean-directories") {
		settings.CleanDirectories = purgeFlags.cleanDirectories
	}
	if len(purgeFlags.scopes) > 0 {
		for _, scope := range purgeFlags.scopes {
			if scope != purge.ScopeDirectory && scope != purge.ScopeFile {
				return cli.NewConfigError("scope", fmt.Sprintf("invalid scope %q: must be DIR or FIL", scope))
			}
		}
		settings.ScopesWithoutHistory = slices.Concat(settings.ScopesWithoutHistory, purgeFlags.scopes)
	}
	if cmd.Flags().Changed("closed-issues-max-age-days") {
		if purgeFlags.closedIssuesMaxAgeDays < 0 {
			return cli.NewConfigError("closed-issues-max-age-days", "must be non-negative")
		}
		settings.ClosedIssuesMaxAgeDays = purgeFlags.closedIssuesMaxAgeDays
	}

	roots := purgeFlags.roots
	if len(roots) == 0 {
		roots = settings.Roots
	}
	if len(roots) == 0 {
		return cli.NewConfigError("root", "no root project: pass --root or set retention.roots")
	}

	store, err := openStore(&env.cfg.Storage)
	if err != nil {
		return cli.NewCommandError("purge", err)
	}
	defer store.Close()

	purger := newPurger(store)
	listener := purge.NewLogListener(env.logger)

	var progress cli.ProgressReporter
	if len(roots) > 1 && env.output == cli.FormatText {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "roots")
		progress.Start(int64(len(roots)))
	}

	var (
		reports []*purge.Report
		errs    []error
	)
	for i, root := range roots {
		policy := retention.PolicyFromConfig(&settings, purge.IDUUIDPair{UUID: root}, time.Now())
		report, err := purger.Purge(ctx, policy, listener, nil)
		if err != nil {
			errs = append(errs, err)
		} else {
			reports = append(reports, report)
		}
		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}
	if progress != nil {
		progress.Finish()
	}

	if len(reports) > 0 {
		if err := renderReports(cmd, reports); err != nil {
			return err
		}
	}

	if len(errs) > 0 {
		return cli.NewCommandError("purge", errors.Join(errs...))
	}
	return nil
}

func renderReports(cmd *cobra.Command, reports []*purge.Report) error {
	if env.output == cli.FormatJSON {
		return render(cmd, reports)
	}
	if err := render(cmd, reportTable(reports)); err != nil {
		return err
	}
	if !purgeFlags.steps {
		return nil
	}
	for _, r := range reports {
		if err := render(cmd, stepTable(r.Steps)); err != nil {
			return err
		}
	}
	return nil
}
