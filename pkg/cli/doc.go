/*
Package cli provides command-line interface utilities for the sweeper command.

Output Formatting:

Command results are printed as text, JSON or CSV. Tabular results implement
Table so that text output is aligned and CSV output is available:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Progress Reporting:

Purging several roots reports one step per root:

	progress := cli.NewProgressReporter(os.Stderr, "roots")
	progress.Start(int64(len(roots)))
	for i, root := range roots {
		// Purge root
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling and Exit Codes:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
	err := run(ctx)
	os.Exit(cli.ExitCode(err))
*/
package cli
