// Package logging builds the structured loggers used by sweeper.
//
// # Overview
//
// The package wraps Go's log/slog with:
//   - JSON and text output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Context-aware attributes: the run ID and root UUID of a purge, and the
//     trace and span IDs of the active OpenTelemetry span
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRunID(ctx, report.RunID)
//	logger.InfoContext(ctx, "purge completed") // includes run_id
package logging
