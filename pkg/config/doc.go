// Package config provides configuration management for sweeper.
//
// Configuration is read from a YAML file, completed with defaults, then
// overridden by environment variables and validated.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("sweeper.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("sweeper.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SWEEPER_SECTION_FIELD:
//
//   - SWEEPER_STORAGE_PATH overrides storage.path
//   - SWEEPER_RETENTION_ROOTS overrides retention.roots (comma-separated)
//   - SWEEPER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example
//
//	storage:
//	  driver: sqlite3
//	  path: data/analysis.db
//	  max_parameters: 500
//	retention:
//	  clean_directories: true
//	  closed_issues_max_age_days: 30
//	  schedule: "0 3 * * *"
//	  roots: ["7d0f3c1e-..."]
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//
// # Hot Reload
//
// Watcher reloads the file on change. The scheduler uses it to pick up new
// retention settings without a restart.
package config
