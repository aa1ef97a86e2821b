package config

import "time"

// Config is the root configuration structure for sweeper.
// It contains the analysis store settings, the retention policy tunables
// and the telemetry settings.
type Config struct {
	// Storage contains the analysis database connection settings.
	Storage StorageConfig `yaml:"storage"`

	// Retention contains the tunables of the purge runs: scopes kept out of
	// history, closed-issue expiry, schedule and roots.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig contains configuration for the SQLite analysis store.
type StorageConfig struct {
	// Driver is the database/sql driver.
	// Options: "sqlite3" (github.com/mattn/go-sqlite3, cgo),
	// "sqlite" (modernc.org/sqlite, pure Go)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/analysis.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 2
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a statement waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxParameters is the maximum length of a list argument in one
	// statement. It is the chunk size of every batched delete.
	// Default: 500
	MaxParameters int `yaml:"max_parameters"`
}

// RetentionConfig contains the retention policy tunables.
type RetentionConfig struct {
	// CleanDirectories drops directory snapshots from history in addition to
	// file snapshots.
	// Default: false
	CleanDirectories bool `yaml:"clean_directories"`

	// ScopesWithoutHistory lists extra scopes whose snapshots are removed once
	// their analysis is no longer the last one.
	// Options: "DIR", "FIL"
	ScopesWithoutHistory []string `yaml:"scopes_without_history"`

	// ClosedIssuesMaxAgeDays is the number of days a closed issue is kept.
	// Default: 30
	ClosedIssuesMaxAgeDays int `yaml:"closed_issues_max_age_days"`

	// Schedule is a cron expression for scheduled purges.
	// Example: "0 3 * * *" (daily at 3 AM)
	// Default: "" (no schedule)
	Schedule string `yaml:"schedule"`

	// Roots lists the root project UUIDs purged by the scheduler.
	Roots []string `yaml:"roots"`

	// Retry controls how the scheduler retries failed runs.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig configures the exponential backoff of scheduled runs.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per root and tick.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialInterval is the wait before the first retry.
	// Default: 1s
	InitialInterval time.Duration `yaml:"initial_interval"`

	// MaxInterval caps the wait between retries.
	// Default: 30s
	MaxInterval time.Duration `yaml:"max_interval"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the scheduler serves the metrics endpoint.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "sweeper"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of runs to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "sweeper"
	ServiceName string `yaml:"service_name"`
}
