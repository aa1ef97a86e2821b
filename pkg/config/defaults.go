package config

import "time"

// Default values for configuration fields.
const (
	// Storage defaults
	DefaultStorageDriver        = "sqlite3"
	DefaultStoragePath          = "data/analysis.db"
	DefaultStorageMaxOpenConns  = 4
	DefaultStorageMaxIdleConns  = 2
	DefaultStorageWALMode       = true
	DefaultStorageBusyTimeout   = 5 * time.Second
	DefaultStorageMaxParameters = 500

	// Retention defaults
	DefaultClosedIssuesMaxAgeDays = 30
	DefaultRetryMaxAttempts       = 3
	DefaultRetryInitialInterval   = time.Second
	DefaultRetryMaxInterval       = 30 * time.Second

	// Telemetry defaults
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "sweeper"
	DefaultTracingSampler       = "always"
	DefaultTracingSampleRatio   = 1.0
	DefaultTracingTimeout       = 10 * time.Second
	DefaultTracingServiceName   = "sweeper"
)

// Default returns a configuration with every default applied. Boolean fields
// whose default is true are only set here, so a file can still turn them off.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.WALMode = DefaultStorageWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset (zero) field with its default value.
func ApplyDefaults(cfg *Config) {
	// Storage defaults
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DefaultStorageDriver
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.MaxOpenConns == 0 {
		cfg.Storage.MaxOpenConns = DefaultStorageMaxOpenConns
	}
	if cfg.Storage.MaxIdleConns == 0 {
		cfg.Storage.MaxIdleConns = DefaultStorageMaxIdleConns
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}
	if cfg.Storage.MaxParameters == 0 {
		cfg.Storage.MaxParameters = DefaultStorageMaxParameters
	}

	// Retention defaults
	if cfg.Retention.ClosedIssuesMaxAgeDays == 0 {
		cfg.Retention.ClosedIssuesMaxAgeDays = DefaultClosedIssuesMaxAgeDays
	}
	if cfg.Retention.Retry.MaxAttempts == 0 {
		cfg.Retention.Retry.MaxAttempts = DefaultRetryMaxAttempts
	}
	if cfg.Retention.Retry.InitialInterval == 0 {
		cfg.Retention.Retry.InitialInterval = DefaultRetryInitialInterval
	}
	if cfg.Retention.Retry.MaxInterval == 0 {
		cfg.Retention.Retry.MaxInterval = DefaultRetryMaxInterval
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
