package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"storage.driver", cfg.Storage.Driver, DefaultStorageDriver},
		{"storage.path", cfg.Storage.Path, DefaultStoragePath},
		{"storage.max_open_conns", cfg.Storage.MaxOpenConns, DefaultStorageMaxOpenConns},
		{"storage.max_idle_conns", cfg.Storage.MaxIdleConns, DefaultStorageMaxIdleConns},
		{"storage.busy_timeout", cfg.Storage.BusyTimeout, DefaultStorageBusyTimeout},
		{"storage.max_parameters", cfg.Storage.MaxParameters, DefaultStorageMaxParameters},
		{"retention.closed_issues_max_age_days", cfg.Retention.ClosedIssuesMaxAgeDays, DefaultClosedIssuesMaxAgeDays},
		{"retention.retry.max_attempts", cfg.Retention.Retry.MaxAttempts, DefaultRetryMaxAttempts},
		{"retention.retry.initial_interval", cfg.Retention.Retry.InitialInterval, DefaultRetryInitialInterval},
		{"retention.retry.max_interval", cfg.Retention.Retry.MaxInterval, DefaultRetryMaxInterval},
		{"telemetry.logging.level", cfg.Telemetry.Logging.Level, DefaultLogLevel},
		{"telemetry.logging.format", cfg.Telemetry.Logging.Format, DefaultLogFormat},
		{"telemetry.metrics.listen_address", cfg.Telemetry.Metrics.ListenAddress, DefaultMetricsListenAddress},
		{"telemetry.metrics.path", cfg.Telemetry.Metrics.Path, DefaultMetricsPath},
		{"telemetry.metrics.namespace", cfg.Telemetry.Metrics.Namespace, DefaultMetricsNamespace},
		{"telemetry.tracing.sampler", cfg.Telemetry.Tracing.Sampler, DefaultTracingSampler},
		{"telemetry.tracing.sample_ratio", cfg.Telemetry.Tracing.SampleRatio, DefaultTracingSampleRatio},
		{"telemetry.tracing.timeout", cfg.Telemetry.Tracing.Timeout, DefaultTracingTimeout},
		{"telemetry.tracing.service_name", cfg.Telemetry.Tracing.ServiceName, DefaultTracingServiceName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestApplyDefaults_PreservesSetValues(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{
			Driver:        "sqlite",
			Path:          "/var/lib/sweeper/analysis.db",
			MaxParameters: 999,
			BusyTimeout:   time.Second,
		},
		Retention: RetentionConfig{ClosedIssuesMaxAgeDays: 7},
	}
	ApplyDefaults(cfg)

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("driver = %q, want %q", cfg.Storage.Driver, "sqlite")
	}
	if cfg.Storage.Path != "/var/lib/sweeper/analysis.db" {
		t.Errorf("path = %q", cfg.Storage.Path)
	}
	if cfg.Storage.MaxParameters != 999 {
		t.Errorf("max parameters = %d, want 999", cfg.Storage.MaxParameters)
	}
	if cfg.Storage.BusyTimeout != time.Second {
		t.Errorf("busy timeout = %v, want 1s", cfg.Storage.BusyTimeout)
	}
	if cfg.Retention.ClosedIssuesMaxAgeDays != 7 {
		t.Errorf("closed issues max age = %d, want 7", cfg.Retention.ClosedIssuesMaxAgeDays)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	first := &Config{}
	ApplyDefaults(first)
	second := *first
	ApplyDefaults(&second)

	if first.Storage != second.Storage {
		t.Errorf("storage changed on second pass: %+v vs %+v", first.Storage, second.Storage)
	}
	if first.Telemetry != second.Telemetry {
		t.Errorf("telemetry changed on second pass: %+v vs %+v", first.Telemetry, second.Telemetry)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Storage.WALMode {
		t.Error("expected WAL mode enabled by default")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
	if cfg.Retention.CleanDirectories {
		t.Error("expected clean_directories disabled by default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default configuration is invalid: %v", err)
	}
}
