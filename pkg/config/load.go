package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SWEEPER_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields missing from the file keep their default value. The result is
// validated; environment variables are not consulted, use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Explicit empty values in the file fall back to defaults too
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SWEEPER_SECTION_FIELD (e.g., SWEEPER_STORAGE_PATH) and always
// take precedence over the file.
//
// An empty path skips the file and starts from the defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed numbers, booleans and durations are ignored.
func applyEnvOverrides(cfg *Config) {
	// Storage overrides
	if val := getenv("STORAGE_DRIVER"); val != "" {
		cfg.Storage.Driver = val
	}
	if val := getenv("STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}
	envInt("STORAGE_MAX_OPEN_CONNS", &cfg.Storage.MaxOpenConns)
	envInt("STORAGE_MAX_IDLE_CONNS", &cfg.Storage.MaxIdleConns)
	envBool("STORAGE_WAL_MODE", &cfg.Storage.WALMode)
	envDuration("STORAGE_BUSY_TIMEOUT", &cfg.Storage.BusyTimeout)
	envInt("STORAGE_MAX_PARAMETERS", &cfg.Storage.MaxParameters)

	// Retention overrides
	envBool("RETENTION_CLEAN_DIRECTORIES", &cfg.Retention.CleanDirectories)
	if val := getenv("RETENTION_SCOPES_WITHOUT_HISTORY"); val != "" {
		cfg.Retention.ScopesWithoutHistory = splitList(val)
	}
	envInt("RETENTION_CLOSED_ISSUES_MAX_AGE_DAYS", &cfg.Retention.ClosedIssuesMaxAgeDays)
	if val := getenv("RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}
	if val := getenv("RETENTION_ROOTS"); val != "" {
		cfg.Retention.Roots = splitList(val)
	}
	envInt("RETENTION_RETRY_MAX_ATTEMPTS", &cfg.Retention.Retry.MaxAttempts)
	envDuration("RETENTION_RETRY_INITIAL_INTERVAL", &cfg.Retention.Retry.InitialInterval)
	envDuration("RETENTION_RETRY_MAX_INTERVAL", &cfg.Retention.Retry.MaxInterval)

	// Telemetry overrides
	if val := getenv("TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := getenv("TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	if val := getenv("TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := getenv("TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	if val := getenv("TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}

func envInt(name string, dst *int) {
	if val := getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
