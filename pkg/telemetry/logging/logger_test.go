package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/sweeper/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid JSON config",
			config:  Config{Level: "info", Format: "json"},
			wantErr: false,
		},
		{
			name:    "valid text config",
			config:  Config{Level: "debug", Format: "text"},
			wantErr: false,
		},
		{
			name:    "empty config uses defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "console"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logMethod func(*slog.Logger, string)
		wantLog   bool
	}{
		{"debug level logs debug", "debug", func(l *slog.Logger, msg string) { l.Debug(msg) }, true},
		{"info level filters debug", "info", func(l *slog.Logger, msg string) { l.Debug(msg) }, false},
		{"info level logs info", "info", func(l *slog.Logger, msg string) { l.Info(msg) }, true},
		{"warn level filters info", "warn", func(l *slog.Logger, msg string) { l.Info(msg) }, false},
		{"warn level logs warn", "warn", func(l *slog.Logger, msg string) { l.Warn(msg) }, true},
		{"error level filters warn", "error", func(l *slog.Logger, msg string) { l.Warn(msg) }, false},
		{"error level logs error", "error", func(l *slog.Logger, msg string) { l.Error(msg) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := New(Config{Level: tt.logLevel, Format: "json", Writer: buf})
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}

			testMsg := "test message"
			tt.logMethod(logger, testMsg)

			hasLog := strings.Contains(buf.String(), testMsg)
			if hasLog != tt.wantLog {
				t.Errorf("Log filtering failed: got log=%v, want log=%v, output=%s",
					hasLog, tt.wantLog, buf.String())
			}
		})
	}
}

func TestLogger_StructuredFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("purge completed", "snapshots_deleted", 12, "root_uuid", "root-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "purge completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["snapshots_deleted"] != float64(12) {
		t.Errorf("snapshots_deleted = %v, want 12", entry["snapshots_deleted"])
	}
	if entry["root_uuid"] != "root-1" {
		t.Errorf("root_uuid = %v, want root-1", entry["root_uuid"])
	}
}

func TestLogger_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"text", `msg=hello`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := New(Config{Level: "info", Format: tt.format, Writer: buf})
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}
			logger.Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := FromConfig(config.LoggingConfig{Level: "warn", Format: "text", AddSource: true}, buf)

	if cfg.Level != "warn" || cfg.Format != "text" || !cfg.AddSource {
		t.Errorf("FromConfig() = %+v", cfg)
	}
	if cfg.Writer != buf {
		t.Error("FromConfig() did not keep the writer")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
