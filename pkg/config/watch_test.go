package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "retention:\n  closed_issues_max_age_days: 10\n")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	go func() {
		_ = w.Watch(ctx, func(cfg *Config) { changes <- cfg })
	}()

	// Give the watcher loop time to start
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "retention:\n  closed_issues_max_age_days: 60\n")

	select {
	case cfg := <-changes:
		if cfg.Retention.ClosedIssuesMaxAgeDays != 60 {
			t.Errorf("expected reloaded max age 60, got %d", cfg.Retention.ClosedIssuesMaxAgeDays)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_IgnoresInvalidEdit(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "storage:\n  path: ./ok.db\n")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	go func() {
		_ = w.Watch(ctx, func(cfg *Config) { changes <- cfg })
	}()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "storage:\n  driver: oracle\n")

	select {
	case cfg := <-changes:
		t.Errorf("invalid configuration must not be delivered, got %+v", cfg.Storage)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	if _, err := NewWatcher("/nonexistent/dir/sweeper.yaml", 0, nil); err == nil {
		t.Error("expected error for missing directory")
	}
}
