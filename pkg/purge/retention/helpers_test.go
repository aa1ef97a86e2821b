package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mercator-hq/sweeper/pkg/purge"
	"mercator-hq/sweeper/pkg/purge/storage"
)

// testNow is the clock of every purge in these tests.
var testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createProjectStore opens a store seeded with testdata/project.yaml.
func createProjectStore(t *testing.T, maxParameters int) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
		Driver:        storage.DriverModernc,
		Path:          filepath.Join(t.TempDir(), "analysis.db"),
		WALMode:       true,
		BusyTimeout:   5 * time.Second,
		MaxParameters: maxParameters,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.LoadFixture(context.Background(), filepath.Join("testdata", "project.yaml")); err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}
	return store
}

func newTestPurger(store purge.Store, opts ...Option) *Purger {
	opts = append([]Option{
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	return NewPurger(store, opts...)
}

// filePolicy keeps no file history and expires issues closed before May 2nd.
func filePolicy(root string) purge.Policy {
	return purge.NewPolicy(purge.IDUUIDPair{UUID: root}, []string{purge.ScopeFile}, testNow.AddDate(0, 0, -30))
}

func count(t *testing.T, store *storage.SQLiteStore, table, where string, args ...any) int64 {
	t.Helper()

	n, err := store.CountRows(context.Background(), table, where, args...)
	if err != nil {
		t.Fatalf("CountRows(%s) error = %v", table, err)
	}
	return n
}

// recordingListener records notifications.
type recordingListener struct {
	mu           sync.Mutex
	disabled     []string
	removalCalls int
	removed      []string
}

func (l *recordingListener) OnComponentDisabling(uuid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disabled = append(l.disabled, uuid)
}

func (l *recordingListener) OnIssuesRemoval(_ string, keys []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removalCalls++
	l.removed = append(l.removed, keys...)
}

// panickingListener panics on every notification.
type panickingListener struct{}

func (panickingListener) OnComponentDisabling(string)      { panic("listener failure") }
func (panickingListener) OnIssuesRemoval(string, []string) { panic("listener failure") }

var errInjected = errors.New("injected failure")

// flakyStore fails the first failures calls to Begin.
type flakyStore struct {
	purge.Store

	mu       sync.Mutex
	failures int
	begins   int
}

func (s *flakyStore) Begin(ctx context.Context) (purge.Session, error) {
	s.mu.Lock()
	s.begins++
	fail := s.begins <= s.failures
	s.mu.Unlock()

	if fail {
		return nil, errInjected
	}
	return s.Store.Begin(ctx)
}

func (s *flakyStore) Begins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins
}

// failingStore hands out sessions failing on closed-issue selection, the
// last phase of a run.
type failingStore struct {
	purge.Store
}

func (s failingStore) Begin(ctx context.Context) (purge.Session, error) {
	session, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return failingSession{session}, nil
}

type failingSession struct {
	purge.Session
}

func (failingSession) SelectOldClosedIssueKeys(context.Context, string, time.Time) ([]string, error) {
	return nil, errInjected
}

// stepCounter counts recorded steps by name.
type stepCounter struct {
	mu    sync.Mutex
	steps map[string]int
}

func (c *stepCounter) ObserveStep(step string, _ time.Duration, _ int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.steps == nil {
		c.steps = map[string]int{}
	}
	c.steps[step]++
}
