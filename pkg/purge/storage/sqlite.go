package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"

	"mercator-hq/sweeper/pkg/purge"
)

// Supported database/sql driver names.
const (
	// DriverMattn is the cgo driver github.com/mattn/go-sqlite3.
	DriverMattn = "sqlite3"
	// DriverModernc is the pure-Go driver modernc.org/sqlite.
	DriverModernc = "sqlite"
)

// DefaultMaxParameters is the default maximum length of a list argument.
const DefaultMaxParameters = 500

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Driver is the database/sql driver name: "sqlite3" or "sqlite".
	// Default: "sqlite3"
	Driver string

	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 2
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// MaxParameters bounds the list arguments of a single statement and
	// therefore the chunk size of batched operations.
	// Default: 500
	MaxParameters int
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:        DriverMattn,
		Path:          "data/analysis.db",
		MaxOpenConns:  4,
		MaxIdleConns:  2,
		WALMode:       true,
		BusyTimeout:   5 * time.Second,
		MaxParameters: DefaultMaxParameters,
	}
}

// SQLiteStore implements purge.Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

var _ purge.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database and creates the schema if needed.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverMattn
	}
	if config.MaxParameters <= 0 {
		config.MaxParameters = DefaultMaxParameters
	}

	logger := slog.Default().With("component", "purge.storage.sqlite")

	dsn, err := buildDSN(config)
	if err != nil {
		return nil, purge.NewStorageError(config.Driver, "open", err)
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, purge.NewStorageError(config.Driver, "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"driver", config.Driver,
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_parameters", config.MaxParameters,
	)

	return s, nil
}

// buildDSN applies the pragmas through the connection string so that every
// pooled connection gets them.
func buildDSN(config *SQLiteConfig) (string, error) {
	params := url.Values{}
	busyMs := config.BusyTimeout.Milliseconds()

	switch config.Driver {
	case DriverMattn:
		params.Set("_busy_timeout", fmt.Sprint(busyMs))
		if config.WALMode {
			params.Set("_journal_mode", "WAL")
		}
		params.Set("_txlock", "immediate")
	case DriverModernc:
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyMs))
		if config.WALMode {
			params.Add("_pragma", "journal_mode(WAL)")
		}
		params.Set("_txlock", "immediate")
	default:
		return "", fmt.Errorf("unsupported driver %q (supported: %s, %s)", config.Driver, DriverMattn, DriverModernc)
	}

	return "file:" + config.Path + "?" + params.Encode(), nil
}

// initialize creates the schema and verifies its version.
func (s *SQLiteStore) initialize() error {
	backend := s.config.Driver

	if _, err := s.db.Exec(Schema); err != nil {
		return purge.NewStorageError(backend, "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return purge.NewStorageError(backend, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return purge.NewStorageError(backend, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return purge.NewStorageError(backend, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Begin starts a purge session in a new transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (purge.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, purge.NewStorageError(s.config.Driver, "begin", err)
	}
	return &sqliteSession{
		tx:            tx,
		backend:       s.config.Driver,
		maxParameters: s.config.MaxParameters,
	}, nil
}

// MaxParameters returns the configured list-argument limit.
func (s *SQLiteStore) MaxParameters() int {
	return s.config.MaxParameters
}

// DB exposes the underlying handle, for fixtures and diagnostics.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return purge.NewStorageError(s.config.Driver, "close", err)
	}
	s.logger.Info("SQLite store closed")
	return nil
}

// CountRows counts the rows of table matching where. An empty where counts
// every row.
func (s *SQLiteStore) CountRows(ctx context.Context, table, where string, args ...any) (int64, error) {
	if !tables[table] {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, purge.NewStorageError(s.config.Driver, "count", err)
	}
	return count, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
