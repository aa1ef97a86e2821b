// Package storage implements purge.Store on SQLite.
//
// Two database/sql drivers are supported and selected by name:
// github.com/mattn/go-sqlite3 ("sqlite3", cgo) and modernc.org/sqlite
// ("sqlite", pure Go). Pragmas are passed through the DSN so every pooled
// connection gets them, and transactions start IMMEDIATE so a purge holds the
// write lock from its first statement.
//
// Every list statement rejects more than MaxParameters keys; callers chunk
// their input with purge.ExecuteLargeUpdates.
//
// LoadFixture seeds a database from a YAML dataset, for tests and the
// "sweeper seed" command.
package storage
