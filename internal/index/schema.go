// Package index provides a SQLite-backed graph of documents and the links
// between them.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the graph in memory; it is rebuilt on every run.
const MemoryDSN = ":memory:"

// schema is applied statement by statement on Open.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		path       TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		checksum   TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		kind   TEXT NOT NULL DEFAULT 'markdown',
		line   INTEGER NOT NULL DEFAULT 0,
		UNIQUE(source, target, kind, line)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_links_target ON links(target)`,
}

// DB wraps a sql.DB with link graph operations.
type DB struct {
	conn *sql.DB
}

// driverDSN adds connection parameters to a user DSN. The in-memory graph
// takes none; a file graph runs in WAL mode with a busy timeout.
func driverDSN(dsn string) string {
	if dsn == MemoryDSN {
		return dsn
	}
	return dsn + "?_journal_mode=WAL&_busy_timeout=5000"
}

// Open opens the graph at dsn (a file path or MemoryDSN) and applies the
// schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", driverDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", dsn, err)
	}
	// Each connection to ":memory:" is a separate empty database.
	conn.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("index: apply schema: %w", err)
		}
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
