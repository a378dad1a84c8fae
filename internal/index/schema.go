// Package index provides SQLite-backed headline indexing with optional FTS5
// full-text search over outline titles and body text.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS headlines (
	path      TEXT NOT NULL,
	lnum      INTEGER NOT NULL,
	level     INTEGER NOT NULL,
	title     TEXT NOT NULL DEFAULT '',
	todo      TEXT NOT NULL DEFAULT '',
	todo_type TEXT NOT NULL DEFAULT '',
	priority  TEXT NOT NULL DEFAULT '',
	tags      TEXT NOT NULL DEFAULT '[]',
	category  TEXT NOT NULL DEFAULT '',
	content   TEXT NOT NULL DEFAULT '',
	archived  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (path, lnum)
);

CREATE TABLE IF NOT EXISTS agenda_dates (
	path TEXT NOT NULL,
	lnum INTEGER NOT NULL,
	day  TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT 'NONE',
	UNIQUE(path, lnum, day, kind)
);

CREATE INDEX IF NOT EXISTS idx_headlines_path ON headlines(path);
CREATE INDEX IF NOT EXISTS idx_agenda_day ON agenda_dates(day);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
