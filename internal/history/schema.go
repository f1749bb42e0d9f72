// Package history keeps a SQLite log of move attempts.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS moves (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	destination TEXT NOT NULL DEFAULT '',
	new_path    TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	companion   TEXT NOT NULL DEFAULT 'none',
	subfolder   INTEGER NOT NULL DEFAULT 0,
	trigger_mode TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_moves_path ON moves(path);
CREATE INDEX IF NOT EXISTS idx_moves_new_path ON moves(new_path);
CREATE INDEX IF NOT EXISTS idx_moves_created ON moves(created_at);
`

// DB wraps a sql.DB with history operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
