// Package store provides the SQLite-backed durable store holding skeletons,
// import-graph edges, sessions, and context artifacts.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS skeletons (
	file_path     TEXT PRIMARY KEY,
	file_hash     TEXT NOT NULL DEFAULT '',
	language      TEXT NOT NULL DEFAULT '',
	skeleton_blob TEXT NOT NULL DEFAULT '{}',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS import_graph (
	source_path TEXT NOT NULL,
	target_path TEXT NOT NULL,
	import_type TEXT NOT NULL DEFAULT 'static',
	UNIQUE(source_path, target_path, import_type)
);

CREATE INDEX IF NOT EXISTS idx_import_graph_source ON import_graph(source_path);
CREATE INDEX IF NOT EXISTS idx_import_graph_target ON import_graph(target_path);

CREATE TABLE IF NOT EXISTS sessions (
	session_id     TEXT PRIMARY KEY,
	workspace_path TEXT NOT NULL DEFAULT '',
	session_name   TEXT NOT NULL DEFAULT '',
	state_blob     TEXT NOT NULL DEFAULT '{}',
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS context_artifacts (
	artifact_id   TEXT PRIMARY KEY,
	artifact_type TEXT NOT NULL DEFAULT '',
	scope         TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL DEFAULT '',
	metadata_blob TEXT NOT NULL DEFAULT '{}',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Import edge kinds stored in import_graph.import_type.
const (
	EdgeStatic   = "static"
	EdgeDynamic  = "dynamic"
	EdgeTypeOnly = "type-only"
)

// DB wraps a sql.DB with store-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
