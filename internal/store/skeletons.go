package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/skeleton"
)

// SkeletonRow represents a row in the skeletons table.
type SkeletonRow struct {
	Path      string
	Hash      string
	Language  string
	Skeleton  *skeleton.Skeleton
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Edge is a directed import relationship between two files.
type Edge struct {
	Source string
	Target string
	Type   string
}

// UpsertSkeleton replaces the skeleton record for row.Path and the full set
// of outgoing import edges in one transaction. Stale edges from removed
// imports never survive a refresh; re-inserting an identical edge is a
// no-op. Any failure rolls the whole batch back.
func (db *DB) UpsertSkeleton(row SkeletonRow, edges []Edge) error {
	blob, err := json.Marshal(row.Skeleton)
	if err != nil {
		return fmt.Errorf("store: marshal skeleton: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	now := row.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO skeletons (file_path, file_hash, language, skeleton_blob, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			file_hash     = excluded.file_hash,
			language      = excluded.language,
			skeleton_blob = excluded.skeleton_blob,
			updated_at    = excluded.updated_at
	`, row.Path, row.Hash, row.Language, string(blob), now, now)
	if err != nil {
		return fmt.Errorf("store: upsert skeleton: %w", err)
	}

	// Replace edges: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM import_graph WHERE source_path = ?`, row.Path); err != nil {
		return fmt.Errorf("store: delete edges: %w", err)
	}
	if len(edges) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO import_graph (source_path, target_path, import_type) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("store: prepare edge insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range edges {
			if _, err := stmt.Exec(row.Path, e.Target, e.Type); err != nil {
				return fmt.Errorf("store: insert edge: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetSkeleton returns the stored record for path, or apperr.ErrNotFound.
func (db *DB) GetSkeleton(path string) (*SkeletonRow, error) {
	var row SkeletonRow
	var blob string
	err := db.conn.QueryRow(`
		SELECT file_path, file_hash, language, skeleton_blob, created_at, updated_at
		FROM skeletons WHERE file_path = ?
	`, path).Scan(&row.Path, &row.Hash, &row.Language, &blob, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get skeleton %s: %w", path, err)
	}
	var sk skeleton.Skeleton
	if err := json.Unmarshal([]byte(blob), &sk); err != nil {
		return nil, fmt.Errorf("store: decode skeleton %s: %w", path, err)
	}
	row.Skeleton = &sk
	return &row, nil
}

// DeleteSkeleton removes the record for path and its outgoing edges.
func (db *DB) DeleteSkeleton(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM import_graph WHERE source_path = ?`, path); err != nil {
		return fmt.Errorf("store: delete edges: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM skeletons WHERE file_path = ?`, path); err != nil {
		return fmt.Errorf("store: delete skeleton: %w", err)
	}
	return tx.Commit()
}

// Imports returns the outgoing edges whose source is path.
func (db *DB) Imports(path string) ([]Edge, error) {
	return db.queryEdges(`SELECT source_path, target_path, import_type FROM import_graph WHERE source_path = ?`, path)
}

// Importers returns the incoming edges whose target is path.
func (db *DB) Importers(path string) ([]Edge, error) {
	return db.queryEdges(`SELECT source_path, target_path, import_type FROM import_graph WHERE target_path = ?`, path)
}

func (db *DB) queryEdges(query, path string) ([]Edge, error) {
	rows, err := db.conn.Query(query, path)
	if err != nil {
		return nil, fmt.Errorf("store: query edges: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Type); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllEdges returns every import edge, for graph dumps.
func (db *DB) AllEdges() ([]Edge, error) {
	rows, err := db.conn.Query(`SELECT source_path, target_path, import_type FROM import_graph`)
	if err != nil {
		return nil, fmt.Errorf("store: all edges: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Type); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed file path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT file_path FROM skeletons`)
	if err != nil {
		return nil, fmt.Errorf("store: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// SkeletonCount returns the number of stored skeleton records.
func (db *DB) SkeletonCount() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM skeletons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: skeleton count: %w", err)
	}
	return n, nil
}

// EdgeCount returns the number of stored import edges.
func (db *DB) EdgeCount() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM import_graph`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: edge count: %w", err)
	}
	return n, nil
}
