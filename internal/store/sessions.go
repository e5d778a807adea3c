package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
)

// SessionRow represents a row in the sessions table. State is an opaque
// JSON blob owned by the agent; the store never inspects it.
type SessionRow struct {
	ID            string
	WorkspacePath string
	Name          string
	State         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ArtifactRow represents a row in the context_artifacts table. Content and
// Metadata are opaque to the store.
type ArtifactRow struct {
	ID        string
	Type      string
	Scope     string
	Content   string
	Metadata  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveSession inserts or replaces a session by id.
func (db *DB) SaveSession(s SessionRow) error {
	now := s.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	state := s.State
	if state == "" {
		state = "{}"
	}
	_, err := db.conn.Exec(`
		INSERT INTO sessions (session_id, workspace_path, session_name, state_blob, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			workspace_path = excluded.workspace_path,
			session_name   = excluded.session_name,
			state_blob     = excluded.state_blob,
			updated_at     = excluded.updated_at
	`, s.ID, s.WorkspacePath, s.Name, state, now, now)
	if err != nil {
		return fmt.Errorf("store: save session: %w", err)
	}
	return nil
}

// GetSession returns the session for id, or apperr.ErrNotFound.
func (db *DB) GetSession(id string) (*SessionRow, error) {
	var s SessionRow
	err := db.conn.QueryRow(`
		SELECT session_id, workspace_path, session_name, state_blob, created_at, updated_at
		FROM sessions WHERE session_id = ?
	`, id).Scan(&s.ID, &s.WorkspacePath, &s.Name, &s.State, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session %s: %w", id, err)
	}
	return &s, nil
}

// ListSessions returns sessions, optionally filtered by workspace path,
// most recently updated first.
func (db *DB) ListSessions(workspacePath string) ([]SessionRow, error) {
	query := `SELECT session_id, workspace_path, session_name, state_blob, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`
	args := []any{}
	if workspacePath != "" {
		query = `SELECT session_id, workspace_path, session_name, state_blob, created_at, updated_at
			FROM sessions WHERE workspace_path = ? ORDER BY updated_at DESC`
		args = append(args, workspacePath)
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.ID, &s.WorkspacePath, &s.Name, &s.State, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSession removes a session by id.
func (db *DB) DeleteSession(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM sessions WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}

// SaveArtifact inserts or replaces a context artifact by id.
func (db *DB) SaveArtifact(a ArtifactRow) error {
	now := a.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	meta := a.Metadata
	if meta == "" {
		meta = "{}"
	}
	_, err := db.conn.Exec(`
		INSERT INTO context_artifacts (artifact_id, artifact_type, scope, content, metadata_blob, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(artifact_id) DO UPDATE SET
			artifact_type = excluded.artifact_type,
			scope         = excluded.scope,
			content       = excluded.content,
			metadata_blob = excluded.metadata_blob,
			updated_at    = excluded.updated_at
	`, a.ID, a.Type, a.Scope, a.Content, meta, now, now)
	if err != nil {
		return fmt.Errorf("store: save artifact: %w", err)
	}
	return nil
}

// GetArtifact returns the artifact for id, or apperr.ErrNotFound.
func (db *DB) GetArtifact(id string) (*ArtifactRow, error) {
	var a ArtifactRow
	err := db.conn.QueryRow(`
		SELECT artifact_id, artifact_type, scope, content, metadata_blob, created_at, updated_at
		FROM context_artifacts WHERE artifact_id = ?
	`, id).Scan(&a.ID, &a.Type, &a.Scope, &a.Content, &a.Metadata, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get artifact %s: %w", id, err)
	}
	return &a, nil
}

// ListArtifacts returns artifacts filtered by scope and/or type (empty
// filters match everything), most recently updated first.
func (db *DB) ListArtifacts(scope, artifactType string) ([]ArtifactRow, error) {
	rows, err := db.conn.Query(`
		SELECT artifact_id, artifact_type, scope, content, metadata_blob, created_at, updated_at
		FROM context_artifacts
		WHERE (? = '' OR scope = ?) AND (? = '' OR artifact_type = ?)
		ORDER BY updated_at DESC
	`, scope, scope, artifactType, artifactType)
	if err != nil {
		return nil, fmt.Errorf("store: list artifacts: %w", err)
	}
	defer rows.Close()

	var out []ArtifactRow
	for rows.Next() {
		var a ArtifactRow
		if err := rows.Scan(&a.ID, &a.Type, &a.Scope, &a.Content, &a.Metadata, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteArtifact removes an artifact by id.
func (db *DB) DeleteArtifact(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM context_artifacts WHERE artifact_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete artifact: %w", err)
	}
	return nil
}
