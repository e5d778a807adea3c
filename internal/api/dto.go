package api

import (
	"time"

	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/mapper"
	"github.com/starford/raido/internal/mapservice"
)

// SkeletonDetail is the full skeleton response type (aliased from the
// domain layer).
type SkeletonDetail = mapservice.SkeletonDetail

// DirectoryMap is the directory enumeration response (aliased).
type DirectoryMap = mapper.DirectoryMap

// RelatedResponse wraps a related-files query result.
type RelatedResponse struct {
	Path    string   `json:"path"`
	Depth   int      `json:"depth"`
	Related []string `json:"related"`
}

// GraphResponse wraps the import graph dump.
type GraphResponse struct {
	Nodes []graph.Node `json:"nodes"`
	Links []graph.Link `json:"links"`
}

// SaveSessionRequest is the request body for saving a session.
type SaveSessionRequest struct {
	SessionID     string `json:"session_id"`
	WorkspacePath string `json:"workspace_path"`
	Name          string `json:"name"`
	State         string `json:"state"`
}

// SessionResponse is a session in API responses.
type SessionResponse struct {
	SessionID     string    `json:"session_id"`
	WorkspacePath string    `json:"workspace_path"`
	Name          string    `json:"name"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SaveArtifactRequest is the request body for storing a context artifact.
type SaveArtifactRequest struct {
	ArtifactID string `json:"artifact_id"`
	Type       string `json:"type"`
	Scope      string `json:"scope"`
	Content    string `json:"content"`
	Metadata   string `json:"metadata"`
}

// ArtifactResponse is a context artifact in API responses.
type ArtifactResponse struct {
	ArtifactID string    `json:"artifact_id"`
	Type       string    `json:"type"`
	Scope      string    `json:"scope"`
	Content    string    `json:"content"`
	Metadata   string    `json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
