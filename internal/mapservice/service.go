// Package mapservice coordinates the mapper and durable store for the
// serving layers.
package mapservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/mapper"
	"github.com/starford/raido/internal/skeleton"
	"github.com/starford/raido/internal/store"
)

// SkeletonDetail is the full representation of an indexed file.
type SkeletonDetail struct {
	Path      string             `json:"path"`
	Language  string             `json:"language"`
	Hash      string             `json:"hash,omitempty"`
	Skeleton  *skeleton.Skeleton `json:"skeleton"`
	Imports   []string           `json:"imports"`
	Importers []string           `json:"importers"`
	UpdatedAt time.Time          `json:"updated_at,omitempty"`
}

// Service coordinates mapper and store operations.
type Service struct {
	mapper *mapper.Mapper
	db     *store.DB
}

// NewService creates a new map service.
func NewService(m *mapper.Mapper, db *store.DB) *Service {
	return &Service{mapper: m, db: db}
}

// GetSkeleton reads a skeleton through the mapper and enriches it with
// graph neighbors and store metadata.
func (s *Service) GetSkeleton(_ context.Context, path string) (*SkeletonDetail, error) {
	sk, err := s.mapper.GetSkeleton(path)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(sk), nil
}

// RefreshSkeleton forces a cold re-parse of path.
func (s *Service) RefreshSkeleton(_ context.Context, path string) (*SkeletonDetail, error) {
	sk, err := s.mapper.RefreshSkeleton(path)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(sk), nil
}

func (s *Service) buildDetail(sk *skeleton.Skeleton) *SkeletonDetail {
	d := &SkeletonDetail{
		Path:      sk.Path,
		Language:  sk.Language,
		Skeleton:  sk,
		Imports:   []string{},
		Importers: []string{},
	}
	if row, err := s.db.GetSkeleton(sk.Path); err == nil {
		d.Hash = row.Hash
		d.UpdatedAt = row.UpdatedAt
	}
	if edges, err := s.db.Imports(sk.Path); err == nil {
		for _, e := range edges {
			d.Imports = append(d.Imports, e.Target)
		}
	}
	if edges, err := s.db.Importers(sk.Path); err == nil {
		for _, e := range edges {
			d.Importers = append(d.Importers, e.Source)
		}
	}
	return d
}

// MapDirectory enumerates a directory without parsing.
func (s *Service) MapDirectory(_ context.Context, path string, maxDepth int) (*mapper.DirectoryMap, error) {
	return s.mapper.MapDirectory(path, maxDepth)
}

// RelatedFiles returns files within depth hops of path in the import graph.
func (s *Service) RelatedFiles(_ context.Context, path string, depth int) ([]string, error) {
	return s.mapper.RelatedFiles(path, depth)
}

// Graph returns the full import-graph dump for visualization.
func (s *Service) Graph(_ context.Context) ([]graph.Node, []graph.Link, error) {
	return s.mapper.Graph().Dump()
}

// Stats returns cache and store statistics.
func (s *Service) Stats(_ context.Context) mapper.Stats {
	return s.mapper.Stats()
}

// SaveSession persists agent session state. The state blob is opaque.
func (s *Service) SaveSession(_ context.Context, row store.SessionRow) (*store.SessionRow, error) {
	if row.ID == "" {
		return nil, fmt.Errorf("mapservice: session id is required")
	}
	if err := s.db.SaveSession(row); err != nil {
		return nil, err
	}
	return s.db.GetSession(row.ID)
}

// GetSession loads a session by id.
func (s *Service) GetSession(_ context.Context, id string) (*store.SessionRow, error) {
	return s.db.GetSession(id)
}

// ListSessions lists sessions, optionally scoped to one workspace.
func (s *Service) ListSessions(_ context.Context, workspacePath string) ([]store.SessionRow, error) {
	return s.db.ListSessions(workspacePath)
}

// DeleteSession removes a session; deleting an unknown id is an error.
func (s *Service) DeleteSession(_ context.Context, id string) error {
	if _, err := s.db.GetSession(id); err != nil {
		return err
	}
	return s.db.DeleteSession(id)
}

// SaveArtifact persists a context artifact. Content and metadata are opaque.
func (s *Service) SaveArtifact(_ context.Context, row store.ArtifactRow) (*store.ArtifactRow, error) {
	if row.ID == "" {
		return nil, fmt.Errorf("mapservice: artifact id is required")
	}
	if err := s.db.SaveArtifact(row); err != nil {
		return nil, err
	}
	return s.db.GetArtifact(row.ID)
}

// GetArtifact loads an artifact by id.
func (s *Service) GetArtifact(_ context.Context, id string) (*store.ArtifactRow, error) {
	return s.db.GetArtifact(id)
}

// ListArtifacts lists artifacts filtered by scope and/or type.
func (s *Service) ListArtifacts(_ context.Context, scope, artifactType string) ([]store.ArtifactRow, error) {
	return s.db.ListArtifacts(scope, artifactType)
}

// DeleteArtifact removes an artifact; deleting an unknown id is an error.
func (s *Service) DeleteArtifact(_ context.Context, id string) error {
	if _, err := s.db.GetArtifact(id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteArtifact(id)
}
