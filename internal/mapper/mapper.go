// Package mapper orchestrates skeleton lookups across the memory cache, the
// durable store, and cold parses, and keeps the persisted import graph in
// step with what the parser saw.
package mapper

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/fingerprint"
	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/skeleton"
	"github.com/starford/raido/internal/store"
	"github.com/starford/raido/internal/workspace"
)

// DefaultMaxFileSize bounds what the parser will read per file.
const DefaultMaxFileSize = 1 << 20

// DefaultMaxMapDepth bounds directory enumeration when no depth is
// configured.
const DefaultMaxMapDepth = 5

// ParseFunc produces a skeleton for a file, or an error when no information
// is available (unreadable, unsupported language).
type ParseFunc func(path string, maxSize int64) (*skeleton.Skeleton, error)

// EventCallback is called after a mapper-driven index change.
// kind is one of "updated", "invalidated", "deleted".
type EventCallback func(kind string, path string)

// Config carries the mapper's tunables. Zero values fall back to defaults.
type Config struct {
	MaxFileSize int64
	MaxMapDepth int
	Parse       ParseFunc
	Events      EventCallback
}

// Mapper owns one workspace's cache and store instances. Nothing here is
// ambient state: two mappers over different workspaces coexist in one
// process and tear down independently.
type Mapper struct {
	ws          *workspace.Workspace
	cache       *cache.SkeletonCache
	db          *store.DB
	graph       *graph.Index
	logger      *slog.Logger
	maxFileSize int64
	maxMapDepth int
	parse       ParseFunc
	events      EventCallback

	// flight collapses concurrent cold parses of one path into a single
	// piece of work; the loser waits for the winner's result.
	flight singleflight.Group
}

// New creates a Mapper over the given workspace, cache, and store.
func New(ws *workspace.Workspace, c *cache.SkeletonCache, db *store.DB, logger *slog.Logger, cfg Config) *Mapper {
	m := &Mapper{
		ws:          ws,
		cache:       c,
		db:          db,
		graph:       graph.New(db),
		logger:      logger,
		maxFileSize: cfg.MaxFileSize,
		maxMapDepth: cfg.MaxMapDepth,
		parse:       cfg.Parse,
		events:      cfg.Events,
	}
	if m.maxFileSize <= 0 {
		m.maxFileSize = DefaultMaxFileSize
	}
	if m.maxMapDepth <= 0 {
		m.maxMapDepth = DefaultMaxMapDepth
	}
	if m.parse == nil {
		m.parse = parser.Parse
	}
	return m
}

// GetSkeleton returns the skeleton for path, reading through memory cache,
// then durable store, then a cold parse. Store hits trust the hash recorded
// at write time rather than re-hashing the live file; staleness there is
// bounded by whatever previously deleted the record.
func (m *Mapper) GetSkeleton(path string) (*skeleton.Skeleton, error) {
	abs, err := m.ws.Resolve(path)
	if err != nil {
		return nil, apperr.ErrNotFound
	}

	if sk := m.cache.GetIfValid(abs); sk != nil {
		return sk, nil
	}

	row, err := m.db.GetSkeleton(abs)
	if err == nil {
		m.cache.SetWithFingerprint(abs, row.Skeleton, row.Hash)
		return row.Skeleton, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		m.logger.Warn("mapper: store read failed", slog.String("path", abs), slog.String("error", err.Error()))
	}

	return m.coldParse(abs)
}

// RefreshSkeleton discards both cache layers and the import edges for path,
// then forces a cold parse regardless of fingerprint match.
func (m *Mapper) RefreshSkeleton(path string) (*skeleton.Skeleton, error) {
	abs, err := m.ws.Resolve(path)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	m.cache.Invalidate(abs)
	if err := m.db.DeleteSkeleton(abs); err != nil {
		return nil, err
	}
	return m.coldParse(abs)
}

func (m *Mapper) coldParse(abs string) (*skeleton.Skeleton, error) {
	v, err, _ := m.flight.Do(abs, func() (any, error) {
		return m.parseAndStore(abs)
	})
	if err != nil {
		return nil, err
	}
	return v.(*skeleton.Skeleton), nil
}

// parseAndStore runs the external parser, then writes through to the memory
// cache and the durable store, replacing the file's import edges. Parse and
// filesystem errors degrade to not-found; store failures propagate.
func (m *Mapper) parseAndStore(abs string) (*skeleton.Skeleton, error) {
	sk, err := m.parse(abs, m.maxFileSize)
	if err != nil {
		if errors.Is(err, apperr.ErrUnsupported) {
			return nil, apperr.ErrUnsupported
		}
		if !errors.Is(err, os.ErrNotExist) {
			m.logger.Debug("mapper: parse failed", slog.String("path", abs), slog.String("error", err.Error()))
		}
		return nil, apperr.ErrNotFound
	}

	edges := m.resolveEdges(abs, sk)
	m.cache.Set(abs, sk)

	hash, err := fingerprint.File(abs)
	if err != nil {
		hash = ""
	}
	row := store.SkeletonRow{Path: abs, Hash: hash, Language: sk.Language, Skeleton: sk}
	if err := m.db.UpsertSkeleton(row, edges); err != nil {
		return nil, err
	}
	m.notify("updated", abs)
	return sk, nil
}

// resolveEdges maps relative import specifiers to local files and fills the
// Resolved field on each import. Externals (bare package specifiers) never
// become edges.
func (m *Mapper) resolveEdges(abs string, sk *skeleton.Skeleton) []store.Edge {
	dir := filepath.Dir(abs)
	seen := make(map[string]struct{})
	var edges []store.Edge
	for i := range sk.Imports {
		imp := &sk.Imports[i]
		if !strings.HasPrefix(imp.Source, "./") && !strings.HasPrefix(imp.Source, "../") {
			continue
		}
		target := resolveSpecifier(dir, imp.Source)
		if target == "" {
			continue
		}
		imp.Resolved = append(imp.Resolved, target)

		kind := store.EdgeStatic
		switch {
		case imp.Dynamic:
			kind = store.EdgeDynamic
		case imp.TypeOnly:
			kind = store.EdgeTypeOnly
		}
		key := target + "\x00" + kind
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		edges = append(edges, store.Edge{Source: abs, Target: target, Type: kind})
	}
	return edges
}

var resolveExts = []string{".ts", ".tsx", ".js", ".jsx", ".mts", ".mjs", ".cts", ".cjs"}

// resolveSpecifier finds the local file a relative specifier points to:
// exact path, then extension probing, then directory index. Returns "" when
// nothing exists.
func resolveSpecifier(dir, spec string) string {
	base := filepath.Clean(filepath.Join(dir, spec))
	if parser.Supported(base) && fileExists(base) {
		return base
	}
	for _, ext := range resolveExts {
		if p := base + ext; fileExists(p) {
			return p
		}
	}
	for _, ext := range resolveExts {
		if p := filepath.Join(base, "index"+ext); fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// OnFileChanged schedules a debounced invalidation of path. When the quiet
// period elapses, both the memory cache entry and the durable record plus
// its outgoing edges are gone; the next read re-parses.
func (m *Mapper) OnFileChanged(path string) {
	abs, err := m.ws.Resolve(path)
	if err != nil {
		return
	}
	m.cache.InvalidateDebounced(abs, func() {
		if err := m.db.DeleteSkeleton(abs); err != nil {
			m.logger.Warn("mapper: invalidate store failed", slog.String("path", abs), slog.String("error", err.Error()))
		}
		m.notify("invalidated", abs)
	})
}

// OnFileDeleted drops path from both layers immediately.
func (m *Mapper) OnFileDeleted(path string) {
	abs, err := m.ws.Resolve(path)
	if err != nil {
		return
	}
	m.cache.Invalidate(abs)
	if err := m.db.DeleteSkeleton(abs); err != nil {
		m.logger.Warn("mapper: delete store failed", slog.String("path", abs), slog.String("error", err.Error()))
	}
	m.notify("deleted", abs)
}

// RelatedFiles returns files within depth hops of path in the import graph,
// both directions.
func (m *Mapper) RelatedFiles(path string, depth int) ([]string, error) {
	abs, err := m.ws.Resolve(path)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	return m.graph.RelatedFiles(abs, depth)
}

// Graph exposes the graph index for dump endpoints.
func (m *Mapper) Graph() *graph.Index {
	return m.graph
}

// PruneMissing deletes store records whose files no longer exist on disk.
// It never parses; indexing stays lazy.
func (m *Mapper) PruneMissing() error {
	paths, err := m.db.AllPaths()
	if err != nil {
		return err
	}
	for p := range paths {
		if fileExists(p) {
			continue
		}
		if err := m.db.DeleteSkeleton(p); err != nil {
			m.logger.Warn("mapper: prune failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		m.logger.Debug("mapper: pruned stale record", slog.String("path", p))
	}
	return nil
}

// Stats reports cache and store sizes.
type Stats struct {
	CacheSize    int `json:"cache_size"`
	MaxCacheSize int `json:"max_cache_size"`
	Skeletons    int `json:"skeletons"`
	Edges        int `json:"edges"`
}

// Stats returns current cache occupancy and store counts.
func (m *Mapper) Stats() Stats {
	s := Stats{CacheSize: m.cache.Len(), MaxCacheSize: m.cache.Cap()}
	if n, err := m.db.SkeletonCount(); err == nil {
		s.Skeletons = n
	}
	if n, err := m.db.EdgeCount(); err == nil {
		s.Edges = n
	}
	return s
}

func (m *Mapper) notify(kind, path string) {
	if m.events != nil {
		m.events(kind, path)
	}
}
