// Package graph derives a queryable dependency view from the import edges
// persisted in the durable store.
package graph

import (
	"fmt"
	"sort"

	"github.com/starford/raido/internal/store"
)

// EdgeSource is the subset of the store the graph index reads.
type EdgeSource interface {
	Imports(path string) ([]store.Edge, error)
	Importers(path string) ([]store.Edge, error)
	AllEdges() ([]store.Edge, error)
}

// Index answers traversal queries over the persisted import graph.
type Index struct {
	edges EdgeSource
}

// New creates a graph index over the given edge source.
func New(edges EdgeSource) *Index {
	return &Index{edges: edges}
}

// RelatedFiles expands breadth-first from path over both edge directions
// (imports and importers), bounded by depth hops. The origin is excluded
// and results are sorted. Cycles stop re-expanding through the visited set;
// depth zero or less yields no results.
func (g *Index) RelatedFiles(path string, depth int) ([]string, error) {
	if depth <= 0 {
		return []string{}, nil
	}

	visited := map[string]struct{}{path: {}}
	frontier := []string{path}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, p := range frontier {
			neighbors, err := g.neighbors(p)
			if err != nil {
				return nil, err
			}
			for _, n := range neighbors {
				if _, seen := visited[n]; seen {
					continue
				}
				visited[n] = struct{}{}
				next = append(next, n)
			}
		}
		frontier = next
	}

	delete(visited, path)
	out := make([]string, 0, len(visited))
	for p := range visited {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (g *Index) neighbors(path string) ([]string, error) {
	fwd, err := g.edges.Imports(path)
	if err != nil {
		return nil, fmt.Errorf("graph: imports of %s: %w", path, err)
	}
	rev, err := g.edges.Importers(path)
	if err != nil {
		return nil, fmt.Errorf("graph: importers of %s: %w", path, err)
	}
	out := make([]string, 0, len(fwd)+len(rev))
	for _, e := range fwd {
		out = append(out, e.Target)
	}
	for _, e := range rev {
		out = append(out, e.Source)
	}
	return out, nil
}

// Node is a file in the graph dump.
type Node struct {
	ID string `json:"id"`
}

// Link is an edge in the graph dump.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Dump returns every node and edge for visualization endpoints.
func (g *Index) Dump() ([]Node, []Link, error) {
	edges, err := g.edges.AllEdges()
	if err != nil {
		return nil, nil, fmt.Errorf("graph: dump: %w", err)
	}
	seen := make(map[string]struct{})
	var nodes []Node
	links := make([]Link, 0, len(edges))
	for _, e := range edges {
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				nodes = append(nodes, Node{ID: id})
			}
		}
		links = append(links, Link{Source: e.Source, Target: e.Target, Type: e.Type})
	}
	return nodes, links, nil
}

// EdgeWeight scores an edge for relevance ranking: static imports outrank
// dynamic imports outrank type-only imports, and being imported-by counts
// at a fixed discount relative to the same-kind forward edge. The values
// are part of the wire-compatible behavior and must not drift.
func EdgeWeight(importType string, reverse bool) float64 {
	var w float64
	switch importType {
	case store.EdgeStatic:
		w = 1.0
	case store.EdgeDynamic:
		w = 0.7
	case store.EdgeTypeOnly:
		w = 0.5
	default:
		w = 0.5
	}
	if reverse {
		w *= 0.8
	}
	return w
}
