package graph

import (
	"reflect"
	"testing"

	"github.com/starford/raido/internal/store"
)

// memEdges is an in-memory EdgeSource for traversal tests.
type memEdges struct {
	edges []store.Edge
}

func (m *memEdges) Imports(path string) ([]store.Edge, error) {
	var out []store.Edge
	for _, e := range m.edges {
		if e.Source == path {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEdges) Importers(path string) ([]store.Edge, error) {
	var out []store.Edge
	for _, e := range m.edges {
		if e.Target == path {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEdges) AllEdges() ([]store.Edge, error) {
	return m.edges, nil
}

func chain(pairs ...[2]string) *memEdges {
	m := &memEdges{}
	for _, p := range pairs {
		m.edges = append(m.edges, store.Edge{Source: p[0], Target: p[1], Type: store.EdgeStatic})
	}
	return m
}

func TestRelatedFiles_DepthZeroIsEmpty(t *testing.T) {
	g := New(chain([2]string{"a", "b"}))
	for _, depth := range []int{0, -1} {
		out, err := g.RelatedFiles("a", depth)
		if err != nil {
			t.Fatal(err)
		}
		if out == nil || len(out) != 0 {
			t.Errorf("depth %d: got %v, want empty non-nil slice", depth, out)
		}
	}
}

func TestRelatedFiles_BothDirections(t *testing.T) {
	// a -> b, c -> a: both b and c are one hop from a.
	g := New(chain([2]string{"a", "b"}, [2]string{"c", "a"}))
	out, err := g.RelatedFiles("a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, []string{"b", "c"}) {
		t.Errorf("related = %v, want [b c]", out)
	}
}

func TestRelatedFiles_DepthBoundsExpansion(t *testing.T) {
	// a -> b -> c -> d
	g := New(chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}))

	one, err := g.RelatedFiles("a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(one, []string{"b"}) {
		t.Errorf("depth 1 = %v", one)
	}

	two, err := g.RelatedFiles("a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(two, []string{"b", "c"}) {
		t.Errorf("depth 2 = %v", two)
	}

	deep, err := g.RelatedFiles("a", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(deep, []string{"b", "c", "d"}) {
		t.Errorf("depth 10 = %v", deep)
	}
}

func TestRelatedFiles_ExcludesOriginInCycle(t *testing.T) {
	// a -> b -> a: traversal terminates and never reports the origin.
	g := New(chain([2]string{"a", "b"}, [2]string{"b", "a"}))
	out, err := g.RelatedFiles("a", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, []string{"b"}) {
		t.Errorf("related = %v, want [b]", out)
	}
}

func TestRelatedFiles_Symmetry(t *testing.T) {
	// With direction-agnostic expansion, a sees b exactly when b sees a.
	g := New(chain([2]string{"a", "b"}))

	fromA, err := g.RelatedFiles("a", 1)
	if err != nil {
		t.Fatal(err)
	}
	fromB, err := g.RelatedFiles("b", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromA, []string{"b"}) || !reflect.DeepEqual(fromB, []string{"a"}) {
		t.Errorf("fromA = %v, fromB = %v", fromA, fromB)
	}
}

func TestRelatedFiles_UnknownFile(t *testing.T) {
	g := New(chain([2]string{"a", "b"}))
	out, err := g.RelatedFiles("zzz", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("related = %v, want empty", out)
	}
}

func TestDump(t *testing.T) {
	m := &memEdges{edges: []store.Edge{
		{Source: "a", Target: "b", Type: store.EdgeStatic},
		{Source: "b", Target: "c", Type: store.EdgeDynamic},
	}}
	nodes, links, err := New(m).Dump()
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Errorf("nodes = %v, want 3", nodes)
	}
	if len(links) != 2 {
		t.Errorf("links = %v, want 2", links)
	}
	if links[1].Type != store.EdgeDynamic {
		t.Errorf("link type = %q", links[1].Type)
	}
}

func TestEdgeWeight(t *testing.T) {
	cases := []struct {
		importType string
		reverse    bool
		want       float64
	}{
		{store.EdgeStatic, false, 1.0},
		{store.EdgeDynamic, false, 0.7},
		{store.EdgeTypeOnly, false, 0.5},
		{store.EdgeStatic, true, 0.8},
		{store.EdgeDynamic, true, 0.7 * 0.8},
		{store.EdgeTypeOnly, true, 0.5 * 0.8},
		{"unknown", false, 0.5},
	}
	for _, tc := range cases {
		if got := EdgeWeight(tc.importType, tc.reverse); got != tc.want {
			t.Errorf("EdgeWeight(%q, %v) = %v, want %v", tc.importType, tc.reverse, got, tc.want)
		}
	}
}
