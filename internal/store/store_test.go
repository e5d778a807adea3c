package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/skeleton"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSkeleton(path string) *skeleton.Skeleton {
	return &skeleton.Skeleton{
		Path:     path,
		Language: "typescript",
		Exports: []skeleton.ExportedSymbol{
			{Name: "run", Kind: skeleton.KindFunction, Line: 3},
		},
	}
}

func TestUpsertSkeleton_RoundTrip(t *testing.T) {
	db := testDB(t)

	row := SkeletonRow{Path: "src/a.ts", Hash: "h1", Language: "typescript", Skeleton: sampleSkeleton("src/a.ts")}
	if err := db.UpsertSkeleton(row, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetSkeleton("src/a.ts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Hash != "h1" || got.Language != "typescript" {
		t.Errorf("row = %+v", got)
	}
	if len(got.Skeleton.Exports) != 1 || got.Skeleton.Exports[0].Name != "run" {
		t.Errorf("skeleton blob did not round-trip: %+v", got.Skeleton)
	}
}

func TestGetSkeleton_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetSkeleton("missing.ts"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertSkeleton_IdempotentAndAdvancesUpdatedAt(t *testing.T) {
	db := testDB(t)

	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	row := SkeletonRow{Path: "src/a.ts", Hash: "h1", Language: "typescript", Skeleton: sampleSkeleton("src/a.ts"), UpdatedAt: t0}
	if err := db.UpsertSkeleton(row, nil); err != nil {
		t.Fatal(err)
	}
	first, err := db.GetSkeleton("src/a.ts")
	if err != nil {
		t.Fatal(err)
	}

	row.Hash = "h2"
	row.UpdatedAt = t1
	if err := db.UpsertSkeleton(row, nil); err != nil {
		t.Fatal(err)
	}

	second, err := db.GetSkeleton("src/a.ts")
	if err != nil {
		t.Fatal(err)
	}
	if second.Hash != "h2" {
		t.Errorf("hash = %q, want h2", second.Hash)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated_at did not advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on upsert: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	n, err := db.SkeletonCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("skeleton count = %d, want 1", n)
	}
}

func TestUpsertSkeleton_ReplacesEdges(t *testing.T) {
	db := testDB(t)

	row := SkeletonRow{Path: "src/a.ts", Hash: "h1", Language: "typescript", Skeleton: sampleSkeleton("src/a.ts")}
	edges := []Edge{
		{Target: "src/b.ts", Type: EdgeStatic},
		{Target: "src/c.ts", Type: EdgeDynamic},
	}
	if err := db.UpsertSkeleton(row, edges); err != nil {
		t.Fatal(err)
	}

	// Second upsert drops b and adds d; only the new set must survive.
	edges = []Edge{
		{Target: "src/c.ts", Type: EdgeDynamic},
		{Target: "src/d.ts", Type: EdgeTypeOnly},
	}
	if err := db.UpsertSkeleton(row, edges); err != nil {
		t.Fatal(err)
	}

	out, err := db.Imports("src/a.ts")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("imports = %+v, want 2 edges", out)
	}
	targets := map[string]string{}
	for _, e := range out {
		targets[e.Target] = e.Type
	}
	if targets["src/c.ts"] != EdgeDynamic || targets["src/d.ts"] != EdgeTypeOnly {
		t.Errorf("targets = %v", targets)
	}
	if _, ok := targets["src/b.ts"]; ok {
		t.Error("stale edge to src/b.ts survived the refresh")
	}
}

func TestUpsertSkeleton_DuplicateEdgesIgnored(t *testing.T) {
	db := testDB(t)

	row := SkeletonRow{Path: "src/a.ts", Hash: "h1", Language: "typescript", Skeleton: sampleSkeleton("src/a.ts")}
	edges := []Edge{
		{Target: "src/b.ts", Type: EdgeStatic},
		{Target: "src/b.ts", Type: EdgeStatic},
	}
	if err := db.UpsertSkeleton(row, edges); err != nil {
		t.Fatal(err)
	}
	n, err := db.EdgeCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("edge count = %d, want 1", n)
	}
}

func TestImporters(t *testing.T) {
	db := testDB(t)

	for _, src := range []string{"src/a.ts", "src/b.ts"} {
		row := SkeletonRow{Path: src, Hash: "h", Language: "typescript", Skeleton: sampleSkeleton(src)}
		if err := db.UpsertSkeleton(row, []Edge{{Target: "src/shared.ts", Type: EdgeStatic}}); err != nil {
			t.Fatal(err)
		}
	}

	in, err := db.Importers("src/shared.ts")
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 2 {
		t.Fatalf("importers = %+v, want 2", in)
	}
}

func TestDeleteSkeleton_RemovesEdges(t *testing.T) {
	db := testDB(t)

	row := SkeletonRow{Path: "src/a.ts", Hash: "h1", Language: "typescript", Skeleton: sampleSkeleton("src/a.ts")}
	if err := db.UpsertSkeleton(row, []Edge{{Target: "src/b.ts", Type: EdgeStatic}}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteSkeleton("src/a.ts"); err != nil {
		t.Fatal(err)
	}

	if _, err := db.GetSkeleton("src/a.ts"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	n, err := db.EdgeCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("edge count = %d after delete, want 0", n)
	}
}

func TestAllPaths(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"src/a.ts", "src/b.ts"} {
		row := SkeletonRow{Path: p, Hash: "h", Language: "typescript", Skeleton: sampleSkeleton(p)}
		if err := db.UpsertSkeleton(row, nil); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := db.AllPaths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	if _, ok := paths["src/a.ts"]; !ok {
		t.Error("src/a.ts missing")
	}
}

func TestSessions_CRUD(t *testing.T) {
	db := testDB(t)

	s := SessionRow{ID: "s1", WorkspacePath: "/work", Name: "debugging", State: `{"focus":"src/a.ts"}`}
	if err := db.SaveSession(s); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "debugging" || got.State != `{"focus":"src/a.ts"}` {
		t.Errorf("session = %+v", got)
	}

	// Replace by id.
	s.Name = "refactoring"
	if err := db.SaveSession(s); err != nil {
		t.Fatal(err)
	}
	list, err := db.ListSessions("/work")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "refactoring" {
		t.Errorf("list = %+v", list)
	}

	other, err := db.ListSessions("/elsewhere")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("filter leaked sessions: %+v", other)
	}

	if err := db.DeleteSession("s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetSession("s1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveSession_DefaultsEmptyState(t *testing.T) {
	db := testDB(t)
	if err := db.SaveSession(SessionRow{ID: "s1"}); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.State != "{}" {
		t.Errorf("state = %q, want {}", got.State)
	}
}

func TestArtifacts_CRUD(t *testing.T) {
	db := testDB(t)

	rows := []ArtifactRow{
		{ID: "a1", Type: "summary", Scope: "src/auth", Content: "auth notes"},
		{ID: "a2", Type: "decision", Scope: "src/auth", Content: "use argon2"},
		{ID: "a3", Type: "summary", Scope: "src/api", Content: "api notes"},
	}
	for _, a := range rows {
		if err := db.SaveArtifact(a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.GetArtifact("a2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "use argon2" || got.Metadata != "{}" {
		t.Errorf("artifact = %+v", got)
	}

	byScope, err := db.ListArtifacts("src/auth", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(byScope) != 2 {
		t.Errorf("scope filter = %+v", byScope)
	}

	byBoth, err := db.ListArtifacts("src/auth", "summary")
	if err != nil {
		t.Fatal(err)
	}
	if len(byBoth) != 1 || byBoth[0].ID != "a1" {
		t.Errorf("combined filter = %+v", byBoth)
	}

	all, err := db.ListArtifacts("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered = %d rows", len(all))
	}

	if err := db.DeleteArtifact("a1"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetArtifact("a1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
