package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	root := t.TempDir()
	ws, err := New(root)
	if err != nil {
		t.Fatal(err)
	}
	return ws, root
}

func TestNew_RootMustBeDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(file); err == nil {
		t.Error("expected error for file root")
	}
}

func TestResolve(t *testing.T) {
	ws, root := newWorkspace(t)

	abs, err := ws.Resolve("src/a.ts")
	if err != nil {
		t.Fatal(err)
	}
	if abs != filepath.Join(root, "src/a.ts") {
		t.Errorf("abs = %q", abs)
	}

	// Absolute paths under the root pass through.
	abs2, err := ws.Resolve(filepath.Join(root, "b.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if abs2 != filepath.Join(root, "b.ts") {
		t.Errorf("abs = %q", abs2)
	}

	// The root itself resolves.
	if _, err := ws.Resolve("."); err != nil {
		t.Errorf("root: %v", err)
	}
}

func TestResolve_RejectsEscapes(t *testing.T) {
	ws, root := newWorkspace(t)

	for _, p := range []string{
		"../outside.ts",
		"a/../../outside.ts",
		"/etc/passwd",
		root + "-sibling/x.ts",
	} {
		if _, err := ws.Resolve(p); err == nil {
			t.Errorf("Resolve(%q) should fail", p)
		}
	}
}

func TestRel(t *testing.T) {
	ws, root := newWorkspace(t)
	if got := ws.Rel(filepath.Join(root, "src", "a.ts")); got != filepath.Join("src", "a.ts") {
		t.Errorf("rel = %q", got)
	}
}

func TestRel_OutsideRoot(t *testing.T) {
	ws, root := newWorkspace(t)
	outside := root + "-sibling/x.ts"

	if got := ws.Rel(outside); !strings.HasPrefix(got, "..") {
		t.Errorf("rel = %q, want a result climbing out of the root", got)
	}
	if !ws.Excluded(outside) {
		t.Error("out-of-root path should be excluded")
	}
}

func TestExcluded_BuiltinZones(t *testing.T) {
	ws, root := newWorkspace(t)

	excluded := []string{
		"node_modules/react/index.js",
		"dist/bundle.js",
		".git/HEAD",
		"src/node_modules/x.js",
		".vscode/settings.json",
		"src/.hidden/y.ts",
	}
	for _, rel := range excluded {
		if !ws.Excluded(filepath.Join(root, rel)) {
			t.Errorf("Excluded(%q) = false, want true", rel)
		}
	}

	included := []string{
		"src/a.ts",
		"lib/index.ts",
		"deep/nested/path/b.tsx",
	}
	for _, rel := range included {
		if ws.Excluded(filepath.Join(root, rel)) {
			t.Errorf("Excluded(%q) = true, want false", rel)
		}
	}

	if ws.Excluded(root) {
		t.Error("root itself must not be excluded")
	}
}

func TestExcluded_Gitignore(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\n*.gen.ts\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ws, err := New(root)
	if err != nil {
		t.Fatal(err)
	}

	if !ws.Excluded(filepath.Join(root, "generated", "api.ts")) {
		t.Error("gitignored directory not excluded")
	}
	if !ws.Excluded(filepath.Join(root, "src", "types.gen.ts")) {
		t.Error("gitignored pattern not excluded")
	}
	if ws.Excluded(filepath.Join(root, "src", "types.ts")) {
		t.Error("non-matching file excluded")
	}
}

func TestExcluded_MissingGitignoreIsFine(t *testing.T) {
	ws, root := newWorkspace(t)
	if ws.Excluded(filepath.Join(root, "src", "a.ts")) {
		t.Error("no gitignore should mean no extra exclusions")
	}
	if !strings.HasPrefix(ws.Root(), string(os.PathSeparator)) {
		t.Errorf("root not absolute: %q", ws.Root())
	}
}
