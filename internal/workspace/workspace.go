// Package workspace anchors all file operations to a workspace root and
// decides which zones of the tree are indexable.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// excludedDirs are never traversed or indexed regardless of .gitignore.
var excludedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
	"out":          {},
	"coverage":     {},
	".next":        {},
	".cache":       {},
	"vendor":       {},
}

// Workspace is a rooted view of the file system. All paths handed to the
// mapper resolve through it, so nothing outside the root is ever touched.
type Workspace struct {
	root    string // absolute path to the workspace directory
	matcher *ignore.GitIgnore
}

// New creates a Workspace rooted at the given directory, which must exist.
// A .gitignore at the root contributes exclusion rules; a missing or
// unreadable one is fine.
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace: root is not a directory: %s", abs)
	}
	matcher, err := ignore.CompileIgnoreFile(filepath.Join(abs, ".gitignore"))
	if err != nil {
		matcher = nil
	}
	return &Workspace{root: abs, matcher: matcher}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve turns a relative or absolute path into an absolute path under the
// root, rejecting any result that escapes it (directory traversal).
func (w *Workspace) Resolve(path string) (string, error) {
	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Join(w.root, filepath.Clean(path))
	}
	if !strings.HasPrefix(abs, w.root+string(os.PathSeparator)) && abs != w.root {
		return "", fmt.Errorf("workspace: path escapes root: %s", path)
	}
	return abs, nil
}

// Rel returns the path relative to the root. A path outside the root comes
// back with leading ".." elements, which Excluded treats as non-indexable;
// when no relative form exists at all the input is returned unchanged.
func (w *Workspace) Rel(abs string) string {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return abs
	}
	return rel
}

// Excluded reports whether the absolute path falls in a non-indexable zone:
// a built-in excluded directory anywhere on the path, a dot directory, or a
// .gitignore match.
func (w *Workspace) Excluded(abs string) bool {
	rel := w.Rel(abs)
	if rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if _, ok := excludedDirs[part]; ok {
			return true
		}
		if len(part) > 1 && strings.HasPrefix(part, ".") {
			return true
		}
	}
	if w.matcher != nil && w.matcher.MatchesPath(rel) {
		return true
	}
	return false
}
