package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/mapper"
	"github.com/starford/raido/internal/store"
	"github.com/starford/raido/internal/workspace"
)

type watchEnv struct {
	root string
	ws   *workspace.Workspace
	db   *store.DB
	m    *mapper.Mapper
}

func newWatchEnv(t *testing.T) *watchEnv {
	t.Helper()
	root := t.TempDir()
	ws, err := workspace.New(root)
	if err != nil {
		t.Fatal(err)
	}
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	c := cache.NewSkeletonCache(100, 30*time.Millisecond)
	t.Cleanup(c.Close)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	m := mapper.New(ws, c, db, logger, mapper.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		if err := Watch(ctx, m, ws, logger); err != nil {
			t.Errorf("watch: %v", err)
		}
	}()
	// Give the watcher time to register the root before events fire.
	time.Sleep(100 * time.Millisecond)

	return &watchEnv{root: root, ws: ws, db: db, m: m}
}

func (e *watchEnv) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatch_WriteInvalidatesIndexedFile(t *testing.T) {
	env := newWatchEnv(t)
	abs := env.write(t, "a.ts", "export const a = 1\n")
	if _, err := env.m.GetSkeleton("a.ts"); err != nil {
		t.Fatal(err)
	}

	env.write(t, "a.ts", "export const changed = 2\n")

	eventually(t, 3*time.Second, func() bool {
		_, err := env.db.GetSkeleton(abs)
		return errors.Is(err, apperr.ErrNotFound)
	})
}

func TestWatch_RemoveDropsRecord(t *testing.T) {
	env := newWatchEnv(t)
	abs := env.write(t, "a.ts", "export const a = 1\n")
	if _, err := env.m.GetSkeleton("a.ts"); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(abs); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, func() bool {
		_, err := env.db.GetSkeleton(abs)
		return errors.Is(err, apperr.ErrNotFound)
	})
}

func TestWatch_PicksUpNewDirectories(t *testing.T) {
	env := newWatchEnv(t)

	// A directory created after startup must still deliver events for the
	// files inside it.
	if err := os.MkdirAll(filepath.Join(env.root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	abs := env.write(t, "src/b.ts", "export const b = 1\n")
	if _, err := env.m.GetSkeleton("src/b.ts"); err != nil {
		t.Fatal(err)
	}

	env.write(t, "src/b.ts", "export const b = 2\n")
	eventually(t, 3*time.Second, func() bool {
		_, err := env.db.GetSkeleton(abs)
		return errors.Is(err, apperr.ErrNotFound)
	})
}

func TestWatch_IgnoresUnsupportedFiles(t *testing.T) {
	env := newWatchEnv(t)
	abs := env.write(t, "a.ts", "export const a = 1\n")

	// Let the create-event invalidation settle before indexing, so the
	// record below is stable.
	time.Sleep(200 * time.Millisecond)
	if _, err := env.m.GetSkeleton("a.ts"); err != nil {
		t.Fatal(err)
	}

	// Churn on an unrelated, unsupported file leaves the index alone.
	env.write(t, "notes.txt", "scratch\n")
	env.write(t, "notes.txt", "more scratch\n")
	time.Sleep(300 * time.Millisecond)

	if _, err := env.db.GetSkeleton(abs); err != nil {
		t.Errorf("indexed record disturbed: %v", err)
	}
}
