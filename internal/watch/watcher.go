// Package watch bridges filesystem change notifications into the mapper's
// invalidation entry points.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/mapper"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/workspace"
)

// Watch starts an fsnotify watcher on the workspace root and forwards file
// change events to the mapper until ctx is cancelled. The watcher itself
// does no debouncing; the mapper's invalidation path absorbs save storms.
//
// New directories created at runtime are added to the watch list. Removes
// and renames drop both layers immediately: fsnotify reports a rename on
// the old path only, and the new path arrives as its own Create event.
func Watch(ctx context.Context, m *mapper.Mapper, ws *workspace.Workspace, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, ws, ws.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", ws.Root()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			abs := ev.Name
			if ws.Excluded(abs) {
				continue
			}

			// New directories: extend the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ws, abs); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", abs),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", abs))
					}
					continue
				}
			}

			if !parser.Supported(abs) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				logger.Debug("watcher: change", slog.String("path", abs), slog.String("op", ev.Op.String()))
				m.OnFileChanged(abs)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("watcher: gone", slog.String("path", abs), slog.String("op", ev.Op.String()))
				m.OnFileDeleted(abs)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and every non-excluded directory under it to
// the watcher.
func addDirsRecursive(w *fsnotify.Watcher, ws *workspace.Workspace, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ws.Excluded(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
