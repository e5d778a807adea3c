package mapper

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/parser"
)

// FileInfo is the metadata returned for one file by MapDirectory.
type FileInfo struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Language   string    `json:"language"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DirectoryMap is the result of a bounded directory enumeration.
type DirectoryMap struct {
	Path           string     `json:"path"`
	Files          []FileInfo `json:"files"`
	Subdirectories []string   `json:"subdirectories"`
	TotalFiles     int        `json:"total_files"`
}

// MapDirectory enumerates supported source files under path up to maxDepth
// levels, skipping excluded zones. A maxDepth of zero or less, or one above
// the configured maximum, falls back to the configured maximum. It is
// metadata-only and never parses; skeletons are always produced lazily by
// per-file GetSkeleton calls.
func (m *Mapper) MapDirectory(path string, maxDepth int) (*DirectoryMap, error) {
	abs, err := m.ws.Resolve(path)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mapper: not a directory: %s", path)
	}
	if maxDepth < 1 || maxDepth > m.maxMapDepth {
		maxDepth = m.maxMapDepth
	}

	dm := &DirectoryMap{Path: abs, Files: []FileInfo{}, Subdirectories: []string{}}
	m.walkDir(abs, maxDepth, dm)
	return dm, nil
}

func (m *Mapper) walkDir(dir string, depth int, dm *DirectoryMap) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.logger.Debug("mapper: read dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		return
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if m.ws.Excluded(p) {
			continue
		}
		if e.IsDir() {
			dm.Subdirectories = append(dm.Subdirectories, p)
			if depth > 1 {
				m.walkDir(p, depth-1, dm)
			}
			continue
		}
		if !parser.Supported(p) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		dm.Files = append(dm.Files, FileInfo{
			Path:       p,
			Name:       e.Name(),
			Size:       info.Size(),
			Language:   parser.Language(p),
			ModifiedAt: info.ModTime(),
		})
		dm.TotalFiles++
	}
}
