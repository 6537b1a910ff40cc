package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sweep is the eager batch form of Get's lazy self-repair: it walks the whole
// tree, and for every in-progress marker found removes both the marker and
// its shadowed destination. It returns the number of keys repaired.
//
// A missing root is a no-op. Like Relocate, Sweep requires exclusive access:
// it must not race with any add/move/copy/get/search in flight, which the
// store does not detect or prevent.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if _, err := os.Stat(s.baseDir); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	// Collect first, delete after: removing files while the walk is in
	// progress is unsafe with the traversal underneath.
	var markers []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() && isMarkerPath(path) {
			markers = append(markers, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, marker := range markers {
		dest := strings.TrimSuffix(marker, MarkerSuffix)
		if err := s.repair(dest); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}
