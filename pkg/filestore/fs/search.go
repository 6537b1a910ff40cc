package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// Search walks the store tree and returns an entry for every committed file
// whose root-relative path matches the ant-style glob pattern (`*`, `**`,
// `?`). A missing root yields an empty result, not an error.
//
// Marker files are excluded, and so is any file currently shadowed by a
// marker (an in-progress, uncommitted destination). Unlike Get, Search never
// repairs what it finds: mutating the tree while it is being walked is unsafe
// with the directory traversal underneath, so in-progress entries are only
// filtered from the result and left on disk for a later Get to clean up.
//
// Result ordering is unspecified. Each matching filesystem path yields
// exactly one entry, so duplicates cannot occur.
func (s *Store) Search(ctx context.Context, pattern string) ([]filestore.Entry, error) {
	start := time.Now()
	entries, err := s.search(ctx, pattern)
	s.metrics.ObserveSearch(len(entries), time.Since(start))
	return entries, err
}

func (s *Store) search(ctx context.Context, pattern string) ([]filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	if _, err := os.Stat(s.baseDir); err != nil {
		if os.IsNotExist(err) {
			return []filestore.Entry{}, nil
		}
		return nil, err
	}

	var entries []filestore.Entry
	root := s.baseDir
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if isMarkerPath(rel) || hasMarker(path) {
			return nil
		}

		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return err
		}
		if matched {
			entries = append(entries, s.entryAt(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []filestore.Entry{}
	}
	return entries, nil
}
