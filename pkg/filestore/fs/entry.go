package fs

import (
	"context"
	"io"
	"os"
)

// Entry is a reference to a committed file in a filesystem filestore.
//
// An entry records only its key; the absolute path is recomputed from the
// store's current root on every call, so entries issued before a Relocate
// resolve correctly afterward.
type Entry struct {
	store *Store
	key   string
}

// entryAt returns the entry for key in this store.
func (s *Store) entryAt(key string) *Entry {
	return &Entry{store: s, key: key}
}

// Key returns the relative path the entry is stored under.
func (e *Entry) Key() string {
	return e.key
}

// Path returns the entry's absolute path, resolved against the store's
// current root at call time.
func (e *Entry) Path() string {
	return e.store.resolve(e.key)
}

// Open returns the entry content. The caller must close the reader.
func (e *Entry) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(e.Path())
}

// Size returns the content size in bytes.
func (e *Entry) Size(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := os.Stat(e.Path())
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
