// Package memory implements an in-memory filestore.
//
// It exists for tests and ephemeral deployments: all entries live in a map
// and are lost when the process exits. Because writes into the map are atomic
// under the store's lock, there is no in-progress marker protocol here; the
// crash-recovery machinery is specific to the filesystem backend.
//
// Thread Safety:
// Unlike the filesystem backend, this store is safe for concurrent use; all
// operations are protected by a sync.RWMutex and content is copied on the way
// in and out.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// Store is an in-memory filestore keyed by relative path.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// New creates an empty in-memory filestore.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Add stores an entry under key. The write action runs against a staging
// file in a temporary directory; its content is ingested into the map only
// when the action succeeds, so a failed action leaves the store unchanged.
func (s *Store) Add(ctx context.Context, key string, action filestore.WriteAction) (filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp("", "pathstore-staging-*")
	if err != nil {
		return nil, &filestore.WriteError{Verb: "add", Destination: key, Err: err}
	}
	defer os.RemoveAll(staging)

	dest := filepath.Join(staging, "entry")
	if err := action(dest); err != nil {
		return nil, &filestore.WriteError{Verb: "add", Destination: key, Err: err}
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		return nil, &filestore.WriteError{Verb: "add", Destination: key, Err: err}
	}

	s.put(key, data)
	return s.entryAt(key), nil
}

// Move stores the file at source under key and removes the source.
func (s *Store) Move(ctx context.Context, key string, source string) (filestore.Entry, error) {
	entry, err := s.ingest(ctx, "move", key, source)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(source); err != nil {
		return nil, &filestore.WriteError{Verb: "move", Source: source, Destination: key, Err: err}
	}
	return entry, nil
}

// Copy stores the file at source under key, leaving the source intact.
func (s *Store) Copy(ctx context.Context, key string, source string) (filestore.Entry, error) {
	return s.ingest(ctx, "copy", key, source)
}

func (s *Store) ingest(ctx context.Context, verb, key, source string) (filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(source); err != nil {
		return nil, &filestore.SourceNotFoundError{Verb: verb, Source: source, Destination: key}
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, &filestore.WriteError{Verb: verb, Source: source, Destination: key, Err: err}
	}

	s.put(key, data)
	return s.entryAt(key), nil
}

// Get returns the entry for key, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) (filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	_, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.entryAt(key), nil
}

// Delete removes the entry for key. Idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Search returns an entry for every key matching the ant-style glob pattern.
func (s *Store) Search(ctx context.Context, pattern string) ([]filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []filestore.Entry{}
	for key := range s.entries {
		matched, err := doublestar.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if matched {
			entries = append(entries, s.entryAt(key))
		}
	}
	return entries, nil
}

func (s *Store) put(key string, data []byte) {
	s.mu.Lock()
	s.entries[key] = append([]byte(nil), data...)
	s.mu.Unlock()
}

// Entry is a reference into an in-memory filestore. Content is looked up at
// call time, so an entry observes later overwrites of its key.
type Entry struct {
	store *Store
	key   string
}

func (s *Store) entryAt(key string) *Entry {
	return &Entry{store: s, key: key}
}

// Key returns the relative path the entry is stored under.
func (e *Entry) Key() string { return e.key }

// Open returns the entry content. Closing the reader is a no-op.
func (e *Entry) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.store.mu.RLock()
	data, ok := e.store.entries[e.key]
	if ok {
		data = append([]byte(nil), data...)
	}
	e.store.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("entry %q is no longer present", e.key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Size returns the content size in bytes.
func (e *Entry) Size(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.store.mu.RLock()
	data, ok := e.store.entries[e.key]
	e.store.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("entry %q is no longer present", e.key)
	}
	return int64(len(data)), nil
}

// Interface conformance.
var (
	_ filestore.Store    = (*Store)(nil)
	_ filestore.Searcher = (*Store)(nil)
)
