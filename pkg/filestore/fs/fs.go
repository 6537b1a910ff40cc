// Package fs implements the filesystem-backed filestore, the primary
// pathstore backend.
//
// Entries live at baseDir/<key>. An entry is committed when the file exists
// and no in-progress marker (<key> + ".fslck") exists alongside it; there is
// no separate metadata record. The store is self-repairing: any file whose
// write was interrupted by a crash is detected through its leftover marker
// and silently removed on the next Get.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// Store is a filestore keyed by relative path, backed by a single directory
// tree on the local filesystem.
//
// Thread Safety:
// This implementation is explicitly NOT thread safe and performs no internal
// locking. Its crash-safety invariants (marker precedes mutation, marker
// removed after) only hold for a single logical writer per key at a time;
// concurrent writers on one key can cause Get's self-repair to delete another
// writer's in-flight content. Callers needing concurrent access must
// serialize per key (or globally) themselves. Relocate and Sweep additionally
// must not race with any other operation in flight.
//
// The store owns no open file handles across calls and keeps no in-memory
// index; every Get and Search reflects live filesystem state at call time.
type Store struct {
	baseDir string
	metrics filestore.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics attaches a metrics instance. A nil instance keeps the built-in
// no-op behavior.
func WithMetrics(m filestore.Metrics) Option {
	return func(s *Store) { s.metrics = filestore.EnsureMetrics(m) }
}

// New creates a filesystem filestore rooted at baseDir.
//
// The root directory is NOT created eagerly: a store over a directory that
// does not yet exist is valid (Search returns nothing, Relocate is a pure
// pointer update) and the first write creates whatever it needs.
func New(baseDir string, opts ...Option) *Store {
	s := &Store{
		baseDir: baseDir,
		metrics: filestore.EnsureMetrics(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseDir returns the store's current root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// resolve returns the absolute destination path for key under the current
// root.
func (s *Store) resolve(key string) string {
	return filepath.Join(s.baseDir, key)
}

// Get returns the committed entry for key, or (nil, nil) when the key holds
// no entry.
//
// Before checking existence, Get performs lazy self-repair: if the
// in-progress marker for this key exists, both the marker and the possibly
// partial destination file are deleted. A store reopened after a crash
// therefore quietly erases whatever was being written when the crash
// occurred instead of surfacing corrupted content.
//
// Context Cancellation:
// The context is checked once before touching the filesystem.
func (s *Store) Get(ctx context.Context, key string) (filestore.Entry, error) {
	start := time.Now()
	entry, err := s.get(ctx, key)
	s.metrics.ObserveOperation("get", err, time.Since(start))
	if entry == nil {
		// Avoid a typed nil inside the interface.
		return nil, err
	}
	return entry, err
}

func (s *Store) get(ctx context.Context, key string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dest := s.resolve(key)
	if hasMarker(dest) {
		if err := s.repair(dest); err != nil {
			return nil, fmt.Errorf("failed to repair partial entry %q: %w", key, err)
		}
	}

	if _, err := os.Stat(dest); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat entry %q: %w", key, err)
	}

	return s.entryAt(key), nil
}

// repair removes a destination file and its marker. The destination goes
// first: if the process dies mid-repair the marker still shadows the key.
func (s *Store) repair(dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return err
	}
	if err := os.Remove(markerPath(dest)); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.metrics.ObserveRepair()
	return nil
}

// Delete removes the entry for key along with any marker for it. Deleting an
// absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.delete(ctx, key)
	s.metrics.ObserveOperation("delete", err, time.Since(start))
	return err
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dest := s.resolve(key)
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to delete entry %q: %w", key, err)
	}
	if err := os.Remove(markerPath(dest)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete marker for %q: %w", key, err)
	}
	return nil
}

// Relocate moves the entire store to newRoot and updates the root pointer.
//
// If the current root exists, its whole subtree (including any stray markers)
// is moved as a unit. If it does not exist, this is a pure pointer update,
// which supports relocating a store that was never populated. Entries issued
// before the relocation resolve against the new root afterward.
//
// Must not be called concurrently with any other operation in flight.
func (s *Store) Relocate(ctx context.Context, newRoot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(s.baseDir); err == nil {
		if err := os.MkdirAll(filepath.Dir(newRoot), 0755); err != nil {
			return fmt.Errorf("failed to create parent of new root %q: %w", newRoot, err)
		}
		if err := os.Rename(s.baseDir, newRoot); err != nil {
			return fmt.Errorf("failed to move filestore from %q to %q: %w", s.baseDir, newRoot, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat filestore root %q: %w", s.baseDir, err)
	}

	s.baseDir = newRoot
	return nil
}

// Interface conformance.
var (
	_ filestore.Store    = (*Store)(nil)
	_ filestore.Searcher = (*Store)(nil)
)
