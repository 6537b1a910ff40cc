// Package filestore defines the capability contracts for key-addressed file
// storage in pathstore.
//
// A filestore maps an arbitrary relative path string (the "key") to exactly
// one stored file. Keys may contain directory separators; directory components
// are created on demand. There is always at most one entry per key: adding,
// moving, or copying onto an existing key overwrites it.
//
// The contracts are deliberately split in two so that backends can implement
// them independently:
//   - Store: the addressable surface (Add/Move/Copy/Get/Delete)
//   - Searcher: the pattern-searchable surface (Search)
//
// Implementations live in the sub-packages fs (local filesystem, the primary
// backend), memory (in-memory, used by tests and ephemeral deployments),
// badger (embedded BadgerDB), and s3 (Amazon S3 or S3-compatible storage).
// The testing sub-package contains a reusable test suite that exercises any
// implementation against these contracts.
package filestore

import (
	"context"
	"io"
)

// WriteAction materializes the content of an entry at the given destination
// path. It is invoked by Store.Add with a path the action must write to:
// moving a file there, streaming a download, decompressing an archive, or
// anything else that leaves the final content at exactly that path.
//
// The action must not assume the destination's parent directories exist
// beyond what the store guarantees (they do), and must not retain the path
// after returning.
type WriteAction func(dest string) error

// Store is the addressable surface of a filestore: a key maps to at most one
// stored file, and every write unconditionally replaces whatever the key held
// before.
//
// Absence is not an error: Get returns a nil Entry and a nil error for a key
// that has no committed entry.
type Store interface {
	// Add stores an entry under key using the caller-supplied write action
	// to produce the content. This generalizes Move and Copy to arbitrary
	// producers such as downloaders.
	Add(ctx context.Context, key string, action WriteAction) (Entry, error)

	// Move stores the file at source under key and removes the source.
	// The source must exist; a *SourceNotFoundError is returned otherwise.
	Move(ctx context.Context, key string, source string) (Entry, error)

	// Copy stores the file at source under key, leaving the source intact.
	// The source must exist; a *SourceNotFoundError is returned otherwise.
	Copy(ctx context.Context, key string, source string) (Entry, error)

	// Get returns the committed entry for key, or (nil, nil) when the key
	// holds no entry. Backends with crash-recovery semantics may repair
	// incomplete prior writes as a side effect of Get.
	Get(ctx context.Context, key string) (Entry, error)

	// Delete removes the entry for key. Deleting an absent key is not an
	// error (idempotent).
	Delete(ctx context.Context, key string) error
}

// Searcher is the pattern-searchable surface of a filestore. Patterns use
// ant-style relative globs (`*`, `**`, `?`) interpreted against keys.
//
// Result ordering is unspecified (set semantics); each matching key yields
// exactly one entry. Searching a store that holds nothing (including a
// filesystem store whose root directory does not exist) returns an empty
// result, not an error.
type Searcher interface {
	Search(ctx context.Context, pattern string) ([]Entry, error)
}

// Entry is a lightweight, immutable reference to a stored file. Entries hold
// the key and a way to reach the content; they never cache content or
// location, so an entry obtained before a store relocation remains valid
// afterward.
type Entry interface {
	// Key returns the relative path the entry is stored under.
	Key() string

	// Open returns the entry content. The caller must close the reader.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Size returns the content size in bytes.
	Size(ctx context.Context) (int64, error)
}
