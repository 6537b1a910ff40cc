// Package badger implements a filestore backed by BadgerDB, a fast embedded
// key-value store.
//
// Entries are stored as key → content bytes inside a single Badger database,
// which gives the store persistence across restarts without managing a
// directory tree. Writes are transactional, so there is no in-progress marker
// protocol here; a crash mid-write simply rolls the transaction back.
//
// It is suitable for deployments that want a single-file-style store with
// crash consistency delegated to Badger's WAL rather than the filesystem
// backend's marker files.
package badger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// Config contains configuration for the Badger filestore.
type Config struct {
	// DBPath is the directory Badger stores its data in. Ignored when
	// InMemory is set.
	DBPath string `mapstructure:"db_path"`

	// InMemory runs Badger without touching disk. Used by tests.
	InMemory bool `mapstructure:"in_memory"`
}

// Store is a BadgerDB-backed filestore.
type Store struct {
	db *badger.DB
}

// New opens (or creates) a Badger filestore.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("badger filestore: db_path is required")
		}
		opts = badger.DefaultOptions(cfg.DBPath)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores an entry under key. The write action runs against a staging
// file; its content is committed in a single Badger transaction only when
// the action succeeds.
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

	if err := s.put(key, data); err != nil {
		return nil, &filestore.WriteError{Verb: "add", Destination: key, Err: err}
	}
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

	if err := s.put(key, data); err != nil {
		return nil, &filestore.WriteError{Verb: verb, Source: source, Destination: key, Err: err}
	}
	return s.entryAt(key), nil
}

// Get returns the entry for key, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) (filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read entry %q: %w", key, err)
	}
	return s.entryAt(key), nil
}

// Delete removes the entry for key. Idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Search iterates all keys and returns an entry for every key matching the
// ant-style glob pattern.
func (s *Store) Search(ctx context.Context, pattern string) ([]filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	entries := []filestore.Entry{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().KeyCopy(nil))
			matched, err := doublestar.Match(pattern, key)
			if err != nil {
				return err
			}
			if matched {
				entries = append(entries, s.entryAt(key))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) put(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Entry is a reference into a Badger filestore. Content is looked up at call
// time.
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

	var data []byte
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(e.key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %q: %w", e.key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Size returns the content size in bytes.
func (e *Entry) Size(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var size int64
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(e.key))
		if err != nil {
			return err
		}
		size = item.ValueSize()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to stat entry %q: %w", e.key, err)
	}
	return size, nil
}

// Interface conformance.
var (
	_ filestore.Store    = (*Store)(nil)
	_ filestore.Searcher = (*Store)(nil)
)
