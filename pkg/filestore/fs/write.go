// Write path for the filesystem filestore: Add, Move, Copy, and the shared
// marker-guarded write sequence they all run through.
package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// Add stores an entry under key using the caller-supplied write action to
// materialize the content at the destination path.
//
// The write sequence guarantees that a crash at any point never leaves a
// corrupted entry visible:
//
//  1. Parent directories of the destination are created (idempotent).
//  2. The in-progress marker is created BEFORE any mutation of the
//     destination, so an observer always sees the marker first.
//  3. Any pre-existing file at the destination is deleted unconditionally
//     (overwrite-always semantics; the action starts from a clean slate).
//  4. The action runs with the destination path.
//  5. On any failure in 1-4 the destination is cleaned up best-effort and a
//     *filestore.WriteError wrapping the cause is returned.
//  6. The marker is deleted regardless of success or failure. Under normal
//     termination the marker never outlives the operation that created it;
//     only a crash leaves it behind, which is exactly the signal Get's lazy
//     self-repair looks for.
func (s *Store) Add(ctx context.Context, key string, action filestore.WriteAction) (filestore.Entry, error) {
	start := time.Now()
	entry, err := s.doAdd(ctx, key, "add", "", action)
	s.metrics.ObserveOperation("add", err, time.Since(start))
	if entry == nil {
		return nil, err
	}
	return entry, err
}

// Move stores the file at source under key and removes the source. Returns a
// *filestore.SourceNotFoundError when the source does not exist; the store is
// left untouched in that case.
func (s *Store) Move(ctx context.Context, key string, source string) (filestore.Entry, error) {
	start := time.Now()
	entry, err := s.saveIntoStore(ctx, key, source, true)
	s.metrics.ObserveOperation("move", err, time.Since(start))
	if entry == nil {
		return nil, err
	}
	return entry, err
}

// Copy stores the file at source under key, leaving the source intact.
// Returns a *filestore.SourceNotFoundError when the source does not exist;
// the store is left untouched in that case.
func (s *Store) Copy(ctx context.Context, key string, source string) (filestore.Entry, error) {
	start := time.Now()
	entry, err := s.saveIntoStore(ctx, key, source, false)
	s.metrics.ObserveOperation("copy", err, time.Since(start))
	if entry == nil {
		return nil, err
	}
	return entry, err
}

// saveIntoStore expresses Move and Copy as an Add whose action moves or
// copies the source to the destination.
func (s *Store) saveIntoStore(ctx context.Context, key, source string, isMove bool) (*Entry, error) {
	verb := "copy"
	if isMove {
		verb = "move"
	}

	if _, err := os.Stat(source); err != nil {
		return nil, &filestore.SourceNotFoundError{
			Verb:        verb,
			Source:      source,
			Destination: s.resolve(key),
		}
	}

	return s.doAdd(ctx, key, verb, source, func(dest string) error {
		if isMove {
			return moveFile(source, dest)
		}
		return copyFile(source, dest)
	})
}

// doAdd runs the marker-guarded write sequence for every add/move/copy.
func (s *Store) doAdd(ctx context.Context, key, verb, source string, action filestore.WriteAction) (entry *Entry, err error) {
	dest := s.resolve(key)

	wrap := func(cause error) error {
		return &filestore.WriteError{Verb: verb, Source: source, Destination: dest, Err: cause}
	}

	if err := ctx.Err(); err != nil {
		return nil, wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, wrap(err)
	}

	marker := markerPath(dest)
	if err := touch(marker); err != nil {
		return nil, wrap(err)
	}
	// Marker cleanup must never be skipped, even when the failure cleanup
	// below could not fully remove the destination: a surviving marker would
	// make Get and Search treat the key as permanently in progress.
	defer func() {
		if removeErr := os.Remove(marker); removeErr != nil && err == nil {
			entry, err = nil, wrap(removeErr)
		}
	}()

	if err := os.RemoveAll(dest); err != nil {
		return nil, wrap(err)
	}

	if err := action(dest); err != nil {
		_ = os.RemoveAll(dest) // best-effort cleanup of partial content
		return nil, wrap(err)
	}

	return s.entryAt(key), nil
}

// moveFile moves src to dest, falling back to copy+remove when a rename
// crosses filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src to dest, preserving the source's permission bits.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
