package filestore

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all filestore backends. Implementations wrap
// these with context so callers can branch with errors.Is while still seeing
// a descriptive message:
//
//	entry, err := store.Move(ctx, key, src)
//	if errors.Is(err, filestore.ErrSourceNotFound) { ... }
var (
	// ErrSourceNotFound indicates Move or Copy was invoked with a source
	// file that does not exist. The store is left unchanged.
	ErrSourceNotFound = errors.New("source file does not exist")

	// ErrWriteFailed indicates a failure while writing an entry into the
	// store. Partial content at the destination is cleaned up best-effort
	// before this is returned.
	ErrWriteFailed = errors.New("filestore write failed")
)

// SourceNotFoundError reports a Move or Copy whose source file is missing.
// It carries the verb ("move" or "copy"), the missing source, and the
// intended destination.
type SourceNotFoundError struct {
	Verb        string
	Source      string
	Destination string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("cannot %s %q into filestore at %q: %v",
		e.Verb, e.Source, e.Destination, ErrSourceNotFound)
}

func (e *SourceNotFoundError) Unwrap() error {
	return ErrSourceNotFound
}

// WriteError reports a failure during the entry-write sequence: parent
// directory creation, in-progress marker creation, destination pre-delete, or
// the write action itself. All phases are reported uniformly; only the
// wrapped cause distinguishes them.
type WriteError struct {
	// Verb is the operation that failed: "add", "move", or "copy".
	Verb string

	// Source is the source file for move/copy, empty for add.
	Source string

	// Destination is the resolved location the entry was being written to.
	Destination string

	// Err is the underlying cause.
	Err error
}

func (e *WriteError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to %s file %q into filestore at %q: %v",
			e.Verb, e.Source, e.Destination, e.Err)
	}
	return fmt.Sprintf("failed to %s into filestore at %q: %v",
		e.Verb, e.Destination, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrWriteFailed so callers can use errors.Is without
// depending on the concrete type.
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailed
}
