package fs

import (
	"os"
	"path/filepath"
	"strings"
)

// MarkerSuffix is appended to a destination path to form the name of its
// in-progress marker file. The marker is an empty sentinel created immediately
// before a destination is mutated and removed immediately after the operation
// completes, so its mere presence on disk means an operation on that key did
// not run to completion.
//
// A key must never legitimately end in this suffix: such a key would be
// indistinguishable from a marker.
const MarkerSuffix = ".fslck"

// markerPath returns the in-progress marker path for dest.
func markerPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), filepath.Base(dest)+MarkerSuffix)
}

// isMarkerPath reports whether path names a marker file.
func isMarkerPath(path string) bool {
	return strings.HasSuffix(path, MarkerSuffix)
}

// hasMarker reports whether a marker currently exists for dest, meaning the
// destination file, if present, holds content from a write that never
// completed and must not be trusted.
func hasMarker(dest string) bool {
	_, err := os.Stat(markerPath(dest))
	return err == nil
}

// touch creates an empty file at path, truncating any existing one.
func touch(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}
