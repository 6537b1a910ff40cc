package testing

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// writeSourceFile creates a file outside the store for use as a move/copy
// source.
func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// mustAdd stores content under key and fails the test if it errors.
func mustAdd(t *testing.T, store filestore.Store, key, content string) filestore.Entry {
	t.Helper()
	entry, err := store.Add(testContext(), key, func(dest string) error {
		return os.WriteFile(dest, []byte(content), 0644)
	})
	require.NoError(t, err, "Add should succeed")
	return entry
}

// mustReadEntry reads an entry's full content and fails the test if it
// errors.
func mustReadEntry(t *testing.T, entry filestore.Entry) string {
	t.Helper()
	rc, err := entry.Open(testContext())
	require.NoError(t, err, "Open should succeed")
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err, "reading entry content should succeed")
	return string(data)
}

// mustGet fetches an entry that is expected to exist.
func mustGet(t *testing.T, store filestore.Store, key string) filestore.Entry {
	t.Helper()
	entry, err := store.Get(testContext(), key)
	require.NoError(t, err, "Get should succeed")
	require.NotNil(t, entry, "entry %q should exist", key)
	return entry
}
