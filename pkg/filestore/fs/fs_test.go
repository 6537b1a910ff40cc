package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathstore/pathstore/pkg/filestore"
)

func testContext() context.Context {
	return context.Background()
}

// writeSource creates a file outside the store to use as a move/copy source.
func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// readEntry reads an entry's content through its resolved path.
func readEntry(t *testing.T, entry filestore.Entry) string {
	t.Helper()
	data, err := os.ReadFile(entry.(*Entry).Path())
	require.NoError(t, err)
	return string(data)
}

func TestAddRoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	added, err := store.Add(testContext(), "libs/core-1.0.jar", func(dest string) error {
		return os.WriteFile(dest, []byte("artifact bytes"), 0644)
	})
	require.NoError(t, err)
	assert.Equal(t, "libs/core-1.0.jar", added.Key())

	got, err := store.Get(testContext(), "libs/core-1.0.jar")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "artifact bytes", readEntry(t, got))
}

func TestAddOverwritesExistingEntry(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	key := "artifact.txt"

	_, err := store.Add(testContext(), key, func(dest string) error {
		return os.WriteFile(dest, []byte("first"), 0644)
	})
	require.NoError(t, err)

	_, err = store.Add(testContext(), key, func(dest string) error {
		return os.WriteFile(dest, []byte("second"), 0644)
	})
	require.NoError(t, err)

	got, err := store.Get(testContext(), key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", readEntry(t, got))
}

func TestAddLeavesNoMarkerBehind(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	_, err := store.Add(testContext(), "a/b/c.txt", func(dest string) error {
		return os.WriteFile(dest, []byte("x"), 0644)
	})
	require.NoError(t, err)

	_, statErr := os.Stat(store.resolve("a/b/c.txt") + MarkerSuffix)
	assert.True(t, os.IsNotExist(statErr), "marker must be removed after a successful add")
}

func TestMoveSemantics(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	source := writeSource(t, "moved content")

	entry, err := store.Move(testContext(), "moved/file.txt", source)
	require.NoError(t, err)
	assert.Equal(t, "moved content", readEntry(t, entry))

	_, statErr := os.Stat(source)
	assert.True(t, os.IsNotExist(statErr), "source must no longer exist after move")
}

func TestCopySemantics(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	source := writeSource(t, "copied content")

	entry, err := store.Copy(testContext(), "copied/file.txt", source)
	require.NoError(t, err)
	assert.Equal(t, "copied content", readEntry(t, entry))

	data, err := os.ReadFile(source)
	require.NoError(t, err, "source must still exist after copy")
	assert.Equal(t, "copied content", string(data))
}

func TestMoveMissingSource(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	store := New(root)
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := store.Move(testContext(), "dest/key", missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, filestore.ErrSourceNotFound)

	var snf *filestore.SourceNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "move", snf.Verb)
	assert.Equal(t, missing, snf.Source)

	// The store must be left unchanged: no destination, no marker, and in
	// this case not even the root directory.
	_, statErr := os.Stat(root)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyMissingSource(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	_, err := store.Copy(testContext(), "dest/key", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, filestore.ErrSourceNotFound)

	var snf *filestore.SourceNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "copy", snf.Verb)
}

func TestAddActionFailureCleansUp(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	cause := errors.New("download interrupted")

	_, err := store.Add(testContext(), "failed/key.bin", func(dest string) error {
		// Simulate an action that wrote partial content before failing.
		if werr := os.WriteFile(dest, []byte("partial"), 0644); werr != nil {
			return werr
		}
		return cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, filestore.ErrWriteFailed)

	var werr *filestore.WriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "add", werr.Verb)

	dest := store.resolve("failed/key.bin")
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "partial destination must be removed")
	_, statErr = os.Stat(dest + MarkerSuffix)
	assert.True(t, os.IsNotExist(statErr), "marker must be removed even on failure")

	got, err := store.Get(testContext(), "failed/key.bin")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAbsentKey(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	entry, err := store.Get(testContext(), "never/stored")
	require.NoError(t, err, "absence is not an error")
	assert.Nil(t, entry)
}

func TestGetSelfRepair(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	store := New(root)
	key := "crashed/entry.bin"
	dest := store.resolve(key)

	// Simulate a crash mid-write: a committed-looking destination with its
	// marker still present.
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	require.NoError(t, os.WriteFile(dest, []byte("untrustworthy"), 0644))
	require.NoError(t, touch(dest+MarkerSuffix))

	entry, err := store.Get(testContext(), key)
	require.NoError(t, err)
	assert.Nil(t, entry, "an in-progress entry must be reported absent")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "partial destination must be deleted")
	_, statErr = os.Stat(dest + MarkerSuffix)
	assert.True(t, os.IsNotExist(statErr), "marker must be deleted")
}

func TestGetSelfRepairMarkerOnly(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	key := "crashed/early.bin"
	dest := store.resolve(key)

	// Crash between marker creation and content write: only the marker.
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	require.NoError(t, touch(dest+MarkerSuffix))

	entry, err := store.Get(testContext(), key)
	require.NoError(t, err)
	assert.Nil(t, entry)

	_, statErr := os.Stat(dest + MarkerSuffix)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDelete(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	_, err := store.Add(testContext(), "doomed.txt", func(dest string) error {
		return os.WriteFile(dest, []byte("x"), 0644)
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(testContext(), "doomed.txt"))

	entry, err := store.Get(testContext(), "doomed.txt")
	require.NoError(t, err)
	assert.Nil(t, entry)

	// Idempotent.
	require.NoError(t, store.Delete(testContext(), "doomed.txt"))
}

func TestRelocate(t *testing.T) {
	base := t.TempDir()
	oldRoot := filepath.Join(base, "old-root")
	newRoot := filepath.Join(base, "new-root")
	store := New(oldRoot)

	before, err := store.Add(testContext(), "kept/artifact.jar", func(dest string) error {
		return os.WriteFile(dest, []byte("payload"), 0644)
	})
	require.NoError(t, err)

	require.NoError(t, store.Relocate(testContext(), newRoot))
	assert.Equal(t, newRoot, store.BaseDir())

	// Previously committed keys resolve under the new root.
	after, err := store.Get(testContext(), "kept/artifact.jar")
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, "payload", readEntry(t, after))

	// An entry issued before the relocation re-resolves against the
	// current root, not the root it was created under.
	assert.Equal(t, filepath.Join(newRoot, "kept/artifact.jar"), before.(*Entry).Path())

	_, statErr := os.Stat(oldRoot)
	assert.True(t, os.IsNotExist(statErr), "old root must have been moved away")
}

func TestRelocateUnpopulatedStore(t *testing.T) {
	base := t.TempDir()
	store := New(filepath.Join(base, "never-created"))
	newRoot := filepath.Join(base, "elsewhere")

	require.NoError(t, store.Relocate(testContext(), newRoot))
	assert.Equal(t, newRoot, store.BaseDir())

	// Pure pointer update: nothing should exist on disk yet.
	_, statErr := os.Stat(newRoot)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSweep(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	_, err := store.Add(testContext(), "good/a.txt", func(dest string) error {
		return os.WriteFile(dest, []byte("a"), 0644)
	})
	require.NoError(t, err)

	// Two crashed writes: one with partial content, one marker-only.
	partial := store.resolve("bad/partial.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(partial), 0755))
	require.NoError(t, os.WriteFile(partial, []byte("junk"), 0644))
	require.NoError(t, touch(partial+MarkerSuffix))

	markerOnly := store.resolve("bad/marker-only.txt")
	require.NoError(t, touch(markerOnly+MarkerSuffix))

	repaired, err := store.Sweep(testContext())
	require.NoError(t, err)
	assert.Equal(t, 2, repaired)

	entries, err := store.Search(testContext(), "**/*")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "good/a.txt", entries[0].Key())
}

func TestSweepMissingRoot(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "absent"))

	repaired, err := store.Sweep(testContext())
	require.NoError(t, err)
	assert.Zero(t, repaired)
}

func TestEntryOpenAndSize(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	entry, err := store.Add(testContext(), "blob.bin", func(dest string) error {
		return os.WriteFile(dest, []byte("0123456789"), 0644)
	})
	require.NoError(t, err)

	size, err := entry.Size(testContext())
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	rc, err := entry.Open(testContext())
	require.NoError(t, err)
	defer rc.Close()
	buf := make([]byte, 10)
	n, _ := rc.Read(buf)
	assert.Equal(t, "0123456789", string(buf[:n]))
}

func TestMarkerPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b.txt"+MarkerSuffix), markerPath(filepath.Join("a", "b.txt")))
	assert.True(t, isMarkerPath("dir/file.jar"+MarkerSuffix))
	assert.False(t, isMarkerPath("dir/file.jar"))
}
