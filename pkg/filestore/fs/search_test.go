package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// populate commits a set of keys with throwaway content.
func populate(t *testing.T, store *Store, keys ...string) {
	t.Helper()
	for _, key := range keys {
		_, err := store.Add(testContext(), key, func(dest string) error {
			return os.WriteFile(dest, []byte(key), 0644)
		})
		require.NoError(t, err)
	}
}

func searchKeys(t *testing.T, store *Store, pattern string) []string {
	t.Helper()
	entries, err := store.Search(testContext(), pattern)
	require.NoError(t, err)
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key())
	}
	sort.Strings(keys)
	return keys
}

func TestSearchPatterns(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	populate(t, store,
		"core.jar",
		"libs/core-1.0.jar",
		"libs/core-1.0.pom",
		"libs/nested/util-2.1.jar",
		"docs/readme.txt",
	)

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"everything", "**/*", []string{
			"core.jar", "docs/readme.txt", "libs/core-1.0.jar",
			"libs/core-1.0.pom", "libs/nested/util-2.1.jar",
		}},
		{"recursive extension", "**/*.jar", []string{
			"core.jar", "libs/core-1.0.jar", "libs/nested/util-2.1.jar",
		}},
		{"single segment", "libs/*", []string{
			"libs/core-1.0.jar", "libs/core-1.0.pom",
		}},
		{"single char wildcard", "libs/core-?.0.jar", []string{
			"libs/core-1.0.jar",
		}},
		{"exact key", "docs/readme.txt", []string{"docs/readme.txt"}},
		{"no matches", "**/*.zip", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchKeys(t, store, tt.pattern))
		})
	}
}

func TestSearchExcludesInProgress(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	populate(t, store, "committed.txt")

	// An in-progress key: marker present, no destination yet.
	markerOnlyDest := store.resolve("in-progress.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(markerOnlyDest), 0755))
	require.NoError(t, touch(markerOnlyDest+MarkerSuffix))

	// A shadowed key: destination present but still marked in-progress.
	shadowedDest := store.resolve("shadowed.txt")
	require.NoError(t, os.WriteFile(shadowedDest, []byte("partial"), 0644))
	require.NoError(t, touch(shadowedDest+MarkerSuffix))

	keys := searchKeys(t, store, "**/*")
	assert.Equal(t, []string{"committed.txt"}, keys,
		"markers and marker-shadowed files must be filtered out")
}

func TestSearchDoesNotRepair(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))

	dest := store.resolve("shadowed.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	require.NoError(t, os.WriteFile(dest, []byte("partial"), 0644))
	require.NoError(t, touch(dest+MarkerSuffix))

	_, err := store.Search(testContext(), "**/*")
	require.NoError(t, err)

	// Search filters in-progress entries but leaves them on disk for a
	// later Get to repair.
	_, statErr := os.Stat(dest)
	assert.NoError(t, statErr)
	_, statErr = os.Stat(dest + MarkerSuffix)
	assert.NoError(t, statErr)
}

func TestSearchMissingRoot(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "never-created"))

	entries, err := store.Search(testContext(), "**/*")
	require.NoError(t, err, "searching a store without a root is not an error")
	assert.Empty(t, entries)
}

func TestSearchInvalidPattern(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store"))
	populate(t, store, "a.txt")

	_, err := store.Search(testContext(), "[unclosed")
	assert.Error(t, err)
}

func TestSearchReturnsReResolvingEntries(t *testing.T) {
	base := t.TempDir()
	store := New(filepath.Join(base, "old"))
	populate(t, store, "a.txt")

	entries, err := store.Search(testContext(), "**/*")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	newRoot := filepath.Join(base, "new")
	require.NoError(t, store.Relocate(testContext(), newRoot))

	var _ filestore.Entry = entries[0]
	assert.Equal(t, filepath.Join(newRoot, "a.txt"), entries[0].(*Entry).Path())
}
