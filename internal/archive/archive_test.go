package archive

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathstore/pathstore/pkg/filestore"
	"github.com/pathstore/pathstore/pkg/filestore/fs"
	"github.com/pathstore/pathstore/pkg/filestore/memory"
)

func addEntry(t *testing.T, store filestore.Store, key, content string) {
	t.Helper()
	_, err := store.Add(context.Background(), key, func(dest string) error {
		return os.WriteFile(dest, []byte(content), 0644)
	})
	require.NoError(t, err)
}

func readEntry(t *testing.T, store filestore.Store, key string) string {
	t.Helper()
	entry, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, entry, "entry %q should exist", key)

	r, err := entry.Open(context.Background())
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := fs.New(filepath.Join(t.TempDir(), "source"))

	addEntry(t, source, "libs/core-1.0.jar", "core contents")
	addEntry(t, source, "libs/util-2.0.jar", "util contents")
	addEntry(t, source, "docs/readme.txt", "hello")

	var buf bytes.Buffer
	exported, err := Export(ctx, source, "**/*", &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, exported)

	dest := memory.New()
	imported, err := Import(ctx, dest, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	assert.Equal(t, "core contents", readEntry(t, dest, "libs/core-1.0.jar"))
	assert.Equal(t, "util contents", readEntry(t, dest, "libs/util-2.0.jar"))
	assert.Equal(t, "hello", readEntry(t, dest, "docs/readme.txt"))
}

func TestExportPatternFilter(t *testing.T) {
	ctx := context.Background()
	source := memory.New()

	addEntry(t, source, "libs/core.jar", "jar")
	addEntry(t, source, "docs/readme.txt", "txt")

	var buf bytes.Buffer
	exported, err := Export(ctx, source, "libs/**", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, exported)

	dest := memory.New()
	imported, err := Import(ctx, dest, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	results, err := dest.Search(ctx, "**/*")
	require.NoError(t, err)

	keys := make([]string, len(results))
	for i, e := range results {
		keys[i] = e.Key()
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"libs/core.jar"}, keys)
}

func TestExportSkipsInProgressEntries(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "store")
	source := fs.New(root)

	addEntry(t, source, "libs/good.jar", "good")

	// Simulate a crashed write: entry file plus its in-progress marker.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "libs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "libs", "bad.jar"), []byte("partial"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "libs", "bad.jar"+fs.MarkerSuffix), nil, 0644))

	var buf bytes.Buffer
	exported, err := Export(ctx, source, "**/*", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, exported)
}

func TestImportEmptyArchive(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	exported, err := Export(ctx, memory.New(), "**/*", &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, exported)

	imported, err := Import(ctx, memory.New(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)
}
