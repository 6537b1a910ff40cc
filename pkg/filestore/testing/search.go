package testing

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathstore/pathstore/pkg/filestore"
)

func (suite *Suite) testSearch(t *testing.T) {
	store := suite.NewStore(t)
	searcher, ok := store.(filestore.Searcher)
	if !ok {
		t.Skip("store does not implement filestore.Searcher")
	}

	entries, err := searcher.Search(testContext(), "**/*")
	require.NoError(t, err, "searching an empty store is not an error")
	assert.Empty(t, entries)

	mustAdd(t, store, "libs/a-1.jar", "a")
	mustAdd(t, store, "libs/sub/b-2.jar", "b")
	mustAdd(t, store, "docs/readme.txt", "c")

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"everything", "**/*", []string{"docs/readme.txt", "libs/a-1.jar", "libs/sub/b-2.jar"}},
		{"recursive extension", "**/*.jar", []string{"libs/a-1.jar", "libs/sub/b-2.jar"}},
		{"single segment", "libs/*", []string{"libs/a-1.jar"}},
		{"single char", "libs/a-?.jar", []string{"libs/a-1.jar"}},
		{"no matches", "**/*.zip", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := searcher.Search(testContext(), tt.pattern)
			require.NoError(t, err)

			keys := make([]string, 0, len(entries))
			for _, entry := range entries {
				keys = append(keys, entry.Key())
			}
			sort.Strings(keys)
			assert.Equal(t, tt.want, keys)
		})
	}
}
