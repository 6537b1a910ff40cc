package testing

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathstore/pathstore/pkg/filestore"
)

func (suite *Suite) testAddGet(t *testing.T) {
	store := suite.NewStore(t)

	added := mustAdd(t, store, "dir/artifact.bin", "round trip content")
	assert.Equal(t, "dir/artifact.bin", added.Key())

	got := mustGet(t, store, "dir/artifact.bin")
	assert.Equal(t, "round trip content", mustReadEntry(t, got))

	size, err := got.Size(testContext())
	require.NoError(t, err)
	assert.Equal(t, int64(len("round trip content")), size)
}

func (suite *Suite) testAddOverwrite(t *testing.T) {
	store := suite.NewStore(t)

	mustAdd(t, store, "key", "first")
	mustAdd(t, store, "key", "second")

	got := mustGet(t, store, "key")
	assert.Equal(t, "second", mustReadEntry(t, got))
}

func (suite *Suite) testAddActionFailure(t *testing.T) {
	store := suite.NewStore(t)
	cause := errors.New("producer failed")

	_, err := store.Add(testContext(), "broken", func(dest string) error {
		return cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, filestore.ErrWriteFailed)

	entry, err := store.Get(testContext(), "broken")
	require.NoError(t, err)
	assert.Nil(t, entry, "a failed add must not leave an entry behind")
}

func (suite *Suite) testMove(t *testing.T) {
	store := suite.NewStore(t)
	source := writeSourceFile(t, "moved")

	entry, err := store.Move(testContext(), "dest/moved.txt", source)
	require.NoError(t, err)
	assert.Equal(t, "moved", mustReadEntry(t, entry))

	_, statErr := os.Stat(source)
	assert.True(t, os.IsNotExist(statErr), "move must remove the source")
}

func (suite *Suite) testCopy(t *testing.T) {
	store := suite.NewStore(t)
	source := writeSourceFile(t, "copied")

	entry, err := store.Copy(testContext(), "dest/copied.txt", source)
	require.NoError(t, err)
	assert.Equal(t, "copied", mustReadEntry(t, entry))

	data, err := os.ReadFile(source)
	require.NoError(t, err, "copy must leave the source intact")
	assert.Equal(t, "copied", string(data))
}

func (suite *Suite) testMoveMissingSource(t *testing.T) {
	store := suite.NewStore(t)

	_, err := store.Move(testContext(), "dest", "/nonexistent/source/file")
	require.Error(t, err)
	assert.ErrorIs(t, err, filestore.ErrSourceNotFound)

	var snf *filestore.SourceNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "move", snf.Verb)
}

func (suite *Suite) testCopyMissingSource(t *testing.T) {
	store := suite.NewStore(t)

	_, err := store.Copy(testContext(), "dest", "/nonexistent/source/file")
	require.Error(t, err)
	assert.ErrorIs(t, err, filestore.ErrSourceNotFound)

	var snf *filestore.SourceNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "copy", snf.Verb)
}

func (suite *Suite) testGetAbsent(t *testing.T) {
	store := suite.NewStore(t)

	entry, err := store.Get(testContext(), "never/added")
	require.NoError(t, err, "absence is not an error")
	assert.Nil(t, entry)
}

func (suite *Suite) testDelete(t *testing.T) {
	store := suite.NewStore(t)
	mustAdd(t, store, "doomed", "x")

	require.NoError(t, store.Delete(testContext(), "doomed"))

	entry, err := store.Get(testContext(), "doomed")
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, store.Delete(testContext(), "doomed"), "delete is idempotent")
}
