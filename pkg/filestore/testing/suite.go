// Package testing provides a reusable test suite for filestore
// implementations.
//
// The suite tests the interface contract, not implementation details, so it
// runs unchanged against any backend:
//
//	func TestMemoryStore(t *testing.T) {
//	    suite := &storetesting.Suite{
//	        NewStore: func(t *testing.T) filestore.Store {
//	            return memory.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
package testing

import (
	"context"
	"testing"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// Suite is a contract test suite for filestore.Store implementations. If the
// store under test also implements filestore.Searcher, the search contract is
// exercised as well.
type Suite struct {
	// NewStore creates a fresh, empty store for each test, ensuring test
	// isolation.
	NewStore func(t *testing.T) filestore.Store
}

// Run executes all tests in the suite.
func (suite *Suite) Run(t *testing.T) {
	t.Run("AddGet", suite.testAddGet)
	t.Run("AddOverwrite", suite.testAddOverwrite)
	t.Run("AddActionFailure", suite.testAddActionFailure)
	t.Run("Move", suite.testMove)
	t.Run("Copy", suite.testCopy)
	t.Run("MoveMissingSource", suite.testMoveMissingSource)
	t.Run("CopyMissingSource", suite.testCopyMissingSource)
	t.Run("GetAbsent", suite.testGetAbsent)
	t.Run("Delete", suite.testDelete)
	t.Run("Search", suite.testSearch)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
