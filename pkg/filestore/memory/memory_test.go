package memory

import (
	"testing"

	"github.com/pathstore/pathstore/pkg/filestore"
	storetesting "github.com/pathstore/pathstore/pkg/filestore/testing"
)

// TestMemoryStore runs the complete filestore contract suite against the
// in-memory implementation.
func TestMemoryStore(t *testing.T) {
	suite := &storetesting.Suite{
		NewStore: func(t *testing.T) filestore.Store {
			return New()
		},
	}
	suite.Run(t)
}
