package testutil

import (
	"path/filepath"
	"testing"

	"github.com/globalassets/tracker-backend/internal/repository"
)

// SetupStore creates an initialized cache store backed by a throwaway
// SQLite file under the test's temp dir.
func SetupStore(t *testing.T) *repository.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache_test.db")
	store := repository.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return store
}
