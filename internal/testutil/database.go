// Package testutil provides test database helpers shared across packages.
package testutil

import (
	"context"
	"testing"

	"github.com/mwalkowiak/spendlite/internal/storage"
)

// TestDB bundles an in-memory store with a ready-made user.
type TestDB struct {
	Store  *storage.SQLiteStore
	UserID int64
	t      *testing.T
}

// SetupTestDB creates an in-memory store with the schema ensured and one
// registered user. Cleanup is handled automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	user, err := store.CreateUser(ctx, "testuser", "test-password")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Store:  store,
		UserID: user.ID,
		t:      t,
	}
}
