package storage

import (
	"context"
	"testing"
)

// Helper function to create a test store backed by an in-memory database.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Helper to register a user and return its id.
func createTestUser(t *testing.T, store *SQLiteStore, username string) int64 {
	t.Helper()

	user, err := store.CreateUser(context.Background(), username, "hunter2!")
	if err != nil {
		t.Fatalf("Failed to create user %q: %v", username, err)
	}
	return user.ID
}
