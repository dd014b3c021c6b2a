package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategoryIdempotent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	first, err := store.ResolveCategory(ctx, userID, "Groceries")
	require.NoError(t, err)

	second, err := store.ResolveCategory(ctx, userID, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, first, second, "resolving the same name twice must return the same id")

	other, err := store.ResolveCategory(ctx, userID, "Rent")
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "distinct names must yield distinct ids")
}

func TestResolveCategoryPrefersGlobalOverCreation(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	// "Food" is a seeded global category; resolving it must return the
	// global id instead of creating a per-user duplicate.
	id, err := store.ResolveCategory(ctx, userID, "Food")
	require.NoError(t, err)

	cat, err := store.GetCategoryByName(ctx, userID, "Food")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, cat.ID, id)
	assert.True(t, cat.IsGlobal())

	var count int
	err = store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE name = 'Food'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "no per-user duplicate of a global name")
}

func TestResolveCategoryPrefersUserOwnedOverGlobal(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	// Create a user-scoped category that shadows a would-be global name.
	userCatID, err := store.ResolveCategory(ctx, userID, "Hobby")
	require.NoError(t, err)

	// Plant a global category with the same name directly; the resolver must
	// still prefer the user-owned one.
	_, err = store.db.ExecContext(ctx,
		`INSERT INTO categories (name, user_id, is_deleted) VALUES ('Hobby', NULL, 0)`)
	require.NoError(t, err)

	id, err := store.ResolveCategory(ctx, userID, "Hobby")
	require.NoError(t, err)
	assert.Equal(t, userCatID, id)
}

func TestResolveCategoryScopesPerUser(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	aliceID, err := store.ResolveCategory(ctx, alice, "Books")
	require.NoError(t, err)

	bobID, err := store.ResolveCategory(ctx, bob, "Books")
	require.NoError(t, err)

	assert.NotEqual(t, aliceID, bobID, "each user gets their own category for the same name")
}

func TestResolveCategoryTrimsName(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	a, err := store.ResolveCategory(ctx, userID, "Utilities")
	require.NoError(t, err)

	b, err := store.ResolveCategory(ctx, userID, "  Utilities  ")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveCategoryRejectsBlankName(t *testing.T) {
	store := createTestStore(t)
	userID := createTestUser(t, store, "alice")

	_, err := store.ResolveCategory(context.Background(), userID, "   ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestResolveCategoryRestoresSoftDeleted(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	id, err := store.ResolveCategory(ctx, userID, "Travel")
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, userID, id))

	cat, err := store.GetCategoryByName(ctx, userID, "Travel")
	require.NoError(t, err)
	assert.Nil(t, cat, "soft-deleted categories are excluded from lookups")

	// Resolving the name again restores the same row instead of colliding
	// with the uniqueness index.
	restored, err := store.ResolveCategory(ctx, userID, "Travel")
	require.NoError(t, err)
	assert.Equal(t, id, restored)

	cat, err = store.GetCategoryByName(ctx, userID, "Travel")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.False(t, cat.IsDeleted)
}

func TestDeleteCategoryIgnoresOtherUsers(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	id, err := store.ResolveCategory(ctx, alice, "Books")
	require.NoError(t, err)

	err = store.DeleteCategory(ctx, bob, id)
	assert.Error(t, err, "a user cannot delete another user's category")
}

func TestCategoryChangeNotification(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	var events int
	store.Notifier().Subscribe(func() { events++ })

	// Creation fires a notification.
	_, err := store.ResolveCategory(ctx, userID, "Garden")
	require.NoError(t, err)
	assert.Equal(t, 1, events)

	// Resolving an existing category does not.
	_, err = store.ResolveCategory(ctx, userID, "Garden")
	require.NoError(t, err)
	assert.Equal(t, 1, events)
}
