package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalkowiak/spendlite/internal/common"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.NotEqual(t, "correct horse", user.PasswordHash, "password must be stored hashed")

	id, err := store.Authenticate(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	// Username matching is case-insensitive.
	id, err = store.Authenticate(ctx, "ALICE", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestAuthenticateFailures(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "alice", "correct horse")
	require.NoError(t, err)

	_, err = store.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrBadCredentials)

	_, err = store.Authenticate(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, common.ErrBadCredentials)
}

func TestCreateUserDuplicate(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, "alice", "pw")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestGetUserByUsername(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	missing, err := store.GetUserByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := store.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)

	found, err := store.GetUserByUsername(ctx, "Alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
}
