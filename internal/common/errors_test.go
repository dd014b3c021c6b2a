package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorMessage(t *testing.T) {
	err := NewUserError("Invalid date", ErrInvalidDate)
	assert.Equal(t, "Invalid date: invalid date", err.Error())

	bare := NewUserError("--user is required", nil)
	assert.Equal(t, "--user is required", bare.Error())
}

func TestUserErrorUnwrap(t *testing.T) {
	err := NewUserError("Invalid amount", ErrInvalidAmount)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(NewUserError("oops", nil)))
	assert.True(t, IsUserError(fmt.Errorf("wrapped: %w", NewUserError("oops", nil))))
	assert.False(t, IsUserError(errors.New("plain")))
	assert.False(t, IsUserError(nil))
}
