package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidUserID = errors.New("user id must be positive")
	ErrZeroAmount    = errors.New("amount cannot be zero")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateUserID ensures a user id refers to an authenticated user.
func validateUserID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUserID, id)
	}
	return nil
}
