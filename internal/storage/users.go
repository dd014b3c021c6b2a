package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/model"
)

// CreateUser registers a local account. Usernames are unique
// case-insensitively, enforced by the nocase index.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, password string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(username, "username"); err != nil {
		return nil, err
	}
	if err := validateString(password, "password"); err != nil {
		return nil, err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, string(hash), now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, fmt.Errorf("%w: username %q", common.ErrDuplicateEntry, username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	slog.Info("created user", "username", username, "id", id)
	return &model.User{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}, nil
}

// Authenticate verifies credentials and returns the user id. The same error
// is returned for an unknown username and a wrong password.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(username, "username"); err != nil {
		return 0, err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	var (
		id   int64
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ? COLLATE NOCASE`,
		username).Scan(&id, &hash)
	if err == sql.ErrNoRows {
		return 0, common.ErrBadCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return 0, common.ErrBadCredentials
	}
	return id, nil
}

// GetUserByUsername returns an account by name, or nil when absent.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(username, "username"); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ? COLLATE NOCASE`,
		username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
