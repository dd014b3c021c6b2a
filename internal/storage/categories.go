package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/model"
)

// Default display metadata for categories created on first use.
const (
	defaultCategoryIcon  = "tag"
	defaultCategoryColor = "#808080"
)

// ResolveCategory maps a free-text category name to a stable category id for
// the given user, creating a user-scoped category if no match exists.
// Lookup order: the user's own categories first, then global ones. Repeated
// calls for the same (user, name) pair always return the same id.
func (s *SQLiteStore) ResolveCategory(ctx context.Context, userID int64, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateUserID(userID); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	id, created, err := resolveCategory(ctx, s.db, userID, name)
	if err != nil {
		return 0, err
	}
	if created {
		s.notifier.broadcast()
	}
	return id, nil
}

// resolveCategory implements the ordered lookup shared by standalone
// resolution and expense recording. It runs against either the store handle
// or an open transaction.
func resolveCategory(ctx context.Context, q querier, userID int64, name string) (id int64, created bool, err error) {
	name = strings.TrimSpace(name)

	// 1. Exact match among the user's own non-deleted categories.
	err = q.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE user_id = ? AND name = ? AND is_deleted = 0`,
		userID, name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("failed to query user category: %w", err)
	}

	// 2. Global category with the same name.
	err = q.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE user_id IS NULL AND name = ? AND is_deleted = 0`,
		name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("failed to query global category: %w", err)
	}

	// 3. Create a user-scoped category. INSERT OR IGNORE guards the race
	// where a concurrent resolver created the same name first; the
	// uniqueness index on (scope, name) is the backstop.
	result, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name, user_id, icon, color, type, is_deleted)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		name, userID, defaultCategoryIcon, defaultCategoryColor, model.CategoryTypeExpense)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create category: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Re-select by name and scope; the insert may have been a no-op.
	var isDeleted bool
	err = q.QueryRowContext(ctx,
		`SELECT id, is_deleted FROM categories WHERE user_id = ? AND name = ?`,
		userID, name).Scan(&id, &isDeleted)
	if err != nil {
		return 0, false, fmt.Errorf("failed to re-select category: %w", err)
	}

	// The insert no-ops when a soft-deleted row holds the (scope, name)
	// slot; resurrect it so the name resolves again.
	if isDeleted {
		if _, err := q.ExecContext(ctx,
			`UPDATE categories SET is_deleted = 0 WHERE id = ?`, id); err != nil {
			return 0, false, fmt.Errorf("failed to restore category: %w", err)
		}
		slog.Info("restored soft-deleted category", "name", name, "id", id)
		return id, true, nil
	}

	if inserted > 0 {
		slog.Info("created new category", "name", name, "id", id, "user_id", userID)
	}
	return id, inserted > 0, nil
}

// GetCategories returns all non-deleted categories visible to the user:
// their own plus the global set.
func (s *SQLiteStore) GetCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, user_id, icon, color, type, is_deleted, created_at
		FROM categories
		WHERE (user_id = ? OR user_id IS NULL) AND is_deleted = 0
		ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var (
			cat   model.Category
			owner sql.NullInt64
		)
		if err := rows.Scan(&cat.ID, &cat.Name, &owner, &cat.Icon, &cat.Color,
			&cat.Type, &cat.IsDeleted, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if owner.Valid {
			cat.UserID = &owner.Int64
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories), "user_id", userID)
	return categories, nil
}

// GetCategoryByName returns the category the resolver would match for this
// user, or nil when the name resolves to nothing.
func (s *SQLiteStore) GetCategoryByName(ctx context.Context, userID int64, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	// Same priority order as the resolver: user scope first, then global.
	query := `
		SELECT id, name, user_id, icon, color, type, is_deleted, created_at
		FROM categories
		WHERE (user_id = ? OR user_id IS NULL) AND name = ? AND is_deleted = 0
		ORDER BY user_id IS NULL
		LIMIT 1`

	var (
		cat   model.Category
		owner sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, query, userID, strings.TrimSpace(name)).Scan(
		&cat.ID, &cat.Name, &owner, &cat.Icon, &cat.Color,
		&cat.Type, &cat.IsDeleted, &cat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	if owner.Valid {
		cat.UserID = &owner.Int64
	}
	return &cat, nil
}

// DeleteCategory soft-deletes a user-owned category. Expenses referencing it
// keep their category id; global categories cannot be deleted.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET is_deleted = 1 WHERE id = ? AND user_id = ?`,
		categoryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, categoryID)
	}

	s.notifier.broadcast()
	return nil
}
