package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Seed categories created once on an empty store. "Other" doubles as the
// fallback for blank category names.
var seedCategories = []string{"Food", "Transport", "Other"}

// DefaultCategoryName is substituted when a caller supplies a blank category.
const DefaultCategoryName = "Other"

// EnsureSchema guarantees the required tables and indexes exist and are
// migrated to the current shape. It is idempotent and cheap when the schema
// is already current, so every public operation calls it before doing work.
// All DDL for one call executes inside a single transaction.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			user_id INTEGER,
			icon TEXT DEFAULT '',
			color TEXT DEFAULT '',
			type TEXT DEFAULT 'expense',
			is_deleted BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			amount REAL NOT NULL,
			category_id INTEGER REFERENCES categories(id),
			date TEXT NOT NULL,
			description TEXT,
			user_id INTEGER NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	// Older stores predate per-user categories. Detect the drift by
	// inspecting the live column set rather than a version flag.
	hasUserID, err := columnExists(ctx, tx, "categories", "user_id")
	if err != nil {
		return err
	}
	if !hasUserID {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE categories ADD COLUMN user_id INTEGER`); err != nil {
			return fmt.Errorf("failed to add user_id column: %w", err)
		}
		slog.Info("migrated categories table", "added_column", "user_id")
	}

	// The scope key maps NULL (global) to a sentinel 0; user ids start at 1,
	// so each scope holds at most one category per name.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username COLLATE NOCASE)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_scope_name ON categories(IFNULL(user_id, 0), name)`,
	}
	for _, query := range indexes {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	// First run: seed the global categories exactly once, detected by a
	// row-count check.
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count == 0 {
		for _, name := range seedCategories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (name, user_id, is_deleted) VALUES (?, NULL, 0)`, name); err != nil {
				return fmt.Errorf("failed to seed category %q: %w", name, err)
			}
		}
		slog.Info("seeded default categories", "count", len(seedCategories))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// columnExists inspects the live column set of a table.
func columnExists(ctx context.Context, q querier, table, column string) (bool, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}

	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error iterating columns: %w", err)
	}
	return false, nil
}
