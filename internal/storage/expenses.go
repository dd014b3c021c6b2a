package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/date"
	"github.com/mwalkowiak/spendlite/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	From       *date.Date
	To         *date.Date
	CategoryID *int64
	Limit      int
}

// RecordExpense atomically resolves the category and persists the expense.
// Both steps run inside one transaction: if either fails, nothing is visible.
// The caller boundary is responsible for validating amount, date, and user id
// before invoking this; blank category names should already be substituted
// with DefaultCategoryName.
func (s *SQLiteStore) RecordExpense(ctx context.Context, userID int64, categoryName string, amount float64, description string, day date.Date) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := validateString(categoryName, "categoryName"); err != nil {
		return err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	categoryID, _, err := resolveCategory(ctx, tx, userID, categoryName)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (amount, category_id, date, description, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		amount, categoryID, day.String(), description, userID); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}

	slog.Debug("recorded expense",
		"user_id", userID,
		"category", categoryName,
		"amount", amount,
		"date", day.String())

	s.notifier.broadcast()
	return nil
}

// UpdateExpense rewrites an expense owned by the user. The category name is
// resolved first; the update itself is a single atomic statement.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, userID, expenseID int64, amount float64, categoryName string, day date.Date, description string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := validateString(categoryName, "categoryName"); err != nil {
		return err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	categoryID, created, err := resolveCategory(ctx, s.db, userID, categoryName)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, category_id = ?, date = ?, description = ?
		 WHERE id = ? AND user_id = ?`,
		amount, categoryID, day.String(), description, expenseID, userID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		if created {
			s.notifier.broadcast()
		}
		return fmt.Errorf("%w: expense %d", common.ErrNotFound, expenseID)
	}

	s.notifier.broadcast()
	return nil
}

// DeleteExpense hard-deletes an expense owned by the user.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
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
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, expenseID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %d", common.ErrNotFound, expenseID)
	}

	s.notifier.broadcast()
	return nil
}

// GetExpenseByID returns one of the user's expenses, or nil when absent.
func (s *SQLiteStore) GetExpenseByID(ctx context.Context, userID, expenseID int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, amount, category_id, date, description, user_id
		FROM expenses
		WHERE id = ? AND user_id = ?`, expenseID, userID)

	exp, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil // Expense not found
	}
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// ListExpenses returns the user's expenses, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, amount, category_id, date, description, user_id
		FROM expenses
		WHERE user_id = ?`
	args := []any{userID}

	// Dates are stored as ISO text, so string comparison is date comparison.
	if filter.From != nil {
		query += ` AND date >= ?`
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		query += ` AND date <= ?`
		args = append(args, filter.To.String())
	}
	if filter.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	query += ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		exp, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *exp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// GetCategorySummary returns total spend per category name for the user in
// the inclusive date range. Expenses with a dangling category id are grouped
// under the default category name.
func (s *SQLiteStore) GetCategorySummary(ctx context.Context, userID int64, from, to date.Date) (map[string]float64, error) {
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
		SELECT COALESCE(c.name, ?), SUM(e.amount)
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date <= ?
		GROUP BY COALESCE(c.name, ?)`,
		DefaultCategoryName, userID, from.String(), to.String(), DefaultCategoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := make(map[string]float64)
	for rows.Next() {
		var (
			name  string
			total float64
		)
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[name] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}
	return summary, nil
}

// scanExpense reads one expense row, converting the stored ISO date text back
// into a calendar date with no time-zone shift.
func scanExpense(scan func(dest ...any) error) (*model.Expense, error) {
	var (
		exp        model.Expense
		categoryID sql.NullInt64
		dateText   string
		desc       sql.NullString
	)
	if err := scan(&exp.ID, &exp.Amount, &categoryID, &dateText, &desc, &exp.UserID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	if categoryID.Valid {
		exp.CategoryID = &categoryID.Int64
	}
	exp.Description = desc.String

	day, err := date.Parse(dateText)
	if err != nil {
		return nil, fmt.Errorf("stored expense has malformed date: %w", err)
	}
	exp.Date = day
	return &exp, nil
}
