package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalkowiak/spendlite/internal/date"
)

func TestRecordExpense(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	err := store.RecordExpense(ctx, userID, "Food", 12.50, "lunch", date.MustParse("2024-01-10"))
	require.NoError(t, err)

	expenses, err := store.ListExpenses(ctx, userID, ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)

	exp := expenses[0]
	assert.InDelta(t, 12.50, exp.Amount, 0.001)
	assert.Equal(t, "lunch", exp.Description)
	assert.Equal(t, userID, exp.UserID)
	require.NotNil(t, exp.CategoryID)

	cat, err := store.GetCategoryByName(ctx, userID, "Food")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, cat.ID, *exp.CategoryID)
}

func TestRecordExpenseDateRoundTrip(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	err := store.RecordExpense(ctx, userID, "Other", 5, "", date.MustParse("2024-03-05"))
	require.NoError(t, err)

	expenses, err := store.ListExpenses(ctx, userID, ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)

	// Read back as the same calendar date with no time-zone shift.
	assert.Equal(t, "2024-03-05", expenses[0].Date.String())
	assert.Equal(t, 5, expenses[0].Date.Day())
}

func TestRecordExpenseAtomicity(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	// Drive the same two steps RecordExpense performs, forcing the expense
	// insert to fail after category resolution succeeded.
	tx, err := store.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	_, created, err := resolveCategory(ctx, tx, userID, "Doomed")
	require.NoError(t, err)
	require.True(t, created)

	_, err = tx.ExecContext(ctx, `INSERT INTO expenses (amount) VALUES (NULL)`)
	require.Error(t, err, "insert into expenses must fail")
	require.NoError(t, tx.Rollback())

	// The half-created category never became visible.
	cat, err := store.GetCategoryByName(ctx, userID, "Doomed")
	require.NoError(t, err)
	assert.Nil(t, cat)

	// A retry resolves cleanly and yields a committed row.
	id, err := store.ResolveCategory(ctx, userID, "Doomed")
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestUpdateExpense(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	require.NoError(t, store.RecordExpense(ctx, userID, "Food", 10, "old", date.MustParse("2024-01-01")))

	expenses, err := store.ListExpenses(ctx, userID, ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)

	err = store.UpdateExpense(ctx, userID, expenses[0].ID, 99.99, "Transport", date.MustParse("2024-02-02"), "new")
	require.NoError(t, err)

	updated, err := store.GetExpenseByID(ctx, userID, expenses[0].ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.InDelta(t, 99.99, updated.Amount, 0.001)
	assert.Equal(t, "new", updated.Description)
	assert.Equal(t, "2024-02-02", updated.Date.String())
}

func TestUpdateExpenseWrongOwner(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	require.NoError(t, store.RecordExpense(ctx, alice, "Food", 10, "", date.MustParse("2024-01-01")))

	expenses, err := store.ListExpenses(ctx, alice, ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)

	err = store.UpdateExpense(ctx, bob, expenses[0].ID, 1, "Food", date.MustParse("2024-01-01"), "")
	assert.Error(t, err)

	err = store.DeleteExpense(ctx, bob, expenses[0].ID)
	assert.Error(t, err)

	// Alice's expense is untouched.
	exp, err := store.GetExpenseByID(ctx, alice, expenses[0].ID)
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.InDelta(t, 10, exp.Amount, 0.001)
}

func TestDeleteExpense(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	require.NoError(t, store.RecordExpense(ctx, userID, "Food", 10, "", date.MustParse("2024-01-01")))

	expenses, err := store.ListExpenses(ctx, userID, ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)

	require.NoError(t, store.DeleteExpense(ctx, userID, expenses[0].ID))

	exp, err := store.GetExpenseByID(ctx, userID, expenses[0].ID)
	require.NoError(t, err)
	assert.Nil(t, exp)
}

func TestListExpensesFilter(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	days := []string{"2024-01-01", "2024-01-15", "2024-02-01"}
	for i, d := range days {
		require.NoError(t, store.RecordExpense(ctx, userID, "Food", float64(i+1), "", date.MustParse(d)))
	}

	from := date.MustParse("2024-01-10")
	to := date.MustParse("2024-01-31")
	expenses, err := store.ListExpenses(ctx, userID, ExpenseFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "2024-01-15", expenses[0].Date.String())
}

func TestGetCategorySummary(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	require.NoError(t, store.RecordExpense(ctx, userID, "Food", 10, "", date.MustParse("2024-01-01")))
	require.NoError(t, store.RecordExpense(ctx, userID, "Food", 5, "", date.MustParse("2024-01-02")))
	require.NoError(t, store.RecordExpense(ctx, userID, "Transport", 3, "", date.MustParse("2024-01-03")))

	summary, err := store.GetCategorySummary(ctx, userID,
		date.MustParse("2024-01-01"), date.MustParse("2024-01-31"))
	require.NoError(t, err)

	assert.InDelta(t, 15, summary["Food"], 0.001)
	assert.InDelta(t, 3, summary["Transport"], 0.001)
}

func TestExpenseMutationsNotify(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "alice")

	var events int
	store.Notifier().Subscribe(func() { events++ })

	require.NoError(t, store.RecordExpense(ctx, userID, "Food", 10, "", date.MustParse("2024-01-01")))
	assert.Equal(t, 1, events)

	expenses, err := store.ListExpenses(ctx, userID, ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)

	require.NoError(t, store.UpdateExpense(ctx, userID, expenses[0].ID, 20, "Food", date.MustParse("2024-01-01"), ""))
	assert.Equal(t, 2, events)

	require.NoError(t, store.DeleteExpense(ctx, userID, expenses[0].ID))
	assert.Equal(t, 3, events)
}
