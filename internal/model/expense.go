package model

import "github.com/mwalkowiak/spendlite/internal/date"

// Expense represents a single recorded expense.
type Expense struct {
	Description string
	Date        date.Date
	Amount      float64
	CategoryID  *int64
	ID          int64
	UserID      int64
}
