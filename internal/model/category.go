package model

import "time"

// CategoryType indicates whether a category is for income or expense use.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income entries.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense entries.
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents an expense category. A category with a nil UserID is
// global and visible to every user; otherwise it belongs to one user.
type Category struct {
	CreatedAt time.Time
	Name      string
	Icon      string
	Color     string
	Type      CategoryType
	UserID    *int64
	ID        int64
	IsDeleted bool
}

// IsGlobal reports whether the category has no owning user.
func (c *Category) IsGlobal() bool { return c.UserID == nil }
