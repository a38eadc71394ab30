package storage

import (
	"context"

	"expensetracker/internal/core"
)

// UserStore persists users. Lookups return core.ErrNotFound when absent.
type UserStore interface {
	FindUserByID(ctx context.Context, id int64) (core.User, error)
	FindAllUsers(ctx context.Context) ([]core.User, error)
	// SaveUser inserts when u.ID is zero and overwrites otherwise.
	SaveUser(ctx context.Context, u core.User) (core.User, error)
	DeleteUserByID(ctx context.Context, id int64) error
	FindUserByEmail(ctx context.Context, email string) (core.User, error)
	ExistsUserByEmail(ctx context.Context, email string) (bool, error)
	FindUserByEmailAndName(ctx context.Context, email, name string) (core.User, error)
}

// CategoryStore persists categories. Deleting a category removes its
// expenses in the same step.
type CategoryStore interface {
	FindCategoryByID(ctx context.Context, id int64) (core.Category, error)
	FindAllCategories(ctx context.Context) ([]core.Category, error)
	SaveCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategoryByID(ctx context.Context, id int64) error
	FindCategoryByName(ctx context.Context, name string) (core.Category, error)
	ExistsCategoryByName(ctx context.Context, name string) (bool, error)
}

// ExpenseStore persists expenses. Every expense it returns has its
// Category loaded; User is left nil.
type ExpenseStore interface {
	FindExpenseByID(ctx context.Context, id int64) (core.Expense, error)
	FindAllExpenses(ctx context.Context) ([]core.Expense, error)
	SaveExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpenseByID(ctx context.Context, id int64) error
	FindExpensesByUserID(ctx context.Context, userID int64) ([]core.Expense, error)
	FindExpensesByCategoryID(ctx context.Context, categoryID int64) ([]core.Expense, error)
	// FindExpensesByUserIDAndDateBetween includes both start and end.
	FindExpensesByUserIDAndDateBetween(ctx context.Context, userID int64, start, end core.Date) ([]core.Expense, error)
}

// Store is the full storage port used by the services.
type Store interface {
	UserStore
	CategoryStore
	ExpenseStore

	Ping(ctx context.Context) error
	Close() error
}
