package storage

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
)

// Expenses are always read joined with their category.
const expenseSelect = `
SELECT e.id, e.description, e.amount_cents, e.date, e.location,
       e.category_id, e.user_id, c.name
FROM expenses e
JOIN categories c ON c.id = e.category_id`

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		rawDate string
		catName string
	)
	if err := s.Scan(&e.ID, &e.Description, &e.Amount.Cents, &rawDate, &e.Location,
		&e.CategoryID, &e.UserID, &catName); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", e.ID, err)
	}
	e.Date = d
	e.Category = &core.Category{ID: e.CategoryID, Name: catName}
	return e, nil
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, op, where string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, expenseSelect+" "+where+" ORDER BY e.date, e.id", args...)
	if err != nil {
		return nil, core.NewStorageError(op, err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, core.NewStorageError(op, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError(op, err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) FindExpenseByID(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, expenseSelect+" WHERE e.id = ?", id))
	if err != nil {
		return core.Expense{}, notFoundOr("find expense", err)
	}
	return e, nil
}

func (r *SQLiteRepository) FindAllExpenses(ctx context.Context) ([]core.Expense, error) {
	return r.queryExpenses(ctx, "list expenses", "")
}

func (r *SQLiteRepository) FindExpensesByUserID(ctx context.Context, userID int64) ([]core.Expense, error) {
	return r.queryExpenses(ctx, "list expenses by user", "WHERE e.user_id = ?", userID)
}

func (r *SQLiteRepository) FindExpensesByCategoryID(ctx context.Context, categoryID int64) ([]core.Expense, error) {
	return r.queryExpenses(ctx, "list expenses by category", "WHERE e.category_id = ?", categoryID)
}

// FindExpensesByUserIDAndDateBetween relies on YYYY-MM-DD text sorting in
// calendar order.
func (r *SQLiteRepository) FindExpensesByUserIDAndDateBetween(ctx context.Context, userID int64, start, end core.Date) ([]core.Expense, error) {
	return r.queryExpenses(ctx, "list expenses by user and date",
		"WHERE e.user_id = ? AND e.date BETWEEN ? AND ?",
		userID, start.String(), end.String())
}

func (r *SQLiteRepository) SaveExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var id int64
	if e.ID == 0 {
		err := r.db.QueryRowContext(ctx, `
INSERT INTO expenses (description, amount_cents, date, location, category_id, user_id)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
			e.Description, e.Amount.Cents, e.Date.String(), e.Location, e.CategoryID, e.UserID,
		).Scan(&id)
		if err != nil {
			return core.Expense{}, core.NewStorageError("insert expense", err)
		}
	} else {
		res, err := r.db.ExecContext(ctx, `
UPDATE expenses
SET description = ?, amount_cents = ?, date = ?, location = ?, category_id = ?, user_id = ?
WHERE id = ?`,
			e.Description, e.Amount.Cents, e.Date.String(), e.Location, e.CategoryID, e.UserID, e.ID)
		if err != nil {
			return core.Expense{}, core.NewStorageError("update expense", err)
		}
		if err := requireAffected("update expense", res); err != nil {
			return core.Expense{}, err
		}
		id = e.ID
	}

	saved, err := r.FindExpenseByID(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", saved.ID,
		"amount_cents", saved.Amount.Cents,
		"date", saved.Date.String(),
		"category_id", saved.CategoryID,
		"user_id", saved.UserID)
	return saved, nil
}

func (r *SQLiteRepository) DeleteExpenseByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return core.NewStorageError("delete expense", err)
	}
	return requireAffected("delete expense", res)
}
