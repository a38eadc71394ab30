package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// FetchOption widens what Get loads alongside an expense. The category is
// always loaded.
type FetchOption func(*fetchPlan)

type fetchPlan struct {
	user bool
}

// WithUser also loads the owning user.
func WithUser() FetchOption {
	return func(p *fetchPlan) { p.user = true }
}

// ExpenseService manages expenses and checks that every expense points at
// an existing user and category before anything is written.
type ExpenseService struct {
	store      storage.ExpenseStore
	users      *UserService
	categories *CategoryService
	options
}

func NewExpenseService(store storage.ExpenseStore, users *UserService, categories *CategoryService, opts ...Option) *ExpenseService {
	return &ExpenseService{
		store:      store,
		users:      users,
		categories: categories,
		options:    buildOptions(applog.ComponentExpense, opts),
	}
}

func (s *ExpenseService) Get(ctx context.Context, id int64, opts ...FetchOption) (core.Expense, error) {
	var plan fetchPlan
	for _, opt := range opts {
		opt(&plan)
	}

	e, err := s.store.FindExpenseByID(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	if plan.user {
		u, err := s.users.Get(ctx, e.UserID)
		if err != nil {
			return core.Expense{}, fmt.Errorf("load owner of expense %d: %w", id, err)
		}
		e.User = &u
	}
	return e, nil
}

func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	es, err := s.store.FindAllExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return es, nil
}

func (s *ExpenseService) ListByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	es, err := s.store.FindExpensesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses of user %d: %w", userID, err)
	}
	return es, nil
}

func (s *ExpenseService) ListByCategory(ctx context.Context, categoryID int64) ([]core.Expense, error) {
	es, err := s.store.FindExpensesByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list expenses of category %d: %w", categoryID, err)
	}
	return es, nil
}

// Create validates e, resolves its user and category, and stores it. If
// either reference is unknown nothing is written and the error wraps
// core.ErrInvalidArgument.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = 0
	e.Description = strings.TrimSpace(e.Description)
	e.Location = strings.TrimSpace(e.Location)
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	if err := s.resolveUser(ctx, e.UserID); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	if err := s.resolveCategory(ctx, e.CategoryID); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	saved, err := s.store.SaveExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithExpense(saved.ID, saved.UserID, saved.CategoryID, saved.Amount.Cents).
			ToSlice()...)
	s.publish(ctx, expenseEvent(amqp.EventExpenseCreated, saved))
	return saved, nil
}

// Update overwrites description, amount, date and location from patch,
// and the category when patch names one. The owner never changes.
func (s *ExpenseService) Update(ctx context.Context, id int64, patch core.Expense) (core.Expense, error) {
	existing, err := s.store.FindExpenseByID(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	previousDate := existing.Date

	existing.Description = strings.TrimSpace(patch.Description)
	existing.Amount = patch.Amount
	existing.Date = patch.Date
	existing.Location = strings.TrimSpace(patch.Location)
	if patch.CategoryID != 0 && patch.CategoryID != existing.CategoryID {
		if err := s.resolveCategory(ctx, patch.CategoryID); err != nil {
			return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
		}
		existing.CategoryID = patch.CategoryID
	}
	existing.Category, existing.User = nil, nil
	if err := existing.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}

	saved, err := s.store.SaveExpense(ctx, existing)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Expense updated",
		applog.NewFields().
			WithOperation(applog.OpUpdate).
			WithExpense(saved.ID, saved.UserID, saved.CategoryID, saved.Amount.Cents).
			ToSlice()...)
	msg := expenseEvent(amqp.EventExpenseUpdated, saved)
	if !previousDate.Equal(saved.Date.Time) {
		msg.PreviousDate = previousDate.String()
	}
	s.publish(ctx, msg)
	return saved, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.FindExpenseByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if err := s.store.DeleteExpenseByID(ctx, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)
	s.publish(ctx, expenseEvent(amqp.EventExpenseDeleted, existing))
	return nil
}

func (s *ExpenseService) resolveUser(ctx context.Context, id int64) error {
	_, err := s.users.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: user %d does not exist", core.ErrInvalidArgument, id)
	}
	return err
}

func (s *ExpenseService) resolveCategory(ctx context.Context, id int64) error {
	_, err := s.categories.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: category %d does not exist", core.ErrInvalidArgument, id)
	}
	return err
}

func expenseEvent(eventType string, e core.Expense) *amqp.EventMessage {
	msg := amqp.NewEventMessage(eventType, e.ID)
	msg.UserID = e.UserID
	msg.CategoryID = e.CategoryID
	msg.AmountCents = e.Amount.Cents
	msg.Date = e.Date.String()
	return msg
}
