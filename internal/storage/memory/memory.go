// Package memory provides an in-process Store used by tests and by the
// "memory" data backend. All state is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Store keeps users, categories and expenses in maps guarded by a single
// mutex, so cascades happen in one critical section.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	users      map[int64]core.User
	categories map[int64]core.Category
	expenses   map[int64]core.Expense
}

var _ storage.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]core.User),
		categories: make(map[int64]core.Category),
		expenses:   make(map[int64]core.Expense),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) FindUserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindAllUsers(context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email && other.ID != u.ID {
			return core.User{}, core.NewStorageError("save user", fmt.Errorf("unique constraint: email %q", u.Email))
		}
	}
	if u.ID == 0 {
		u.ID = s.id()
	} else if _, ok := s.users[u.ID]; !ok {
		return core.User{}, core.ErrNotFound
	}
	s.users[u.ID] = u
	return u, nil
}

// DeleteUserByID also removes every expense owned by the user.
func (s *Store) DeleteUserByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.users, id)
	for eid, e := range s.expenses {
		if e.UserID == id {
			delete(s.expenses, eid)
		}
	}
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) ExistsUserByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindUserByEmail(ctx, email)
	return err == nil, nil
}

func (s *Store) FindUserByEmailAndName(_ context.Context, email, name string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && u.Name == name {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) FindCategoryByID(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) FindAllCategories(context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.categories {
		if other.Name == c.Name && other.ID != c.ID {
			return core.Category{}, core.NewStorageError("save category", fmt.Errorf("unique constraint: name %q", c.Name))
		}
	}
	if c.ID == 0 {
		c.ID = s.id()
	} else if _, ok := s.categories[c.ID]; !ok {
		return core.Category{}, core.ErrNotFound
	}
	s.categories[c.ID] = c
	return c, nil
}

// DeleteCategoryByID also removes every expense filed under the category.
func (s *Store) DeleteCategoryByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.categories, id)
	for eid, e := range s.expenses {
		if e.CategoryID == id {
			delete(s.expenses, eid)
		}
	}
	return nil
}

func (s *Store) FindCategoryByName(_ context.Context, name string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (s *Store) ExistsCategoryByName(ctx context.Context, name string) (bool, error) {
	_, err := s.FindCategoryByName(ctx, name)
	return err == nil, nil
}

// withCategory returns a copy of e with its category attached. Callers
// hold s.mu.
func (s *Store) withCategory(e core.Expense) core.Expense {
	c := s.categories[e.CategoryID]
	e.Category = &c
	e.User = nil
	return e
}

func (s *Store) filterExpenses(keep func(core.Expense) bool) []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Expense{}
	for _, e := range s.expenses {
		if keep(e) {
			out = append(out, s.withCategory(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) FindExpenseByID(_ context.Context, id int64) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return s.withCategory(e), nil
}

func (s *Store) FindAllExpenses(context.Context) ([]core.Expense, error) {
	return s.filterExpenses(func(core.Expense) bool { return true }), nil
}

func (s *Store) FindExpensesByUserID(_ context.Context, userID int64) ([]core.Expense, error) {
	return s.filterExpenses(func(e core.Expense) bool { return e.UserID == userID }), nil
}

func (s *Store) FindExpensesByCategoryID(_ context.Context, categoryID int64) ([]core.Expense, error) {
	return s.filterExpenses(func(e core.Expense) bool { return e.CategoryID == categoryID }), nil
}

func (s *Store) FindExpensesByUserIDAndDateBetween(_ context.Context, userID int64, start, end core.Date) ([]core.Expense, error) {
	return s.filterExpenses(func(e core.Expense) bool {
		return e.UserID == userID && !e.Date.Before(start.Time) && !e.Date.After(end.Time)
	}), nil
}

// SaveExpense enforces the same foreign keys as the SQLite schema.
func (s *Store) SaveExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[e.CategoryID]; !ok {
		return core.Expense{}, core.NewStorageError("save expense", fmt.Errorf("foreign key: category %d", e.CategoryID))
	}
	if _, ok := s.users[e.UserID]; !ok {
		return core.Expense{}, core.NewStorageError("save expense", fmt.Errorf("foreign key: user %d", e.UserID))
	}
	if e.ID == 0 {
		e.ID = s.id()
	} else if _, ok := s.expenses[e.ID]; !ok {
		return core.Expense{}, core.ErrNotFound
	}
	e.Category, e.User = nil, nil
	s.expenses[e.ID] = e
	return s.withCategory(e), nil
}

func (s *Store) DeleteExpenseByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}
