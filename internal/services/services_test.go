package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	sheetsmem "expensetracker/internal/sheets/memory"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.EventMessage
}

func (p *recordingPublisher) PublishEvent(_ context.Context, msg *amqp.EventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *msg)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      storage.Store
	events     *recordingPublisher
	exporter   *sheetsmem.Exporter
	users      *UserService
	categories *CategoryService
	expenses   *ExpenseService
	reports    *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.NewStore())
}

func newSQLiteFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return newFixtureWith(t, repo)
}

func newFixtureWith(t *testing.T, store storage.Store) *fixture {
	t.Helper()
	f := &fixture{
		store:    store,
		events:   &recordingPublisher{},
		exporter: sheetsmem.New(),
	}
	opts := []Option{WithLogger(applog.Discard()), WithEvents(f.events)}
	f.users = NewUserService(f.store, opts...)
	f.categories = NewCategoryService(f.store, f.users, opts...)
	f.expenses = NewExpenseService(f.store, f.users, f.categories, opts...)
	f.reports = NewReportService(f.store, f.users, f.exporter, opts...)
	return f
}

func (f *fixture) user(t *testing.T, name, email string, admin bool) core.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), core.User{Name: name, Email: email, Admin: admin})
	require.NoError(t, err)
	return u
}

func (f *fixture) category(t *testing.T, name string) core.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), core.Category{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) expense(t *testing.T, u core.User, c core.Category, cents int64, d core.Date) core.Expense {
	t.Helper()
	e, err := f.expenses.Create(context.Background(), core.Expense{
		Description: c.Name + " purchase",
		Amount:      core.Money{Cents: cents},
		Date:        d,
		CategoryID:  c.ID,
		UserID:      u.ID,
	})
	require.NoError(t, err)
	return e
}

type failingPublisher struct{}

func (failingPublisher) PublishEvent(context.Context, *amqp.EventMessage) error {
	return errors.New("broker down")
}
