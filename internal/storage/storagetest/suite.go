// Package storagetest holds a conformance suite that every storage.Store
// implementation runs from its own tests.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// StoreSuite exercises a fresh Store per test.
type StoreSuite struct {
	suite.Suite
	NewStore func() storage.Store

	store storage.Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreSuite) user(name, email string) core.User {
	u, err := s.store.SaveUser(s.ctx, core.User{Name: name, Email: email})
	require.NoError(s.T(), err)
	return u
}

func (s *StoreSuite) category(name string) core.Category {
	c, err := s.store.SaveCategory(s.ctx, core.Category{Name: name})
	require.NoError(s.T(), err)
	return c
}

func (s *StoreSuite) expense(u core.User, c core.Category, cents int64, d core.Date) core.Expense {
	e, err := s.store.SaveExpense(s.ctx, core.Expense{
		Description: "item",
		Amount:      core.Money{Cents: cents},
		Date:        d,
		Location:    "here",
		CategoryID:  c.ID,
		UserID:      u.ID,
	})
	require.NoError(s.T(), err)
	return e
}

func (s *StoreSuite) TestUserRoundTrip() {
	u := s.user("Ada", "ada@example.com")
	s.NotZero(u.ID)

	got, err := s.store.FindUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u, got)

	byEmail, err := s.store.FindUserByEmail(s.ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)

	_, err = s.store.FindUserByEmailAndName(s.ctx, "ada@example.com", "Grace")
	s.ErrorIs(err, core.ErrNotFound)

	exists, err := s.store.ExistsUserByEmail(s.ctx, "ada@example.com")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.ExistsUserByEmail(s.ctx, "ADA@example.com")
	s.Require().NoError(err)
	s.False(exists, "email lookups are exact-match")
}

func (s *StoreSuite) TestSaveUserOverwrites() {
	u := s.user("Ada", "ada@example.com")
	u.Name = "Ada L."
	u.Admin = true
	_, err := s.store.SaveUser(s.ctx, u)
	s.Require().NoError(err)

	got, err := s.store.FindUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Ada L.", got.Name)
	s.True(got.Admin)

	all, err := s.store.FindAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *StoreSuite) TestSaveUnknownIDIsNotFound() {
	_, err := s.store.SaveUser(s.ctx, core.User{ID: 999, Name: "x", Email: "x@example.com"})
	s.ErrorIs(err, core.ErrNotFound)
	_, err = s.store.SaveCategory(s.ctx, core.Category{ID: 999, Name: "x"})
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *StoreSuite) TestDuplicateEmailIsStorageError() {
	s.user("Ada", "ada@example.com")
	_, err := s.store.SaveUser(s.ctx, core.User{Name: "Other", Email: "ada@example.com"})
	s.Error(err)
	s.True(core.IsStorageError(err))
}

func (s *StoreSuite) TestCategoryLookups() {
	c := s.category("Food")

	got, err := s.store.FindCategoryByName(s.ctx, "Food")
	s.Require().NoError(err)
	s.Equal(c, got)

	exists, err := s.store.ExistsCategoryByName(s.ctx, "food")
	s.Require().NoError(err)
	s.False(exists)

	_, err = s.store.FindCategoryByID(s.ctx, c.ID+100)
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *StoreSuite) TestExpenseLoadsCategory() {
	u := s.user("Ada", "ada@example.com")
	c := s.category("Food")
	e := s.expense(u, c, 1050, core.NewDate(2024, 3, 5))

	got, err := s.store.FindExpenseByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Category)
	s.Equal("Food", got.Category.Name)
	s.Nil(got.User)
	s.Equal(int64(1050), got.Amount.Cents)
	s.Equal("2024-03-05", got.Date.String())
	s.Equal("here", got.Location)
}

func (s *StoreSuite) TestDateBetweenIsInclusive() {
	u := s.user("Ada", "ada@example.com")
	other := s.user("Bob", "bob@example.com")
	c := s.category("Food")
	s.expense(u, c, 100, core.NewDate(2024, 2, 29))
	first := s.expense(u, c, 200, core.NewDate(2024, 3, 1))
	last := s.expense(u, c, 300, core.NewDate(2024, 3, 31))
	s.expense(u, c, 400, core.NewDate(2024, 4, 1))
	s.expense(other, c, 500, core.NewDate(2024, 3, 15))

	got, err := s.store.FindExpensesByUserIDAndDateBetween(s.ctx, u.ID,
		core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(first.ID, got[0].ID)
	s.Equal(last.ID, got[1].ID)
}

func (s *StoreSuite) TestDeleteCategoryCascades() {
	u := s.user("Ada", "ada@example.com")
	food := s.category("Food")
	transit := s.category("Transit")
	e1 := s.expense(u, food, 100, core.NewDate(2024, 3, 1))
	e2 := s.expense(u, transit, 100, core.NewDate(2024, 3, 1))

	s.Require().NoError(s.store.DeleteCategoryByID(s.ctx, food.ID))

	_, err := s.store.FindExpenseByID(s.ctx, e1.ID)
	s.ErrorIs(err, core.ErrNotFound)
	_, err = s.store.FindExpenseByID(s.ctx, e2.ID)
	s.NoError(err)

	byCat, err := s.store.FindExpensesByCategoryID(s.ctx, food.ID)
	s.Require().NoError(err)
	s.Empty(byCat)
}

func (s *StoreSuite) TestDeleteUserCascades() {
	u := s.user("Ada", "ada@example.com")
	c := s.category("Food")
	e := s.expense(u, c, 100, core.NewDate(2024, 3, 1))

	s.Require().NoError(s.store.DeleteUserByID(s.ctx, u.ID))

	_, err := s.store.FindExpenseByID(s.ctx, e.ID)
	s.ErrorIs(err, core.ErrNotFound)
	byUser, err := s.store.FindExpensesByUserID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(byUser)

	s.ErrorIs(s.store.DeleteUserByID(s.ctx, u.ID), core.ErrNotFound)
}

func (s *StoreSuite) TestExpenseForeignKeys() {
	u := s.user("Ada", "ada@example.com")
	_, err := s.store.SaveExpense(s.ctx, core.Expense{
		Description: "orphan",
		Amount:      core.Money{Cents: 100},
		Date:        core.NewDate(2024, 1, 1),
		CategoryID:  12345,
		UserID:      u.ID,
	})
	s.True(core.IsStorageError(err))

	all, err := s.store.FindAllExpenses(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *StoreSuite) TestUpdateAndDeleteExpense() {
	u := s.user("Ada", "ada@example.com")
	food := s.category("Food")
	transit := s.category("Transit")
	e := s.expense(u, food, 100, core.NewDate(2024, 3, 1))

	e.CategoryID = transit.ID
	e.Amount = core.Money{Cents: 999}
	updated, err := s.store.SaveExpense(s.ctx, e)
	s.Require().NoError(err)
	s.Equal("Transit", updated.Category.Name)
	s.Equal(int64(999), updated.Amount.Cents)

	s.Require().NoError(s.store.DeleteExpenseByID(s.ctx, e.ID))
	s.ErrorIs(s.store.DeleteExpenseByID(s.ctx, e.ID), core.ErrNotFound)
}

func (s *StoreSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
