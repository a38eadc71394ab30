package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--env-file", ""))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, dbPath string) core.User {
	t.Helper()
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	u, err := repo.SaveUser(ctx, core.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	c, err := repo.SaveCategory(ctx, core.Category{Name: "Food"})
	require.NoError(t, err)
	for _, cents := range []int64{1000, 500} {
		_, err = repo.SaveExpense(ctx, core.Expense{
			Description: "meal", Amount: core.Money{Cents: cents}, Date: core.NewDate(2024, 3, 5),
			UserID: u.ID, CategoryID: c.ID,
		})
		require.NoError(t, err)
	}
	return u
}

func TestMigrateCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := execute(t, "migrate", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "schema version 1\n", out)

	out, err = execute(t, "migrate", "--db", db, "--rollback", "1")
	require.NoError(t, err)
	assert.Equal(t, "schema version 0\n", out)

	_, err = execute(t, "migrate", "--db", db, "--rollback", "0")
	assert.Error(t, err)
}

func TestUsersCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	seed(t, db)

	out, err := execute(t, "users", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "false")

	out, err = execute(t, "users", "promote", "ada@example.com", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com admin=true\n", out)

	out, err = execute(t, "users", "demote", "ada@example.com", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com admin=false\n", out)

	_, err = execute(t, "users", "promote", "nobody@example.com", "--db", db)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategoriesList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := execute(t, "categories", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No categories found.\n", out)

	seed(t, db)
	out, err = execute(t, "categories", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Food")
}

func TestReportCommand(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	db := filepath.Join(t.TempDir(), "cli.db")
	u := seed(t, db)

	out, err := execute(t, "report", "1", "2024", "3", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Report 2024-03 for user 1")
	assert.Contains(t, out, "15.00")
	assert.Equal(t, int64(1), u.ID)

	_, err = execute(t, "report", "1", "2024", "13", "--db", db)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = execute(t, "report", "1", "2024", "3", "--export", "--db", db)
	assert.Error(t, err, "export is not configured")
}
