package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Store on a single SQLite database file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

// sqliteDSN enables foreign keys on every pooled connection, which the
// cascading deletes depend on.
func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite repository ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return core.NewStorageError("ping", r.db.PingContext(ctx))
}

// notFoundOr maps sql.ErrNoRows to core.ErrNotFound and wraps anything
// else as a StorageError.
func notFoundOr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return core.NewStorageError(op, err)
}

// requireAffected reports core.ErrNotFound when an update or delete
// touched no row.
func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageError(op, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

const userColumns = `id, name, email, admin`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (core.User, error) {
	var u core.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Admin)
	return u, err
}

func (r *SQLiteRepository) FindUserByID(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, notFoundOr("find user", err)
	}
	return u, nil
}

func (r *SQLiteRepository) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return core.User{}, notFoundOr("find user by email", err)
	}
	return u, nil
}

func (r *SQLiteRepository) FindUserByEmailAndName(ctx context.Context, email, name string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND name = ?`, email, name))
	if err != nil {
		return core.User{}, notFoundOr("find user by email and name", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ExistsUserByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, core.NewStorageError("exists user by email", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) FindAllUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, core.NewStorageError("list users", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, core.NewStorageError("scan user", err)
		}
		users = append(users, u)
	}
	return users, core.NewStorageError("list users", rows.Err())
}

func (r *SQLiteRepository) SaveUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == 0 {
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO users (name, email, admin) VALUES (?, ?, ?) RETURNING id`,
			u.Name, u.Email, u.Admin).Scan(&u.ID)
		if err != nil {
			return core.User{}, core.NewStorageError("insert user", err)
		}
		return u, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, admin = ? WHERE id = ?`,
		u.Name, u.Email, u.Admin, u.ID)
	if err != nil {
		return core.User{}, core.NewStorageError("update user", err)
	}
	if err := requireAffected("update user", res); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (r *SQLiteRepository) DeleteUserByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return core.NewStorageError("delete user", err)
	}
	return requireAffected("delete user", res)
}

func (r *SQLiteRepository) FindCategoryByID(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return core.Category{}, notFoundOr("find category", err)
	}
	return c, nil
}

func (r *SQLiteRepository) FindCategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE name = ?`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return core.Category{}, notFoundOr("find category by name", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ExistsCategoryByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, core.NewStorageError("exists category by name", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) FindAllCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, core.NewStorageError("list categories", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, core.NewStorageError("scan category", err)
		}
		categories = append(categories, c)
	}
	return categories, core.NewStorageError("list categories", rows.Err())
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == 0 {
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO categories (name) VALUES (?) RETURNING id`, c.Name).Scan(&c.ID)
		if err != nil {
			return core.Category{}, core.NewStorageError("insert category", err)
		}
		return c, nil
	}

	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, c.Name, c.ID)
	if err != nil {
		return core.Category{}, core.NewStorageError("update category", err)
	}
	if err := requireAffected("update category", res); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// DeleteCategoryByID removes the category and, through ON DELETE CASCADE,
// every expense filed under it.
func (r *SQLiteRepository) DeleteCategoryByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return core.NewStorageError("delete category", err)
	}
	return requireAffected("delete category", res)
}
