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

// ErrEmailTaken is returned when a create or update would duplicate an
// existing user's email.
var ErrEmailTaken = fmt.Errorf("%w: email already exists", core.ErrInvalidArgument)

// UserService manages user lifecycle and the admin flag.
type UserService struct {
	store storage.UserStore
	options
}

func NewUserService(store storage.UserStore, opts ...Option) *UserService {
	return &UserService{store: store, options: buildOptions(applog.ComponentUser, opts)}
}

func (s *UserService) Get(ctx context.Context, id int64) (core.User, error) {
	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	users, err := s.store.FindAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create stores a new user. The email must not belong to anyone else.
func (s *UserService) Create(ctx context.Context, u core.User) (core.User, error) {
	u.ID = 0
	u.Name = strings.TrimSpace(u.Name)
	if err := u.Validate(); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	exists, err := s.store.ExistsUserByEmail(ctx, u.Email)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	if exists {
		return core.User{}, ErrEmailTaken
	}

	saved, err := s.store.SaveUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldUserID, saved.ID)
	return saved, nil
}

// Update overwrites name and email. The admin flag is only changed
// through SetAdmin.
func (s *UserService) Update(ctx context.Context, id int64, patch core.User) (core.User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return core.User{}, err
	}

	existing.Name = strings.TrimSpace(patch.Name)
	if patch.Email != existing.Email {
		taken, err := s.store.ExistsUserByEmail(ctx, patch.Email)
		if err != nil {
			return core.User{}, fmt.Errorf("update user %d: %w", id, err)
		}
		if taken {
			return core.User{}, ErrEmailTaken
		}
	}
	existing.Email = patch.Email
	if err := existing.Validate(); err != nil {
		return core.User{}, fmt.Errorf("update user %d: %w", id, err)
	}

	saved, err := s.store.SaveUser(ctx, existing)
	if err != nil {
		return core.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "User updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldUserID, id)
	return saved, nil
}

// Delete removes the user together with all of their expenses.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteUserByID(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "User deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldUserID, id)
	s.publish(ctx, amqp.NewEventMessage(amqp.EventUserDeleted, id))
	return nil
}

// ExistsByEmail is an exact, case-sensitive probe.
func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ok, err := s.store.ExistsUserByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return ok, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByEmailAndName backs the plaintext login lookup.
func (s *UserService) FindByEmailAndName(ctx context.Context, email, name string) (core.User, error) {
	u, err := s.store.FindUserByEmailAndName(ctx, email, name)
	if err != nil {
		return core.User{}, fmt.Errorf("find user by email and name: %w", err)
	}
	return u, nil
}

// IsAdmin reports false for unknown users instead of failing.
func (s *UserService) IsAdmin(ctx context.Context, id int64) (bool, error) {
	u, err := s.store.FindUserByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check admin %d: %w", id, err)
	}
	return u.Admin, nil
}

func (s *UserService) SetAdmin(ctx context.Context, id int64, admin bool) (core.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u.Admin = admin
	saved, err := s.store.SaveUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("set admin %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Admin flag changed",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldUserID, id,
		"admin", admin)
	return saved, nil
}
