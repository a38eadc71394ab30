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

var (
	ErrCategoryNameTaken = fmt.Errorf("%w: category name already exists", core.ErrInvalidArgument)
	ErrAdminRequired     = fmt.Errorf("%w: only administrators can delete categories", core.ErrPermissionDenied)
)

// DeleteOutcome is the non-error result of a permission-gated delete.
// A missing user or category is reported as core.ErrNotFound instead.
type DeleteOutcome int

const (
	OutcomeDeleted DeleteOutcome = iota + 1
	OutcomeDenied
)

func (o DeleteOutcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Err returns ErrAdminRequired for a denied delete and nil otherwise.
func (o DeleteOutcome) Err() error {
	if o == OutcomeDenied {
		return ErrAdminRequired
	}
	return nil
}

type CategoryService struct {
	store storage.CategoryStore
	users *UserService
	options
}

func NewCategoryService(store storage.CategoryStore, users *UserService, opts ...Option) *CategoryService {
	return &CategoryService{
		store:   store,
		users:   users,
		options: buildOptions(applog.ComponentCategory, opts),
	}
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.store.FindCategoryByID(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cs, err := s.store.FindAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func (s *CategoryService) FindByName(ctx context.Context, name string) (core.Category, error) {
	c, err := s.store.FindCategoryByName(ctx, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %q: %w", name, err)
	}
	return c, nil
}

// ExistsByName is an exact, case-sensitive probe.
func (s *CategoryService) ExistsByName(ctx context.Context, name string) (bool, error) {
	ok, err := s.store.ExistsCategoryByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return ok, nil
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = 0
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	taken, err := s.ExistsByName(ctx, c.Name)
	if err != nil {
		return core.Category{}, err
	}
	if taken {
		return core.Category{}, ErrCategoryNameTaken
	}

	saved, err := s.store.SaveCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.logger.InfoContext(ctx, "Category created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldCategoryID, saved.ID)
	return saved, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, patch core.Category) (core.Category, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	name := strings.TrimSpace(patch.Name)
	if name != existing.Name {
		taken, err := s.ExistsByName(ctx, name)
		if err != nil {
			return core.Category{}, err
		}
		if taken {
			return core.Category{}, ErrCategoryNameTaken
		}
	}
	existing.Name = name
	if err := existing.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}

	saved, err := s.store.SaveCategory(ctx, existing)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Category updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldCategoryID, id)
	return saved, nil
}

// Delete removes the category and every expense filed under it.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCategoryByID(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Category deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldCategoryID, id)
	s.publish(ctx, amqp.NewEventMessage(amqp.EventCategoryDeleted, id))
	return nil
}

// DeleteWithPermission deletes the category only when requestingEmail
// belongs to an admin. Unknown users and unknown categories fail with
// core.ErrNotFound; a non-admin gets OutcomeDenied and nothing changes.
func (s *CategoryService) DeleteWithPermission(ctx context.Context, id int64, requestingEmail string) (DeleteOutcome, error) {
	user, err := s.users.FindByEmail(ctx, requestingEmail)
	if errors.Is(err, core.ErrNotFound) {
		return 0, fmt.Errorf("user not found: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	if !user.Admin {
		s.logger.WarnContext(ctx, "Category delete denied",
			applog.FieldCategoryID, id,
			applog.FieldUserID, user.ID,
			applog.FieldOutcome, OutcomeDenied.String())
		return OutcomeDenied, nil
	}
	if err := s.Delete(ctx, id); err != nil {
		return 0, err
	}
	return OutcomeDeleted, nil
}
