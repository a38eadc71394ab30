package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date wire and storage format.
	DateLayout = "2006-01-02"

	maxDescriptionLen = 200
	maxNameLen        = 100
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID    int64
		Name  string
		Email string
		Admin bool
	}

	Category struct {
		ID   int64
		Name string
	}

	// Expense is a single spending record. CategoryID and UserID are the
	// persisted references; Category is always populated on reads, User
	// only when explicitly requested.
	Expense struct {
		ID          int64
		Description string
		Amount      Money
		Date        Date
		Location    string
		CategoryID  int64
		UserID      int64

		Category *Category
		User     *User
	}
)

var (
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrInvalidArgument)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrInvalidArgument)
	ErrEmptyName        = fmt.Errorf("%w: empty name", ErrInvalidArgument)
	ErrEmptyEmail       = fmt.Errorf("%w: empty email", ErrInvalidArgument)
	ErrMissingCategory  = fmt.Errorf("%w: category is required", ErrInvalidArgument)
	ErrMissingUser      = fmt.Errorf("%w: user is required", ErrInvalidArgument)
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidArgument, s)
	}
	return Date{Time: t}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if len(u.Name) > maxNameLen {
		return fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidArgument, maxNameLen)
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > maxNameLen {
		return fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidArgument, maxNameLen)
	}
	return nil
}

// Validate checks the expense's own fields and that both references are
// set. Whether the references resolve is checked by the service layer.
func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description too long (max %d characters)", ErrInvalidArgument, maxDescriptionLen)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if e.UserID <= 0 {
		return ErrMissingUser
	}
	return nil
}

// CategoryName returns the name of the loaded category, or "" if the
// category was not loaded.
func (e Expense) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return e.Category.Name
}
