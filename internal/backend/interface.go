package backend

import (
	"context"
	"errors"

	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// Factory builds the storage backend and the services on top of it.
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Result holds everything a process needs to serve requests. Close
// releases the store and any broker connection.
type Result struct {
	Store      storage.Store
	Users      *services.UserService
	Categories *services.CategoryService
	Expenses   *services.ExpenseService
	Reports    *services.ReportService

	EventsEnabled bool
	ExportEnabled bool

	closers []func() error
}

// Close runs cleanups in reverse order of acquisition.
func (r *Result) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// Optional domain event publishing
	AMQPURL      string
	AMQPExchange string

	// Optional report export
	GoogleSpreadsheetID          string
	GoogleReportSheetName        string
	GoogleServiceAccountJSON     string
	GoogleServiceAccountJSONFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
