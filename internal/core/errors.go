package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a requested id or email has no record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument covers missing references, malformed input,
	// out-of-range months and would-be duplicates of unique fields.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermissionDenied marks a declined permission-gated operation.
	// Services return the denial as an outcome value; its Err method wraps
	// this sentinel for callers that report failures as errors.
	ErrPermissionDenied = errors.New("permission denied")
)

// StorageError wraps a failure of the underlying store that the services
// do not interpret.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError for operation op. A nil err
// stays nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
