package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks requests rejected before storage was touched.
	ErrInvalid = errors.New("invalid request")
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrCorrupt means the stored collection exists but cannot be parsed.
	ErrCorrupt = errors.New("stored collection is corrupt")
)

// StorageError wraps a failure to read, decode or write the collection.
// Callers may retry; the store itself never does.
type StorageError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("analytics %s on %s backend: %v", e.Op, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
