package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation targets an unknown contact id.
var ErrNotFound = errors.New("contact not found")

// ValidationError rejects a create/update before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ImportFormatError means the import payload is not a JSON array of objects.
// The whole import is rejected; no record has been touched.
type ImportFormatError struct {
	Err error
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("invalid import format: %v", e.Err)
}

func (e *ImportFormatError) Unwrap() error { return e.Err }

// StorageError wraps any failure of the underlying key-value backend.
type StorageError struct {
	Op  string // "load" | "save"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
