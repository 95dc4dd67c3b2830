package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record doesn't exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrAlreadyExists is returned when conditional creation finds the key taken.
	ErrAlreadyExists = errors.New("store: record already exists")

	// ErrReferenceNotFound is returned when a referenced record is missing.
	ErrReferenceNotFound = errors.New("store: referenced record not found")

	// ErrInvalidCursor is returned for a malformed or tampered pagination token.
	ErrInvalidCursor = errors.New("store: invalid pagination cursor")

	// ErrDecode is returned when stored attributes don't match the expected shape.
	ErrDecode = errors.New("store: cannot decode stored record")

	// ErrUnavailable is returned for transient store failures. Callers may
	// retry; the core never retries on its own.
	ErrUnavailable = errors.New("store: temporarily unavailable")

	// ErrUnknownCollection is returned when a collection has no registered schema.
	ErrUnknownCollection = errors.New("store: unknown collection")
)

// MissingReferenceError reports a failed reference check, naming the
// collection and key that were expected to exist. It unwraps to
// [ErrReferenceNotFound].
type MissingReferenceError struct {
	Collection string
	Key        string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("store: %s %q does not exist", e.Collection, e.Key)
}

func (e *MissingReferenceError) Unwrap() error { return ErrReferenceNotFound }
