package ring

import (
	"errors"
	"fmt"
)

// Errors returned by ring operations.
var (
	// ErrEmptyHistory indicates the ring holds no entries.
	ErrEmptyHistory = errors.New("no history")

	// ErrIndexOutOfRange indicates an index outside [0, Len).
	ErrIndexOutOfRange = errors.New("history index out of range")

	// ErrNotFound indicates no entry satisfied a search predicate.
	ErrNotFound = errors.New("no matching history entry")
)

// IndexError reports an out of range access.
type IndexError struct {
	Index int
	Len   int
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("history index %d out of range [0, %d)", e.Index, e.Len)
}

// Unwrap returns ErrIndexOutOfRange.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
