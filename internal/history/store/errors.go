package store

import (
	"errors"
	"fmt"
)

// Standard errors returned by the store package.
var (
	// ErrUnknownFormat indicates a history file format with no codec.
	ErrUnknownFormat = errors.New("unknown history format")
)

// PathError records a failed file operation on the history file.
type PathError struct {
	Op   string // load, flush, rename, ...
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
