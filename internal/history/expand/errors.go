package expand

import (
	"errors"
	"fmt"

	"github.com/dshills/bangline/internal/history/ring"
)

// Errors returned while expanding references.
var (
	// ErrEmptyHistory indicates there is no history to refer to.
	ErrEmptyHistory = ring.ErrEmptyHistory

	// ErrNoSuchEvent indicates the event designator matched no entry.
	ErrNoSuchEvent = errors.New("event not found")

	// ErrNoSuchWord indicates the word designator is out of range or malformed.
	ErrNoSuchWord = errors.New("bad word designator")

	// ErrModifierSyntax indicates a malformed or unknown modifier.
	ErrModifierSyntax = errors.New("bad modifier")

	// ErrNoPriorSubstitution indicates :& or an empty :s pattern was used
	// before any substitution.
	ErrNoPriorSubstitution = errors.New("no previous substitution")

	// ErrNotImplemented indicates a designator form that is reserved but unsupported.
	ErrNotImplemented = errors.New("not implemented")
)

// RefError reports the reference that failed to expand.
type RefError struct {
	Ref string // Reference text as typed, e.g. "!!:5"
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *RefError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ref, e.Err)
}

// Unwrap returns the underlying error.
func (e *RefError) Unwrap() error {
	return e.Err
}
