package expand

import "github.com/dshills/bangline/internal/history/ring"

// Source is the read-only view of the history used during resolution.
// *ring.Ring satisfies it.
type Source interface {
	Len() int
	Get(index int) (string, error)
	Search(pred ring.Predicate, start int, dir ring.Direction) (int, error)
}

// Substitution is a recorded :s pattern and replacement.
// The replacement has & already resolved to the pattern.
type Substitution struct {
	Pattern     string
	Replacement string
}

// Context carries everything a resolution reads. It is passed by value;
// operations that record a substitution return the new value rather than
// mutating the caller's copy.
type Context struct {
	// History is the ring references are resolved against.
	History Source

	// LastSub is the most recent substitution, used by :& and empty :s patterns.
	LastSub *Substitution
}

// WithLastSub returns a copy of c with LastSub replaced.
func (c Context) WithLastSub(sub *Substitution) Context {
	c.LastSub = sub
	return c
}
