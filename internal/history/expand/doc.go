// Package expand implements bang-history references.
//
// A reference is written as an event designator, an optional word designator
// and zero or more modifiers:
//
//	!!            the previous command
//	!-2           two commands back
//	!12           history entry 12, counted from the oldest
//	!make         the newest entry starting with "make"
//	!?foo?        the newest entry containing "foo"
//	!!:2-$        words 2 through the last of the previous command
//	!$:h          the last word of the previous command, directory part
//	!!:gs/a/b/    the previous command with every "a" replaced by "b"
//	^old^new^     the previous command with "old" replaced by "new"
//
// # Resolution
//
// ExpandLine finds references in a line and resolves each one in order:
// ResolveEvent locates the history entry, ResolveWord selects words from its
// tokens and Apply runs the modifier pipeline. The result is spliced over the
// reference and scanning continues after it, so expanded text is never
// expanded again.
//
// All state needed by a resolution travels in a Context value. Nothing in
// this package keeps mutable package-level state, and resolution never
// writes to the history.
//
// # Failures
//
// Any failing reference aborts the whole line with a *RefError wrapping one
// of ErrEmptyHistory, ErrNoSuchEvent, ErrNoSuchWord, ErrModifierSyntax,
// ErrNoPriorSubstitution or ErrNotImplemented.
package expand
