package expand

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/bangline/internal/history/ring"
)

// CurrentLine is the Event index reserved for the line being typed.
// No designator resolves to it yet; "!#" fails with ErrNotImplemented.
const CurrentLine = -1

// Event is a resolved history entry.
type Event struct {
	// Index is the 0-based ring index, oldest first.
	Index int

	// Text is the stored command line.
	Text string
}

// ResolveEvent maps an event designator, without its leading "!", to a
// history entry:
//
//	!       the most recent entry
//	-N      N entries back, -1 being the most recent
//	N       entry N counted from the oldest, starting at 1
//	?str?   the newest entry containing str (trailing ? optional)
//	str     the newest entry starting with str
//	#       the current line, not supported
func ResolveEvent(ctx Context, designator string) (Event, error) {
	if designator == "#" {
		return Event{}, fmt.Errorf("!#: %w", ErrNotImplemented)
	}

	src := ctx.History
	if src == nil || src.Len() == 0 {
		return Event{}, ErrEmptyHistory
	}
	n := src.Len()

	switch {
	case designator == "":
		return Event{}, fmt.Errorf("%w: empty designator", ErrNoSuchEvent)

	case designator == "!":
		return eventAt(src, n-1, designator)

	case strings.HasPrefix(designator, "?"):
		needle := strings.TrimSuffix(designator[1:], "?")
		if needle == "" {
			return Event{}, fmt.Errorf("%w: %s", ErrNoSuchEvent, designator)
		}
		return search(src, designator, func(e string) bool {
			return strings.Contains(e, needle)
		})
	}

	if num, err := strconv.Atoi(designator); err == nil && isInteger(designator) {
		idx := num - 1
		if num < 0 {
			idx = n + num
		}
		return eventAt(src, idx, designator)
	}

	return search(src, designator, func(e string) bool {
		return strings.HasPrefix(e, designator)
	})
}

// isInteger reports whether s is an optionally negative run of digits.
func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func eventAt(src Source, idx int, designator string) (Event, error) {
	text, err := src.Get(idx)
	if err != nil {
		if errors.Is(err, ring.ErrEmptyHistory) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("%w: %s", ErrNoSuchEvent, designator)
	}
	return Event{Index: idx, Text: text}, nil
}

// search scans from the newest entry toward older ones.
func search(src Source, designator string, pred ring.Predicate) (Event, error) {
	idx, err := src.Search(pred, src.Len()-1, ring.Older)
	if err != nil {
		if errors.Is(err, ring.ErrEmptyHistory) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("%w: %s", ErrNoSuchEvent, designator)
	}
	return eventAt(src, idx, designator)
}
