package expand

import (
	"strings"

	"github.com/dshills/bangline/internal/history/token"
)

// reference is one parsed "!..." occurrence.
type reference struct {
	raw   string
	event string // event designator without the leading "!"
	word  string // word designator, empty when absent
	mods  []Modifier
}

// resolve runs the event, word and modifier stages in order.
func (r *reference) resolve(ctx Context) (Outcome, error) {
	ev, err := ResolveEvent(ctx, r.event)
	if err != nil {
		return Outcome{}, err
	}

	text := ev.Text
	if r.word != "" {
		text, err = ResolveWord(token.Tokenize(ev.Text), r.word)
		if err != nil {
			return Outcome{}, err
		}
	}

	return Apply(ctx, text, r.mods)
}

// eventStop holds bytes that end a string event designator.
const eventStop = ":^$*%;&|()<>`'\""

// parseReference parses the reference whose "!" is at line[start]. It
// returns nil when the "!" does not begin a reference. A reference that
// starts correctly but is malformed returns an error along with its text.
func parseReference(line string, start int) (*reference, int, error) {
	i := start + 1
	if i >= len(line) {
		return nil, start, nil
	}
	switch c := line[i]; {
	case token.IsSpace(c), c == '=', c == '(':
		return nil, start, nil
	}

	ref := &reference{}

	// Event designator.
	switch c := line[i]; {
	case c == '!' || c == '#':
		ref.event = string(c)
		i++
	case c == '-' && i+1 < len(line) && isDigit(line[i+1]):
		j := i + 1
		for j < len(line) && isDigit(line[j]) {
			j++
		}
		ref.event = line[i:j]
		i = j
	case isDigit(c):
		j := i
		for j < len(line) && isDigit(line[j]) {
			j++
		}
		ref.event = line[i:j]
		i = j
	case c == '?':
		end := strings.IndexByte(line[i+1:], '?')
		if end < 0 {
			ref.event = line[i:]
			i = len(line)
		} else {
			ref.event = line[i : i+1+end+1]
			i += end + 2
		}
	case c == ':' || c == '^' || c == '$' || c == '*' || c == '%':
		// !$, !:2 and friends refer to the previous command.
		ref.event = "!"
	default:
		j := i
		for j < len(line) && !token.IsSpace(line[j]) && strings.IndexByte(eventStop, line[j]) < 0 {
			j++
		}
		if j == i {
			return nil, start, nil
		}
		ref.event = line[i:j]
		i = j
	}

	// Word designator, after a colon or directly for ^ $ * %.
	if i < len(line) {
		switch c := line[i]; {
		case c == ':' && i+1 < len(line) && startsWord(line[i+1:]):
			ref.word, i = scanWord(line, i+1)
		case c == '^' || c == '$' || c == '*' || c == '%':
			ref.word, i = scanWord(line, i)
		}
	}

	// Modifiers.
	mods, n, err := ParseModifiers(line[i:])
	if err != nil {
		end := i
		for end < len(line) && !token.IsSpace(line[end]) {
			end++
		}
		ref.raw = line[start:end]
		return ref, end, err
	}
	ref.mods = mods
	i += n

	ref.raw = line[start:i]
	return ref, i, nil
}

// startsWord reports whether s begins with a word designator rather than a
// modifier.
func startsWord(s string) bool {
	switch c := s[0]; {
	case isDigit(c), c == '^', c == '$', c == '*', c == '%':
		return true
	case c == '-':
		return len(s) > 1 && (isDigit(s[1]) || s[1] == '$')
	}
	return false
}

// scanWord reads a word designator starting at line[i].
func scanWord(line string, i int) (string, int) {
	start := i
	position := func() {
		switch {
		case i < len(line) && (line[i] == '^' || line[i] == '$'):
			i++
		default:
			for i < len(line) && isDigit(line[i]) {
				i++
			}
		}
	}

	switch line[i] {
	case '*', '%':
		return line[i : i+1], i + 1
	case '-':
		i++
		position()
		return line[start:i], i
	}

	position()
	if i < len(line) {
		switch line[i] {
		case '-':
			i++
			position()
		case '*':
			i++
		}
	}
	return line[start:i], i
}
