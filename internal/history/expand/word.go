package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/bangline/internal/history/token"
)

// WordRange selects tokens First through Last, inclusive.
type WordRange struct {
	First int
	Last  int
}

// Single reports whether the range covers exactly one token.
func (r WordRange) Single() bool {
	return r.First == r.Last
}

// ParseWordRange maps a word designator to a range over count tokens.
//
//	^      the first token
//	$      the last token
//	*      every token but the first
//	N      token N
//	N-M    tokens N through M; M may be $
//	N-     token N through the last
//	N*     same as N-$
//	-M     same as 0-M
//	%      reserved, not supported
func ParseWordRange(designator string, count int) (WordRange, error) {
	bad := func() (WordRange, error) {
		return WordRange{}, fmt.Errorf("%w: %s", ErrNoSuchWord, designator)
	}

	switch designator {
	case "":
		return bad()
	case "%":
		return WordRange{}, fmt.Errorf("%%: %w", ErrNotImplemented)
	case "*":
		if count < 2 {
			return bad()
		}
		return WordRange{First: 1, Last: count - 1}, nil
	}

	var r WordRange
	var err error
	switch {
	case strings.HasPrefix(designator, "-"):
		r.First = 0
		r.Last, err = wordIndex(designator[1:], count)
	case strings.HasSuffix(designator, "*") && len(designator) > 1:
		r.First, err = wordIndex(designator[:len(designator)-1], count)
		r.Last = count - 1
	case strings.HasSuffix(designator, "-"):
		r.First, err = wordIndex(designator[:len(designator)-1], count)
		r.Last = count - 1
	case strings.Contains(designator, "-"):
		lo, hi, _ := strings.Cut(designator, "-")
		r.First, err = wordIndex(lo, count)
		if err == nil {
			r.Last, err = wordIndex(hi, count)
		}
	default:
		r.First, err = wordIndex(designator, count)
		r.Last = r.First
	}
	if err != nil {
		return bad()
	}

	if r.First < 0 || r.Last >= count || r.First > r.Last {
		return bad()
	}
	return r, nil
}

// wordIndex resolves a single position: digits, ^ or $.
func wordIndex(s string, count int) (int, error) {
	switch s {
	case "^":
		return 0, nil
	case "$":
		return count - 1, nil
	}
	if s == "" || !isInteger(s) || strings.HasPrefix(s, "-") {
		return 0, ErrNoSuchWord
	}
	return strconv.Atoi(s)
}

// ResolveWord selects the words named by designator from tokens and joins
// them with single spaces.
func ResolveWord(tokens []token.Token, designator string) (string, error) {
	r, err := ParseWordRange(designator, len(tokens))
	if err != nil {
		return "", err
	}
	return token.Join(tokens[r.First : r.Last+1]), nil
}
