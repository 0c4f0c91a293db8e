package expand

import (
	"regexp"
	"strings"

	"github.com/dshills/bangline/internal/history/token"
)

// Result is the outcome of expanding one line.
type Result struct {
	// Line is the rewritten line. It equals the input when nothing expanded.
	Line string

	// Expanded is set when at least one reference was replaced.
	Expanded bool

	// PrintOnly is set when a :p modifier asked for the line to be shown
	// rather than run.
	PrintOnly bool

	// LastSub is the substitution in effect after the line, to be carried
	// into the Context of the next expansion.
	LastSub *Substitution
}

// quickSubPattern matches ^old^new^ spanning the whole line.
var quickSubPattern = regexp.MustCompile(`^\s*\^([^^]+)\^([^^]*)\^?\s*$`)

// QuickSubstitution rewrites a ^old^new^ line to the equivalent
// !!:s^old^new^ reference. It reports false for any other line.
func QuickSubstitution(line string) (string, bool) {
	m := quickSubPattern.FindStringSubmatch(line)
	if m == nil {
		return line, false
	}
	return "!!:s^" + m[1] + "^" + m[2] + "^", true
}

// ExpandLine replaces every history reference in line.
//
// A line that is a quick substitution is rewritten first. The line is then
// scanned for references; each is resolved and spliced in, and scanning
// resumes after the inserted text. The first failing reference aborts the
// whole line with a *RefError. Lines with an unclosed quote or bracket are
// returned unchanged since they are still being typed.
func ExpandLine(ctx Context, line string) (Result, error) {
	res := Result{Line: line, LastSub: ctx.LastSub}
	if !token.Complete(line) {
		return res, nil
	}

	if rewritten, ok := QuickSubstitution(line); ok {
		line = rewritten
	}

	var b strings.Builder
	copied := 0
	for _, start := range referenceStarts(line) {
		if start < copied {
			continue
		}

		ref, end, err := parseReference(line, start)
		if err != nil {
			return Result{}, &RefError{Ref: ref.raw, Err: err}
		}
		if ref == nil {
			continue
		}

		out, err := ref.resolve(ctx)
		if err != nil {
			return Result{}, &RefError{Ref: ref.raw, Err: err}
		}

		b.WriteString(line[copied:start])
		b.WriteString(out.Text)
		copied = end

		ctx = ctx.WithLastSub(out.LastSub)
		res.Expanded = true
		res.PrintOnly = res.PrintOnly || out.PrintOnly
	}

	if !res.Expanded {
		return res, nil
	}
	b.WriteString(line[copied:])
	res.Line = b.String()
	res.LastSub = ctx.LastSub
	return res, nil
}

// breakBefore holds bytes after which a new reference may begin inside a
// token. Whitespace also qualifies; it only occurs inside quotes or groups.
const breakBefore = ";&|()<>`\"{"

// referenceStarts returns the offsets of every "!" that may begin a
// reference: at the start of a token or after a break character, outside
// single quotes and not escaped by a backslash.
func referenceStarts(line string) []int {
	var starts []int
	for _, tok := range token.Tokenize(line) {
		inSingle, inDouble := false, false
		for i := tok.Start; i < tok.End; i++ {
			c := line[i]
			switch {
			case inSingle:
				inSingle = c != '\''
			case c == '\\':
				i++
			case c == '"':
				inDouble = !inDouble
			case c == '\'' && !inDouble:
				inSingle = true
			case c == '!':
				if i == tok.Start || token.IsSpace(line[i-1]) || strings.IndexByte(breakBefore, line[i-1]) >= 0 {
					starts = append(starts, i)
				}
			}
		}
	}
	return starts
}
