package expand

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/dshills/bangline/internal/history/token"
)

// ModifierKind identifies a modifier step.
type ModifierKind int

const (
	// ModHead (:h) removes the last path component.
	ModHead ModifierKind = iota

	// ModTail (:t) keeps only the last path component.
	ModTail

	// ModExtension (:e) keeps only the suffix after the last dot.
	ModExtension

	// ModRoot (:r) removes the suffix from the last dot on.
	ModRoot

	// ModQuote (:q) quotes the text as a single shell word.
	ModQuote

	// ModDropWord (:x) drops the first word.
	ModDropWord

	// ModPrint (:p) leaves the text alone and marks the line print-only.
	ModPrint

	// ModGlobal (:g) applies Inner to every word.
	ModGlobal

	// ModSubstitute (:s/pat/repl/) replaces pat with repl.
	ModSubstitute

	// ModRepeat (:&) repeats the previous substitution.
	ModRepeat
)

// Modifier is one step of a modifier pipeline.
type Modifier struct {
	Kind ModifierKind

	// Inner is the step applied per word by ModGlobal.
	Inner *Modifier

	// Pattern and Replacement belong to ModSubstitute. An empty Pattern
	// reuses the previous one. An unescaped & in Replacement stands for the
	// pattern, \& for a literal ampersand.
	Pattern     string
	Replacement string

	// Global replaces every occurrence for ModSubstitute and ModRepeat.
	Global bool
}

// String returns the modifier as it would be typed.
func (m Modifier) String() string {
	switch m.Kind {
	case ModHead:
		return ":h"
	case ModTail:
		return ":t"
	case ModExtension:
		return ":e"
	case ModRoot:
		return ":r"
	case ModQuote:
		return ":q"
	case ModDropWord:
		return ":x"
	case ModPrint:
		return ":p"
	case ModGlobal:
		if m.Inner == nil {
			return ":g"
		}
		return ":g" + strings.TrimPrefix(m.Inner.String(), ":")
	case ModSubstitute:
		g := ""
		if m.Global {
			g = "g"
		}
		return fmt.Sprintf(":%ss/%s/%s/", g, m.Pattern, m.Replacement)
	case ModRepeat:
		if m.Global {
			return ":g&"
		}
		return ":&"
	default:
		return ":?"
	}
}

// Outcome is the result of running a pipeline.
type Outcome struct {
	Text string

	// PrintOnly is set when :p appeared in the pipeline.
	PrintOnly bool

	// LastSub is the substitution in effect afterwards.
	LastSub *Substitution
}

// ParseModifiers parses a run of modifiers such as ":h:t:s/a/b/". It stops
// at the first colon followed by whitespace or end of text and returns the
// number of bytes consumed.
func ParseModifiers(s string) ([]Modifier, int, error) {
	var mods []Modifier
	i := 0
	for i < len(s) && s[i] == ':' {
		if i+1 >= len(s) || token.IsSpace(s[i+1]) {
			break
		}
		m, n, err := parseModifier(s, i+1)
		if err != nil {
			return nil, 0, err
		}
		mods = append(mods, m)
		i = n
	}
	return mods, i, nil
}

// parseModifier parses the modifier starting at s[i], just after its colon,
// and returns the index following it.
func parseModifier(s string, i int) (Modifier, int, error) {
	switch c := s[i]; c {
	case 'h', 't', 'e', 'r', 'q', 'x', 'p':
		return Modifier{Kind: simpleKind(c)}, i + 1, nil
	case '&':
		return Modifier{Kind: ModRepeat}, i + 1, nil
	case 's':
		return parseSubstitute(s, i+1, false)
	case 'g':
		if i+1 >= len(s) {
			return Modifier{}, 0, fmt.Errorf("%w: :g needs a modifier", ErrModifierSyntax)
		}
		switch n := s[i+1]; n {
		case 's':
			return parseSubstitute(s, i+2, true)
		case '&':
			return Modifier{Kind: ModRepeat, Global: true}, i + 2, nil
		case 'h', 't', 'e', 'r', 'q', 'x', 'p':
			inner := Modifier{Kind: simpleKind(n)}
			return Modifier{Kind: ModGlobal, Inner: &inner}, i + 2, nil
		default:
			return Modifier{}, 0, fmt.Errorf("%w: :g%c", ErrModifierSyntax, n)
		}
	default:
		return Modifier{}, 0, fmt.Errorf("%w: :%c", ErrModifierSyntax, c)
	}
}

func simpleKind(c byte) ModifierKind {
	switch c {
	case 'h':
		return ModHead
	case 't':
		return ModTail
	case 'e':
		return ModExtension
	case 'r':
		return ModRoot
	case 'q':
		return ModQuote
	case 'x':
		return ModDropWord
	default:
		return ModPrint
	}
}

// parseSubstitute parses "/pat/repl/" starting at the delimiter s[i]. Any
// non-space byte may be the delimiter and a backslash escapes it. The final
// delimiter is optional at the end of the text, in which case the
// replacement runs to the end. A "g" right after the final delimiter, ending
// the word, makes the substitution global like :gs.
func parseSubstitute(s string, i int, global bool) (Modifier, int, error) {
	if i >= len(s) || token.IsSpace(s[i]) {
		return Modifier{}, 0, fmt.Errorf("%w: :s needs a delimiter", ErrModifierSyntax)
	}
	delim := s[i]

	pat, i, closed := scanDelimited(s, i+1, delim)
	if !closed {
		return Modifier{}, 0, fmt.Errorf("%w: unterminated :s pattern", ErrModifierSyntax)
	}
	repl, i, closed := scanDelimited(s, i, delim)
	if closed && i < len(s) && s[i] == 'g' && (i+1 == len(s) || s[i+1] == ':' || token.IsSpace(s[i+1])) {
		global = true
		i++
	}

	return Modifier{
		Kind:        ModSubstitute,
		Pattern:     pat,
		Replacement: repl,
		Global:      global,
	}, i, nil
}

// scanDelimited reads up to the next unescaped delim. It reports whether the
// delimiter was found and returns the index after it.
func scanDelimited(s string, i int, delim byte) (string, int, bool) {
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == delim:
			b.WriteByte(delim)
			i += 2
		case c == delim:
			return b.String(), i + 1, true
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i, false
}

// Apply runs steps over text left to right.
func Apply(ctx Context, text string, steps []Modifier) (Outcome, error) {
	out := Outcome{Text: text, LastSub: ctx.LastSub}
	for _, m := range steps {
		if err := m.apply(&out); err != nil {
			return Outcome{}, err
		}
	}
	return out, nil
}

func (m Modifier) apply(out *Outcome) error {
	switch m.Kind {
	case ModPrint:
		out.PrintOnly = true
		return nil

	case ModGlobal:
		if m.Inner == nil {
			return fmt.Errorf("%w: :g needs a modifier", ErrModifierSyntax)
		}
		toks := token.Tokenize(out.Text)
		words := make([]string, 0, len(toks))
		for _, t := range toks {
			w := Outcome{Text: t.Text, LastSub: out.LastSub}
			if err := m.Inner.apply(&w); err != nil {
				return err
			}
			out.PrintOnly = out.PrintOnly || w.PrintOnly
			words = append(words, w.Text)
		}
		out.Text = strings.Join(words, " ")
		return nil

	case ModSubstitute:
		pat := m.Pattern
		if pat == "" {
			if out.LastSub == nil {
				return ErrNoPriorSubstitution
			}
			pat = out.LastSub.Pattern
		}
		sub := &Substitution{Pattern: pat, Replacement: expandAmpersand(m.Replacement, pat)}
		out.Text = substitute(out.Text, sub, m.Global)
		out.LastSub = sub
		return nil

	case ModRepeat:
		if out.LastSub == nil {
			return ErrNoPriorSubstitution
		}
		out.Text = substitute(out.Text, out.LastSub, m.Global)
		return nil
	}

	text, err := transform(m.Kind, out.Text)
	if err != nil {
		return err
	}
	out.Text = text
	return nil
}

// transform applies a modifier that only depends on its input text.
func transform(kind ModifierKind, s string) (string, error) {
	switch kind {
	case ModHead:
		i := strings.LastIndexByte(s, '/')
		if i < 0 {
			return "", nil
		}
		return s[:i], nil

	case ModTail:
		return s[strings.LastIndexByte(s, '/')+1:], nil

	case ModExtension:
		if i := extensionDot(s); i >= 0 {
			return s[i+1:], nil
		}
		return "", nil

	case ModRoot:
		if i := extensionDot(s); i >= 0 {
			return s[:i], nil
		}
		return s, nil

	case ModQuote:
		q, err := syntax.Quote(s, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("%w: :q: %v", ErrModifierSyntax, err)
		}
		return q, nil

	case ModDropWord:
		toks := token.Tokenize(s)
		if len(toks) < 2 {
			return "", nil
		}
		return s[toks[1].Start:], nil
	}
	return "", fmt.Errorf("%w: unknown modifier %d", ErrModifierSyntax, kind)
}

// extensionDot returns the index of the last dot in the final path
// component, or -1.
func extensionDot(s string) int {
	i := strings.LastIndexByte(s, '.')
	if i < 0 || strings.IndexByte(s[i:], '/') >= 0 {
		return -1
	}
	return i
}

// expandAmpersand replaces unescaped & with pat and \& with &.
func expandAmpersand(repl, pat string) string {
	if !strings.Contains(repl, "&") {
		return repl
	}
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		switch {
		case repl[i] == '\\' && i+1 < len(repl) && repl[i+1] == '&':
			b.WriteByte('&')
			i++
		case repl[i] == '&':
			b.WriteString(pat)
		default:
			b.WriteByte(repl[i])
		}
	}
	return b.String()
}

func substitute(s string, sub *Substitution, global bool) string {
	if global {
		return strings.ReplaceAll(s, sub.Pattern, sub.Replacement)
	}
	return strings.Replace(s, sub.Pattern, sub.Replacement, 1)
}
