// Package token splits command lines into argv-style argument tokens.
//
// Tokens are separated by runs of whitespace. A quote (' or ") or an opening
// bracket ((, [ or {) inside a token extends it to the matching close, so
// "echo 'a b' (x y)" yields three tokens. Nesting is respected and quotes are
// honored inside brackets. A backslash escapes the next byte outside single
// quotes; $'...' strings accept backslash escapes too. Unterminated
// constructs run to the end of the text. That is a normal state while a
// line is still being typed, so it is not an error.
package token

import "strings"

// Token is one argument of a command line.
type Token struct {
	// Text is the source substring, quotes and brackets included.
	Text string

	// Start and End are byte offsets of Text in the source, half open.
	Start int
	End   int
}

// Len returns the byte length of the token.
func (t Token) Len() int {
	return t.End - t.Start
}

// Tokenize splits text into tokens ordered by Start.
func Tokenize(text string) []Token {
	var toks []Token
	s := scanner{src: text}
	for s.pos < len(text) {
		if isSpace(text[s.pos]) {
			s.pos++
			continue
		}
		start := s.pos
		s.word()
		toks = append(toks, Token{Text: text[start:s.pos], Start: start, End: s.pos})
	}
	return toks
}

// Split returns the token texts of text.
func Split(text string) []string {
	return Texts(Tokenize(text))
}

// Texts returns the Text of each token.
func Texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

// Join concatenates token texts with single spaces.
func Join(toks []Token) string {
	return strings.Join(Texts(toks), " ")
}

// Complete reports whether every quote and bracket in text is closed.
func Complete(text string) bool {
	s := scanner{src: text}
	for s.pos < len(text) {
		if isSpace(text[s.pos]) {
			s.pos++
			continue
		}
		s.word()
	}
	return !s.unterminated
}

// IsSpace reports whether c separates tokens.
func IsSpace(c byte) bool {
	return isSpace(c)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// closer returns the closing bracket for an opening one, or 0.
func closer(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}

type scanner struct {
	src          string
	pos          int
	unterminated bool
}

// word consumes one token starting at a non-space byte.
func (s *scanner) word() {
	for s.pos < len(s.src) && !isSpace(s.src[s.pos]) {
		s.unit()
	}
}

// unit consumes one escape, quoted string, group or plain byte.
func (s *scanner) unit() {
	switch c := s.src[s.pos]; c {
	case '\\':
		s.escape()
	case '$':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '\'' {
			s.pos++
			s.quote('\'', true)
			return
		}
		s.pos++
	case '\'', '"':
		s.quote(c, c == '"')
	case '(', '[', '{':
		s.group()
	default:
		s.pos++
	}
}

func (s *scanner) escape() {
	s.pos += 2
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}

// quote consumes a quoted string including both quotes. Backslash escapes
// are honored when escapes is set.
func (s *scanner) quote(q byte, escapes bool) {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == q:
			s.pos++
			return
		case c == '\\' && escapes:
			s.escape()
		default:
			s.pos++
		}
	}
	s.unterminated = true
}

// group consumes a bracketed group up to its matching close.
func (s *scanner) group() {
	stack := []byte{closer(s.src[s.pos])}
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.escape()
		case c == '\'' || c == '"':
			s.quote(c, c == '"')
		case closer(c) != 0:
			stack = append(stack, closer(c))
			s.pos++
		case c == stack[len(stack)-1]:
			stack = stack[:len(stack)-1]
			s.pos++
			if len(stack) == 0 {
				return
			}
		default:
			s.pos++
		}
	}
	s.unterminated = true
}
