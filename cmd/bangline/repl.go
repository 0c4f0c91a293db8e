package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dshills/bangline/internal/history/token"
	"github.com/dshills/bangline/internal/session"
)

// ReplCmd runs the interactive loop.
type ReplCmd struct {
	Prompt  string `help:"Prompt string." default:"bangline> "`
	NoWatch bool   `help:"Do not reload the configuration file when it changes."`
}

// continuationPrompt is shown while a quote or bracket is still open.
const continuationPrompt = "> "

// lineReader reads one line at a time and displays output.
type lineReader interface {
	io.Writer
	ReadLine() (string, error)
	SetPrompt(prompt string)
}

// Run reads lines until end of input. Each line is expanded and recorded;
// the expansion is echoed when it differs from what was typed. The history
// is saved on exit.
func (c *ReplCmd) Run(a *App) (err error) {
	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	if !c.NoWatch {
		a.watchConfig(ctx, sess)
	}

	rd, restore, err := newLineReader(a.in, a.out, c.Prompt, sess)
	if err != nil {
		return err
	}
	defer restore()

	go func() {
		<-ctx.Done()
		if cl, ok := a.in.(io.Closer); ok && a.ctx.Err() != nil {
			cl.Close()
		}
	}()

	for {
		line, err := c.readEntry(rd)
		if errors.Is(err, io.EOF) || a.ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := sess.Submit(line)
		if err != nil {
			fmt.Fprintf(rd, "bangline: %v\n", err)
			continue
		}
		if res.Expanded || res.PrintOnly {
			fmt.Fprintln(rd, res.Line)
		}
	}
}

// readEntry reads a line, continuing onto further lines while a quote or
// bracket is open.
func (c *ReplCmd) readEntry(rd lineReader) (string, error) {
	line, err := rd.ReadLine()
	if err != nil {
		return "", err
	}
	if token.Complete(line) {
		return line, nil
	}

	rd.SetPrompt(continuationPrompt)
	defer rd.SetPrompt(c.Prompt)
	for !token.Complete(line) {
		next, err := rd.ReadLine()
		if err != nil {
			return "", err
		}
		line += "\n" + next
	}
	return line, nil
}

// newLineReader returns a line editor with tab completion when in is a
// terminal and a plain scanner otherwise. restore undoes any terminal mode
// change.
func newLineReader(in io.Reader, out io.Writer, prompt string, sess *session.Session) (lineReader, func(), error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, fmt.Errorf("terminal raw mode: %w", err)
		}
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, prompt)
		t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
			if key != '\t' {
				return "", 0, false
			}
			return completeAt(sess, line, pos)
		}
		return t, func() { term.Restore(fd, state) }, nil
	}

	return &scanReader{sc: bufio.NewScanner(in), out: out}, func() {}, nil
}

// scanReader reads lines from a non-terminal without a prompt.
type scanReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *scanReader) ReadLine() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func (r *scanReader) Write(p []byte) (int, error) { return r.out.Write(p) }

func (r *scanReader) SetPrompt(string) {}

// wordCompleter completes "!str" to "!command".
type wordCompleter interface {
	CompleteWord(partial string) []string
}

// completeAt extends the "!str" word ending at pos to the longest prefix
// shared by all candidates.
func completeAt(c wordCompleter, line string, pos int) (string, int, bool) {
	start := strings.LastIndexAny(line[:pos], " \t") + 1
	word := line[start:pos]
	if !strings.HasPrefix(word, "!") || strings.HasPrefix(word, "!?") {
		return "", 0, false
	}

	cands := c.CompleteWord(word)
	if len(cands) == 0 {
		return "", 0, false
	}
	ext := commonPrefix(cands)
	if len(cands) == 1 {
		ext += " "
	}
	if len(ext) <= len(word) {
		return "", 0, false
	}
	return line[:start] + ext + line[pos:], start + len(ext), true
}

func commonPrefix(ss []string) string {
	prefix := ss[0]
	for _, s := range ss[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
