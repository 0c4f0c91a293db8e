package main

import (
	"fmt"
)

// ExpandCmd expands a single line.
type ExpandCmd struct {
	Line   string `arg:"" help:"Line to expand."`
	Record bool   `help:"Record the expanded line in the history file." short:"r"`
}

// Run prints the expanded line.
func (c *ExpandCmd) Run(a *App) error {
	sess, err := a.openSession()
	if err != nil {
		return err
	}

	if !c.Record {
		defer sess.Release()
		res, err := sess.Expand(c.Line)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Line)
		return nil
	}

	res, err := sess.Submit(c.Line)
	if err != nil {
		sess.Release()
		return err
	}
	fmt.Fprintln(a.out, res.Line)
	return sess.Close()
}

// HistoryCmd lists the history.
type HistoryCmd struct {
	Last int `help:"Show only the last N entries." short:"n" placeholder:"N"`
}

// Run prints entries as "  N  line", numbered from 1 for the oldest.
func (c *HistoryCmd) Run(a *App) error {
	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Release()

	entries := sess.Entries()
	start := 0
	if c.Last > 0 && c.Last < len(entries) {
		start = len(entries) - c.Last
	}
	for i := start; i < len(entries); i++ {
		fmt.Fprintf(a.out, "%5d  %s\n", i+1, entries[i])
	}
	return nil
}

// CompleteCmd prints completions.
type CompleteCmd struct {
	Partial string `arg:"" help:"Partial reference such as !gi or !?status."`
	Limit   int    `help:"Maximum number of candidates." default:"20"`
	Words   bool   `help:"Complete to !command designators instead of whole entries." short:"w"`
}

// Run prints one candidate per line, best first.
func (c *CompleteCmd) Run(a *App) error {
	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Release()

	var cands []string
	if c.Words {
		cands = sess.CompleteWord(c.Partial)
		if c.Limit > 0 && len(cands) > c.Limit {
			cands = cands[:c.Limit]
		}
	} else {
		cands = sess.Complete(c.Partial, c.Limit)
	}
	for _, s := range cands {
		fmt.Fprintln(a.out, s)
	}
	return nil
}
