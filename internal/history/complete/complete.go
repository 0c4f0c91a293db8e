// Package complete suggests history entries for partially typed
// references.
//
// Two forms are understood. A partial "!str" is completed by prefix, like
// the event designator it will become. A partial "!?str" is ranked with
// fuzzy matching so that "!?gco" finds "git checkout". Results are newest
// first and never repeat an entry.
package complete

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/dshills/bangline/internal/history/token"
)

// Source provides the entries to complete from, oldest first.
type Source interface {
	Entries() []string
}

// Candidates returns entries matching partial, at most limit of them. A
// limit of zero or less means no limit. Anything not starting with "!"
// yields nothing.
func Candidates(src Source, partial string, limit int) []string {
	if !strings.HasPrefix(partial, "!") {
		return nil
	}
	entries := distinctNewest(src.Entries())

	var out []string
	if rest, ok := strings.CutPrefix(partial, "!?"); ok {
		out = ranked(entries, strings.TrimSuffix(rest, "?"))
	} else {
		prefix := partial[1:]
		for _, e := range entries {
			if strings.HasPrefix(e, prefix) {
				out = append(out, e)
			}
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Designators completes a partial "!str" to "!word" for every distinct
// command word in history that begins with str, newest first.
func Designators(src Source, partial string) []string {
	prefix, ok := strings.CutPrefix(partial, "!")
	if !ok || strings.HasPrefix(prefix, "?") {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, e := range distinctNewest(src.Entries()) {
		toks := token.Tokenize(e)
		if len(toks) == 0 {
			continue
		}
		word := toks[0].Text
		if !strings.HasPrefix(word, prefix) || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, "!"+word)
	}
	return out
}

// ranked orders entries by fuzzy distance to needle. Ties keep the newest
// first order of entries.
func ranked(entries []string, needle string) []string {
	if needle == "" {
		return entries
	}
	ranks := fuzzy.RankFindFold(needle, entries)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}

func distinctNewest(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if seen[entries[i]] {
			continue
		}
		seen[entries[i]] = true
		out = append(out, entries[i])
	}
	return out
}
