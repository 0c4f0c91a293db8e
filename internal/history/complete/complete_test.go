package complete

import (
	"reflect"
	"testing"

	"github.com/dshills/bangline/internal/history/ring"
)

func newSource(t *testing.T, entries ...string) *ring.Ring {
	t.Helper()
	r := ring.New(16)
	r.Load(entries)
	return r
}

func TestCandidates_Prefix(t *testing.T) {
	src := newSource(t, "git status", "ls", "git commit -m x", "git status", "make")

	tests := []struct {
		name    string
		partial string
		limit   int
		want    []string
	}{
		{"prefix newest first", "!git", 0, []string{"git status", "git commit -m x"}},
		{"bare bang", "!", 0, []string{"make", "git status", "git commit -m x", "ls"}},
		{"limit", "!", 2, []string{"make", "git status"}},
		{"no match", "!cargo", 0, nil},
		{"not a reference", "git", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(src, tt.partial, tt.limit)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%q) = %q, want %q", tt.partial, got, tt.want)
			}
		})
	}
}

func TestCandidates_Fuzzy(t *testing.T) {
	src := newSource(t, "git checkout main", "go test ./...", "grep -rn foo", "git commit")

	got := Candidates(src, "!?gco", 0)
	if len(got) == 0 || got[0] != "git commit" && got[0] != "git checkout main" {
		t.Fatalf("Candidates(!?gco) = %q", got)
	}
	for _, c := range got {
		if c == "grep -rn foo" {
			t.Errorf("unrelated entry ranked: %q", got)
		}
	}

	got = Candidates(src, "!?TEST?", 0)
	if !reflect.DeepEqual(got, []string{"go test ./..."}) {
		t.Errorf("case-insensitive fuzzy = %q", got)
	}
}

func TestCandidates_DoesNotMutate(t *testing.T) {
	src := newSource(t, "a", "b")
	Candidates(src, "!?a", 0)
	Candidates(src, "!", 1)
	if !reflect.DeepEqual(src.Entries(), []string{"a", "b"}) {
		t.Errorf("ring changed: %q", src.Entries())
	}
}

func TestDesignators(t *testing.T) {
	src := newSource(t, "git status", "go build", "git log", "gofmt -w .", "")

	got := Designators(src, "!g")
	want := []string{"!gofmt", "!git", "!go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Designators(!g) = %q, want %q", got, want)
	}

	if got := Designators(src, "!?g"); got != nil {
		t.Errorf("Designators(!?g) = %q, want nil", got)
	}
	if got := Designators(src, "g"); got != nil {
		t.Errorf("Designators(g) = %q, want nil", got)
	}
}
