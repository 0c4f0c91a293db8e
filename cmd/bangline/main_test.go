package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeCompleter []string

func (f fakeCompleter) CompleteWord(partial string) []string {
	var out []string
	for _, s := range f {
		if strings.HasPrefix(s, partial) {
			out = append(out, s)
		}
	}
	return out
}

// execute runs the CLI with its own config and history file.
func execute(t *testing.T, dir, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv("BANGLINE_HISTFILE", filepath.Join(dir, "history"))

	var out, errOut bytes.Buffer
	base := []string{"--config", filepath.Join(dir, "config.toml")}
	code := run(context.Background(), append(base, args...), strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func writeHistory(t *testing.T, dir string, lines ...string) {
	t.Helper()
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "history"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestReplPipedInput(t *testing.T) {
	dir := t.TempDir()
	input := "echo hello world\n!!:s/hello/bye/\necho !$\n!nosuch\n^world^there^\n"

	out, errOut, code := execute(t, dir, input, "repl", "--no-watch")
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, errOut)
	}

	wantOut := "echo bye world\necho world\nbangline: !nosuch: event not found: nosuch\necho there\n"
	if out != wantOut {
		t.Errorf("stdout = %q, want %q", out, wantOut)
	}

	hist, _, _ := execute(t, dir, "", "history")
	want := "    1  echo hello world\n    2  echo bye world\n    3  echo world\n    4  echo there\n"
	if hist != want {
		t.Errorf("history = %q, want %q", hist, want)
	}
}

func TestReplContinuation(t *testing.T) {
	dir := t.TempDir()
	input := "echo 'a\nb'\n!!:p\n"

	out, errOut, code := execute(t, dir, input, "--no-watch")
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, errOut)
	}
	if out != "echo 'a\nb'\n" {
		t.Errorf("stdout = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "history"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "echo 'a\x7fb'") {
		t.Errorf("multi-line entry not stored with placeholder: %q", data)
	}
}

func TestExpandCommand(t *testing.T) {
	dir := t.TempDir()
	writeHistory(t, dir, "cat foo.txt", "ls /tmp/a.go")

	out, _, code := execute(t, dir, "", "expand", "vim !$:r.c !-2:$")
	if code != 0 || out != "vim /tmp/a.c foo.txt\n" {
		t.Errorf("expand = %q, %d", out, code)
	}

	_, errOut, code := execute(t, dir, "", "expand", "!99")
	if code != 1 || !strings.Contains(errOut, "!99") {
		t.Errorf("expand !99 = %q, %d", errOut, code)
	}

	hist, _, _ := execute(t, dir, "", "history")
	if strings.Count(hist, "\n") != 2 {
		t.Errorf("expand without --record changed history: %q", hist)
	}

	if _, _, code := execute(t, dir, "", "expand", "--record", "echo !-2:$"); code != 0 {
		t.Fatalf("expand --record exit %d", code)
	}
	hist, _, _ = execute(t, dir, "", "history", "-n", "1")
	if hist != "    3  echo foo.txt\n" {
		t.Errorf("history -n 1 = %q", hist)
	}
}

func TestCompleteCommand(t *testing.T) {
	dir := t.TempDir()
	writeHistory(t, dir, "git status", "go vet ./...", "git log")

	out, _, _ := execute(t, dir, "", "complete", "!git")
	if out != "git log\ngit status\n" {
		t.Errorf("complete !git = %q", out)
	}

	out, _, _ = execute(t, dir, "", "complete", "--words", "!g")
	if out != "!git\n!go\n" {
		t.Errorf("complete --words !g = %q", out)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := "[history]\nsize = 2\ndups = \"keep\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, errOut, code := execute(t, dir, "a\nb\nb\nc\n", "--no-watch"); code != 0 {
		t.Fatalf("repl exit %d: %s", code, errOut)
	}
	hist, _, _ := execute(t, dir, "", "history")
	if hist != "    1  b\n    2  c\n" {
		t.Errorf("history = %q", hist)
	}
}

func TestBadFlags(t *testing.T) {
	dir := t.TempDir()
	if _, errOut, code := execute(t, dir, "", "--log-level", "loud", "history"); code != 1 || !strings.Contains(errOut, "loud") {
		t.Errorf("bad log level = %d, %q", code, errOut)
	}
	if _, _, code := execute(t, dir, "", "nosuchcommand", "x"); code == 0 {
		t.Error("unknown command should fail")
	}
}

func TestVersion(t *testing.T) {
	out, _, code := execute(t, t.TempDir(), "", "--version")
	if code != 0 || !strings.HasPrefix(out, "bangline ") {
		t.Errorf("--version = %q, %d", out, code)
	}
}

func TestCompleteAt(t *testing.T) {
	c := fakeCompleter{"!git", "!go", "!gofmt", "!make"}

	tests := []struct {
		name    string
		line    string
		pos     int
		want    string
		wantPos int
		ok      bool
	}{
		{"unique", "!ma", 3, "!make ", 6, true},
		{"common prefix", "x !gof", 6, "x !gofmt ", 9, true},
		{"ambiguous no progress", "!g", 2, "", 0, false},
		{"mid line", "!m tail", 2, "!make  tail", 6, true},
		{"not a reference", "git", 3, "", 0, false},
		{"substring search", "!?g", 3, "", 0, false},
		{"no match", "!zz", 3, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pos, ok := completeAt(c, tt.line, tt.pos)
			if ok != tt.ok || got != tt.want || pos != tt.wantPos {
				t.Errorf("completeAt(%q, %d) = %q, %d, %v; want %q, %d, %v",
					tt.line, tt.pos, got, pos, ok, tt.want, tt.wantPos, tt.ok)
			}
		})
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"!go"}, "!go"},
		{[]string{"!go", "!gofmt"}, "!go"},
		{[]string{"!git", "!go"}, "!g"},
		{[]string{"abc", "xyz"}, ""},
	}
	for _, tt := range tests {
		if got := commonPrefix(tt.in); got != tt.want {
			t.Errorf("commonPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
