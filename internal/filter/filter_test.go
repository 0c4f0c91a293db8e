package filter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/bangline/internal/logging"
)

const leadingSpaceScript = `
function history_filter(line)
  return not line:match("^%s")
end
`

func TestLoadString_Keep(t *testing.T) {
	f, err := LoadString(leadingSpaceScript)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer f.Close()

	tests := []struct {
		line string
		want bool
	}{
		{"ls -la", true},
		{" secret command", false},
		{"\tsecret", false},
		{"", true},
	}
	for _, tt := range tests {
		got, err := f.Keep(tt.line)
		if err != nil {
			t.Fatalf("Keep(%q): %v", tt.line, err)
		}
		if got != tt.want {
			t.Errorf("Keep(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.lua")
	script := `
local banned = { "password", "token" }
function history_filter(line)
  for _, word in ipairs(banned) do
    if string.find(line, word, 1, true) then
      return false
    end
  end
  return true
end
`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	defer f.Close()

	keep := f.Predicate()
	if !keep("git push") {
		t.Error("git push should be kept")
	}
	if keep("export token=abc") {
		t.Error("line with token should be dropped")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := LoadString("x = 1"); !errors.Is(err, ErrNoFilterFunc) {
		t.Errorf("missing function error = %v, want ErrNoFilterFunc", err)
	}
	if _, err := LoadString("function ("); err == nil {
		t.Error("syntax error should fail")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestSandbox(t *testing.T) {
	f, err := LoadString(`
function history_filter(line)
  return os == nil and io == nil and require == nil
end
`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer f.Close()

	ok, err := f.Keep("x")
	if err != nil {
		t.Fatalf("Keep: %v", err)
	}
	if !ok {
		t.Error("os, io or require reachable from filter script")
	}
}

func TestPredicate_ErrorKeepsLine(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})

	f, err := LoadString(`
function history_filter(line)
  error("boom")
end
`, WithLogger(log))
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer f.Close()

	if _, err := f.Keep("x"); err == nil {
		t.Error("Keep should report the script error")
	}
	if !f.Predicate()("x") {
		t.Error("failing filter should keep the line")
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("script error not logged: %q", buf.String())
	}
}

func TestTimeout(t *testing.T) {
	f, err := LoadString(`
function history_filter(line)
  while true do end
end
`, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer f.Close()

	start := time.Now()
	if _, err := f.Keep("x"); err == nil {
		t.Error("runaway script should time out")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout not enforced")
	}
}

func TestClose(t *testing.T) {
	f, err := LoadString(leadingSpaceScript)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	f.Close()

	if _, err := f.Keep("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Keep after Close error = %v, want ErrClosed", err)
	}
}
