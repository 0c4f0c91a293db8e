package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type settings struct {
	Section struct {
		Name    string `toml:"name" yaml:"name"`
		Count   int    `toml:"count" yaml:"count"`
		Enabled bool `toml:"enabled" yaml:"enabled"`
	} `toml:"section" yaml:"section"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.toml", FormatTOML},
		{"a.TOML", FormatTOML},
		{"dir/a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}

	if _, err := FormatOf("a.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatOf(a.json) error = %v", err)
	}
}

func TestDecodeFile_TOML(t *testing.T) {
	path := writeFile(t, "c.toml", "[section]\nname = \"x\"\ncount = 3\n")

	var s settings
	s.Section.Enabled = true
	found, err := DecodeFile(path, &s)
	if err != nil || !found {
		t.Fatalf("DecodeFile = %v, %v", found, err)
	}
	if s.Section.Name != "x" || s.Section.Count != 3 {
		t.Errorf("decoded %+v", s)
	}
	if !s.Section.Enabled {
		t.Error("absent key should keep existing value")
	}
}

func TestDecodeFile_YAML(t *testing.T) {
	path := writeFile(t, "c.yaml", "section:\n  name: y\n  enabled: true\n")

	var s settings
	if _, err := DecodeFile(path, &s); err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if s.Section.Name != "y" || !s.Section.Enabled {
		t.Errorf("decoded %+v", s)
	}
}

func TestDecodeFile_Empty(t *testing.T) {
	for _, name := range []string{"e.toml", "e.yaml"} {
		path := writeFile(t, name, "")
		var s settings
		if _, err := DecodeFile(path, &s); err != nil {
			t.Errorf("DecodeFile(%s): %v", name, err)
		}
	}
}

func TestDecodeFile_Missing(t *testing.T) {
	var s settings
	found, err := DecodeFile(filepath.Join(t.TempDir(), "none.toml"), &s)
	if err != nil || found {
		t.Errorf("DecodeFile(missing) = %v, %v", found, err)
	}
}

func TestDecodeFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml syntax", "bad.toml", "[section\nname = 1"},
		{"toml unknown key", "unknown.toml", "[section]\nnmae = \"x\"\n"},
		{"toml wrong type", "type.toml", "[section]\ncount = \"many\"\n"},
		{"yaml syntax", "bad.yaml", "section: [\n"},
		{"yaml unknown key", "unknown.yaml", "section:\n  nmae: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			var s settings
			_, err := DecodeFile(path, &s)

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if perr.Path != path {
				t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
			}
		})
	}
}

func TestParseError_Position(t *testing.T) {
	path := writeFile(t, "pos.toml", "[section]\nname = \n")
	var s settings
	_, err := DecodeFile(path, &s)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v", err)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
}

func TestEnvLoader(t *testing.T) {
	t.Setenv("TESTBL_HISTFILE", "/tmp/h")
	t.Setenv("TESTBL_HISTORY_APPEND_ONLY", "yes")
	t.Setenv("TESTBL_LOGGING_LEVEL", "")
	t.Setenv("TESTBL_HISTORY_FILE", "/ignored")

	l := NewEnvLoader("TESTBL_", map[string]string{"TESTBL_HISTFILE": "history.file"})
	got := l.Load()

	if got["history.file"] != "/tmp/h" {
		t.Errorf("mapped variable = %q", got["history.file"])
	}
	if got["history.append_only"] != "yes" {
		t.Errorf("scanned variable = %q", got["history.append_only"])
	}
	if v, ok := got["logging.level"]; !ok || v != "" {
		t.Errorf("empty variable = %q, %v", v, ok)
	}
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader("P_", nil)
	tests := map[string]string{
		"P_HISTORY_SIZE":         "history.size",
		"P_HISTORY_IGNORE_BLANK": "history.ignore_blank",
		"P_CONFIG":               "config",
	}
	for env, want := range tests {
		if got := l.envToPath(env); got != want {
			t.Errorf("envToPath(%q) = %q, want %q", env, got, want)
		}
	}
}
