package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/bangline/internal/history/ring"
	"github.com/dshills/bangline/internal/history/store"
	"github.com/dshills/bangline/internal/logging"
)

// Config is the complete bangline configuration.
type Config struct {
	History HistoryConfig `toml:"history" yaml:"history"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// HistoryConfig configures the history ring and its file.
type HistoryConfig struct {
	// File is the history file. A leading "~/" is expanded.
	File string `toml:"file" yaml:"file"`

	// Format is the file format: "plain" or "jsonl".
	Format string `toml:"format" yaml:"format"`

	// Size is the ring capacity.
	Size int `toml:"size" yaml:"size"`

	// Dups is the duplicate policy: "keep", "ignore" or "erase".
	Dups string `toml:"dups" yaml:"dups"`

	// IgnoreBlank drops whitespace-only lines.
	IgnoreBlank bool `toml:"ignore_blank" yaml:"ignore_blank"`

	// AppendOnly makes flushes append new entries instead of rewriting.
	AppendOnly bool `toml:"append_only" yaml:"append_only"`

	// FilterScript is an optional Lua script defining history_filter.
	FilterScript string `toml:"filter_script" yaml:"filter_script"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`

	// JSON selects JSON log lines.
	JSON bool `toml:"json" yaml:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			File:        DefaultHistoryFile(),
			Format:      store.FormatPlain,
			Size:        ring.DefaultCapacity,
			Dups:        ring.DupsIgnoreConsecutive.String(),
			IgnoreBlank: true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// DefaultHistoryFile returns the history file under the user's data
// directory, honoring XDG_DATA_HOME.
func DefaultHistoryFile() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "bangline", "history")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bangline_history"
	}
	return filepath.Join(home, ".local", "share", "bangline", "history")
}

// DefaultConfigFile returns the config file under the user's config
// directory.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bangline.toml"
	}
	return filepath.Join(dir, "bangline", "config.toml")
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// HistoryPath returns History.File with a leading "~/" expanded.
func (c *Config) HistoryPath() string {
	return ExpandHome(c.History.File)
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Set assigns a setting from its string form.
func (c *Config) Set(path, value string) error {
	switch path {
	case "history.file":
		c.History.File = value
	case "history.format":
		c.History.Format = strings.ToLower(value)
	case "history.size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &ValidationError{Path: path, Value: value, Message: "not an integer"}
		}
		c.History.Size = n
	case "history.dups":
		c.History.Dups = strings.ToLower(value)
	case "history.ignore_blank":
		return setBool(&c.History.IgnoreBlank, path, value)
	case "history.append_only":
		return setBool(&c.History.AppendOnly, path, value)
	case "history.filter_script":
		c.History.FilterScript = value
	case "logging.level":
		c.Logging.Level = strings.ToLower(value)
	case "logging.json":
		return setBool(&c.Logging.JSON, path, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, path)
	}
	return nil
}

func setBool(dst *bool, path, value string) error {
	b, err := ParseBool(value)
	if err != nil {
		return &ValidationError{Path: path, Value: value, Message: "not a boolean"}
	}
	*dst = b
	return nil
}

// ParseBool accepts true/false, yes/no, on/off and 1/0.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
}

// ParseDups parses a duplicate policy name.
func ParseDups(s string) (ring.DupPolicy, error) {
	switch strings.ToLower(s) {
	case "keep", "all":
		return ring.DupsKeep, nil
	case "ignore", "ignoredups", "":
		return ring.DupsIgnoreConsecutive, nil
	case "erase", "erasedups":
		return ring.DupsErase, nil
	}
	return ring.DupsKeep, fmt.Errorf("%w: duplicate policy %q", ErrInvalidValue, s)
}

// Validate checks every setting and returns the first *ValidationError.
func (c *Config) Validate() error {
	h := c.History
	if strings.TrimSpace(h.File) == "" {
		return &ValidationError{Path: "history.file", Value: h.File, Message: "must not be empty"}
	}
	if _, err := store.CodecFor(h.Format, ""); err != nil {
		return &ValidationError{Path: "history.format", Value: h.Format, Message: "must be plain or jsonl"}
	}
	if h.Size < 1 {
		return &ValidationError{Path: "history.size", Value: h.Size, Message: "must be at least 1"}
	}
	if _, err := ParseDups(h.Dups); err != nil {
		return &ValidationError{Path: "history.dups", Value: h.Dups, Message: "must be keep, ignore or erase"}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return &ValidationError{Path: "logging.level", Value: c.Logging.Level, Message: "must be debug, info, warn or error"}
	}
	return nil
}

// Policy builds the ring insertion policy. extra, when non-nil, is
// consulted after the blank-line check.
func (c *Config) Policy(extra ring.Filter) ring.Policy {
	dups, err := ParseDups(c.History.Dups)
	if err != nil {
		dups = ring.DupsIgnoreConsecutive
	}

	p := ring.Policy{Dups: dups}
	switch {
	case c.History.IgnoreBlank:
		p.Filter = ring.Chain(ring.SkipBlank, extra)
	case extra != nil:
		p.Filter = extra
	}
	return p
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}
