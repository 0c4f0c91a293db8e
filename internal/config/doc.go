// Package config holds bangline's settings and loads them in layers.
//
// Precedence, lowest first:
//
//	Default()            built-in values
//	config file          TOML or YAML, chosen by extension
//	environment          BANGLINE_* variables
//	command-line flags   applied by the caller with Set
//
// A Watcher reloads the file when it changes so a running session can
// pick up a new history size or duplicate policy without restarting.
//
// Example file:
//
//	[history]
//	file = "~/.local/share/bangline/history"
//	format = "plain"      # or "jsonl"
//	size = 128
//	dups = "ignore"       # keep, ignore or erase
//	ignore_blank = true
//	append_only = false
//	filter_script = ""
//
//	[logging]
//	level = "warn"
package config
