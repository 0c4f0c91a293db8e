package config

import (
	"errors"
	"sort"

	"github.com/dshills/bangline/internal/config/loader"
)

// EnvPrefix prefixes every environment variable bangline reads.
const EnvPrefix = "BANGLINE_"

// envMapping names variables whose path differs from the generic
// BANGLINE_SECTION_KEY form.
func envMapping() map[string]string {
	return map[string]string{
		"BANGLINE_HISTFILE":  "history.file",
		"BANGLINE_HISTSIZE":  "history.size",
		"BANGLINE_LOG_LEVEL": "logging.level",
	}
}

// NewEnvLoader returns the loader for BANGLINE_ variables.
func NewEnvLoader() *loader.EnvLoader {
	return loader.NewEnvLoader(EnvPrefix, envMapping())
}

// Source records where a loaded Config came from.
type Source struct {
	// File is the config file path, empty when none was given.
	File string
	// FileFound is set when the file existed and was read.
	FileFound bool
	// Env lists the settings taken from the environment.
	Env []string
}

// Load builds a Config from Default, the file at path and env. An empty
// path or a missing file leaves the defaults in place. A nil env skips the
// environment. The result is validated.
func Load(path string, env *loader.EnvLoader) (*Config, Source, error) {
	cfg := Default()
	src := Source{File: path}

	if path != "" {
		found, err := loader.DecodeFile(path, cfg)
		if err != nil {
			return nil, src, err
		}
		src.FileFound = found
	}

	if env != nil {
		settings := env.Load()
		paths := make([]string, 0, len(settings))
		for p := range settings {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		for _, p := range paths {
			err := cfg.Set(p, settings[p])
			if errors.Is(err, ErrUnknownSetting) {
				continue
			}
			if err != nil {
				return nil, src, err
			}
			src.Env = append(src.Env, p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, src, err
	}
	return cfg, src, nil
}
