package loader

import (
	"os"
	"strings"
)

// EnvLoader collects settings from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "BANGLINE_")
	mapping map[string]string // Env var -> config path
}

// NewEnvLoader creates an environment loader. The prefix should include the
// trailing underscore. Variables named in mapping go to the mapped path;
// other prefixed variables are converted by name, so PREFIX_HISTORY_APPEND_ONLY
// becomes history.append_only.
func NewEnvLoader(prefix string, mapping map[string]string) *EnvLoader {
	if mapping == nil {
		mapping = make(map[string]string)
	}
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
	}
}

// Load returns the raw value of every recognized variable keyed by config
// path. Empty values are kept; they are set, not unset.
func (l *EnvLoader) Load() map[string]string {
	settings := make(map[string]string)

	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			settings[path] = val
		}
	}

	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		path := l.envToPath(name)
		if _, taken := settings[path]; taken {
			continue
		}
		settings[path] = value
	}

	return settings
}

// envToPath converts PREFIX_HISTORY_APPEND_ONLY to history.append_only.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return name
	}
	return section + "." + key
}
