package source

import (
	"context"
	"os"
	"strings"
)

// EnvPrefix is the default prefix for environment variables.
const EnvPrefix = "DRMGR_"

// EnvSource loads settings from environment variables.
//
// Variables starting with Prefix (EnvPrefix when empty) are lower-cased,
// stripped of the prefix and split on underscores into nested keys:
//
//	DRMGR_LOG_LEVEL=debug
//	  -> {log: {level: "debug"}}
//
//	DRMGR_SERVER_READTIMEOUT=5s
//	  -> {server: {readtimeout: "5s"}}
//
// All values are strings. Type conversion happens during binding.
//
// If a leaf value already exists, nested values cannot be created at that
// path: with DRMGR_DB=value and DRMGR_DB_HOST=localhost only the first one
// seen is kept.
type EnvSource struct {
	Prefix string

	// Environ replaces os.Environ, mostly for tests.
	Environ func() []string
}

// Name returns the identifier for this source.
func (e *EnvSource) Name() string { return "env" }

// Load reads all environment variables with the prefix. It never fails.
func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	environ := e.Environ
	if environ == nil {
		environ = os.Environ
	}
	prefix := e.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}
	return loadEnvVars(environ(), prefix), nil
}

func loadEnvVars(environ []string, prefix string) map[string]any {
	result := make(map[string]any)

	for _, env := range environ {
		key, value, found := parseEnvLine(env)
		if !found {
			continue
		}

		if !strings.HasPrefix(key, prefix) {
			continue
		}

		key = strings.TrimPrefix(key, prefix)
		key = strings.ToLower(key)

		setNestedValue(result, strings.Split(key, "_"), value)
	}

	return result
}

func parseEnvLine(env string) (string, string, bool) {
	key, value, found := strings.Cut(env, "=")
	if !found {
		return "", "", false
	}
	return key, value, true
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		if existing, exists := current[segment]; exists {
			if nested, ok := existing.(map[string]any); ok {
				current = nested
			} else {
				// a leaf already sits here
				return
			}
		} else {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
		}
	}
}
