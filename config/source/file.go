package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/drmgr/tree"
)

// BaseName is the settings file name looked up in a directory, without
// extension.
const BaseName = "drmgr"

// FileSource loads settings from a YAML file.
//
// Path may name a file or a directory. For a directory, drmgr.yaml (or
// drmgr.yml) inside it is used and, if Profile is set, drmgr.{profile}.yaml
// is deep-merged over it.
//
// Example directory structure:
//
//	~/.config/drmgr/
//	  drmgr.yaml       # base settings
//	  drmgr.ci.yaml    # "ci" profile
type FileSource struct {
	Path    string
	Profile string

	// Optional makes a missing base file yield no settings instead of an
	// error.
	Optional bool
}

// Name returns the identifier for this source.
func (f *FileSource) Name() string { return "file" }

// Load reads the settings file and the profile overlay.
//
// Returns an error wrapping os.ErrNotExist if the base file is not found and
// Optional is false, and a YAML error if a file is malformed.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, dir, err := f.resolve()
	if err != nil {
		return nil, err
	}
	if base == "" {
		if f.Optional {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("settings file in %s: %w", f.Path, os.ErrNotExist)
	}

	data := map[string]any{}
	if err := readYAML(base, data); err != nil {
		return nil, err
	}

	if f.Profile != "" && dir != "" {
		if profileFile := findYAMLFile(dir, BaseName+"."+f.Profile); profileFile != "" {
			overlay := map[string]any{}
			if err := readYAML(profileFile, overlay); err != nil {
				return nil, err
			}
			tree.Merge(data, overlay)
		}
	}

	return data, nil
}

// resolve returns the base file and, when Path is a directory, that
// directory.
func (f *FileSource) resolve() (string, string, error) {
	path := f.Path
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", "", nil
	case err != nil:
		return "", "", err
	case info.IsDir():
		return findYAMLFile(path, BaseName), path, nil
	default:
		return path, "", nil
	}
}

// findYAMLFile looks for a file with either .yaml or .yml extension
func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string, out map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
