// Package document reads and writes design rule documents.
//
// A document is a YAML serialisation of a tree.Tree. Mappings may be nested
// to any depth; keys that YAML decodes as something other than a string
// (integers, booleans) are converted to their string form so that every
// level of the result is a tree.Tree.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/skekre98/drmgr/tree"
)

// Extension is the conventional file extension for design rule documents.
const Extension = ".kidr"

// ErrNotMapping is returned when a document's top level is not a mapping.
var ErrNotMapping = errors.New("document root is not a mapping")

// ParseError wraps a YAML syntax or structure error.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse design rules: %v", e.Err)
	}
	return fmt.Sprintf("parse design rules %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode parses a YAML document from r. An empty document yields an empty
// tree.
func Decode(r io.Reader) (tree.Tree, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return tree.Tree{}, nil
		}
		return nil, &ParseError{Err: err}
	}
	if raw == nil {
		return tree.Tree{}, nil
	}
	t, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, &ParseError{Err: ErrNotMapping}
	}
	return t, nil
}

// Encode writes t to w as block-style YAML.
func Encode(w io.Writer, t tree.Tree) error {
	if t == nil {
		t = tree.Tree{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode design rules: %w", err)
	}
	return enc.Close()
}

// Read loads the document at path.
func Read(path string) (tree.Tree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design rules: %w", err)
	}
	t, err := Decode(bytes.NewReader(b))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return nil, err
	}
	return t, nil
}

// Write stores t at path. The file is replaced atomically: readers see
// either the previous content or the complete new document.
func Write(path string, t tree.Tree) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer pending.Cleanup() //nolint:errcheck // no-op after a successful replace

	if err := Encode(pending, t); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// normalize converts map[any]any levels produced for non-string keys into
// map[string]any and recurses into sequences.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}
