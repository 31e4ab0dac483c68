// Package tree implements selective copying of subtrees between nested
// configuration maps.
//
// A Tree is the untyped form produced by decoding a YAML document: string keys
// mapping to scalars, sequences ([]any) or further Trees. Subtrees are
// addressed by a Path, a sequence of exact keys usually written as a single
// string joined by a separator rune:
//
//	board|board setup|layers
//
// The central operation is CopySubtree, which copies the subtree addressed by
// a path from a source tree into a destination tree, creating the
// intermediate levels it needs. Filter applies CopySubtree for a list of paths
// into a fresh tree and is what both the import and export flows use.
package tree

import (
	"strings"
)

// DefaultSeparator joins path segments when no other separator is configured.
const DefaultSeparator = '|'

// Tree is a nested configuration mapping.
type Tree = map[string]any

// Path identifies one subtree within a Tree.
type Path []string

// String joins the path with DefaultSeparator.
func (p Path) String() string {
	return JoinPath(p, DefaultSeparator)
}

// SplitPath splits s on sep. It returns ErrInvalidPath if s is empty or
// contains an empty segment.
func SplitPath(s string, sep rune) (Path, error) {
	if s == "" {
		return nil, &PathError{Path: s, Err: ErrInvalidPath}
	}
	segments := strings.Split(s, string(sep))
	for _, seg := range segments {
		if seg == "" {
			return nil, &PathError{Path: s, Err: ErrInvalidPath}
		}
	}
	return Path(segments), nil
}

// JoinPath is the inverse of SplitPath.
func JoinPath(p Path, sep rune) string {
	return strings.Join(p, string(sep))
}

// Lookup returns the value stored at p. The second result is false when any
// segment is missing or an intermediate value is not a mapping.
func Lookup(t Tree, p Path) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	var cur any = t
	for _, key := range p {
		m, ok := asTree(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Exists reports whether every segment of p is present in t.
func Exists(t Tree, p Path) bool {
	_, ok := Lookup(t, p)
	return ok
}

func asTree(v any) (Tree, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
