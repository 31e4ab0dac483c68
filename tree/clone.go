package tree

import "reflect"

// Clone returns a deep copy of t. Nested trees and sequences are copied,
// scalars are shared.
func Clone(t Tree) Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies trees and sequences inside v.
func CloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return Clone(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Merge writes src into dst recursively. Nested mappings present on both
// sides are merged; every other value in src replaces the one in dst.
func Merge(dst, src Tree) {
	for k, v := range src {
		if sv, ok := asTree(v); ok {
			if dv, ok := asTree(dst[k]); ok {
				Merge(dv, sv)
				continue
			}
		}
		dst[k] = CloneValue(v)
	}
}

// Equal reports whether a and b hold the same keys and values.
func Equal(a, b Tree) bool {
	return reflect.DeepEqual(a, b)
}
