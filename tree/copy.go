package tree

// CopySubtree copies the subtree of src addressed by path into dst.
//
// The copy is best effort per path: when any segment of path is missing from
// src, dst is left untouched and nil is returned. Intermediate levels are
// created in dst as needed. At the final segment, if both the existing
// destination value and the source value are mappings, the source keys are
// written into the existing mapping one level deep; otherwise the key is
// replaced. src is never mutated and shares no maps or slices with dst
// afterwards.
//
// A *ConflictError is returned, and dst left untouched, when an intermediate
// destination key holds something other than a mapping. A nil dst yields
// ErrNilDestination.
func CopySubtree(src, dst Tree, path string, sep rune) error {
	p, err := SplitPath(path, sep)
	if err != nil {
		return err
	}
	return CopyPath(src, dst, p)
}

// CopyPath is CopySubtree for an already split path.
func CopyPath(src, dst Tree, p Path) error {
	if len(p) == 0 {
		return &PathError{Err: ErrInvalidPath}
	}
	if dst == nil {
		return ErrNilDestination
	}

	leaf, ok := Lookup(src, p)
	if !ok {
		return nil
	}

	if err := checkParents(dst, p); err != nil {
		return err
	}

	cur := dst
	for _, key := range p[:len(p)-1] {
		next, ok := asTree(cur[key])
		if !ok {
			next = Tree{}
			cur[key] = next
		}
		cur = next
	}

	last := p[len(p)-1]
	srcMap, srcIsMap := asTree(leaf)
	dstMap, dstIsMap := asTree(cur[last])
	if srcIsMap && dstIsMap {
		for k, v := range srcMap {
			dstMap[k] = CloneValue(v)
		}
		return nil
	}
	cur[last] = CloneValue(leaf)
	return nil
}

// checkParents walks dst along every segment but the last and fails on the
// first one that exists without being a mapping.
func checkParents(dst Tree, p Path) error {
	cur := dst
	for i, key := range p[:len(p)-1] {
		v, ok := cur[key]
		if !ok {
			return nil
		}
		next, ok := asTree(v)
		if !ok {
			return &ConflictError{Path: p, At: p[:i+1], Value: v}
		}
		cur = next
	}
	return nil
}

// Filter returns a new tree holding only the subtrees of src addressed by
// paths. Paths missing from src are skipped. The first invalid path or
// conflict aborts the filter.
func Filter(src Tree, paths []string, sep rune) (Tree, error) {
	dst := Tree{}
	for _, path := range paths {
		if err := CopySubtree(src, dst, path, sep); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// Missing returns the paths from paths that do not exist in src.
func Missing(src Tree, paths []string, sep rune) []string {
	var out []string
	for _, path := range paths {
		p, err := SplitPath(path, sep)
		if err != nil || !Exists(src, p) {
			out = append(out, path)
		}
	}
	return out
}
