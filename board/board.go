// Package board connects drmgr to a live design configuration.
//
// The host application owns the real configuration object; an Adapter is
// the narrow view drmgr needs of it: take a snapshot as a tree (Eject) and
// apply a tree back (Inject). Inject merges, so sections absent from the
// tree keep their current values.
package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/skekre98/drmgr/tree"
)

// Adapter reads and updates a live design configuration.
type Adapter interface {
	// Eject returns a snapshot of the live configuration. The caller owns
	// the returned tree.
	Eject(ctx context.Context) (tree.Tree, error)

	// Inject merges t into the live configuration.
	Inject(ctx context.Context, t tree.Tree) error
}

// Memory is an Adapter holding the configuration in process.
type Memory struct {
	mu    sync.Mutex
	state tree.Tree
}

// NewMemory returns a Memory adapter seeded with a copy of initial.
func NewMemory(initial tree.Tree) *Memory {
	state := tree.Clone(initial)
	if state == nil {
		state = tree.Tree{}
	}
	return &Memory{state: state}
}

func (m *Memory) Eject(ctx context.Context) (tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return tree.Clone(m.state), nil
}

func (m *Memory) Inject(ctx context.Context, t tree.Tree) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := tree.Clone(m.state)
	if err := inject(next, t); err != nil {
		return err
	}
	m.state = next
	return nil
}

// inject merges src into dst. It refuses to replace a mapping in dst with a
// scalar from src, which would silently drop a whole section.
func inject(dst, src tree.Tree) error {
	return injectAt(dst, src, nil)
}

func injectAt(dst, src tree.Tree, at tree.Path) error {
	for k, v := range src {
		here := append(append(tree.Path(nil), at...), k)
		existing, ok := dst[k]
		dm, dstIsMap := existing.(map[string]any)
		sm, srcIsMap := v.(map[string]any)
		switch {
		case dstIsMap && srcIsMap:
			if err := injectAt(dm, sm, here); err != nil {
				return err
			}
		case ok && dstIsMap:
			return fmt.Errorf("inject %q: cannot replace section with %T: %w", here.String(), v, ErrMalformed)
		default:
			dst[k] = tree.CloneValue(v)
		}
	}
	return nil
}
