package board

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/skekre98/drmgr/document"
	"github.com/skekre98/drmgr/tree"
)

// ErrMalformed is returned when a tree cannot be applied to the
// configuration.
var ErrMalformed = errors.New("malformed design rules")

// File is an Adapter over a board settings file in the document format.
// Inject rewrites the file atomically with the merged result.
type File struct {
	Path string

	mu sync.Mutex
}

// NewFile returns an adapter for the settings file at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Eject reads the settings file. A missing file is an error.
func (f *File) Eject(ctx context.Context) (tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := document.Read(f.Path)
	if err != nil {
		return nil, fmt.Errorf("eject board: %w", err)
	}
	return t, nil
}

// Inject merges t into the settings file. A missing file is created.
func (f *File) Inject(ctx context.Context, t tree.Tree) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := document.Read(f.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		current = tree.Tree{}
	case err != nil:
		return fmt.Errorf("inject board: %w", err)
	}

	if err := inject(current, t); err != nil {
		return err
	}
	if err := document.Write(f.Path, current); err != nil {
		return fmt.Errorf("inject board: %w", err)
	}
	return nil
}
