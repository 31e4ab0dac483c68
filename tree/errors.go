package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned for empty paths and paths with empty segments.
	ErrInvalidPath = errors.New("invalid section path")

	// ErrConflict is returned when a copy has to descend through a
	// destination key that holds a non-mapping value.
	ErrConflict = errors.New("destination value is not a mapping")

	// ErrNilDestination is returned when dst is nil.
	ErrNilDestination = errors.New("destination tree is nil")
)

// PathError reports a path that could not be parsed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("section path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// ConflictError reports where in the destination a copy was blocked.
//
// At is the prefix of the requested path whose destination value is a
// scalar or sequence, Value is that value.
type ConflictError struct {
	Path  Path
	At    Path
	Value any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("copy %q: %q holds %T: %v", e.Path.String(), e.At.String(), e.Value, ErrConflict)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
