// Package config loads drmgr's own settings from layered sources.
//
// Sources are read in order and deep-merged, later sources overriding
// earlier ones, then bound to Settings with a Binder:
//
//	settings, err := config.Load(ctx,
//	    config.Defaults(),
//	    &source.FileSource{Path: "."},
//	    &source.EnvSource{},
//	    &source.CLISource{Args: sets},
//	)
package config

import (
	"context"
)

// Source is a provider of untyped configuration data.
type Source interface {
	// Load returns configuration as a string-keyed map whose values may be
	// nested maps. The returned map must not be shared with the source.
	Load(ctx context.Context) (map[string]any, error)

	// Name identifies the source in error messages.
	Name() string
}

// MapSource is a Source backed by a fixed map.
type MapSource struct {
	Label string
	Data  map[string]any
}

// Name returns the label given to the source.
func (m *MapSource) Name() string { return m.Label }

// Load returns a copy of the data.
func (m *MapSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string]any{}
	mergeInto(out, m.Data)
	return out, nil
}
