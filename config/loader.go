package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/skekre98/drmgr/tree"
)

// Load reads every source in order, merges the results with later sources
// taking precedence and binds them to Settings.
func Load(ctx context.Context, sources ...Source) (Settings, error) {
	var s Settings
	if err := LoadInto(ctx, &s, NewBinder(), sources...); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadInto is Load for an arbitrary target struct.
//
// Returns an error if:
//   - The context is cancelled (returns ctx.Err())
//   - Any source fails to load
//   - The merged data fails to bind or validate
func LoadInto(ctx context.Context, target any, b *Binder, sources ...Source) error {
	merged := map[string]any{}
	for _, src := range sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", src.Name(), err)
		}
		mergeInto(merged, vals)
	}

	if err := b.Bind(merged, target); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}
	return nil
}

// mergeInto merges src into dst with keys folded to lower case, so that
// "readTimeout" from a file and "readtimeout" from the environment land on
// the same key. Binding matches field tags case-insensitively.
func mergeInto(dst, src map[string]any) {
	tree.Merge(dst, foldKeys(src))
}

func foldKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = foldKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
