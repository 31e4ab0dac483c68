package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// SetFlag is the name of the repeatable command-line flag read by
// CLISource.
const SetFlag = "set"

// CLISource loads settings from key=value assignments, usually collected
// from repeated --set flags. Dots in the key indicate nesting:
//
//	--set log.level=debug --set server.addr=:9090
//	  -> {log: {level: "debug"}, server: {addr: ":9090"}}
//
// Empty values are ignored. All values are strings; type conversion happens
// during binding. CLISource should be the last source so that assignments
// override everything else.
type CLISource struct {
	Args []string
}

// BindFlags registers the --set flag on fs and returns the source it fills.
func BindFlags(fs *pflag.FlagSet) *CLISource {
	c := &CLISource{}
	fs.StringArrayVar(&c.Args, SetFlag, nil, "override a setting, e.g. --set log.level=debug (repeatable)")
	return c
}

// Name returns the identifier for this source.
func (c *CLISource) Name() string { return "cli" }

// Load parses the assignments. A malformed assignment is an error.
func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)
	for _, arg := range c.Args {
		key, value, ok := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: want key=value", SetFlag, arg)
		}
		if value == "" {
			continue
		}
		setNestedValue(result, strings.Split(key, "."), value)
	}
	return result, nil
}
