// Package catalog describes which sections of a design rule tree a user can
// choose to export or import.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/drmgr/config"
	"github.com/skekre98/drmgr/tree"
)

// ErrUnknownSection is returned when a selection names a section that is not
// in the catalog.
var ErrUnknownSection = errors.New("unknown section")

// Section describes one selectable part of a design rule tree.
type Section struct {
	// Name is the short identifier used on the command line.
	Name string `config:"name" validate:"required,excludesall=0x2C"`
	// Label is the human readable title.
	Label string `config:"label" validate:"required"`
	// Path addresses the section's subtree, segments joined by the
	// configured separator.
	Path string `config:"path" validate:"required"`
	// Default reports whether the section is selected unless the user says
	// otherwise.
	Default bool `config:"default"`
	// Help is a one-line description.
	Help string `config:"help"`
}

// Catalog is an ordered, immutable list of sections.
type Catalog struct {
	sections []Section
}

type file struct {
	Sections []Section `config:"sections" validate:"required,min=1,unique=Name,dive"`
}

var builtin = []Section{
	{Name: "layers", Label: "Layers", Path: "board|board setup|layers", Default: true,
		Help: "PCB layers and thickness."},
	{Name: "design-rules", Label: "Design Rules", Path: "board|board setup|design rules", Default: true,
		Help: "Minimum track/via/uvia dimensions."},
	{Name: "tracks-vias", Label: "Tracks & Vias", Path: "board|board setup|tracks, vias, diff pairs", Default: true,
		Help: "Pre-defined track widths and via sizes."},
	{Name: "solder-mask-paste", Label: "Solder Mask/Paste", Path: "board|board setup|solder mask/paste", Default: true,
		Help: "Solder mask and paste minimum dimensions."},
	{Name: "netclass-definitions", Label: "Net Class Definitions", Path: "board|board setup|net classes|definitions", Default: true,
		Help: "Net class clearance/track/via/uvia dimensions."},
	{Name: "netclass-assignments", Label: "Net Class Assignments", Path: "board|board setup|net classes|assignments", Default: false,
		Help: "Net assignments to net classes."},
	{Name: "plot", Label: "Plot Settings", Path: "board|plot", Default: true,
		Help: "Options for plot output file."},
	{Name: "drill", Label: "Drill Settings", Path: "board|plot|drill", Default: false,
		Help: "Options for drill output file."},
}

// Default returns the built-in catalog. Its paths use '|' as separator.
func Default() *Catalog {
	return New(builtin)
}

// New returns a catalog holding a copy of sections.
func New(sections []Section) *Catalog {
	return &Catalog{sections: append([]Section(nil), sections...)}
}

// Sections returns the sections in catalog order.
func (c *Catalog) Sections() []Section {
	return append([]Section(nil), c.sections...)
}

// Lookup returns the section called name.
func (c *Catalog) Lookup(name string) (Section, bool) {
	for _, s := range c.sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Load reads a catalog from a YAML file of the form
//
//	sections:
//	  - name: layers
//	    label: Layers
//	    path: board|board setup|layers
//	    default: true
//	    help: PCB layers and thickness.
//
// Every section path must split cleanly with sep.
func Load(path string, sep rune) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return decode(raw, sep)
}

func decode(raw map[string]any, sep rune) (*Catalog, error) {
	var f file
	if err := config.NewStrictBinder().Bind(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	for _, s := range f.Sections {
		if _, err := tree.SplitPath(s.Path, sep); err != nil {
			return nil, fmt.Errorf("catalog section %q: %w", s.Name, err)
		}
	}
	return New(f.Sections), nil
}
