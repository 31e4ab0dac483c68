package catalog

import (
	"fmt"
	"strings"
)

// Selection records which sections of a catalog are switched on. It starts
// from the catalog defaults and is read once, when the user confirms an
// action.
type Selection struct {
	cat     *Catalog
	enabled map[string]bool
}

// NewSelection returns a selection holding the catalog defaults.
func NewSelection(c *Catalog) *Selection {
	s := &Selection{cat: c, enabled: make(map[string]bool, len(c.sections))}
	for _, sec := range c.sections {
		s.enabled[sec.Name] = sec.Default
	}
	return s
}

// Set switches the named section on or off.
func (s *Selection) Set(name string, on bool) error {
	if _, ok := s.enabled[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	s.enabled[name] = on
	return nil
}

// Only switches on exactly the named sections. On error the selection is
// left unchanged.
func (s *Selection) Only(names ...string) error {
	for _, n := range names {
		if _, ok := s.enabled[n]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSection, n)
		}
	}
	s.None()
	for _, n := range names {
		s.enabled[n] = true
	}
	return nil
}

// All switches every section on.
func (s *Selection) All() {
	for k := range s.enabled {
		s.enabled[k] = true
	}
}

// None switches every section off.
func (s *Selection) None() {
	for k := range s.enabled {
		s.enabled[k] = false
	}
}

// Enabled reports whether the named section is on.
func (s *Selection) Enabled(name string) bool {
	return s.enabled[name]
}

// Names returns the names of the enabled sections in catalog order.
func (s *Selection) Names() []string {
	var out []string
	for _, sec := range s.cat.sections {
		if s.enabled[sec.Name] {
			out = append(out, sec.Name)
		}
	}
	return out
}

// Paths returns the paths of the enabled sections in catalog order.
func (s *Selection) Paths() []string {
	var out []string
	for _, sec := range s.cat.sections {
		if s.enabled[sec.Name] {
			out = append(out, sec.Path)
		}
	}
	return out
}

// ParseNames splits a comma separated list of section names, dropping
// blanks.
func ParseNames(list string) []string {
	var out []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
