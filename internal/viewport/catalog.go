// Package viewport holds the named capture profiles screenshots are sized by.
package viewport

import (
	"sort"
	"strings"

	"shutter/internal/config"
)

// Spec describes the capture dimensions for a named viewport.
type Spec struct {
	Name   string
	Width  int
	Height int
	Mobile bool
}

// Catalog maps viewport names to capture dimensions. It is immutable once built.
type Catalog struct {
	specs map[string]Spec
}

// NewCatalog returns the built-in viewports merged with any extras from
// configuration. Built-ins cannot be overridden or removed.
func NewCatalog(extra map[string]config.Viewport) *Catalog {
	specs := map[string]Spec{
		"desktop": {Name: "desktop", Width: 1920, Height: 1080},
		"tablet":  {Name: "tablet", Width: 768, Height: 1024},
		"mobile":  {Name: "mobile", Width: 375, Height: 667, Mobile: true},
	}
	for name, vp := range extra {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, builtin := specs[normalized]; builtin {
			continue
		}
		if vp.Width <= 0 || vp.Height <= 0 {
			continue
		}
		specs[normalized] = Spec{Name: normalized, Width: vp.Width, Height: vp.Height, Mobile: vp.Mobile}
	}
	return &Catalog{specs: specs}
}

// Lookup returns the spec for a viewport name.
func (c *Catalog) Lookup(name string) (Spec, bool) {
	spec, ok := c.specs[strings.ToLower(strings.TrimSpace(name))]
	return spec, ok
}

// Names returns the sorted viewport names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.specs))
	for name := range c.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
