package filter

import (
	"github.com/matzehuels/imgfilter/pkg/grid"
)

// Filter is a single transformation over a pixel grid.
type Filter interface {
	// Name returns the short, stable name of the filter (e.g. "blur").
	Name() string

	// Apply transforms g in place. The filter must not retain g.
	Apply(g *grid.Grid) error
}

// Deterministic reports whether applying f twice to the same image yields the
// same result. Filters are deterministic unless they say otherwise through a
// Deterministic() bool method.
func Deterministic(f Filter) bool {
	if d, ok := f.(interface{ Deterministic() bool }); ok {
		return d.Deterministic()
	}
	return true
}
