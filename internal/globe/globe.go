// Package globe draws the planet layer: the ocean disc and the landmass
// rings, re-projected on every redraw.
package globe

import (
	"github.com/lucasb-eyer/go-colorful"

	"globe-graph/internal/debug"
	"globe-graph/internal/projection"
	"globe-graph/internal/surface"
)

// Feature is one closed landmass ring. Rings are immutable once loaded.
type Feature struct {
	Name string
	Ring []projection.GeoPoint
}

// Style holds the colours the globe is painted with.
type Style struct {
	Ocean   colorful.Color
	Land    colorful.Color
	Outline colorful.Color
}

// DefaultStyle is a dark ocean with muted land.
func DefaultStyle() Style {
	return Style{
		Ocean:   surface.MustColor("#0B1722"),
		Land:    surface.MustColor("#2E5E3A"),
		Outline: surface.MustColor("#3C5A73"),
	}
}

// Globe owns the landmass features. It never owns the rotation or the
// scale; both are derived from the viewport on every redraw.
type Globe struct {
	Style Style

	features []Feature
	onChange func()
}

// New creates an empty globe. onChange, if not nil, is called after SetData
// so the owner can redraw.
func New(onChange func()) *Globe {
	return &Globe{
		Style:    DefaultStyle(),
		onChange: onChange,
	}
}

// SetData replaces the feature list and notifies the owner.
func (g *Globe) SetData(features []Feature) {
	g.features = append([]Feature(nil), features...)
	debug.Log("globe: %d features loaded", len(features))
	if g.onChange != nil {
		g.onChange()
	}
}

// HasData reports whether any features are loaded.
func (g *Globe) HasData() bool {
	return len(g.features) > 0
}

// Features returns the loaded features.
func (g *Globe) Features() []Feature {
	return g.features
}

// Redraw paints the globe through view onto f. The view is the one the
// graph is laid out with, so both layers share rotation and scale. It does
// nothing and returns false when no data is loaded.
func (g *Globe) Redraw(f surface.Frame, view projection.View) bool {
	if !g.HasData() {
		return false
	}
	g.draw(f, view)
	return true
}

func (g *Globe) draw(f surface.Frame, view projection.View) {
	f.Circle(view.Center, view.Scale)
	f.Fill(surface.Solid(g.Style.Ocean, 0))

	for _, feat := range g.features {
		if g.tracePath(f, feat.Ring, view) {
			f.Fill(surface.Solid(g.Style.Land, 0))
		}
	}

	f.Circle(view.Center, view.Scale)
	f.Stroke(surface.Solid(g.Style.Outline, 1.5))
}

// tracePath emits one subpath per run of visible vertices. Far side vertices
// break the path rather than being connected across the limb.
func (g *Globe) tracePath(f surface.Frame, ring []projection.GeoPoint, view projection.View) bool {
	drawn := false
	penDown := false
	for _, p := range ring {
		pt, ok := view.Project(p)
		if !ok {
			if penDown {
				f.ClosePath()
			}
			penDown = false
			continue
		}
		if penDown {
			f.LineTo(pt)
		} else {
			f.MoveTo(pt)
			penDown = true
			drawn = true
		}
	}
	if penDown {
		f.ClosePath()
	}
	return drawn
}
