package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"globe-graph/internal/projection"
	"globe-graph/internal/surface"
)

// Shape is the outline of a node marker.
type Shape int

const (
	Circle Shape = iota
	Rectangle
	Square
)

const (
	circleRadius      = 15.0
	markerStrokeWidth = 2.5
	rectangleW        = 30.0
	rectangleH        = 25.0
	squareSide        = 30.0
)

// ParseShape maps circle, rectangle or square onto a Shape.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "circle":
		return Circle, nil
	case "rectangle":
		return Rectangle, nil
	case "square":
		return Square, nil
	}
	return Circle, fmt.Errorf("unknown node shape %q (want circle, rectangle or square)", s)
}

func (s Shape) String() string {
	switch s {
	case Rectangle:
		return "rectangle"
	case Square:
		return "square"
	default:
		return "circle"
	}
}

// Next cycles circle, rectangle, square.
func (s Shape) Next() Shape {
	return (s + 1) % 3
}

// Marker is the visual stand-in of a node. Stroke outlines it with the
// node's stroke colour when the node has one.
type Marker struct {
	Shape  Shape
	Stroke bool
}

func (m Marker) halfSize() (float64, float64) {
	switch m.Shape {
	case Rectangle:
		return rectangleW / 2, rectangleH / 2
	case Square:
		return squareSide / 2, squareSide / 2
	default:
		return circleRadius, circleRadius
	}
}

// Contains reports whether pt lies inside the marker centred on c.
func (m Marker) Contains(c, pt projection.Point) bool {
	d := pt.Sub(c)
	if m.Shape == Circle {
		return d.Length() <= circleRadius
	}
	hw, hh := m.halfSize()
	return math.Abs(d.X) <= hw && math.Abs(d.Y) <= hh
}

// Intersects reports whether the segment a-b touches the marker centred on c.
func (m Marker) Intersects(c, a, b projection.Point) bool {
	if m.Shape == Circle {
		d, _ := segmentDistance(c, a, b)
		return d <= circleRadius
	}
	hw, hh := m.halfSize()
	return clipSegment(a.Sub(c), b.Sub(c), hw, hh)
}

// clipSegment is a Liang-Barsky test of a-b against the box
// [-hw, hw] x [-hh, hh].
func clipSegment(a, b projection.Point, hw, hh float64) bool {
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, a.X + hw},
		{d.X, hw - a.X},
		{-d.Y, a.Y + hh},
		{d.Y, hh - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return false
		}
	}
	return true
}

func (m Marker) trace(f surface.Frame, c projection.Point) {
	if m.Shape == Circle {
		f.Circle(c, circleRadius)
		return
	}
	hw, hh := m.halfSize()
	f.Rect(c.X-hw, c.Y-hh, 2*hw, 2*hh)
}

// Node is a named point on the globe. Screen and Visible are recomputed on
// every redraw and mean nothing between redraws.
type Node struct {
	ID       string
	Position projection.GeoPoint

	Colour       *colorful.Color
	FontColour   *colorful.Color
	StrokeColour *colorful.Color
	Opacity      float64

	Screen  projection.Point
	Visible bool
}

func (n *Node) layout(p Projector) {
	pt, ok := p.Project(n.Position)
	if !ok || !pt.IsFinite() {
		n.Screen, n.Visible = projection.Point{}, false
		return
	}
	n.Screen, n.Visible = pt, true
}

func (n *Node) draw(f surface.Frame, m Marker, style Style) {
	if !n.Visible {
		return
	}
	fill := style.NodeColour
	if n.Colour != nil {
		fill = *n.Colour
	}
	m.trace(f, n.Screen)
	f.Fill(surface.Paint{Color: fill, Opacity: n.Opacity})

	if m.Stroke && n.StrokeColour != nil {
		m.trace(f, n.Screen)
		f.Stroke(surface.Paint{Color: *n.StrokeColour, Opacity: n.Opacity, Width: markerStrokeWidth})
	}
}

func (n *Node) drawLabel(f surface.Frame, style Style) {
	if !n.Visible {
		return
	}
	font := style.FontColour
	if n.FontColour != nil {
		font = *n.FontColour
	}
	f.Text(n.ID, n.Screen, surface.Paint{Color: font, Opacity: n.Opacity})
}

// remove drops the node's derived screen state.
func (n *Node) remove() {
	n.Screen, n.Visible = projection.Point{}, false
}
