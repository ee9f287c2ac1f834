// Package surface defines the drawing surfaces the globe and the graph paint
// onto. A Surface hands out fresh Frames; nothing becomes visible until the
// completed Frame is presented, so a failed redraw never shows half a frame.
package surface

import (
	"errors"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"globe-graph/internal/projection"
)

// ErrForeignFrame is returned when a Frame is presented to a Surface that did
// not create it.
var ErrForeignFrame = errors.New("frame does not belong to this surface")

// Paint describes how a path or text is drawn.
type Paint struct {
	Color   colorful.Color
	Opacity float64 // 0..1
	Width   float64 // stroke width in surface units
}

// Solid is a fully opaque paint of c.
func Solid(c colorful.Color, width float64) Paint {
	return Paint{Color: c, Opacity: 1, Width: width}
}

// Frame is one frame under construction. Path operations build the current
// path; Fill and Stroke consume it.
type Frame interface {
	Clear(c colorful.Color)
	MoveTo(p projection.Point)
	LineTo(p projection.Point)
	CubicTo(c1, c2, p projection.Point)
	ClosePath()
	Circle(center projection.Point, r float64)
	Rect(x, y, w, h float64)
	Fill(p Paint)
	Stroke(p Paint)
	Text(s string, at projection.Point, p Paint)
}

// Surface is a double-buffered drawing target.
type Surface interface {
	// Size is the drawable area in surface units.
	Size() (w, h float64)
	NewFrame() Frame
	Present(f Frame) error
}

// PickRadius is how far from a pointer position a hit may lie on s. Surfaces
// that only resolve whole cells report half a cell diagonal; others report 0.
func PickRadius(s Surface) float64 {
	if p, ok := s.(interface{ PickRadius() float64 }); ok {
		return p.PickRadius()
	}
	return 0
}

// Center returns the middle of s.
func Center(s Surface) projection.Point {
	w, h := s.Size()
	return projection.Point{X: w / 2, Y: h / 2}
}

// MustColor parses a hex colour and panics on failure. Only for constants.
func MustColor(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

const (
	cubicSteps  = 16
	circleSteps = 32
)

// polyPath is a path flattened into polylines, used by surfaces without
// native curve support.
type polyPath struct {
	subpaths [][]projection.Point
	closed   []bool
}

func (pp *polyPath) reset() {
	pp.subpaths = pp.subpaths[:0]
	pp.closed = pp.closed[:0]
}

func (pp *polyPath) current() (projection.Point, bool) {
	if len(pp.subpaths) == 0 {
		return projection.Point{}, false
	}
	sp := pp.subpaths[len(pp.subpaths)-1]
	return sp[len(sp)-1], true
}

func (pp *polyPath) moveTo(p projection.Point) {
	pp.subpaths = append(pp.subpaths, []projection.Point{p})
	pp.closed = append(pp.closed, false)
}

func (pp *polyPath) lineTo(p projection.Point) {
	if len(pp.subpaths) == 0 || pp.closed[len(pp.closed)-1] {
		pp.moveTo(p)
		return
	}
	i := len(pp.subpaths) - 1
	pp.subpaths[i] = append(pp.subpaths[i], p)
}

func (pp *polyPath) cubicTo(c1, c2, p projection.Point) {
	p0, ok := pp.current()
	if !ok {
		pp.moveTo(c1)
		p0 = c1
	}
	for i := 1; i <= cubicSteps; i++ {
		pp.lineTo(CubicPoint(p0, c1, c2, p, float64(i)/cubicSteps))
	}
}

func (pp *polyPath) closePath() {
	if len(pp.closed) > 0 {
		pp.closed[len(pp.closed)-1] = true
	}
}

func (pp *polyPath) circle(c projection.Point, r float64) {
	pp.moveTo(projection.Point{X: c.X + r, Y: c.Y})
	for i := 1; i < circleSteps; i++ {
		s, co := math.Sincos(2 * math.Pi * float64(i) / circleSteps)
		pp.lineTo(projection.Point{X: c.X + r*co, Y: c.Y + r*s})
	}
	pp.closePath()
}

func (pp *polyPath) rect(x, y, w, h float64) {
	pp.moveTo(projection.Point{X: x, Y: y})
	pp.lineTo(projection.Point{X: x + w, Y: y})
	pp.lineTo(projection.Point{X: x + w, Y: y + h})
	pp.lineTo(projection.Point{X: x, Y: y + h})
	pp.closePath()
}

// CubicPoint evaluates the cubic Bezier p0,p1,p2,p3 at t.
func CubicPoint(p0, p1, p2, p3 projection.Point, t float64) projection.Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return projection.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
