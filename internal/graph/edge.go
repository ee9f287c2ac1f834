package graph

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"globe-graph/internal/debug"
	"globe-graph/internal/projection"
	"globe-graph/internal/surface"
)

const (
	edgeWidthPerWeight = 1.75

	arrowLength = 30.0
	arrowAngle  = 30.0 // degrees either side of the shaft

	curveHitTolerance  = 5.0
	handleHitTolerance = 8.0

	repulsionLength   = 40.0
	beautifyMaxRounds = 25
	degenerateVector  = 1e-9
)

// Handle names one of the two editable ends of an edge.
type Handle int

const (
	NoHandle Handle = iota
	HeadHandle
	TailHandle
)

func (h Handle) String() string {
	switch h {
	case HeadHandle:
		return "head"
	case TailHandle:
		return "tail"
	default:
		return "none"
	}
}

// Arrow is the two-segment wedge drawn at the tail of a directed edge.
type Arrow struct {
	Visible          bool
	Left, Tip, Right projection.Point
}

// Edge connects two nodes of the same graph. Handles are stored as
// geographic points so a bent edge keeps its shape while the globe turns.
type Edge struct {
	Head, Tail *Node
	Directed   bool
	Weight     float64
	Colour     *colorful.Color
	Opacity    float64

	HeadHandle *projection.GeoPoint
	TailHandle *projection.GeoPoint

	// Derived on every layout.
	Visible bool
	Curve   Curve
	Arrow   Arrow
}

// DefaultOpacity is the opacity an edge of weight w gets when the payload
// sets none.
func DefaultOpacity(w float64) float64 {
	return math.Min(1, (w+3)/10)
}

func (e *Edge) handleOffset(p Projector, h *projection.GeoPoint, anchor projection.Point) projection.Point {
	if h == nil {
		return projection.Point{}
	}
	pt, ok := p.Project(*h)
	if !ok || !pt.IsFinite() {
		// handle turned to the far side; draw that end straight
		return projection.Point{}
	}
	return pt.Sub(anchor)
}

// layout recomputes the screen curve from the endpoints and the stored
// handles. Endpoints must already be laid out.
func (e *Edge) layout(p Projector, tail Marker) {
	if !e.Head.Visible || !e.Tail.Visible {
		e.Visible = false
		e.Arrow.Visible = false
		return
	}
	a, b := e.Head.Screen, e.Tail.Screen
	e.Curve = Curve{
		A:  a,
		C1: a.Add(e.handleOffset(p, e.HeadHandle, a)),
		C2: b.Add(e.handleOffset(p, e.TailHandle, b)),
		B:  b,
	}
	e.Visible = true
	e.updateArrow(tail)
}

// MoveHandle shifts one handle by delta screen units and stores the result
// back in geographic form. It reports false when the edge is not on screen
// or the move is degenerate.
func (e *Edge) MoveHandle(which Handle, delta projection.Point, p Projector, tail Marker) bool {
	if !e.Visible || !delta.IsFinite() {
		return false
	}

	var anchor, current projection.Point
	var stored **projection.GeoPoint
	switch which {
	case HeadHandle:
		anchor, current, stored = e.Curve.A, e.Curve.C1, &e.HeadHandle
	case TailHandle:
		anchor, current, stored = e.Curve.B, e.Curve.C2, &e.TailHandle
	default:
		return false
	}

	geo := p.Unproject(current.Add(delta))
	if !isFinite(geo.Latitude) || !isFinite(geo.Longitude) {
		debug.Log("graph: %s-%s: %s handle move produced a non-finite point", e.Head.ID, e.Tail.ID, which)
		return false
	}
	*stored = &geo

	offset := e.handleOffset(p, &geo, anchor)
	if which == HeadHandle {
		e.Curve.C1 = anchor.Add(offset)
	} else {
		e.Curve.C2 = anchor.Add(offset)
	}
	e.updateArrow(tail)
	return true
}

// updateArrow places the arrowhead where the curve enters the tail marker.
// It stays hidden unless the curve crosses the marker boundary exactly once
// and is long enough to fit the wedge.
func (e *Edge) updateArrow(tail Marker) {
	e.Arrow.Visible = false
	if !e.Directed || !e.Visible || !e.Curve.IsFinite() {
		return
	}

	center := e.Tail.Screen
	pts := e.Curve.Flatten()
	crossings, at := 0, -1
	inside := tail.Contains(center, pts[0])
	for i := 1; i < len(pts); i++ {
		in := tail.Contains(center, pts[i])
		if in != inside {
			crossings++
			at = i
		}
		inside = in
	}
	if crossings != 1 {
		return
	}

	length := e.Curve.Length()
	if length < arrowLength {
		return
	}

	lo, hi := float64(at-1)/curveSegments, float64(at)/curveSegments
	loInside := tail.Contains(center, e.Curve.At(lo))
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if tail.Contains(center, e.Curve.At(mid)) == loInside {
			lo = mid
		} else {
			hi = mid
		}
	}
	tip := e.Curve.At((lo + hi) / 2)
	base := e.Curve.PointAtLength(length - arrowLength)

	arrow := Arrow{
		Visible: true,
		Left:    base.Rotate(-arrowAngle, tip),
		Tip:     tip,
		Right:   base.Rotate(arrowAngle, tip),
	}
	if !arrow.Left.IsFinite() || !arrow.Tip.IsFinite() || !arrow.Right.IsFinite() {
		return
	}
	e.Arrow = arrow
}

// HitCurve reports whether pt lies within tol of the rendered curve and
// where.
func (e *Edge) HitCurve(pt projection.Point, tol float64) (bool, float64) {
	if !e.Visible {
		return false, 0
	}
	d, t := e.Curve.Nearest(pt)
	return d <= tol, t
}

// HitHandle returns the handle whose control point or anchor lies within
// tol of pt.
func (e *Edge) HitHandle(pt projection.Point, tol float64) Handle {
	if !e.Visible {
		return NoHandle
	}
	best, bestDist := NoHandle, tol
	for _, c := range []struct {
		h  Handle
		pt projection.Point
	}{
		{HeadHandle, e.Curve.C1},
		{TailHandle, e.Curve.C2},
		{HeadHandle, e.Curve.A},
		{TailHandle, e.Curve.B},
	} {
		if d := pt.Distance(c.pt); d <= bestDist {
			best, bestDist = c.h, d
		}
	}
	return best
}

// IntersectsMarker reports whether the curve touches the marker of n.
func (e *Edge) IntersectsMarker(n *Node, m Marker) bool {
	if !e.Visible || !n.Visible {
		return false
	}
	pts := e.Curve.Flatten()
	for i := 1; i < len(pts); i++ {
		if m.Intersects(n.Screen, pts[i-1], pts[i]) {
			return true
		}
	}
	return false
}

// repulsion is the push away from obstruction c: from c toward the point of
// the chord weighted by how far c is from each end.
func repulsion(a, b, c projection.Point) (projection.Point, bool) {
	ac, bc := a.Distance(c), b.Distance(c)
	if ac+bc == 0 {
		return projection.Point{}, false
	}
	v := a.Sub(c).Add(b.Sub(a).Scale(ac / (ac + bc)))
	if v.Length() < degenerateVector {
		// obstruction sits on the chord: push along the normal
		chord := b.Sub(a)
		if chord.Length() < degenerateVector {
			return projection.Point{}, false
		}
		v = projection.Point{X: chord.Y, Y: -chord.X}
	}
	v = v.WithLength(repulsionLength)
	return v, v.IsFinite()
}

// beautify bends the edge away from every unrelated node its curve runs
// through. It is best effort: an obstruction that does not clear within
// beautifyMaxRounds, or stops moving away, is left as it is.
func (e *Edge) beautify(nodes []*Node, m Marker, p Projector) {
	for _, n := range nodes {
		if n == e.Head || n == e.Tail || !e.IntersectsMarker(n, m) {
			continue
		}
		v, ok := repulsion(e.Curve.A, e.Curve.B, n.Screen)
		if !ok {
			debug.Log("graph: beautify %s-%s: degenerate geometry around %s, skipped", e.Head.ID, e.Tail.ID, n.ID)
			continue
		}

		prev, _ := e.Curve.Nearest(n.Screen)
		for round := 1; ; round++ {
			e.MoveHandle(HeadHandle, v, p, m)
			e.MoveHandle(TailHandle, v, p, m)
			if !e.IntersectsMarker(n, m) {
				break
			}
			d, _ := e.Curve.Nearest(n.Screen)
			if round >= beautifyMaxRounds || d <= prev {
				debug.Log("graph: beautify %s-%s: could not clear %s after %d rounds", e.Head.ID, e.Tail.ID, n.ID, round)
				break
			}
			prev = d
		}
	}
}

func (e *Edge) paint(style Style) surface.Paint {
	c := style.EdgeColour
	if e.Colour != nil {
		c = *e.Colour
	}
	return surface.Paint{Color: c, Opacity: e.Opacity, Width: e.Weight * edgeWidthPerWeight}
}

func (e *Edge) draw(f surface.Frame, style Style) {
	if !e.Visible {
		return
	}
	if !e.Curve.IsFinite() {
		debug.Log("graph: %s-%s: non-finite curve, not drawn", e.Head.ID, e.Tail.ID)
		return
	}
	paint := e.paint(style)
	f.MoveTo(e.Curve.A)
	f.CubicTo(e.Curve.C1, e.Curve.C2, e.Curve.B)
	f.Stroke(paint)

	if e.Arrow.Visible {
		f.MoveTo(e.Arrow.Left)
		f.LineTo(e.Arrow.Tip)
		f.LineTo(e.Arrow.Right)
		f.Stroke(paint)
	}
}

// drawSelection shows the handles of the edge being edited.
func (e *Edge) drawSelection(f surface.Frame, style Style, active Handle) {
	if !e.Visible || !e.Curve.IsFinite() {
		return
	}
	line := surface.Solid(style.Highlight, 1)
	for _, h := range []struct {
		which          Handle
		anchor, handle projection.Point
	}{
		{HeadHandle, e.Curve.A, e.Curve.C1},
		{TailHandle, e.Curve.B, e.Curve.C2},
	} {
		f.MoveTo(h.anchor)
		f.LineTo(h.handle)
		f.Stroke(line)
		f.Circle(h.handle, 4)
		if h.which == active {
			f.Fill(line)
		} else {
			f.Stroke(line)
		}
	}
}

// remove drops the edge's derived screen state.
func (e *Edge) remove() {
	e.Visible = false
	e.Curve = Curve{}
	e.Arrow = Arrow{}
}
