package graph

import (
	"math"

	"globe-graph/internal/projection"
	"globe-graph/internal/surface"
)

// curveSegments is how finely curves are flattened for hit testing, length
// and intersection queries.
const curveSegments = 64

// Curve is a cubic Bezier from A to B. C1 is A plus the head handle offset,
// C2 is B plus the tail handle offset.
type Curve struct {
	A, C1, C2, B projection.Point
}

// At evaluates the curve at t in [0, 1].
func (c Curve) At(t float64) projection.Point {
	return surface.CubicPoint(c.A, c.C1, c.C2, c.B, t)
}

// Flatten samples the curve into curveSegments+1 points.
func (c Curve) Flatten() []projection.Point {
	pts := make([]projection.Point, curveSegments+1)
	for i := range pts {
		pts[i] = c.At(float64(i) / curveSegments)
	}
	return pts
}

// Length is the length of the flattened curve.
func (c Curve) Length() float64 {
	pts := c.Flatten()
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += pts[i].Distance(pts[i-1])
	}
	return l
}

// PointAtLength walks d units along the flattened curve from A.
func (c Curve) PointAtLength(d float64) projection.Point {
	pts := c.Flatten()
	if d <= 0 {
		return pts[0]
	}
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Distance(pts[i-1])
		if seg >= d && seg > 0 {
			return pts[i-1].Lerp(pts[i], d/seg)
		}
		d -= seg
	}
	return pts[len(pts)-1]
}

// Nearest returns the distance from pt to the curve and the curve
// parameter of the closest point.
func (c Curve) Nearest(pt projection.Point) (dist, t float64) {
	pts := c.Flatten()
	dist = math.Inf(1)
	for i := 1; i < len(pts); i++ {
		d, u := segmentDistance(pt, pts[i-1], pts[i])
		if d < dist {
			dist = d
			t = (float64(i-1) + u) / curveSegments
		}
	}
	return dist, t
}

// IsFinite reports whether every control point is finite.
func (c Curve) IsFinite() bool {
	return c.A.IsFinite() && c.C1.IsFinite() && c.C2.IsFinite() && c.B.IsFinite()
}

func segmentDistance(p, a, b projection.Point) (float64, float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Distance(a), 0
	}
	u := p.Sub(a).Dot(ab) / l2
	u = math.Max(0, math.Min(1, u))
	return p.Distance(a.Lerp(b, u)), u
}
