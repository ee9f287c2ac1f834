// Package projection maps geographic coordinates onto a drawing surface with a
// rotating orthographic projection, and back.
package projection

import (
	"fmt"
	"math"
)

const radians = math.Pi / 180

// limbRadius is where Unproject pins points that fall outside the globe disc.
const limbRadius = 1 - 1e-6

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate rejects non-finite values and latitudes outside [-90, 90].
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return fmt.Errorf("coordinate is not finite: %v,%v", p.Latitude, p.Longitude)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}
	return nil
}

// Normalized returns p with its longitude wrapped into [-180, 180].
func (p GeoPoint) Normalized() GeoPoint {
	p.Longitude = WrapLongitude(p.Longitude)
	return p
}

// WrapLongitude wraps lon into [-180, 180].
func WrapLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// Rotation is the point of tangency: the centre of the visible hemisphere.
type Rotation struct {
	Lambda0 float64 // longitude, degrees
	Phi0    float64 // latitude, degrees
}

// Point is a position on a drawing surface. Y grows downwards.
type Point struct {
	X float64
	Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Distance(q Point) float64 { return p.Sub(q).Length() }
func (p Point) IsFinite() bool { return isFinite(p.X) && isFinite(p.Y) }
func (p Point) String() string { return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y) }
func (p Point) Lerp(q Point, t float64) Point { return p.Add(q.Sub(p).Scale(t)) }

// WithLength returns p scaled to length n. A zero vector stays zero.
func (p Point) WithLength(n float64) Point {
	l := p.Length()
	if l == 0 {
		return p
	}
	return p.Scale(n / l)
}

// Rotate returns p rotated by deg degrees around pivot.
func (p Point) Rotate(deg float64, pivot Point) Point {
	s, c := math.Sincos(deg * radians)
	d := p.Sub(pivot)
	return Point{pivot.X + d.X*c - d.Y*s, pivot.Y + d.X*s + d.Y*c}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// visibility returns the cosine of the angular distance between the
// rotation centre and p; negative values lie on the far hemisphere.
func visibility(p GeoPoint, r Rotation) float64 {
	phi, lam := p.Latitude*radians, p.Longitude*radians
	phi0, lam0 := r.Phi0*radians, r.Lambda0*radians
	return math.Sin(phi0)*math.Sin(phi) + math.Cos(phi0)*math.Cos(phi)*math.Cos(lam-lam0)
}

// Project maps p onto the surface. The boolean is false when p lies on the
// far side of the globe. Points exactly on the limb (c == 0) are visible.
func Project(p GeoPoint, r Rotation, scale float64, center Point) (Point, bool) {
	if visibility(p, r) < 0 {
		return Point{}, false
	}

	phi, lam := p.Latitude*radians, p.Longitude*radians
	phi0, lam0 := r.Phi0*radians, r.Lambda0*radians

	x := math.Cos(phi) * math.Sin(lam-lam0)
	y := math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(lam-lam0)

	return Point{
		X: center.X + x*scale,
		Y: center.Y - y*scale,
	}, true
}

// Unproject is the inverse of Project. Surface points outside the globe disc
// are pulled onto the limb so the result always lies on the visible side.
func Unproject(pt Point, r Rotation, scale float64, center Point) GeoPoint {
	if scale <= 0 {
		return GeoPoint{Latitude: r.Phi0, Longitude: WrapLongitude(r.Lambda0)}
	}
	x := (pt.X - center.X) / scale
	y := -(pt.Y - center.Y) / scale

	rho := math.Hypot(x, y)
	if rho == 0 {
		return GeoPoint{Latitude: r.Phi0, Longitude: WrapLongitude(r.Lambda0)}
	}
	if rho > limbRadius {
		x, y = x*limbRadius/rho, y*limbRadius/rho
		rho = limbRadius
	}

	phi0, lam0 := r.Phi0*radians, r.Lambda0*radians
	c := math.Asin(rho)
	sinC, cosC := math.Sincos(c)

	phi := math.Asin(cosC*math.Sin(phi0) + y*sinC*math.Cos(phi0)/rho)
	lam := lam0 + math.Atan2(x*sinC, rho*cosC*math.Cos(phi0)-y*sinC*math.Sin(phi0))

	return GeoPoint{
		Latitude:  phi / radians,
		Longitude: WrapLongitude(lam / radians),
	}
}
