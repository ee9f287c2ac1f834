package projection

import "math"

const (
	// DefaultBaseScale is the surface radius of the globe at zoom 1.
	DefaultBaseScale = 500.0

	// 50 units of pan rotate the globe by 5 degrees at zoom 1.
	panUnits   = 50.0
	panDegrees = 5.0
)

// View bundles everything Project and Unproject need for one frame.
type View struct {
	Rotation Rotation
	Scale    float64
	Center   Point
}

// FromViewport derives the view from the viewport's pan offset and zoom.
func FromViewport(panX, panY, zoom, baseScale float64, center Point) View {
	if zoom <= 0 || !isFinite(zoom) {
		zoom = 1
	}
	if baseScale <= 0 {
		baseScale = DefaultBaseScale
	}
	ratio := panDegrees / panUnits
	phi0 := panY / zoom * ratio
	phi0 = math.Max(-90, math.Min(90, phi0))

	return View{
		Rotation: Rotation{
			Lambda0: WrapLongitude(-panX / zoom * ratio),
			Phi0:    phi0,
		},
		Scale:  zoom * baseScale,
		Center: center,
	}
}

func (v View) Project(p GeoPoint) (Point, bool) {
	return Project(p, v.Rotation, v.Scale, v.Center)
}

func (v View) Unproject(pt Point) GeoPoint {
	return Unproject(pt, v.Rotation, v.Scale, v.Center)
}

// Visible reports whether p lies on the visible hemisphere.
func (v View) Visible(p GeoPoint) bool {
	return visibility(p, v.Rotation) >= 0
}
