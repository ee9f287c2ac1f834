package projection

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// boundaryTolerance is how close to 90 degrees a distance must be before the
// dot-product sign decides visibility.
const boundaryTolerance = 1e-9

// AngularDistance is the great-circle distance between the rotation centre
// and p.
func AngularDistance(p GeoPoint, r Rotation) s1.Angle {
	center := s2.LatLngFromDegrees(r.Phi0, r.Lambda0)
	return center.Distance(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
}

// VisibleByDistance decides visibility from the angular distance instead of
// the dot product. Within boundaryTolerance of the limb the two tests are
// numerically unreliable, so the sign of the dot product breaks the tie.
func VisibleByDistance(p GeoPoint, r Rotation) bool {
	d := AngularDistance(p, r).Radians()
	if math.Abs(d-math.Pi/2) <= boundaryTolerance {
		return visibility(p, r) >= 0
	}
	return d <= math.Pi/2
}
