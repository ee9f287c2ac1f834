package projection

import (
	"math"
	"testing"
)

func lonDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestProjectCenterOfRotation(t *testing.T) {
	center := Point{400, 300}
	r := Rotation{Lambda0: 20, Phi0: -10}

	pt, ok := Project(GeoPoint{Latitude: -10, Longitude: 20}, r, 500, center)
	if !ok {
		t.Fatal("rotation centre should be visible")
	}
	if pt.Distance(center) > 1e-9 {
		t.Errorf("expected %v, got %v", center, pt)
	}
}

func TestProjectNorthIsUp(t *testing.T) {
	center := Point{0, 0}
	north, ok := Project(GeoPoint{Latitude: 30, Longitude: 0}, Rotation{}, 100, center)
	if !ok {
		t.Fatal("expected visible")
	}
	if north.Y >= 0 {
		t.Errorf("northern point should be above centre, got %v", north)
	}
	east, _ := Project(GeoPoint{Latitude: 0, Longitude: 30}, Rotation{}, 100, center)
	if east.X <= 0 {
		t.Errorf("eastern point should be right of centre, got %v", east)
	}
}

func TestProjectFarSide(t *testing.T) {
	if _, ok := Project(GeoPoint{Latitude: 0, Longitude: 180}, Rotation{}, 500, Point{}); ok {
		t.Error("antipode should not be visible")
	}
	if _, ok := Project(GeoPoint{Latitude: 0, Longitude: 91}, Rotation{}, 500, Point{}); ok {
		t.Error("point 91 degrees away should not be visible")
	}
}

// A at the centre, B exactly 90 degrees away: B is kept and drawn on the limb.
func TestProjectBasicLoadBoundary(t *testing.T) {
	const s = 500.0
	center := Point{600, 400}

	a, ok := Project(GeoPoint{Latitude: 0, Longitude: 0}, Rotation{}, s, center)
	if !ok || a.Distance(center) > 1e-9 {
		t.Fatalf("A should project to the centre, got %v (visible=%v)", a, ok)
	}

	b, ok := Project(GeoPoint{Latitude: 0, Longitude: 90}, Rotation{}, s, center)
	if !ok {
		t.Fatal("B at exactly 90 degrees is on the limb and must stay visible")
	}
	want := Point{center.X + s, center.Y}
	if b.Distance(want) > 1e-9 {
		t.Errorf("B expected on the limb at %v, got %v", want, b)
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	rotations := []Rotation{
		{0, 0}, {45, 30}, {-120, -60}, {179, 10}, {-30, 89}, {90, -45},
	}
	center := Point{512, 384}
	for _, r := range rotations {
		for lat := -85.0; lat <= 85; lat += 17 {
			for lon := -180.0; lon < 180; lon += 23 {
				p := GeoPoint{Latitude: lat, Longitude: lon}
				if visibility(p, r) < 0.05 {
					continue
				}
				pt, ok := Project(p, r, 500, center)
				if !ok {
					t.Fatalf("%v should be visible under %v", p, r)
				}
				got := Unproject(pt, r, 500, center)
				if math.Abs(got.Latitude-p.Latitude) > 1e-6 || lonDiff(got.Longitude, p.Longitude) > 1e-6 {
					t.Errorf("round trip %v under %v: got %v", p, r, got)
				}
			}
		}
	}
}

func TestUnprojectOutsideDiscLandsOnVisibleSide(t *testing.T) {
	r := Rotation{Lambda0: 10, Phi0: 20}
	center := Point{100, 100}
	g := Unproject(Point{100 + 900, 100}, r, 500, center)

	if _, ok := Project(g, r, 500, center); !ok {
		t.Fatalf("clamped point %v should be visible", g)
	}
	if d := AngularDistance(g, r).Degrees(); d < 89 || d > 90 {
		t.Errorf("clamped point should sit on the limb, distance %v", d)
	}
}

func TestUnprojectCenter(t *testing.T) {
	r := Rotation{Lambda0: -75, Phi0: 40}
	g := Unproject(Point{50, 60}, r, 200, Point{50, 60})
	if g.Latitude != 40 || g.Longitude != -75 {
		t.Errorf("expected rotation centre, got %v", g)
	}
}

func TestVisibilityFormulationsAgree(t *testing.T) {
	rotations := []Rotation{
		{0, 0}, {0, 90}, {0, -90}, {45, 45}, {-100, 12.5}, {180, 0}, {33, -70},
	}
	for _, r := range rotations {
		for lat := -90.0; lat <= 90; lat += 7.5 {
			for lon := -180.0; lon <= 180; lon += 7.5 {
				p := GeoPoint{Latitude: lat, Longitude: lon}
				_, byDot := Project(p, r, 1, Point{})
				if byDist := VisibleByDistance(p, r); byDist != byDot {
					t.Errorf("%v under %v: dot=%v distance=%v", p, r, byDot, byDist)
				}
			}
		}
	}
}

func TestVisibilityBoundaryPoints(t *testing.T) {
	r := Rotation{}
	for _, p := range []GeoPoint{
		{Latitude: 0, Longitude: 90},
		{Latitude: 0, Longitude: -90},
		{Latitude: 90, Longitude: 0},
		{Latitude: -90, Longitude: 0},
	} {
		_, byDot := Project(p, r, 1, Point{})
		if !byDot {
			t.Errorf("%v is exactly 90 degrees away and should be visible", p)
		}
		if !VisibleByDistance(p, r) {
			t.Errorf("%v: distance formulation disagrees on the boundary", p)
		}
	}
}

func TestFromViewport(t *testing.T) {
	center := Point{10, 20}

	v := FromViewport(50, 0, 1, 0, center)
	if !near(v.Rotation.Lambda0, -5) || v.Rotation.Phi0 != 0 {
		t.Errorf("50 units of pan should rotate 5 degrees, got %+v", v.Rotation)
	}
	if v.Scale != DefaultBaseScale {
		t.Errorf("expected default base scale, got %v", v.Scale)
	}

	v = FromViewport(100, 100, 2, 300, center)
	if !near(v.Rotation.Lambda0, -5) || !near(v.Rotation.Phi0, 5) {
		t.Errorf("pan is divided by zoom, got %+v", v.Rotation)
	}
	if v.Scale != 600 {
		t.Errorf("scale = zoom * base, got %v", v.Scale)
	}
	if v.Center != center {
		t.Errorf("centre not carried, got %v", v.Center)
	}

	v = FromViewport(0, 5000, 1, 500, center)
	if v.Rotation.Phi0 != 90 {
		t.Errorf("latitude of tangency should clamp at 90, got %v", v.Rotation.Phi0)
	}
}

func TestWrapLongitude(t *testing.T) {
	cases := map[float64]float64{
		0: 0, 180: 180, -180: -180, 190: -170, -190: 170, 360: 0, 725: 5,
	}
	for in, want := range cases {
		if got := WrapLongitude(in); math.Abs(got-want) > 1e-12 {
			t.Errorf("WrapLongitude(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestGeoPointValidate(t *testing.T) {
	if err := (GeoPoint{Latitude: 45, Longitude: 200}).Validate(); err != nil {
		t.Errorf("longitude is wrapped, not rejected: %v", err)
	}
	if err := (GeoPoint{Latitude: 91}).Validate(); err == nil {
		t.Error("expected error for latitude 91")
	}
	if err := (GeoPoint{Latitude: math.NaN()}).Validate(); err == nil {
		t.Error("expected error for NaN")
	}
}

func TestPointRotate(t *testing.T) {
	p := Point{1, 0}.Rotate(90, Point{})
	if math.Abs(p.X) > 1e-12 || math.Abs(p.Y-1) > 1e-12 {
		t.Errorf("expected (0,1), got %v", p)
	}
}
