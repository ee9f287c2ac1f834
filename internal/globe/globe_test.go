package globe

import (
	"reflect"
	"testing"

	"globe-graph/internal/projection"
	"globe-graph/internal/surface/surfacetest"
)

func TestFromLonLatOrder(t *testing.T) {
	p, err := FromLonLat([]float64{10, 20})
	if err != nil {
		t.Fatal(err)
	}
	if p.Latitude != 20 || p.Longitude != 10 {
		t.Errorf("[10, 20] is lon 10, lat 20; got %+v", p)
	}
	if _, err := FromLonLat([]float64{0, 95}); err == nil {
		t.Error("latitude 95 should be rejected")
	}
	if _, err := FromLonLat([]float64{1}); err == nil {
		t.Error("short position should be rejected")
	}
	if p, _ := FromLonLat([]float64{190, 0}); p.Longitude != -170 {
		t.Errorf("longitude should wrap, got %v", p.Longitude)
	}
}

func TestDecodeFeatureCollection(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "box"},
			 "geometry": {"type": "Polygon", "coordinates": [[[10,20],[30,20],[30,40],[10,20]]]}},
			{"type": "Feature", "properties": {},
			 "geometry": {"type": "MultiPolygon", "coordinates": [
				[[[0,0],[1,0],[1,1],[0,0]]],
				[[[5,5],[6,5],[6,6],[5,5]]]
			 ]}},
			{"type": "Feature", "properties": {},
			 "geometry": {"type": "Point", "coordinates": [1,2]}}
		]
	}`)
	features, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 3 {
		t.Fatalf("expected 3 rings, got %d", len(features))
	}
	if features[0].Name != "box" {
		t.Errorf("expected name from properties, got %q", features[0].Name)
	}
	want := projection.GeoPoint{Latitude: 20, Longitude: 10}
	if features[0].Ring[0] != want {
		t.Errorf("first vertex should be %+v, got %+v", want, features[0].Ring[0])
	}
	if got := features[0].Ring[2]; got.Latitude != 40 || got.Longitude != 30 {
		t.Errorf("third vertex should be lat 40 lon 30, got %+v", got)
	}
}

func TestDecodeBareGeometryAndErrors(t *testing.T) {
	features, err := Decode([]byte(`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,0]]]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 1 || len(features[0].Ring) != 4 {
		t.Fatalf("unexpected features %+v", features)
	}

	for name, data := range map[string]string{
		"not json":     `nope`,
		"no type":      `{"features": []}`,
		"bad latitude": `{"type":"Polygon","coordinates":[[[0,0],[10,100],[10,10],[0,0]]]}`,
	} {
		if _, err := Decode([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func testView(scale float64, center projection.Point) projection.View {
	return projection.FromViewport(0, 0, 1, scale, center)
}

func TestRedrawWithoutDataIsNoop(t *testing.T) {
	g := New(nil)
	s := surfacetest.New(800, 600)
	f := s.NewFrame().(*surfacetest.Frame)

	if g.Redraw(f, testView(100, projection.Point{X: 400, Y: 300})) {
		t.Error("Redraw should report nothing drawn")
	}
	if len(f.Ops) != 0 {
		t.Errorf("expected no drawing calls, got %v", f.Names())
	}
}

func TestRedrawBreaksPathAtFarSide(t *testing.T) {
	g := New(nil)
	g.SetData([]Feature{{Ring: []projection.GeoPoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 20},
		{Latitude: 0, Longitude: 150},
		{Latitude: 10, Longitude: 30},
		{Latitude: 10, Longitude: 5},
	}}})

	s := surfacetest.New(400, 400)
	f := s.NewFrame().(*surfacetest.Frame)
	if !g.Redraw(f, testView(100, projection.Point{X: 200, Y: 200})) {
		t.Fatal("expected a redraw")
	}

	want := []string{
		"circle", "fill",
		"move", "line", "close", "move", "line", "close", "fill",
		"circle", "stroke",
	}
	if got := f.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected drawing calls\n got %v\nwant %v", got, want)
	}
	if r := f.Ops[0].Radius; r != 100 {
		t.Errorf("ocean disc radius should equal the scale, got %v", r)
	}
}

func TestRedrawSkipsHiddenFeature(t *testing.T) {
	g := New(nil)
	g.SetData([]Feature{{Ring: []projection.GeoPoint{
		{Latitude: 0, Longitude: 170},
		{Latitude: 10, Longitude: 175},
		{Latitude: 0, Longitude: -170},
	}}})
	s := surfacetest.New(400, 400)
	f := s.NewFrame().(*surfacetest.Frame)
	g.Redraw(f, testView(100, projection.Point{X: 200, Y: 200}))
	if n := f.Count("fill"); n != 1 {
		t.Errorf("only the ocean should be filled, got %d fills", n)
	}
}

func TestSetDataNotifiesOwner(t *testing.T) {
	calls := 0
	g := New(func() { calls++ })
	g.SetData(Builtin()[:2])
	if calls != 1 {
		t.Errorf("expected one change notification, got %d", calls)
	}
	if len(g.Features()) != 2 {
		t.Errorf("expected 2 features, got %d", len(g.Features()))
	}
}

func TestBuiltin(t *testing.T) {
	features := Builtin()
	if len(features) == 0 {
		t.Fatal("built-in globe is empty")
	}
	antarctica := false
	for _, f := range features {
		for _, p := range f.Ring {
			if err := p.Validate(); err != nil {
				t.Fatalf("invalid vertex %+v: %v", p, err)
			}
		}
		if f.Ring[0].Latitude == -87 {
			antarctica = true
		}
	}
	if !antarctica {
		t.Error("bottom row of the mask should produce southern land")
	}
}

func TestMaskFeatures(t *testing.T) {
	features := MaskFeatures([]string{
		"..##",
		"#..#",
	})
	if len(features) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(features))
	}
	first := features[0].Ring
	if first[0].Latitude != 90 || first[0].Longitude != 0 {
		t.Errorf("first run should start at lat 90 lon 0, got %+v", first[0])
	}
	// two cells: three vertices along each edge plus the closing vertex
	if len(first) != 7 {
		t.Errorf("expected 7 vertices, got %d", len(first))
	}
	if first[0] != first[len(first)-1] {
		t.Error("ring should be closed")
	}
	if features[1].Ring[0].Longitude != -180 || features[1].Ring[0].Latitude != 0 {
		t.Errorf("second row run should start at lat 0 lon -180, got %+v", features[1].Ring[0])
	}
}
