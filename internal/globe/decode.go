package globe

import (
	"encoding/json"
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"globe-graph/internal/projection"
)

// FromLonLat converts a GeoJSON position. GeoJSON puts longitude first;
// GeoPoint is latitude first.
func FromLonLat(pos []float64) (projection.GeoPoint, error) {
	if len(pos) < 2 {
		return projection.GeoPoint{}, fmt.Errorf("position %v: want [longitude, latitude]", pos)
	}
	p := projection.GeoPoint{Latitude: pos[1], Longitude: pos[0]}
	if err := p.Validate(); err != nil {
		return projection.GeoPoint{}, err
	}
	return p.Normalized(), nil
}

// Decode parses a globe payload: a FeatureCollection, a single Feature or a
// bare Polygon/MultiPolygon geometry. Every outer and inner ring becomes one
// Feature.
func Decode(data []byte) ([]Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode globe: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode globe: %w", err)
		}
		var out []Feature
		for i, f := range fc.Features {
			rings, err := featureRings(f)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			out = append(out, rings...)
		}
		return out, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode globe: %w", err)
		}
		return featureRings(f)
	case "":
		return nil, fmt.Errorf("decode globe: missing type")
	default:
		geom, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode globe: %w", err)
		}
		return geometryRings("", geom)
	}
}

func featureRings(f *geojson.Feature) ([]Feature, error) {
	if f == nil || f.Geometry == nil {
		return nil, nil
	}
	name, _ := f.PropertyString("name")
	return geometryRings(name, f.Geometry)
}

func geometryRings(name string, g *geojson.Geometry) ([]Feature, error) {
	var polygons [][][][]float64
	switch {
	case g.IsPolygon():
		polygons = [][][][]float64{g.Polygon}
	case g.IsMultiPolygon():
		polygons = g.MultiPolygon
	default:
		// points and lines carry no landmass
		return nil, nil
	}

	var out []Feature
	for _, poly := range polygons {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			pts := make([]projection.GeoPoint, 0, len(ring))
			for _, pos := range ring {
				p, err := FromLonLat(pos)
				if err != nil {
					return nil, err
				}
				pts = append(pts, p)
			}
			out = append(out, Feature{Name: name, Ring: pts})
		}
	}
	return out, nil
}
