package globe

import (
	_ "embed"
	"strings"
	"sync"

	"globe-graph/internal/projection"
)

// land.txt is an equirectangular land mask, row 0 at the north pole and
// column 0 at the antimeridian: '#' is land, anything else is water. It is
// generated by utils/convert_png.go.
//
//go:embed land.txt
var landMask string

var (
	builtinOnce     sync.Once
	builtinFeatures []Feature
)

// Builtin returns the landmass built into the binary, one rectangular ring
// per horizontal run of land cells.
func Builtin() []Feature {
	builtinOnce.Do(func() {
		builtinFeatures = MaskFeatures(strings.Split(strings.TrimRight(landMask, "\n"), "\n"))
	})
	return builtinFeatures
}

// MaskFeatures turns an equirectangular land mask into features.
func MaskFeatures(rows []string) []Feature {
	if len(rows) == 0 {
		return nil
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 {
		return nil
	}
	cellLat := 180.0 / float64(len(rows))
	cellLon := 360.0 / float64(width)

	var out []Feature
	for y, row := range rows {
		top := 90 - float64(y)*cellLat
		bottom := top - cellLat
		for x := 0; x < len(row); {
			if row[x] != '#' {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] == '#' {
				x++
			}
			west := -180 + float64(start)*cellLon
			out = append(out, Feature{Ring: cellRun(top, bottom, west, cellLon, x-start)})
		}
	}
	return out
}

// cellRun builds a rectangle ring spanning n cells, with a vertex at every
// cell boundary so long runs curve with the projection.
func cellRun(top, bottom, west, cellLon float64, n int) []projection.GeoPoint {
	ring := make([]projection.GeoPoint, 0, 2*n+3)
	for i := 0; i <= n; i++ {
		ring = append(ring, projection.GeoPoint{Latitude: top, Longitude: west + float64(i)*cellLon})
	}
	for i := n; i >= 0; i-- {
		ring = append(ring, projection.GeoPoint{Latitude: bottom, Longitude: west + float64(i)*cellLon})
	}
	return append(ring, ring[0])
}
