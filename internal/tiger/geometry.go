package tiger

import (
	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
)

// toPolygon converts a go-shp geometry to a geom.Polygon holding one ring
// per shapefile part, in file order. Ring roles are not inferred; the
// winding carried over from the shapefile tells outer rings from holes.
// Returns nil for null or unsupported shapes.
func toPolygon(shape shp.Shape) *geom.Polygon {
	switch s := shape.(type) {
	case *shp.Polygon:
		return partsToPolygon(s.Parts, s.Points)
	case *shp.PolygonZ:
		return partsToPolygon(s.Parts, s.Points)
	case *shp.PolyLine:
		return partsToPolygon(s.Parts, s.Points)
	case *shp.Point:
		return geom.NewPolygonFlat(geom.XY, []float64{s.X, s.Y}, []int{2})
	default:
		return nil
	}
}

func partsToPolygon(parts []int32, points []shp.Point) *geom.Polygon {
	if len(points) == 0 {
		return nil
	}
	if len(parts) == 0 {
		parts = []int32{0}
	}

	flat := make([]float64, 0, 2*len(points))
	ends := make([]int, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || end > int32(len(points)) {
			return nil
		}
		for _, p := range points[start:end] {
			flat = append(flat, p.X, p.Y)
		}
		ends = append(ends, len(flat))
	}
	return geom.NewPolygonFlat(geom.XY, flat, ends)
}
