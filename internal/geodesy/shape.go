package geodesy

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Centroid returns the arithmetic mean of every boundary point of g.
// It is not area weighted. An empty geometry yields (0, 0).
func Centroid(g geom.T) (lon, lat float64) {
	flat, stride := g.FlatCoords(), g.Stride()
	if stride == 0 || len(flat) == 0 {
		return 0, 0
	}

	var sumLon, sumLat float64
	for i := 0; i < len(flat); i += stride {
		sumLon += flat[i]
		sumLat += flat[i+1]
	}
	n := float64(len(flat) / stride)
	return sumLon / n, sumLat / n
}

// NewAlbersForShape fits a projection to g: its southern and northern
// extents are the standard parallels and its centroid is the origin.
func NewAlbersForShape(g geom.T) *Albers {
	b := g.Bounds()
	lon, lat := Centroid(g)
	return NewAlbers(b.Min(1), b.Max(1), lat, lon)
}

// Area returns the planar area of p in square meters under a projection
// fitted to p. The projected rings form a new polygon whose area go-geom
// computes, so holes subtract. Open rings are closed first. Fewer than 3
// points yields 0.
func Area(p *geom.Polygon) float64 {
	if p.NumCoords() < 3 {
		return 0
	}

	proj := NewAlbersForShape(p)
	projected := make([]float64, 0, 2*(p.NumCoords()+p.NumLinearRings()))
	ends := make([]int, 0, p.NumLinearRings())
	for i := range p.NumLinearRings() {
		ring := p.LinearRing(i)
		n := ring.NumCoords()
		if n == 0 {
			continue
		}
		start := len(projected)
		for j := range n {
			c := ring.Coord(j)
			x, y := proj.Project(c.X(), c.Y())
			projected = append(projected, x, y)
		}
		if first, last := ring.Coord(0), ring.Coord(n-1); first.X() != last.X() || first.Y() != last.Y() {
			projected = append(projected, projected[start], projected[start+1])
		}
		ends = append(ends, len(projected))
	}

	return math.Abs(geom.NewPolygonFlat(geom.XY, projected, ends).Area())
}
