package tiger

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPolygon_SinglePart(t *testing.T) {
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{square(-80, 25, 1)}))

	g := toPolygon(&poly)
	require.NotNil(t, g)
	assert.Equal(t, 1, g.NumLinearRings())
	assert.Equal(t, 5, g.NumCoords())
	assert.Equal(t, -80.0, g.LinearRing(0).Coord(0).X())
}

func TestToPolygon_MultiPart(t *testing.T) {
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{
		square(-80, 25, 1),
		square(-78, 25, 1),
	}))

	g := toPolygon(&poly)
	require.NotNil(t, g)
	assert.Equal(t, 2, g.NumLinearRings())
	assert.Equal(t, []int{10, 20}, g.Ends())
	assert.Equal(t, -78.0, g.LinearRing(1).Coord(0).X())
}

func TestToPolygon_PolyLine(t *testing.T) {
	pl := shp.NewPolyLine([][]shp.Point{{{X: -80, Y: 25}, {X: -80.1, Y: 25.1}}})

	g := toPolygon(pl)
	require.NotNil(t, g)
	assert.Equal(t, 2, g.NumCoords())
}

func TestToPolygon_Point(t *testing.T) {
	g := toPolygon(&shp.Point{X: -80.19, Y: 25.77})
	require.NotNil(t, g)
	assert.Equal(t, 1, g.NumCoords())
}

func TestToPolygon_NullAndEmpty(t *testing.T) {
	assert.Nil(t, toPolygon(nil))
	assert.Nil(t, toPolygon(&shp.Null{}))
	assert.Nil(t, toPolygon(&shp.Polygon{}))
}

func TestToPolygon_BadParts(t *testing.T) {
	p := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 9},
		Points:   square(0, 0, 1),
	}
	assert.Nil(t, toPolygon(p))
}
