package tiger

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

type testShape struct {
	rings [][]shp.Point
	pop   int
}

// square returns a clockwise ring of side d degrees with its south-west
// corner at (lon, lat).
func square(lon, lat, d float64) []shp.Point {
	return []shp.Point{
		{X: lon, Y: lat},
		{X: lon, Y: lat + d},
		{X: lon + d, Y: lat + d},
		{X: lon + d, Y: lat},
		{X: lon, Y: lat},
	}
}

// writeTestShapefile writes a polygon shapefile with one numeric attribute
// and returns the .shp path.
func writeTestShapefile(t *testing.T, dir, name, field string, shapes []testShape) string {
	t.Helper()

	shpPath := filepath.Join(dir, name+".shp")
	w, err := shp.Create(shpPath, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{shp.NumberField(field, 11)}))
	for _, s := range shapes {
		poly := shp.Polygon(*shp.NewPolyLine(s.rings))
		row := w.Write(&poly)
		require.NoError(t, w.WriteAttribute(int(row), 0, s.pop))
	}
	w.Close()

	// go-shp v0.1.1 names the attribute file "<base>dbf" without the dot,
	// while shp.Open looks for "<base>.dbf".
	base := strings.TrimSuffix(shpPath, ".shp")
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}

	return shpPath
}

// truncateFile drops the last n bytes of path.
func truncateFile(t *testing.T, path string, n int64) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), n)
	require.NoError(t, os.Truncate(path, info.Size()-n))
}

// zipShapefile packs the .shp/.shx/.dbf triple next to shpPath.
func zipShapefile(t *testing.T, shpPath string) []byte {
	t.Helper()

	base := shpPath[:len(shpPath)-len(filepath.Ext(shpPath))]
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		data, err := os.ReadFile(base + ext)
		require.NoError(t, err)
		fw, err := zw.Create(filepath.Base(base + ext))
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
