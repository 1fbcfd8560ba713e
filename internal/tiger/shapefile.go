package tiger

import (
	"iter"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/blockpop/internal/block"
)

// Shape is one raw block shape: its boundary rings in lon/lat degrees and
// its population attribute.
type Shape struct {
	Geometry   *geom.Polygon
	Population uint32
}

// ReadShapes streams the shapes of a shapefile paired with the named
// population attribute. The file is opened when iteration starts and closed
// when it ends; the sequence is single-pass. Null shapes are skipped.
// A missing field, an unparsable population or a truncated file yields a
// *block.FormatError.
func ReadShapes(shpPath, populationField string) iter.Seq2[Shape, error] {
	return func(yield func(Shape, error) bool) {
		reader, err := shp.Open(shpPath)
		if err != nil {
			yield(Shape{}, eris.Wrapf(err, "tiger: open shapefile %s", shpPath))
			return
		}
		defer func() { _ = reader.Close() }()

		fieldIdx := -1
		for i, f := range reader.Fields() {
			name := strings.TrimRight(f.String(), "\x00")
			if strings.EqualFold(name, populationField) {
				fieldIdx = i
				break
			}
		}
		if fieldIdx < 0 {
			yield(Shape{}, &block.FormatError{
				Op:  "read shapes",
				Msg: "field " + populationField + " not found in " + shpPath,
			})
			return
		}

		var skipped int
		defer func() {
			if skipped > 0 {
				zap.L().Debug("tiger: skipped null shapes",
					zap.String("path", shpPath),
					zap.Int("skipped", skipped),
				)
			}
		}()

		for reader.Next() {
			row, s := reader.Shape()

			raw := strings.TrimSpace(strings.TrimRight(reader.Attribute(fieldIdx), "\x00"))
			pop, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				yield(Shape{}, &block.FormatError{
					Op:  "read shapes",
					Msg: "row " + strconv.Itoa(row) + ": bad " + populationField + " value " + strconv.Quote(raw),
				})
				return
			}

			g := toPolygon(s)
			if g == nil {
				skipped++
				continue
			}

			if !yield(Shape{Geometry: g, Population: uint32(pop)}, nil) {
				return
			}
		}

		// Next reports false on a read error as well as at EOF.
		if err := reader.Err(); err != nil {
			yield(Shape{}, &block.FormatError{
				Op:  "read shapes",
				Msg: shpPath + ": " + err.Error(),
			})
		}
	}
}
