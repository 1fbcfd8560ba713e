package tiger

import (
	"iter"

	"github.com/sells-group/blockpop/internal/block"
	"github.com/sells-group/blockpop/internal/geodesy"
)

// ExtractStats counts what an extraction saw.
type ExtractStats struct {
	Shapes     int
	Degenerate int
}

// ToBlock turns one shape into a block: mean point as location, area from
// the shape's own equal-area projection.
func ToBlock(s Shape) block.Block {
	lon, lat := geodesy.Centroid(s.Geometry)
	return block.Block{
		Longitude:  lon,
		Latitude:   lat,
		Population: s.Population,
		Area:       geodesy.Area(s.Geometry),
	}
}

// Extract maps shapes to blocks lazily. Like its input it can be ranged
// over once. stats, if non-nil, is updated as blocks are produced; shapes
// whose area comes out as 0 are counted as degenerate. A centroid outside
// the geographic ranges, as from a projected source, is a *block.FormatError.
func Extract(shapes iter.Seq2[Shape, error], stats *ExtractStats) iter.Seq2[block.Block, error] {
	return func(yield func(block.Block, error) bool) {
		for s, err := range shapes {
			if err != nil {
				yield(block.Block{}, err)
				return
			}
			b := ToBlock(s)
			if !b.Valid() {
				yield(block.Block{}, &block.FormatError{
					Op:  "extract",
					Msg: "centroid " + b.String() + " is not in geographic degrees",
				})
				return
			}
			if stats != nil {
				stats.Shapes++
				if b.Area == 0 {
					stats.Degenerate++
				}
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}
