// Package block holds census population blocks, their fixed-width binary
// encoding and the longitude-sorted store used for radius lookups.
package block

import (
	"fmt"

	"github.com/sells-group/blockpop/internal/geodesy"
)

// EarthRadius is the mean earth radius in meters used for all distance math.
const EarthRadius = geodesy.EarthRadius

// Block is one census population block: the mean of its boundary points,
// its population and its projected area in square meters.
//
// An Area of 0 means unknown. Degenerate shapes and areas too large to
// encode both collapse to 0, so it never means "no area".
type Block struct {
	Longitude  float64 `json:"lon" yaml:"lon" msgpack:"lon"`
	Latitude   float64 `json:"lat" yaml:"lat" msgpack:"lat"`
	Population uint32  `json:"pop" yaml:"pop" msgpack:"pop"`
	Area       float64 `json:"area" yaml:"area" msgpack:"area"`
}

// Valid reports whether the coordinates are inside the geographic ranges.
func (b Block) Valid() bool {
	return b.Longitude >= -180 && b.Longitude <= 180 &&
		b.Latitude >= -90 && b.Latitude <= 90
}

func (b Block) String() string {
	return fmt.Sprintf("block(%.6f,%.6f pop=%d area=%.0f)", b.Longitude, b.Latitude, b.Population, b.Area)
}
