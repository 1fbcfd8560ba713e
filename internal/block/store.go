package block

import (
	"iter"
	"math"
	"slices"
	"sort"
)

// BBox is an axis-aligned box in degrees.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Contains reports whether the point lies in the box, edges included.
func (bb BBox) Contains(lon, lat float64) bool {
	return lon >= bb.MinLon && lon <= bb.MaxLon && lat >= bb.MinLat && lat <= bb.MaxLat
}

// BBoxAround returns the square box used to approximate a circle of radius
// meters around (lon, lat). Half-widths use the small-angle approximation
//
//	dLat = deg(radius / 2R)
//	dLon = deg(radius / (2R cos(lat)))
//
// so boxes widen in longitude toward the poles and are undefined at ±90°.
// The box does not wrap across the antimeridian.
func BBoxAround(lon, lat, radius float64) BBox {
	dLat := degrees(radius / (2 * EarthRadius))
	dLon := degrees(radius / (2 * EarthRadius * math.Cos(radians(lat))))
	return BBox{
		MinLon: lon - dLon,
		MinLat: lat - dLat,
		MaxLon: lon + dLon,
		MaxLat: lat + dLat,
	}
}

// Builder accumulates blocks from every region before the one-time sort.
// The zero value is ready to use.
type Builder struct {
	blocks []Block
}

// NewBuilder returns a builder with room for n blocks.
func NewBuilder(n int) *Builder {
	return &Builder{blocks: make([]Block, 0, n)}
}

// Add appends blocks in arrival order.
func (b *Builder) Add(blocks ...Block) {
	b.blocks = append(b.blocks, blocks...)
}

// Len returns the number of accumulated blocks.
func (b *Builder) Len() int {
	return len(b.blocks)
}

// Build sorts the accumulated blocks by longitude and hands them to a
// read-only Store. The builder is empty afterwards.
func (b *Builder) Build() *Store {
	blocks := b.blocks
	b.blocks = nil

	// Stable so ties keep ingestion order.
	slices.SortStableFunc(blocks, func(x, y Block) int {
		switch {
		case x.Longitude < y.Longitude:
			return -1
		case x.Longitude > y.Longitude:
			return 1
		}
		return 0
	})

	lons := make([]float64, len(blocks))
	for i, blk := range blocks {
		lons[i] = blk.Longitude
	}
	return &Store{blocks: blocks, lons: lons}
}

// Store is a longitude-sorted, read-only block collection.
// blocks[i].Longitude == lons[i] and lons is non-decreasing.
type Store struct {
	blocks []Block
	lons   []float64
}

// Len returns the number of blocks in the store.
func (s *Store) Len() int {
	return len(s.blocks)
}

// At returns the i-th block in longitude order.
func (s *Store) At(i int) Block {
	return s.blocks[i]
}

// Longitudes returns a copy of the sorted longitude index.
func (s *Store) Longitudes() []float64 {
	return slices.Clone(s.lons)
}

// Query yields the blocks inside BBoxAround(lon, lat, radius) in ascending
// longitude order. Candidates are not filtered by true distance.
func (s *Store) Query(lon, lat, radius float64) iter.Seq[Block] {
	return s.InBox(BBoxAround(lon, lat, radius))
}

// InBox yields the blocks inside bb in ascending longitude order.
func (s *Store) InBox(bb BBox) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		i := sort.SearchFloat64s(s.lons, bb.MinLon)
		for ; i < len(s.lons) && s.lons[i] <= bb.MaxLon; i++ {
			blk := s.blocks[i]
			if blk.Latitude < bb.MinLat || blk.Latitude > bb.MaxLat {
				continue
			}
			if !yield(blk) {
				return
			}
		}
	}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
