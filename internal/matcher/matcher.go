// Package matcher attaches nearby population blocks to cities.
package matcher

import (
	"context"
	"encoding/base64"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/blockpop/internal/block"
	"github.com/sells-group/blockpop/internal/city"
)

// DefaultRadius is the search radius in meters.
const DefaultRadius = 80000.0

// Result is one output record: the city's fields plus its blocks as
// base64 of concatenated 16 byte records in ascending longitude order.
type Result struct {
	city.City       `yaml:",inline" msgpack:",inline"`
	BlockCount      int    `json:"block_count" yaml:"block_count" msgpack:"block_count"`
	BlockPopulation uint64 `json:"block_population" yaml:"block_population" msgpack:"block_population"`
	Blocks          string `json:"blocks" yaml:"blocks" msgpack:"blocks"`
}

// Matcher queries a sorted store for each city. It never modifies the store.
type Matcher struct {
	store  *block.Store
	radius float64
}

// New creates a Matcher. A non-positive radius selects DefaultRadius.
func New(store *block.Store, radius float64) *Matcher {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Matcher{store: store, radius: radius}
}

// Radius returns the search radius in meters.
func (m *Matcher) Radius() float64 {
	return m.radius
}

// Match normalizes the record's longitude and collects every block in the
// search box. No matches is a valid, empty result.
func (m *Matcher) Match(rec city.Record) Result {
	c := rec.Normalize()

	var buf []byte
	var pop uint64
	n := 0
	for b := range m.store.Query(c.Longitude, c.Latitude, m.radius) {
		buf = block.AppendEncode(buf, b)
		pop += uint64(b.Population)
		n++
	}

	zap.L().Debug("matched city",
		zap.String("component", "matcher"),
		zap.String("city", c.Name),
		zap.String("state", c.State),
		zap.Int("blocks", n),
	)

	return Result{
		City:            c,
		BlockCount:      n,
		BlockPopulation: pop,
		Blocks:          base64.StdEncoding.EncodeToString(buf),
	}
}

// MatchAll matches records in order, checking ctx between cities.
func (m *Matcher) MatchAll(ctx context.Context, recs []city.Record) ([]Result, error) {
	results := make([]Result, 0, len(recs))
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "matcher: match cities")
		}
		results = append(results, m.Match(rec))
	}
	return results, nil
}

// DecodeBlocks reverses Result.Blocks.
func DecodeBlocks(encoded string) ([]block.Block, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, eris.Wrap(err, "matcher: decode base64 blocks")
	}
	return block.DecodeAll(data)
}
