// Package pipeline sequences a full run: ingest every region, sort once,
// match each city and emit the report.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/blockpop/internal/block"
	"github.com/sells-group/blockpop/internal/city"
	"github.com/sells-group/blockpop/internal/matcher"
	"github.com/sells-group/blockpop/internal/report"
	"github.com/sells-group/blockpop/internal/tiger"
)

// DefaultMaxCities caps the number of city rows processed.
const DefaultMaxCities = 1000

// Options configures a Driver.
type Options struct {
	CitiesPath string
	MaxCities  int     // 0 = DefaultMaxCities, negative = no cap
	Radius     float64 // meters; 0 = matcher.DefaultRadius
	OutputPath string
	Report     report.Options
}

// Summary describes a completed run.
type Summary struct {
	Regions       int
	Blocks        int
	Cities        int
	MatchedCities int
	Population    uint64
	OutputPath    string
	Duration      time.Duration
}

// RegionLoader is the ingestion side of a run. *tiger.Loader implements it.
type RegionLoader interface {
	Regions() []tiger.Region
	LoadAll(ctx context.Context, b *block.Builder) error
}

// Driver owns the block accumulation buffer for one run.
type Driver struct {
	loader RegionLoader
	opts   Options
}

// New creates a Driver.
func New(loader RegionLoader, opts Options) *Driver {
	if opts.MaxCities == 0 {
		opts.MaxCities = DefaultMaxCities
	}
	if opts.Radius <= 0 {
		opts.Radius = matcher.DefaultRadius
	}
	return &Driver{loader: loader, opts: opts}
}

// BuildStore ingests every region into one buffer and sorts it once.
func (d *Driver) BuildStore(ctx context.Context) (*block.Store, error) {
	b := block.NewBuilder(0)
	if err := d.loader.LoadAll(ctx, b); err != nil {
		return nil, eris.Wrap(err, "pipeline: load regions")
	}

	start := time.Now()
	store := b.Build()
	zap.L().Info("block store sorted",
		zap.String("component", "pipeline"),
		zap.Int("blocks", store.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return store, nil
}

// Run executes the whole pipeline and writes the report to OutputPath.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	if d.opts.CitiesPath == "" {
		return nil, eris.New("pipeline: cities path is required")
	}
	if d.opts.OutputPath == "" {
		return nil, eris.New("pipeline: output path is required")
	}

	log := zap.L().With(zap.String("component", "pipeline"))
	start := time.Now()

	// Read cities first so a bad input fails before any download.
	limit := d.opts.MaxCities
	if limit < 0 {
		limit = 0
	}
	recs, err := city.ReadFile(d.opts.CitiesPath, city.ReadOptions{Limit: limit})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read cities")
	}
	log.Info("cities loaded", zap.String("path", d.opts.CitiesPath), zap.Int("cities", len(recs)))

	store, err := d.BuildStore(ctx)
	if err != nil {
		return nil, err
	}

	results, err := matcher.New(store, d.opts.Radius).MatchAll(ctx, recs)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: match cities")
	}

	if err := report.WriteFile(d.opts.OutputPath, results, d.opts.Report); err != nil {
		return nil, eris.Wrap(err, "pipeline: write report")
	}

	sum := &Summary{
		Regions:    len(d.loader.Regions()),
		Blocks:     store.Len(),
		Cities:     len(results),
		OutputPath: d.opts.OutputPath,
		Duration:   time.Since(start),
	}
	for _, r := range results {
		if r.BlockCount > 0 {
			sum.MatchedCities++
		}
		sum.Population += r.BlockPopulation
	}

	log.Info("pipeline complete",
		zap.Int("regions", sum.Regions),
		zap.Int("blocks", sum.Blocks),
		zap.Int("cities", sum.Cities),
		zap.Int("matched_cities", sum.MatchedCities),
		zap.Uint64("population", sum.Population),
		zap.String("output", sum.OutputPath),
		zap.Duration("duration", sum.Duration),
	)
	return sum, nil
}
