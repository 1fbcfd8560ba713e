package tiger

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/blockpop/internal/block"
	"github.com/sells-group/blockpop/internal/fetcher"
)

// LoadOptions configures region ingestion.
type LoadOptions struct {
	DataDir             string   // Archive download + extraction directory
	CacheDir            string   // Region cache files
	URLFormat           string   // Archive URL with one integer verb (default DefaultURLFormat)
	PopulationField     string   // DBF population attribute (default POP10)
	Regions             []Region // Empty = AllRegions()
	PrefetchConcurrency int      // Parallel archive downloads before extraction (default 1 = none)
}

// StatusRow describes one region's cache state.
type StatusRow struct {
	Region    Region
	URL       string
	CachePath string
	Cached    bool
	Blocks    int
	Modified  time.Time
}

// Loader performs per-region cache-or-fetch ingestion.
type Loader struct {
	fetcher fetcher.Fetcher
	opts    LoadOptions
}

// NewLoader creates a Loader, filling unset options with defaults.
func NewLoader(f fetcher.Fetcher, opts LoadOptions) *Loader {
	if opts.DataDir == "" {
		opts.DataDir = "./data"
	}
	if opts.CacheDir == "" {
		opts.CacheDir = opts.DataDir
	}
	if opts.URLFormat == "" {
		opts.URLFormat = DefaultURLFormat
	}
	if opts.PopulationField == "" {
		opts.PopulationField = DefaultPopulationField
	}
	if len(opts.Regions) == 0 {
		opts.Regions = AllRegions()
	}
	if opts.PrefetchConcurrency <= 0 {
		opts.PrefetchConcurrency = 1
	}
	return &Loader{fetcher: f, opts: opts}
}

// Regions returns the regions this loader ingests, in order.
func (l *Loader) Regions() []Region {
	return l.opts.Regions
}

func (l *Loader) cachePath(r Region) string {
	return CachePath(l.opts.CacheDir, ArchiveName(l.opts.URLFormat, r))
}

// LoadRegion returns the blocks of one region. A present cache file is
// decoded as-is; otherwise the archive is fetched, every shape extracted
// and the encoded result cached before it is returned. Returned blocks are
// always the decoded records, so cached and fresh runs agree exactly.
func (l *Loader) LoadRegion(ctx context.Context, r Region) ([]block.Block, error) {
	log := zap.L().With(
		zap.String("component", "tiger.loader"),
		zap.Stringer("region", r),
	)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "tiger: load region")
	}

	path := l.cachePath(r)
	cached, err := CacheExists(path)
	if err != nil {
		return nil, err
	}
	if cached {
		blocks, err := ReadCache(path)
		if err != nil {
			return nil, err
		}
		log.Info("loaded cached region", zap.String("path", path), zap.Int("blocks", len(blocks)))
		return blocks, nil
	}

	start := time.Now()
	shpPath, err := Download(ctx, l.fetcher, DownloadURL(l.opts.URLFormat, r), l.opts.DataDir)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: fetch region %s", r)
	}

	var stats ExtractStats
	data, err := EncodeBlocks(Extract(ReadShapes(shpPath, l.opts.PopulationField), &stats))
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: extract region %s", r)
	}
	if err := WriteCache(path, data); err != nil {
		return nil, err
	}

	blocks, err := block.DecodeAll(data)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: decode region %s", r)
	}

	if stats.Degenerate > 0 {
		log.Debug("shapes with degenerate geometry", zap.Int("count", stats.Degenerate))
	}
	log.Info("extracted region",
		zap.String("path", path),
		zap.Int("shapes", stats.Shapes),
		zap.Int("blocks", len(blocks)),
		zap.Duration("duration", time.Since(start)),
	)
	return blocks, nil
}

// LoadAll ingests every configured region, one at a time, into b.
// Archives are optionally prefetched in parallel first.
func (l *Loader) LoadAll(ctx context.Context, b *block.Builder) error {
	if err := l.Prefetch(ctx); err != nil {
		return err
	}

	for _, r := range l.opts.Regions {
		blocks, err := l.LoadRegion(ctx, r)
		if err != nil {
			return err
		}
		b.Add(blocks...)
	}

	zap.L().Info("all regions loaded",
		zap.String("component", "tiger.loader"),
		zap.Int("regions", len(l.opts.Regions)),
		zap.Int("blocks", b.Len()),
	)
	return nil
}

// Prefetch downloads and unpacks the archives of uncached regions with
// PrefetchConcurrency workers. Extraction to blocks is left to LoadRegion.
func (l *Loader) Prefetch(ctx context.Context) error {
	if l.opts.PrefetchConcurrency <= 1 {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.PrefetchConcurrency)

	for _, r := range l.opts.Regions {
		cached, err := CacheExists(l.cachePath(r))
		if err != nil {
			return err
		}
		if cached {
			continue
		}
		g.Go(func() error {
			if _, err := Download(gCtx, l.fetcher, DownloadURL(l.opts.URLFormat, r), l.opts.DataDir); err != nil {
				return eris.Wrapf(err, "tiger: prefetch region %s", r)
			}
			return nil
		})
	}

	return g.Wait()
}

// Status reports the cache state of every configured region.
func (l *Loader) Status() ([]StatusRow, error) {
	rows := make([]StatusRow, 0, len(l.opts.Regions))
	for _, r := range l.opts.Regions {
		row := StatusRow{
			Region:    r,
			URL:       DownloadURL(l.opts.URLFormat, r),
			CachePath: l.cachePath(r),
		}
		info, err := os.Stat(row.CachePath)
		switch {
		case err == nil:
			row.Cached = true
			row.Blocks = int(info.Size() / block.RecordSize)
			row.Modified = info.ModTime()
		case !os.IsNotExist(err):
			return nil, eris.Wrapf(err, "tiger: stat cache %s", row.CachePath)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
