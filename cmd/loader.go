package main

import (
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/blockpop/internal/config"
	"github.com/sells-group/blockpop/internal/fetcher"
	"github.com/sells-group/blockpop/internal/tiger"
)

// newFetcher builds the archive downloader, throttling the archive host at
// fetch.rate_per_sec.
func newFetcher(c *config.Config) *fetcher.HTTPFetcher {
	limiters := fetcher.DefaultRateLimiters()
	if u, err := url.Parse(c.Tiger.URLFormat); err == nil && u.Hostname() != "" {
		burst := int(c.Fetch.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		limiters[u.Hostname()] = rate.NewLimiter(rate.Limit(c.Fetch.RatePerSec), burst)
	}

	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    c.Fetch.UserAgent,
		Timeout:      time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:   c.Fetch.MaxRetries,
		RateLimiters: limiters,
	})
}

// newLoader builds a region loader. A non-empty regionsFlag overrides
// tiger.regions from config; both empty means every region.
func newLoader(c *config.Config, regionsFlag string) (*tiger.Loader, error) {
	keys := c.Tiger.Regions
	if regionsFlag != "" {
		keys = splitAndTrim(regionsFlag)
	}
	regions, err := parseRegions(keys)
	if err != nil {
		return nil, err
	}

	return tiger.NewLoader(newFetcher(c), tiger.LoadOptions{
		DataDir:             c.Tiger.DataDir,
		CacheDir:            c.Tiger.CacheDir,
		URLFormat:           c.Tiger.URLFormat,
		PopulationField:     c.Tiger.PopulationField,
		Regions:             regions,
		PrefetchConcurrency: c.Tiger.PrefetchConcurrency,
	}), nil
}

// parseRegions resolves state abbreviations or FIPS indexes, dropping duplicates.
func parseRegions(keys []string) ([]tiger.Region, error) {
	var regions []tiger.Region
	seen := make(map[int]bool, len(keys))
	for _, k := range keys {
		r, ok := tiger.LookupRegion(k)
		if !ok {
			return nil, eris.Errorf("unknown region %q", k)
		}
		if seen[r.Index] {
			continue
		}
		seen[r.Index] = true
		regions = append(regions, r)
	}
	return regions, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
