package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/blockpop/internal/block"
	"github.com/sells-group/blockpop/internal/matcher"
	"github.com/sells-group/blockpop/internal/report"
	"github.com/sells-group/blockpop/internal/tiger"
)

const citiesCSV = `rank,city,state,latitude,longitude,pop2010
1,Houston,TX,29.1,95.0,"2,099,451"
2,New Orleans,LA,29.95,90.07,343829
3,Anchorage,AK,61.2,149.9,291826
`

// seedCache writes a region cache file so the loader never fetches.
func seedCache(t *testing.T, cacheDir string, r tiger.Region, blocks ...block.Block) {
	t.Helper()
	var data []byte
	for _, b := range blocks {
		data = block.AppendEncode(data, b)
	}
	path := tiger.CachePath(cacheDir, tiger.ArchiveName(tiger.DefaultURLFormat, r))
	require.NoError(t, tiger.WriteCache(path, data))
}

func region(t *testing.T, key string) tiger.Region {
	t.Helper()
	r, ok := tiger.LookupRegion(key)
	require.True(t, ok, key)
	return r
}

func setup(t *testing.T) (*tiger.Loader, string) {
	t.Helper()
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	tx, la := region(t, "TX"), region(t, "LA")

	seedCache(t, cacheDir, tx,
		block.Block{Longitude: -95.0, Latitude: 29.0, Population: 100, Area: 500},
		block.Block{Longitude: -95.5, Latitude: 29.2, Population: 50, Area: 300},
	)
	seedCache(t, cacheDir, la,
		block.Block{Longitude: -90.1, Latitude: 29.9, Population: 20, Area: 120},
	)

	citiesPath := filepath.Join(dir, "cities.csv")
	require.NoError(t, os.WriteFile(citiesPath, []byte(citiesCSV), 0o644))

	loader := tiger.NewLoader(nil, tiger.LoadOptions{
		DataDir:  dir,
		CacheDir: cacheDir,
		Regions:  []tiger.Region{tx, la},
	})
	return loader, citiesPath
}

func TestRun_EndToEnd(t *testing.T) {
	loader, citiesPath := setup(t)
	out := filepath.Join(t.TempDir(), "cities.json")

	sum, err := New(loader, Options{
		CitiesPath: citiesPath,
		Radius:     200000,
		OutputPath: out,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Regions)
	assert.Equal(t, 3, sum.Blocks)
	assert.Equal(t, 3, sum.Cities)
	assert.Equal(t, 2, sum.MatchedCities)
	assert.Equal(t, uint64(170), sum.Population)
	assert.Equal(t, out, sum.OutputPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var results []matcher.Result
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 3)

	houston := results[0]
	assert.Equal(t, "Houston", houston.Name)
	assert.Equal(t, -95.0, houston.Longitude)
	assert.Equal(t, int64(2099451), houston.Population["pop2010"])
	blocks, err := matcher.DecodeBlocks(houston.Blocks)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.InDelta(t, -95.5, blocks[0].Longitude, 1e-6)
	assert.InDelta(t, -95.0, blocks[1].Longitude, 1e-6)

	assert.Equal(t, 1, results[1].BlockCount)
	assert.Equal(t, 0, results[2].BlockCount)
	assert.Empty(t, results[2].Blocks)
}

func TestRun_MaxCities(t *testing.T) {
	loader, citiesPath := setup(t)
	out := filepath.Join(t.TempDir(), "cities.yaml")

	sum, err := New(loader, Options{
		CitiesPath: citiesPath,
		MaxCities:  1,
		OutputPath: out,
		Report:     report.Options{Format: report.FormatYAML},
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Cities)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Houston")
	assert.NotContains(t, string(data), "New Orleans")
}

func TestRun_DefaultRadiusExcludesDistantBlocks(t *testing.T) {
	loader, citiesPath := setup(t)
	out := filepath.Join(t.TempDir(), "cities.json")

	sum, err := New(loader, Options{CitiesPath: citiesPath, OutputPath: out}).Run(context.Background())
	require.NoError(t, err)
	// The 80 km box around Houston is about 0.41 deg wide in longitude, so
	// the block at -95.5 falls outside it.
	assert.Equal(t, 2, sum.MatchedCities)
	assert.Equal(t, uint64(120), sum.Population)
}

func TestRun_MissingPaths(t *testing.T) {
	loader, citiesPath := setup(t)

	_, err := New(loader, Options{OutputPath: "x.json"}).Run(context.Background())
	assert.Error(t, err)

	_, err = New(loader, Options{CitiesPath: citiesPath}).Run(context.Background())
	assert.Error(t, err)
}

type failingLoader struct{ calls int }

func (f *failingLoader) Regions() []tiger.Region { return nil }

func (f *failingLoader) LoadAll(context.Context, *block.Builder) error {
	f.calls++
	return errors.New("census unavailable")
}

func TestRun_LoadFailureWritesNoReport(t *testing.T) {
	_, citiesPath := setup(t)
	out := filepath.Join(t.TempDir(), "cities.json")
	fl := &failingLoader{}

	_, err := New(fl, Options{CitiesPath: citiesPath, OutputPath: out}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "census unavailable")
	assert.Equal(t, 1, fl.calls)
	assert.NoFileExists(t, out)
}

func TestRun_BadCitiesFailsBeforeIngestion(t *testing.T) {
	fl := &failingLoader{}
	bad := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,state\nHouston,TX\n"), 0o644))

	_, err := New(fl, Options{CitiesPath: bad, OutputPath: filepath.Join(t.TempDir(), "o.json")}).Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, fl.calls)
}

func TestRun_Cancelled(t *testing.T) {
	loader, citiesPath := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(loader, Options{CitiesPath: citiesPath, OutputPath: filepath.Join(t.TempDir(), "o.json")}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildStore_Sorted(t *testing.T) {
	loader, _ := setup(t)

	store, err := New(loader, Options{}).BuildStore(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())

	lons := store.Longitudes()
	for i := 1; i < len(lons); i++ {
		assert.LessOrEqual(t, lons[i-1], lons[i])
	}
}
