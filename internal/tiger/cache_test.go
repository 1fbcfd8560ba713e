package tiger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/blockpop/internal/block"
)

func blocksOf(blocks ...block.Block) func(func(block.Block, error) bool) {
	return func(yield func(block.Block, error) bool) {
		for _, b := range blocks {
			if !yield(b, nil) {
				return
			}
		}
	}
}

func TestCachePath(t *testing.T) {
	assert.Equal(t, filepath.Join("cache", "tabblock2010_48_pophu.blocks"), CachePath("cache", "tabblock2010_48_pophu"))
}

func TestCache_RoundTrip(t *testing.T) {
	in := []block.Block{
		{Longitude: -95.0, Latitude: 29.0, Population: 100, Area: 500},
		{Longitude: -95.5, Latitude: 29.2, Population: 50, Area: 300},
	}
	data, err := EncodeBlocks(blocksOf(in...))
	require.NoError(t, err)
	require.Len(t, data, 2*block.RecordSize)

	path := filepath.Join(t.TempDir(), "nested", "region.blocks")
	require.NoError(t, WriteCache(path, data))

	ok, err := CacheExists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := ReadCache(path)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not survive")
}

func TestEncodeBlocks_ErrorReturnsNothing(t *testing.T) {
	boom := errors.New("shapefile truncated")
	seq := func(yield func(block.Block, error) bool) {
		if !yield(block.Block{Population: 1}, nil) {
			return
		}
		yield(block.Block{}, boom)
	}

	data, err := EncodeBlocks(seq)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, data)
}

func TestWriteCache_RejectsPartialRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.blocks")

	err := WriteCache(path, make([]byte, 20))
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestReadCache_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.blocks")
	require.NoError(t, os.WriteFile(path, make([]byte, block.RecordSize+3), 0o644))

	_, err := ReadCache(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a multiple")
	assert.Contains(t, err.Error(), "delete it to regenerate")
}

func TestReadCache_EmptyFileIsEmptyRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.blocks")
	require.NoError(t, WriteCache(path, nil))

	got, err := ReadCache(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCacheExists_Missing(t *testing.T) {
	ok, err := CacheExists(filepath.Join(t.TempDir(), "missing.blocks"))
	require.NoError(t, err)
	assert.False(t, ok)
}
