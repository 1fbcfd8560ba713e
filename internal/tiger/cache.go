package tiger

import (
	"bytes"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/blockpop/internal/block"
)

// CacheExt is the extension of region cache files.
const CacheExt = ".blocks"

// CachePath returns the cache file for an archive name.
func CachePath(cacheDir, archiveName string) string {
	return filepath.Join(cacheDir, archiveName+CacheExt)
}

// EncodeBlocks drains blocks into one buffer of concatenated records.
// Nothing is returned unless the whole sequence succeeds.
func EncodeBlocks(blocks iter.Seq2[block.Block, error]) ([]byte, error) {
	var buf bytes.Buffer
	rec := make([]byte, 0, block.RecordSize)
	for b, err := range blocks {
		if err != nil {
			return nil, err
		}
		rec = block.AppendEncode(rec[:0], b)
		buf.Write(rec)
	}
	return buf.Bytes(), nil
}

// WriteCache writes data to path atomically: readers see either no file or
// the complete file.
func WriteCache(path string, data []byte) error {
	if len(data)%block.RecordSize != 0 {
		return eris.Wrapf(&block.FormatError{Op: "write cache", Len: len(data), Width: block.RecordSize}, "tiger: write cache %s", path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "tiger: create cache dir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "tiger: create cache temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "tiger: write cache")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "tiger: sync cache")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "tiger: close cache")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrap(err, "tiger: install cache")
	}
	return nil
}

// ReadCache loads every block of a cache file.
func ReadCache(path string) ([]block.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: read cache %s", path)
	}
	blocks, err := block.DecodeAll(data)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: decode cache %s (delete it to regenerate)", path)
	}
	return blocks, nil
}

// CacheExists reports whether a cache file is present. Presence alone marks
// a region as extracted.
func CacheExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, eris.Wrapf(err, "tiger: stat cache %s", path)
}
