// Package report serializes matched cities as one output document.
package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/blockpop/internal/matcher"
)

// Format selects the document encoding.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Compression selects an optional compression layer.
type Compression string

// Supported compression layers.
const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Options configures Write.
type Options struct {
	Format      Format
	Compression Compression
	Indent      bool // JSON only
}

// ParseFormat accepts json, yaml/yml and msgpack (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return "", eris.Errorf("report: unknown format %q", s)
}

// ParseCompression accepts none, gzip and zstd (case-insensitive).
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	}
	return "", eris.Errorf("report: unknown compression %q", s)
}

// Write encodes results as a single document on w.
func Write(w io.Writer, results []matcher.Result, opts Options) error {
	if results == nil {
		results = []matcher.Result{}
	}

	out, closeOut, err := compress(w, opts.Compression)
	if err != nil {
		return err
	}

	if err := encode(out, results, opts); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return eris.Wrap(err, "report: flush compressed output")
	}
	return nil
}

// WriteFile writes the document to path through a temp file and rename,
// so path only ever holds a complete document.
func WriteFile(path string, results []matcher.Result, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "report: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := Write(tmp, results, opts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "report: close output")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrap(err, "report: install output")
	}
	return nil
}

func encode(w io.Writer, results []matcher.Result, opts Options) error {
	switch opts.Format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		if opts.Indent {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(results); err != nil {
			return eris.Wrap(err, "report: encode json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(results); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "report: close yaml encoder")
		}
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(results); err != nil {
			return eris.Wrap(err, "report: encode msgpack")
		}
	default:
		return eris.Errorf("report: unknown format %q", opts.Format)
	}
	return nil
}

func compress(w io.Writer, c Compression) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone, "":
		return w, func() error { return nil }, nil
	case CompressionGzip:
		zw := gzip.NewWriter(w)
		return zw, zw.Close, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, nil, eris.Wrap(err, "report: create zstd writer")
		}
		return zw, zw.Close, nil
	}
	return nil, nil, eris.Errorf("report: unknown compression %q", c)
}
