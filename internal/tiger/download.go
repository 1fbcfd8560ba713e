package tiger

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/blockpop/internal/fetcher"
)

// Download fetches a TIGER/Line ZIP file from Census Bureau and extracts shapefiles.
// Returns the path to the extracted .shp file.
//
// Both steps are idempotent: a non-empty ZIP is not downloaded again and an
// existing extraction directory is reused as-is.
func Download(ctx context.Context, f fetcher.Fetcher, url, destDir string) (string, error) {
	log := zap.L().With(
		zap.String("component", "tiger.download"),
		zap.String("url", url),
	)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "tiger: create dest dir")
	}

	parts := strings.Split(url, "/")
	zipName := parts[len(parts)-1]
	zipPath := filepath.Join(destDir, zipName)
	extractDir := filepath.Join(destDir, strings.TrimSuffix(zipName, ".zip"))

	if info, err := os.Stat(extractDir); err == nil && info.IsDir() {
		log.Debug("extracted data found, skipping download", zap.String("path", extractDir))
		return findShapefile(extractDir)
	}

	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		log.Debug("zip already exists, skipping download", zap.String("path", zipPath))
	} else {
		log.Info("downloading TIGER shapefile")
		n, err := f.DownloadToFile(ctx, url, zipPath)
		if err != nil {
			return "", eris.Wrap(err, "tiger: download shapefile")
		}
		log.Info("download complete", zap.Int64("bytes", n))
	}

	// Extract into a staging directory so a failed extraction is retried
	// on the next run instead of being mistaken for a finished one.
	staging, err := os.MkdirTemp(destDir, ".extract-*")
	if err != nil {
		return "", eris.Wrap(err, "tiger: create staging dir")
	}
	defer os.RemoveAll(staging) //nolint:errcheck

	log.Info("extracting archive", zap.String("path", extractDir))
	if _, err := fetcher.ExtractZIP(zipPath, staging); err != nil {
		return "", eris.Wrap(err, "tiger: extract ZIP")
	}
	if err := os.Rename(staging, extractDir); err != nil {
		return "", eris.Wrap(err, "tiger: move extracted files")
	}

	return findShapefile(extractDir)
}

func findShapefile(dir string) (string, error) {
	shpPath, err := findFileByExt(dir, ".shp")
	if err != nil {
		return "", eris.Wrap(err, "tiger: find .shp file")
	}
	return shpPath, nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}
