package city

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadOptions configures ReadCSV.
type ReadOptions struct {
	Limit     int  // Keep at most this many rows; 0 = all
	Delimiter rune // default ','
}

var (
	nameCols = []string{"name", "city"}
	latCols  = []string{"latitude", "lat"}
	lonCols  = []string{"longitude", "lon", "lng"}
)

// ReadCSV reads a headered city list in rank order. Required columns are
// name (or city), latitude (lat) and longitude (lon, lng); state and rank are
// optional. Every column whose header starts with "pop" is kept as a
// population figure. Longitudes are West-positive as in the source.
func ReadCSV(r io.Reader, opts ReadOptions) ([]Record, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "city: read header")
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, ok := findCol(cols, nameCols)
	if !ok {
		return nil, eris.New("city: missing name column")
	}
	latIdx, ok := findCol(cols, latCols)
	if !ok {
		return nil, eris.New("city: missing latitude column")
	}
	lonIdx, ok := findCol(cols, lonCols)
	if !ok {
		return nil, eris.New("city: missing longitude column")
	}
	stateIdx, hasState := cols["state"]
	rankIdx, hasRank := cols["rank"]

	var records []Record
	for line := 2; opts.Limit <= 0 || len(records) < opts.Limit; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "city: read line %d", line)
		}

		rec := Record{
			Rank: len(records) + 1,
			Name: field(row, nameIdx),
		}
		if rec.Latitude, err = parseFloat(row, latIdx); err != nil {
			return nil, eris.Wrapf(err, "city: line %d latitude", line)
		}
		if rec.Longitude, err = parseFloat(row, lonIdx); err != nil {
			return nil, eris.Wrapf(err, "city: line %d longitude", line)
		}
		if hasState {
			rec.State = field(row, stateIdx)
		}
		if hasRank && field(row, rankIdx) != "" {
			if rec.Rank, err = strconv.Atoi(field(row, rankIdx)); err != nil {
				return nil, eris.Wrapf(err, "city: line %d rank", line)
			}
		}
		for name, idx := range cols {
			if !strings.HasPrefix(name, "pop") || field(row, idx) == "" {
				continue
			}
			n, err := strconv.ParseInt(strings.ReplaceAll(field(row, idx), ",", ""), 10, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "city: line %d %s", line, name)
			}
			if rec.Population == nil {
				rec.Population = make(map[string]int64)
			}
			rec.Population[name] = n
		}

		records = append(records, rec)
	}

	return records, nil
}

// ReadFile opens path and reads it with ReadCSV.
func ReadFile(path string, opts ReadOptions) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "city: open input")
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, opts)
}

func findCol(cols map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(row []string, idx int) (float64, error) {
	v, err := strconv.ParseFloat(field(row, idx), 64)
	if err != nil {
		return 0, eris.Wrap(err, "parse number")
	}
	return v, nil
}
