// Package tiger downloads Census TIGER/Line 2010 population-block shapefiles,
// one archive per state, and turns them into cached block files.
package tiger

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// DefaultURLFormat is the per-state 2010 block population archive.
// The verb is replaced by the zero-padded state FIPS code.
const DefaultURLFormat = "https://www2.census.gov/geo/tiger/TIGER2010BLKPOPHU/tabblock2010_%02d_pophu.zip"

// DefaultPopulationField is the DBF attribute holding a block's 2010 population.
const DefaultPopulationField = "POP10"

// Region is one source partition: a state (or DC) keyed by FIPS code.
type Region struct {
	Index int
	Abbr  string
}

// String renders the region as "48 (TX)".
func (r Region) String() string {
	return fmt.Sprintf("%02d (%s)", r.Index, r.Abbr)
}

// FIPSCodes maps state abbreviations to 2-digit FIPS codes.
var FIPSCodes = map[string]int{
	"AL": 1, "AK": 2, "AZ": 4, "AR": 5, "CA": 6,
	"CO": 8, "CT": 9, "DE": 10, "DC": 11, "FL": 12,
	"GA": 13, "HI": 15, "ID": 16, "IL": 17, "IN": 18,
	"IA": 19, "KS": 20, "KY": 21, "LA": 22, "ME": 23,
	"MD": 24, "MA": 25, "MI": 26, "MN": 27, "MS": 28,
	"MO": 29, "MT": 30, "NE": 31, "NV": 32, "NH": 33,
	"NJ": 34, "NM": 35, "NY": 36, "NC": 37, "ND": 38,
	"OH": 39, "OK": 40, "OR": 41, "PA": 42, "RI": 44,
	"SC": 45, "SD": 46, "TN": 47, "TX": 48, "UT": 49,
	"VT": 50, "VA": 51, "WA": 53, "WV": 54, "WI": 55,
	"WY": 56,
}

// abbrByFIPS is a reverse lookup from FIPS code to state abbreviation.
var abbrByFIPS map[int]string

func init() {
	abbrByFIPS = make(map[int]string, len(FIPSCodes))
	for abbr, fips := range FIPSCodes {
		abbrByFIPS[fips] = abbr
	}
}

// AbbrFromFIPS returns the state abbreviation for a FIPS code.
func AbbrFromFIPS(fips int) (string, bool) {
	abbr, ok := abbrByFIPS[fips]
	return abbr, ok
}

// AllRegions returns every state and DC ordered by FIPS code. Codes 3, 7,
// 14, 43 and 52 are unassigned and never appear.
func AllRegions() []Region {
	regions := make([]Region, 0, len(FIPSCodes))
	for abbr, fips := range FIPSCodes {
		regions = append(regions, Region{Index: fips, Abbr: abbr})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Index < regions[j].Index })
	return regions
}

// LookupRegion resolves a FIPS code ("48", "6") or a state abbreviation ("tx").
func LookupRegion(key string) (Region, bool) {
	key = strings.TrimSpace(key)
	if fips, ok := FIPSCodes[strings.ToUpper(key)]; ok {
		return Region{Index: fips, Abbr: strings.ToUpper(key)}, true
	}
	fips, err := strconv.Atoi(key)
	if err != nil {
		return Region{}, false
	}
	abbr, ok := AbbrFromFIPS(fips)
	if !ok {
		return Region{}, false
	}
	return Region{Index: fips, Abbr: abbr}, true
}

// DownloadURL builds the archive URL for a region from a format with one
// integer verb.
func DownloadURL(format string, r Region) string {
	return fmt.Sprintf(format, r.Index)
}

// ArchiveName is the base name of the region's archive without ".zip",
// e.g. "tabblock2010_48_pophu". It names the extraction directory and the
// cache file.
func ArchiveName(format string, r Region) string {
	return strings.TrimSuffix(path.Base(DownloadURL(format, r)), ".zip")
}
