// Package city reads the ranked city list and converts it to the internal
// coordinate convention.
package city

// Record is a city row as supplied by the source: longitude is in degrees
// West, positive (Houston is +95.37).
type Record struct {
	Rank       int              `json:"rank" yaml:"rank" msgpack:"rank"`
	Name       string           `json:"name" yaml:"name" msgpack:"name"`
	State      string           `json:"state" yaml:"state" msgpack:"state"`
	Latitude   float64          `json:"lat" yaml:"lat" msgpack:"lat"`
	Longitude  float64          `json:"lon" yaml:"lon" msgpack:"lon"`
	Population map[string]int64 `json:"population,omitempty" yaml:"population,omitempty" msgpack:"population,omitempty"`
}

// City is a Record whose longitude has been converted to degrees East.
type City struct {
	Record `yaml:",inline" msgpack:",inline"`
}

// NormalizeLongitude converts a West-positive longitude to East-positive.
func NormalizeLongitude(westPositive float64) float64 {
	return -westPositive
}

// Normalize returns the city in the internal East-positive convention.
func (r Record) Normalize() City {
	c := City{Record: r}
	c.Longitude = NormalizeLongitude(r.Longitude)
	return c
}
