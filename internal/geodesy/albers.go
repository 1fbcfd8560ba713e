// Package geodesy computes block centroids and areas under a local
// equal-area projection fitted to each shape.
package geodesy

import "math"

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6370997.0

// Albers is a spherical Albers equal-area conic projection.
type Albers struct {
	lon0 float64 // radians
	lat0 float64 // radians
	n    float64
	c    float64
	rho0 float64

	// When the standard parallels are symmetric about the equator the cone
	// degenerates to a cylinder and cosStd takes over.
	cylindrical bool
	cosStd      float64
}

// NewAlbers builds a projection with standard parallels lat1 and lat2 and
// origin (lon0, lat0). All arguments are in degrees.
func NewAlbers(lat1, lat2, lat0, lon0 float64) *Albers {
	phi1, phi2 := radians(lat1), radians(lat2)
	a := &Albers{
		lon0: radians(lon0),
		lat0: radians(lat0),
		n:    (math.Sin(phi1) + math.Sin(phi2)) / 2,
	}

	if math.Abs(a.n) < 1e-12 {
		a.cylindrical = true
		a.cosStd = math.Cos(phi1)
		return a
	}

	a.c = math.Cos(phi1)*math.Cos(phi1) + 2*a.n*math.Sin(phi1)
	a.rho0 = a.rho(a.lat0)
	return a
}

// Project maps geographic degrees to planar meters.
func (a *Albers) Project(lon, lat float64) (x, y float64) {
	lambda, phi := radians(lon), radians(lat)

	if a.cylindrical {
		x = EarthRadius * (lambda - a.lon0) * a.cosStd
		y = EarthRadius * (math.Sin(phi) - math.Sin(a.lat0)) / a.cosStd
		return x, y
	}

	theta := a.n * (lambda - a.lon0)
	rho := a.rho(phi)
	return rho * math.Sin(theta), a.rho0 - rho*math.Cos(theta)
}

func (a *Albers) rho(phi float64) float64 {
	return EarthRadius * math.Sqrt(math.Max(0, a.c-2*a.n*math.Sin(phi))) / a.n
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
