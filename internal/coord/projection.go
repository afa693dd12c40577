// Package coord implements the forward/inverse map projections the mosaic
// planner needs to compute geographic corners from projected tile corners.
//
// Grounded on the teacher's Projection interface and ForEPSG registry
// (internal/coord/projection.go in pspoerri-geotiff2pmtiles): same shape,
// generalized from EPSG codes to the MRT engine's GCTP-style projection
// codes (descriptor.ProjectionCode), since the mosaic domain never deals in
// EPSG identifiers.
package coord

import (
	"math"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
)

// RangeError reports that an inverse projection could not resolve a point,
// mirroring the original library's GCTP_ERANGE and IN_BREAK return codes.
// The planner's corner computation (internal/planner) specifically checks
// for this via errors.As.
type RangeError struct {
	Interrupted bool // true for IN_BREAK (point fell in an interruption gap)
}

func (e *RangeError) Error() string {
	if e.Interrupted {
		return "coord: point falls in an interrupted region of the projection"
	}
	return "coord: point is outside the valid range of the projection"
}

// Projection converts between a projected (x, y) coordinate system and
// geographic (lon, lat) in degrees.
type Projection interface {
	// ToGeographic converts projected x, y (projection units, typically
	// meters) to geographic longitude/latitude in degrees. Returns a
	// *RangeError when the point cannot be resolved.
	ToGeographic(x, y float64, params [15]float64) (lon, lat float64, err error)

	// FromGeographic converts geographic longitude/latitude in degrees to
	// projected x, y.
	FromGeographic(lon, lat float64, params [15]float64) (x, y float64)

	// Code returns the projection's GCTP-style code.
	Code() descriptor.ProjectionCode
}

// ForCode returns a Projection for the given projection code, or nil if the
// code isn't one this engine can project. Only GEO, SIN, and ISIN are
// implemented; UTM/SPCS/ALBERS/LAMCC are legal MRT projection codes in
// general (the compatibility checker rejects them as mosaic inputs) but
// have no inverse-projection implementation here, since the mosaic engine
// only ever accepts SIN/ISIN tiles (SPEC_FULL.md §3 invariants) — ForCode
// returning nil for them lets the planner produce the correct "unsupported"
// fallback rather than silently mis-projecting.
func ForCode(code descriptor.ProjectionCode) Projection {
	switch code {
	case descriptor.ProjGEO:
		return &Geographic{}
	case descriptor.ProjSIN:
		return &Sinusoidal{}
	case descriptor.ProjISIN:
		return &IntegerizedSinusoidal{}
	default:
		return nil
	}
}

// Geographic is the identity projection: projected units are already
// degrees of longitude/latitude.
type Geographic struct{}

func (g *Geographic) Code() descriptor.ProjectionCode { return descriptor.ProjGEO }

func (g *Geographic) ToGeographic(x, y float64, _ [15]float64) (float64, float64, error) {
	return x, y, nil
}

func (g *Geographic) FromGeographic(lon, lat float64, _ [15]float64) (float64, float64) {
	return lon, lat
}

// sphereRadius extracts the datum sphere radius from the projection
// parameter array the way GCTP does: projection_parameters[0], in meters,
// falling back to the IAU/IUGG mean Earth radius used by MODIS products
// when unset.
func sphereRadius(params [15]float64) float64 {
	if params[0] > 0 {
		return params[0]
	}
	return 6371007.181
}

// Sinusoidal implements the equal-area Sinusoidal projection used directly
// by MOD09/MOD13-family low-resolution MODIS products.
type Sinusoidal struct{}

func (s *Sinusoidal) Code() descriptor.ProjectionCode { return descriptor.ProjSIN }

func (s *Sinusoidal) FromGeographic(lon, lat float64, params [15]float64) (x, y float64) {
	r := sphereRadius(params)
	latR := lat * math.Pi / 180.0
	lonR := lon * math.Pi / 180.0
	x = r * lonR * math.Cos(latR)
	y = r * latR
	return
}

func (s *Sinusoidal) ToGeographic(x, y float64, params [15]float64) (lon, lat float64, err error) {
	r := sphereRadius(params)
	latR := y / r
	if math.Abs(latR) > math.Pi/2.0 {
		return 0, 0, &RangeError{}
	}
	cosLat := math.Cos(latR)
	if math.Abs(cosLat) < 1e-12 {
		// At the poles x carries no longitude information; GCTP reports
		// this as a range error rather than guessing.
		return 0, 0, &RangeError{}
	}
	lonR := x / (r * cosLat)
	lon = lonR * 180.0 / math.Pi
	lat = latR * 180.0 / math.Pi
	if lon > 180.0 || lon < -180.0 {
		return lon, lat, &RangeError{}
	}
	return lon, lat, nil
}

// IntegerizedSinusoidal implements the MODIS ISIN grid: the globe is
// divided into NZone latitude rows of equal height; each row's sinusoidal
// x-extent is subdivided into an integer number of columns proportional to
// cos(lat at the row's center), which is what keeps ISIN cell areas nearly
// equal without the fractional-column seams a pure Sinusoidal grid would
// have at tile boundaries. NZone defaults to the standard MODIS value of
// 360 when params[8] is unset.
type IntegerizedSinusoidal struct{}

func (s *IntegerizedSinusoidal) Code() descriptor.ProjectionCode { return descriptor.ProjISIN }

func nzone(params [15]float64) float64 {
	if params[8] > 0 {
		return params[8]
	}
	return 360
}

func zoneCenterLat(latR, nz float64) float64 {
	zone := math.Floor((latR + math.Pi/2.0) / (math.Pi / nz))
	return (zone+0.5)*(math.Pi/nz) - math.Pi/2.0
}

func (s *IntegerizedSinusoidal) FromGeographic(lon, lat float64, params [15]float64) (x, y float64) {
	r := sphereRadius(params)
	nz := nzone(params)
	latR := lat * math.Pi / 180.0
	lonR := lon * math.Pi / 180.0

	zc := zoneCenterLat(latR, nz)
	x = r * lonR * math.Cos(zc)
	y = latR * r
	return
}

func (s *IntegerizedSinusoidal) ToGeographic(x, y float64, params [15]float64) (lon, lat float64, err error) {
	r := sphereRadius(params)
	nz := nzone(params)

	latR := y / r
	if math.Abs(latR) > math.Pi/2.0 {
		return 0, 0, &RangeError{}
	}

	zc := zoneCenterLat(latR, nz)
	cosZone := math.Cos(zc)
	if math.Abs(cosZone) < 1e-12 {
		return 0, 0, &RangeError{Interrupted: true}
	}

	lonR := x / (r * cosZone)
	lon = lonR * 180.0 / math.Pi
	lat = latR * 180.0 / math.Pi
	if lon > 180.0 || lon < -180.0 {
		return lon, lat, &RangeError{Interrupted: true}
	}
	return lon, lat, nil
}
