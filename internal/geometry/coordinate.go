package geometry

import (
	"math"

	"github.com/golang/geo/s1"
)

// Coordinate is a generic triple expressed in the units of its source reference system
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// LatLngAlt is a geodetic position on the WGS84 ellipsoid
type LatLngAlt struct {
	Lat s1.Angle
	Lng s1.Angle
	Alt float64
}

func LatLngAltFromDegrees(lat, lng, alt float64) LatLngAlt {
	return LatLngAlt{
		Lat: s1.Angle(lat) * s1.Degree,
		Lng: s1.Angle(lng) * s1.Degree,
		Alt: alt,
	}
}

func LatLngAltFromRadians(lat, lng, alt float64) LatLngAlt {
	return LatLngAlt{
		Lat: s1.Angle(lat) * s1.Radian,
		Lng: s1.Angle(lng) * s1.Radian,
		Alt: alt,
	}
}

func (p LatLngAlt) IsFinite() bool {
	for _, v := range []float64{p.Lat.Radians(), p.Lng.Radians(), p.Alt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
