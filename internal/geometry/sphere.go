package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Sphere is a bounding sphere in the world frame
type Sphere struct {
	Center       r3.Vector
	RadiusMeters float64
}

// Intersects reports whether the two spheres overlap. Touching spheres do not intersect.
func (s Sphere) Intersects(other Sphere) bool {
	return s.Center.Distance(other.Center) < s.RadiusMeters+other.RadiusMeters
}

func (s Sphere) IsFinite() bool {
	for _, v := range []float64{s.Center.X, s.Center.Y, s.Center.Z, s.RadiusMeters} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CullingAoi is the area of interest used to prune tiles, as a circle around a geodetic center
type CullingAoi struct {
	CenterLatDeg float64
	CenterLonDeg float64
	HeightMeters float64
	RadiusMeters float64
}

func (a CullingAoi) Center() LatLngAlt {
	return LatLngAltFromDegrees(a.CenterLatDeg, a.CenterLonDeg, a.HeightMeters)
}
