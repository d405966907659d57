package converters

import (
	"math"

	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/golang/geo/r3"
)

const (
	WGS84SemiMajorAxis = 6378137.0
	WGS84SemiMinorAxis = 6356752.3142
)

var wgs84EccentricitySquared = 1 - (WGS84SemiMinorAxis*WGS84SemiMinorAxis)/(WGS84SemiMajorAxis*WGS84SemiMajorAxis)

// EcefFromGeodetic converts a geodetic position to Earth-Centered-Earth-Fixed coordinates in meters
func EcefFromGeodetic(p geometry.LatLngAlt) r3.Vector {
	lat := p.Lat.Radians()
	lon := p.Lng.Radians()
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	radius := WGS84SemiMajorAxis / math.Sqrt(1-wgs84EccentricitySquared*sinLat*sinLat)
	ratio := (WGS84SemiMinorAxis * WGS84SemiMinorAxis) / (WGS84SemiMajorAxis * WGS84SemiMajorAxis)

	return r3.Vector{
		X: cosLon * cosLat * (radius + p.Alt),
		Y: sinLon * cosLat * (radius + p.Alt),
		Z: sinLat * (ratio*radius + p.Alt),
	}
}

// GeodeticFromEcef inverts EcefFromGeodetic by fixed point iteration on the latitude.
// Not valid at the poles.
func GeodeticFromEcef(v r3.Vector) geometry.LatLngAlt {
	lon := math.Atan2(v.Y, v.X)
	p := math.Hypot(v.X, v.Y)

	lat := math.Atan2(v.Z, p*(1-wgs84EccentricitySquared))
	var alt float64
	for i := 0; i < 16; i++ {
		sinLat := math.Sin(lat)
		radius := WGS84SemiMajorAxis / math.Sqrt(1-wgs84EccentricitySquared*sinLat*sinLat)
		alt = p/math.Cos(lat) - radius
		next := math.Atan2(v.Z, p*(1-wgs84EccentricitySquared*radius/(radius+alt)))
		if math.Abs(next-lat) < 1e-14 {
			lat = next
			break
		}
		lat = next
	}

	sinLat := math.Sin(lat)
	radius := WGS84SemiMajorAxis / math.Sqrt(1-wgs84EccentricitySquared*sinLat*sinLat)
	alt = p/math.Cos(lat) - radius

	return geometry.LatLngAltFromRadians(lat, lon, alt)
}

// TileFrameToWorldFrame flips the third axis, turning the right handed tile frame into the left
// handed world frame. Every triple read from tile content goes through here.
func TileFrameToWorldFrame(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: -v.Z}
}

// RegionCenter returns the naive midpoint of a [west, south, east, north, minHeight, maxHeight]
// region. Regions crossing the antimeridian are not special cased.
func RegionCenter(region [6]float64) geometry.LatLngAlt {
	return geometry.LatLngAltFromRadians(
		(region[1]+region[3])/2,
		(region[0]+region[2])/2,
		(region[4]+region[5])/2,
	)
}

func WorldPositionFromLatLngAlt(p geometry.LatLngAlt) r3.Vector {
	return TileFrameToWorldFrame(EcefFromGeodetic(p))
}

// AoiSphere places the area of interest in the world frame
func AoiSphere(aoi geometry.CullingAoi) geometry.Sphere {
	return geometry.Sphere{
		Center:       WorldPositionFromLatLngAlt(aoi.Center()),
		RadiusMeters: aoi.RadiusMeters,
	}
}
