package hierarchy

import (
	"math"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/golang/geo/r3"
)

// BoundingSphere returns a world frame sphere enclosing the volume. Unknown volumes have none.
func BoundingSphere(volume tileset.BoundingVolume) (geometry.Sphere, bool) {
	switch volume.Kind {
	case tileset.VolumeBox:
		return BoxBoundingSphere(volume), true
	case tileset.VolumeRegion:
		return RegionBoundingSphere(volume.Region), true
	}
	return geometry.Sphere{}, false
}

// BoxBoundingSphere centers the sphere on the box and takes the longest half axis as radius
func BoxBoundingSphere(volume tileset.BoundingVolume) geometry.Sphere {
	center := converters.TileFrameToWorldFrame(volume.BoxCenter())

	radius := 0.0
	for _, axis := range volume.BoxHalfAxes() {
		radius = math.Max(radius, converters.TileFrameToWorldFrame(axis).Norm())
	}

	return geometry.Sphere{Center: center, RadiusMeters: radius}
}

// RegionBoundingSphere samples the 8 corners of the region, averages them for the center and
// keeps the farthest corner distance as radius.
func RegionBoundingSphere(region [6]float64) geometry.Sphere {
	west, south, east, north, minHeight, maxHeight := region[0], region[1], region[2], region[3], region[4], region[5]

	corners := make([]r3.Vector, 0, 8)
	for _, lon := range []float64{west, east} {
		for _, lat := range []float64{south, north} {
			for _, height := range []float64{minHeight, maxHeight} {
				corners = append(corners, converters.WorldPositionFromLatLngAlt(geometry.LatLngAltFromRadians(lat, lon, height)))
			}
		}
	}

	var center r3.Vector
	for _, c := range corners {
		center = center.Add(c)
	}
	center = center.Mul(1 / float64(len(corners)))

	radius := 0.0
	for _, c := range corners {
		radius = math.Max(radius, c.Distance(center))
	}

	return geometry.Sphere{Center: center, RadiusMeters: radius}
}
