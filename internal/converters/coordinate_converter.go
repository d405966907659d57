package converters

import (
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
)

const WGS84Srid = 4326

type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error)
	ConvertToWGS84LatLngAlt(coord geometry.Coordinate, sourceSrid int) (geometry.LatLngAlt, error)
	Cleanup()
}

type ElevationCorrector interface {
	CorrectElevation(lon, lat, z float64) float64
}
