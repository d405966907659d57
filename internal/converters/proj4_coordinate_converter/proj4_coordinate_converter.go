package proj4_coordinate_converter

import (
	"fmt"
	"sync"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/golang/geo/s1"
	"github.com/golang/glog"
	proj "github.com/xeonx/proj4"
)

type proj4CoordinateConverter struct {
	mu          sync.Mutex
	projections map[int]*proj.Proj
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &proj4CoordinateConverter{
		projections: make(map[int]*proj.Proj),
	}
}

// Converts the given coordinate from the given source Srid to the given target srid.
func (cc *proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	src, err := cc.initProjection(sourceSrid)
	if err != nil {
		return coord, err
	}

	dst, err := cc.initProjection(targetSrid)
	if err != nil {
		return coord, err
	}

	x, y, z := []float64{coord.X}, []float64{coord.Y}, []float64{coord.Z}
	if src.IsLatLong() {
		x[0], y[0] = toRadians(x[0]), toRadians(y[0])
	}

	if err := proj.TransformRaw(src, dst, x, y, z); err != nil {
		return coord, fmt.Errorf("transform %d -> %d: %w", sourceSrid, targetSrid, err)
	}

	if dst.IsLatLong() {
		x[0], y[0] = toDegrees(x[0]), toDegrees(y[0])
	}

	return geometry.Coordinate{X: x[0], Y: y[0], Z: z[0]}, nil
}

// Converts a projected easting/northing/height triple to a WGS84 geodetic position
func (cc *proj4CoordinateConverter) ConvertToWGS84LatLngAlt(coord geometry.Coordinate, sourceSrid int) (geometry.LatLngAlt, error) {
	out, err := cc.ConvertCoordinateSrid(sourceSrid, converters.WGS84Srid, coord)
	if err != nil {
		return geometry.LatLngAlt{}, err
	}

	return geometry.LatLngAltFromDegrees(out.Y, out.X, out.Z), nil
}

// Releases all projection objects from memory
func (cc *proj4CoordinateConverter) Cleanup() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	for srid, val := range cc.projections {
		val.Close()
		delete(cc.projections, srid)
	}
}

// Returns the projection corresponding to the given EPSG code, storing it in the cache if not already present
func (cc *proj4CoordinateConverter) initProjection(code int) (*proj.Proj, error) {
	if val, ok := cc.projections[code]; ok {
		return val, nil
	}

	definition, ok := EpsgDefinition(code)
	if !ok {
		return nil, fmt.Errorf("epsg code %d is not supported", code)
	}

	projection, err := proj.InitPlus(definition)
	if err != nil {
		glog.Errorf("cannot init projection for epsg %d: %v", code, err)
		return nil, err
	}

	cc.projections[code] = projection
	return projection, nil
}

func toRadians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

func toDegrees(rad float64) float64 {
	return s1.Angle(rad).Degrees()
}
