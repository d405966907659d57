package offset_elevation_corrector

import "github.com/ecopia-map/cesium_streamer/internal/converters"

// OffsetElevationCorrector lifts every height by a constant amount, used to move the area of
// interest from ground level to ellipsoid height.
type OffsetElevationCorrector struct {
	Offset float64
}

func NewOffsetElevationCorrector(offset float64) converters.ElevationCorrector {
	return &OffsetElevationCorrector{
		Offset: offset,
	}
}

func (c *OffsetElevationCorrector) CorrectElevation(lon, lat, z float64) float64 {
	return z + c.Offset
}
