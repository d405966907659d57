package hierarchy

import (
	"math"
	"testing"

	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/stretchr/testify/assert"
)

func TestBoxBoundingSphere(t *testing.T) {
	volume := tileset.BoundingVolume{
		Kind: tileset.VolumeBox,
		Box:  [12]float64{10, 20, 30, 3, 0, 0, 0, 4, 0, 0, 0, 12},
	}

	sphere, ok := BoundingSphere(volume)
	assert.True(t, ok)
	assert.Equal(t, 10.0, sphere.Center.X)
	assert.Equal(t, 20.0, sphere.Center.Y)
	assert.Equal(t, -30.0, sphere.Center.Z)
	assert.Equal(t, 12.0, sphere.RadiusMeters)
}

func TestRegionBoundingSphere(t *testing.T) {
	regions := [][6]float64{
		{2.4383, 0.6223, 2.4385, 0.6225, 0, 100},
		{-0.1, -0.1, 0.1, 0.1, -50, 50},
		{1, 1, 1, 1, 10, 10},
	}

	for _, region := range regions {
		sphere := RegionBoundingSphere(region)
		assert.True(t, sphere.IsFinite())
		assert.GreaterOrEqual(t, sphere.RadiusMeters, 0.0)
	}

	point := RegionBoundingSphere([6]float64{1, 1, 1, 1, 10, 10})
	assert.InDelta(t, 0, point.RadiusMeters, 1e-6)

	wide := RegionBoundingSphere(regions[1])
	assert.Greater(t, wide.RadiusMeters, 600000.0)
	assert.Less(t, wide.RadiusMeters, 1000000.0)
}

func TestBoundingSphereUnknownVolume(t *testing.T) {
	_, ok := BoundingSphere(tileset.BoundingVolume{})
	assert.False(t, ok)

	sphere, ok := BoundingSphere(tileset.BoundingVolume{Kind: tileset.VolumeRegion, Region: [6]float64{0, 0, 0.001, 0.001, 0, 0}})
	assert.True(t, ok)
	assert.False(t, math.IsNaN(sphere.RadiusMeters))
}
