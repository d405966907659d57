package hierarchy

import (
	"math"
	"testing"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// worldNormal is the ellipsoid normal at p in the world frame
func worldNormal(p geometry.LatLngAlt) r3.Vector {
	lat, lon := p.Lat.Radians(), p.Lng.Radians()
	return converters.TileFrameToWorldFrame(r3.Vector{
		X: math.Cos(lat) * math.Cos(lon),
		Y: math.Cos(lat) * math.Sin(lon),
		Z: math.Sin(lat),
	})
}

func TestLevelingRotationMapsNormalToUp(t *testing.T) {
	for _, p := range []geometry.LatLngAlt{
		geometry.LatLngAltFromDegrees(35.6581, 139.7017, 0),
		geometry.LatLngAltFromDegrees(-33.86, 151.21, 0),
		geometry.LatLngAltFromDegrees(51.5, -0.12, 0),
	} {
		n := worldNormal(p)
		up := LevelingRotation(p).Rotate(mgl32.Vec3{float32(n.X), float32(n.Y), float32(n.Z)})
		assert.InDelta(t, 0, up.X(), 1e-5)
		assert.InDelta(t, 1, up.Y(), 1e-5)
		assert.InDelta(t, 0, up.Z(), 1e-5)
	}
}

func TestPlacementUsesCenterOffset(t *testing.T) {
	ctx := NewTilesetContext(testAoi, "")
	normal := worldNormal(testAoi.Center())
	offset := ctx.WorldOrigin.Add(normal.Mul(100))

	placement := ctx.Placement(Node{}, &offset)
	assert.InDelta(t, 0, placement.Position.X(), 1e-2)
	assert.InDelta(t, 100, placement.Position.Y(), 1e-2)
	assert.InDelta(t, 0, placement.Position.Z(), 1e-2)
	assert.Equal(t, ctx.Rotation, placement.Rotation)

	origin := ctx.Placement(Node{}, nil)
	assert.Equal(t, mgl32.Vec3{}, origin.Position)
}

func TestPlacementAnchorPriority(t *testing.T) {
	ctx := NewTilesetContext(testAoi, "")
	content := r3.Vector{X: 1}
	box := r3.Vector{X: 2}
	region := geometry.LatLngAltFromDegrees(10, 20, 0)
	rtc := r3.Vector{X: 3}

	n := Node{ContentBoxCenter: &content, NodeBoxCenter: &box, NodeRegionCenter: &region}
	assert.Equal(t, rtc, ctx.anchor(n, &rtc))
	assert.Equal(t, content, ctx.anchor(n, nil))

	n.ContentBoxCenter = nil
	assert.Equal(t, box, ctx.anchor(n, nil))

	n.NodeBoxCenter = nil
	assert.Equal(t, converters.WorldPositionFromLatLngAlt(region), ctx.anchor(n, nil))

	rootBox := r3.Vector{Y: 4}
	ctx.RootBoxCenter = &rootBox
	assert.Equal(t, rootBox, ctx.anchor(Node{}, nil))

	ctx.RootBoxCenter = nil
	assert.Equal(t, ctx.WorldOrigin, ctx.anchor(Node{}, nil))
}

func TestAdoptRootManifestLevelsOnHorizontalExtent(t *testing.T) {
	ts, err := tileset.Parse([]byte(`{
		"asset": {"version": "1.0"},
		"properties": {"_x": {"minimum": 130, "maximum": 132}, "_y": {"minimum": 32, "maximum": 34}},
		"root": {"boundingVolume": {"region": [2.27, 0.55, 2.30, 0.59, 0, 10]}, "geometricError": 1}
	}`))
	require.NoError(t, err)

	ctx := NewTilesetContext(testAoi, "")
	ctx.adoptRootManifest("https://tiles.example/root.json", ts)

	assert.Nil(t, ctx.RootBoxCenter)
	require.NotNil(t, ctx.RootRegionCenter)
	assert.InDelta(t, 0.57, ctx.RootRegionCenter.Lat.Radians(), 1e-9)
	assert.Equal(t, LevelingRotation(geometry.LatLngAltFromDegrees(33, 131, 0)), ctx.Rotation)
}
