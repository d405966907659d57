package hierarchy

import (
	"math"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
)

// TilesetContext is shared by every node of one streamed tileset. It is filled before the root
// manifest is attached and read only afterwards.
type TilesetContext struct {
	Aoi       geometry.CullingAoi
	AoiSphere geometry.Sphere

	// Every placement is relative to this point so that positions fit in float32
	WorldOrigin r3.Vector

	// Rotates the world frame so that the tangent plane at the origin is level
	Rotation mgl32.Quat

	APIKey  string
	RootURL string

	RootBoxCenter    *r3.Vector
	RootRegionCenter *geometry.LatLngAlt
}

func NewTilesetContext(aoi geometry.CullingAoi, apiKey string) *TilesetContext {
	center := aoi.Center()
	return &TilesetContext{
		Aoi:         aoi,
		AoiSphere:   converters.AoiSphere(aoi),
		WorldOrigin: converters.WorldPositionFromLatLngAlt(center),
		Rotation:    LevelingRotation(center),
		APIKey:      apiKey,
	}
}

// LevelingRotation maps the ellipsoid normal at center onto +Y
func LevelingRotation(center geometry.LatLngAlt) mgl32.Quat {
	lat := float32(center.Lat.Radians())
	lon := float32(center.Lng.Radians())

	return mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1}).
		Mul(mgl32.QuatRotate(-lat, mgl32.Vec3{0, 1, 0})).
		Mul(mgl32.QuatRotate(-lon, mgl32.Vec3{0, 0, 1}))
}

// adoptRootManifest records root placement anchors and, for streaming tiles that advertise their
// horizontal extent, levels the tileset on that extent instead of the area of interest
func (c *TilesetContext) adoptRootManifest(url string, ts *tileset.Tileset) {
	c.RootURL = url

	volume := ts.Root.BoundingVolume
	switch volume.Kind {
	case tileset.VolumeBox:
		center := converters.TileFrameToWorldFrame(volume.BoxCenter())
		c.RootBoxCenter = &center
	case tileset.VolumeRegion:
		center := converters.RegionCenter(volume.Region)
		c.RootRegionCenter = &center
	}

	if lon, lat, ok := ts.HorizontalCenter(); ok {
		c.Rotation = LevelingRotation(geometry.LatLngAltFromDegrees(lat, lon, 0))
	}
}

// Placement positions a node relative to the tileset origin. The anchor is the mesh declared
// center when present, then the content box, the node box, the node region and finally the root.
func (c *TilesetContext) Placement(n Node, centerOffset *r3.Vector) geometry.Placement {
	local := c.anchor(n, centerOffset).Sub(c.WorldOrigin)
	position := mgl32.Vec3{float32(local.X), float32(local.Y), float32(local.Z)}

	return geometry.Placement{
		Position: c.Rotation.Rotate(position),
		Rotation: c.Rotation,
	}
}

func (c *TilesetContext) anchor(n Node, centerOffset *r3.Vector) r3.Vector {
	switch {
	case centerOffset != nil:
		return *centerOffset
	case n.ContentBoxCenter != nil:
		return *n.ContentBoxCenter
	case n.NodeBoxCenter != nil:
		return *n.NodeBoxCenter
	case n.NodeRegionCenter != nil:
		return converters.WorldPositionFromLatLngAlt(*n.NodeRegionCenter)
	case c.RootBoxCenter != nil:
		return *c.RootBoxCenter
	case c.RootRegionCenter != nil:
		return converters.WorldPositionFromLatLngAlt(*c.RootRegionCenter)
	}
	return c.WorldOrigin
}
