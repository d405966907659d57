package hierarchy

import (
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/ecopia-map/cesium_streamer/internal/observability"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/golang/glog"
)

// CollisionVolume is a precise shape supplied by the host, tested instead of bounding spheres
type CollisionVolume interface {
	Penetrates(other CollisionVolume) bool
}

type Culler struct {
	Mode tiler.CullMode

	// Optional precise volumes. Used only when both the area of interest and the node provide one.
	AoiVolume  CollisionVolume
	NodeVolume func(n Node) CollisionVolume
}

func NewCuller(mode tiler.CullMode) *Culler {
	if mode == "" {
		mode = tiler.CullModeDestroy
	}
	return &Culler{Mode: mode}
}

// Cull walks the subtree in pre-order and prunes every node that does not intersect aoi, without
// visiting its children. Nodes without a bounding volume are kept. Returns the number of nodes
// removed or deactivated.
func (c *Culler) Cull(tree *Tree, start NodeID, aoi geometry.Sphere) int {
	culled := 0
	tree.Walk(start, func(n Node) bool {
		if !n.Active {
			return false
		}
		if c.intersects(tree, n, aoi) {
			return true
		}

		glog.V(2).Infof("culling %s", n.Path)
		switch c.Mode {
		case tiler.CullModeDeactivate:
			culled += tree.SetActive(n.ID, false)
		default:
			culled += tree.Remove(n.ID)
		}
		return false
	})

	observability.NodesCulled.Add(float64(culled))
	return culled
}

func (c *Culler) intersects(tree *Tree, n Node, aoi geometry.Sphere) bool {
	sphere, hasSphere := tree.EnsureBoundingSphere(n.ID)

	if c.AoiVolume != nil && c.NodeVolume != nil {
		if volume := c.NodeVolume(n); volume != nil {
			return volume.Penetrates(c.AoiVolume)
		}
	}

	if !hasSphere {
		return true
	}
	return sphere.Intersects(aoi)
}
