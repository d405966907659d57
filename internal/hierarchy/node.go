package hierarchy

import (
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/golang/geo/r3"
)

type NodeID int

const NoNode NodeID = -1

type LoadState string

const (
	LoadStateNone      LoadState = "None"
	LoadStateQueued    LoadState = "Queued"
	LoadStateLoaded    LoadState = "Loaded"
	LoadStateFailed    LoadState = "Failed"
	LoadStateCancelled LoadState = "Cancelled"
)

// Node is a materialized tile. Values returned by Tree are snapshots; mutate through the Tree.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID

	// Name is the traversal name inside the manifest that declared the node, e.g. "0-2-1"
	Name string

	// Path is unique in the tree. Nodes of a nested manifest are prefixed with the path of the
	// node that referenced it: "0-3/0-1".
	Path  string
	Depth int

	Tile        *tileset.Tile
	ManifestURL string
	SessionID   string
	Context     *TilesetContext

	Volume           tileset.VolumeKind
	NodeBoxCenter    *r3.Vector
	ContentBoxCenter *r3.Vector
	NodeRegionCenter *geometry.LatLngAlt
	BoundingSphere   *geometry.Sphere

	Active    bool
	Expanded  bool
	LoadState LoadState
	Copyright []string
}

func (n Node) HasMeshContent() bool {
	return n.Tile != nil && n.Tile.HasContent() && n.Tile.Content.IsMesh()
}

func (n Node) HasManifestContent() bool {
	return n.Tile != nil && n.Tile.HasContent() && n.Tile.Content.IsManifest()
}

func (n Node) clone() Node {
	n.Children = append([]NodeID(nil), n.Children...)
	n.Copyright = append([]string(nil), n.Copyright...)
	return n
}
