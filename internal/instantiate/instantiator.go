package instantiate

import (
	"context"

	"github.com/ecopia-map/cesium_streamer/internal/content"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/golang/geo/r3"
)

// Request carries one decoded mesh to the host
type Request struct {
	// Path of the node in the hierarchy, unique per tree
	Path string

	MeshBytes    []byte
	CenterOffset *r3.Vector
	Placement    geometry.Placement
}

type Result struct {
	Success   bool
	Copyright []string
}

// Instantiator hands decoded meshes to whatever displays or stores them
type Instantiator interface {
	Instantiate(ctx context.Context, request Request) (Result, error)
}

// meshCopyright reads the attribution embedded in the mesh, if any
func meshCopyright(meshBytes []byte) []string {
	glb, err := content.DecodeGlb(meshBytes)
	if err != nil {
		return nil
	}
	return glb.Copyright()
}
