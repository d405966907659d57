package instantiate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ecopia-map/cesium_streamer/internal/observability"
	"github.com/ecopia-map/cesium_streamer/tools"
	"github.com/golang/glog"
)

// FileInstantiator writes every mesh as <output>/<path>.glb next to a <path>.json placement sidecar
type FileInstantiator struct {
	outputDir string
}

func NewFileInstantiator(outputDir string) *FileInstantiator {
	return &FileInstantiator{outputDir: outputDir}
}

type sidecar struct {
	Path         string      `json:"path"`
	Position     [3]float32  `json:"position"`
	Rotation     [4]float32  `json:"rotation"`
	CenterOffset *[3]float64 `json:"centerOffset,omitempty"`
	Copyright    []string    `json:"copyright,omitempty"`
	MeshBytes    int         `json:"meshBytes"`
}

func (f *FileInstantiator) Instantiate(ctx context.Context, request Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	base := filepath.Join(f.outputDir, filepath.FromSlash(request.Path))
	if err := tools.CreateDirectoryIfDoesNotExist(filepath.Dir(base)); err != nil {
		return Result{}, err
	}

	if err := os.WriteFile(base+".glb", request.MeshBytes, 0666); err != nil {
		return Result{}, fmt.Errorf("write mesh %s: %w", request.Path, err)
	}

	copyright := meshCopyright(request.MeshBytes)
	rotation := request.Placement.Rotation
	meta := sidecar{
		Path:      request.Path,
		Position:  [3]float32(request.Placement.Position),
		Rotation:  [4]float32{rotation.X(), rotation.Y(), rotation.Z(), rotation.W},
		Copyright: copyright,
		MeshBytes: len(request.MeshBytes),
	}
	if c := request.CenterOffset; c != nil {
		meta.CenterOffset = &[3]float64{c.X, c.Y, c.Z}
	}

	data, err := json.MarshalIndent(meta, "", "\t")
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(base+".json", data, 0666); err != nil {
		return Result{}, fmt.Errorf("write placement %s: %w", request.Path, err)
	}

	observability.DecodedMeshBytes.Add(float64(len(request.MeshBytes)))
	glog.V(2).Infof("wrote %s.glb (%d bytes)", base, len(request.MeshBytes))
	return Result{Success: true, Copyright: copyright}, nil
}
