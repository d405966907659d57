package content

import (
	"fmt"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/golang/geo/r3"
)

// Content is a decoded tile payload ready for instantiation
type Content struct {
	MeshBytes []byte

	// Local origin of the mesh in the world frame, nil when the mesh does not declare one
	CenterOffset *r3.Vector

	Copyright []string
	B3dm      *B3dm
}

// DecodeContent decodes a tile payload according to the extension of its URL
func DecodeContent(extension string, data []byte) (*Content, error) {
	switch extension {
	case ".b3dm":
		return DecodeB3dmContent(data)
	case ".glb":
		return DecodeGlbContent(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, extension)
}

// Decode sniffs the container magic
func Decode(data []byte) (*Content, error) {
	if len(data) >= 4 && string(data[0:4]) == GlbMagic {
		return DecodeGlbContent(data)
	}
	return DecodeB3dmContent(data)
}

func DecodeB3dmContent(data []byte) (*Content, error) {
	b3dm, err := DecodeB3dm(data)
	if err != nil {
		return nil, err
	}

	glb, err := DecodeGlb(b3dm.Glb)
	if err != nil {
		return nil, err
	}

	center := glb.RtcCenter()
	if center == nil {
		if center, err = b3dm.RtcCenter(); err != nil {
			return nil, err
		}
	}

	return &Content{
		MeshBytes:    b3dm.Glb,
		CenterOffset: toWorldFrame(center),
		Copyright:    glb.Copyright(),
		B3dm:         b3dm,
	}, nil
}

func DecodeGlbContent(data []byte) (*Content, error) {
	glb, err := DecodeGlb(data)
	if err != nil {
		return nil, err
	}

	return &Content{
		MeshBytes:    data,
		CenterOffset: toWorldFrame(glb.RtcCenter()),
		Copyright:    glb.Copyright(),
	}, nil
}

func toWorldFrame(v *r3.Vector) *r3.Vector {
	if v == nil {
		return nil
	}
	world := converters.TileFrameToWorldFrame(*v)
	return &world
}
