package content

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
)

const (
	GlbMagic         = "glTF"
	GlbHeaderLen     = 12
	GlbChunkTypeJSON = 0x4E4F534A
	glbChunkHeadLen  = 8
)

type GlbHeader struct {
	Magic   [4]byte
	Version uint32
	Length  uint32
}

// Gltf is the part of the glTF JSON document the streamer reads
type Gltf struct {
	Asset struct {
		Version   string `json:"version"`
		Generator string `json:"generator"`
		Copyright string `json:"copyright"`
	} `json:"asset"`
	ExtensionsUsed []string `json:"extensionsUsed"`
	Extensions     struct {
		CesiumRTC *struct {
			Center []float64 `json:"center"`
		} `json:"CESIUM_RTC"`
	} `json:"extensions"`
}

type Glb struct {
	Header GlbHeader
	JSON   []byte
	Gltf   Gltf
}

// DecodeGlb reads the glb header and its leading JSON chunk
func DecodeGlb(data []byte) (*Glb, error) {
	if len(data) < GlbHeaderLen+glbChunkHeadLen {
		return nil, fmt.Errorf("%w: glb has %d bytes", ErrTruncated, len(data))
	}

	var h GlbHeader
	copy(h.Magic[:], data[0:4])
	if string(h.Magic[:]) != GlbMagic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGlbMagic, h.Magic[:])
	}
	h.Version = binary.LittleEndian.Uint32(data[4:8])
	h.Length = binary.LittleEndian.Uint32(data[8:12])

	chunkLength := uint64(binary.LittleEndian.Uint32(data[12:16]))
	chunkType := binary.LittleEndian.Uint32(data[16:20])
	if chunkType != GlbChunkTypeJSON {
		return nil, fmt.Errorf("%w: type 0x%08X", ErrUnexpectedChunk, chunkType)
	}

	start := uint64(GlbHeaderLen + glbChunkHeadLen)
	if start+chunkLength > uint64(len(data)) {
		return nil, fmt.Errorf("%w: JSON chunk of %d bytes exceeds buffer", ErrTruncated, chunkLength)
	}

	glb := &Glb{Header: h, JSON: data[start : start+chunkLength]}
	if err := json.Unmarshal(trimPadding(glb.JSON), &glb.Gltf); err != nil {
		return nil, fmt.Errorf("%w: glTF: %v", ErrMalformedMetadata, err)
	}
	return glb, nil
}

// RtcCenter returns the CESIUM_RTC center, in the tile frame
func (g *Glb) RtcCenter() *r3.Vector {
	rtc := g.Gltf.Extensions.CesiumRTC
	if rtc == nil || len(rtc.Center) != 3 {
		return nil
	}
	return &r3.Vector{X: rtc.Center[0], Y: rtc.Center[1], Z: rtc.Center[2]}
}

// Copyright splits the semicolon separated attribution of the asset
func (g *Glb) Copyright() []string {
	return SplitCopyright(g.Gltf.Asset.Copyright)
}

func SplitCopyright(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
