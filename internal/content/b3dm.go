package content

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"
)

const (
	B3dmMagic     = "b3dm"
	B3dmHeaderLen = 28
)

type B3dmHeader struct {
	Magic                        [4]byte
	Version                      uint32
	ByteLength                   uint32
	FeatureTableJSONByteLength   uint32
	FeatureTableBinaryByteLength uint32
	BatchTableJSONByteLength     uint32
	BatchTableBinaryByteLength   uint32
}

// B3dm is a decoded batched model container. All byte slices alias the input buffer.
type B3dm struct {
	Header             B3dmHeader
	FeatureTableJSON   []byte
	FeatureTableBinary []byte
	BatchTableJSON     []byte
	BatchTableBinary   []byte
	Glb                []byte
}

func DecodeB3dmHeader(data []byte) (B3dmHeader, error) {
	var h B3dmHeader
	if len(data) < B3dmHeaderLen {
		return h, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(data), B3dmHeaderLen)
	}

	copy(h.Magic[:], data[0:4])
	if string(h.Magic[:]) != B3dmMagic {
		return h, fmt.Errorf("%w: %q", ErrInvalidMagic, h.Magic[:])
	}

	h.Version = binary.LittleEndian.Uint32(data[4:8])
	h.ByteLength = binary.LittleEndian.Uint32(data[8:12])
	h.FeatureTableJSONByteLength = binary.LittleEndian.Uint32(data[12:16])
	h.FeatureTableBinaryByteLength = binary.LittleEndian.Uint32(data[16:20])
	h.BatchTableJSONByteLength = binary.LittleEndian.Uint32(data[20:24])
	h.BatchTableBinaryByteLength = binary.LittleEndian.Uint32(data[24:28])
	return h, nil
}

// DecodeB3dm splits a container into its sections. Section offsets are cumulative from the end
// of the header and the embedded glb is the rest of the buffer. ByteLength is not trusted.
func DecodeB3dm(data []byte) (*B3dm, error) {
	h, err := DecodeB3dmHeader(data)
	if err != nil {
		return nil, err
	}

	lengths := []uint64{
		uint64(h.FeatureTableJSONByteLength),
		uint64(h.FeatureTableBinaryByteLength),
		uint64(h.BatchTableJSONByteLength),
		uint64(h.BatchTableBinaryByteLength),
	}

	sections := make([][]byte, len(lengths))
	offset := uint64(B3dmHeaderLen)
	for i, length := range lengths {
		end := offset + length
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: section %d ends at %d, buffer has %d bytes", ErrTruncated, i, end, len(data))
		}
		sections[i] = data[offset:end]
		offset = end
	}

	return &B3dm{
		Header:             h,
		FeatureTableJSON:   sections[0],
		FeatureTableBinary: sections[1],
		BatchTableJSON:     sections[2],
		BatchTableBinary:   sections[3],
		Glb:                data[offset:],
	}, nil
}

// RtcCenter returns the RTC_CENTER entry of the feature table, in the tile frame
func (b *B3dm) RtcCenter() (*r3.Vector, error) {
	if len(b.FeatureTableJSON) == 0 {
		return nil, nil
	}

	var table struct {
		RtcCenter []float64 `json:"RTC_CENTER"`
	}
	if err := json.Unmarshal(trimPadding(b.FeatureTableJSON), &table); err != nil {
		return nil, fmt.Errorf("%w: feature table: %v", ErrMalformedMetadata, err)
	}
	if len(table.RtcCenter) != 3 {
		return nil, nil
	}
	return &r3.Vector{X: table.RtcCenter[0], Y: table.RtcCenter[1], Z: table.RtcCenter[2]}, nil
}

// JSON sections are padded with spaces or zero bytes to an 8 byte boundary
func trimPadding(data []byte) []byte {
	end := len(data)
	for end > 0 && (data[end-1] == 0 || data[end-1] == ' ') {
		end--
	}
	return data[:end]
}
