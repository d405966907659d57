// Package contenttest builds tile payloads for tests
package contenttest

import (
	"encoding/binary"
	"fmt"
)

// Glb returns a binary glTF holding only the given JSON chunk
func Glb(gltfJSON string) []byte {
	chunk := []byte(gltfJSON)
	for len(chunk)%4 != 0 {
		chunk = append(chunk, ' ')
	}

	total := 12 + 8 + len(chunk)
	buf := make([]byte, 0, total)
	buf = append(buf, "glTF"...)
	buf = binary.LittleEndian.AppendUint32(buf, 2)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(total))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(chunk)))
	buf = binary.LittleEndian.AppendUint32(buf, 0x4E4F534A)
	return append(buf, chunk...)
}

// GlbWithCopyright returns a glb whose asset carries the given copyright string
func GlbWithCopyright(copyright string) []byte {
	return Glb(fmt.Sprintf(`{"asset":{"version":"2.0","copyright":%q}}`, copyright))
}

// B3dm wraps glb in a batched model container with the given feature table JSON
func B3dm(featureJSON string, glb []byte) []byte {
	feature := []byte(featureJSON)
	for len(feature)%8 != 0 {
		feature = append(feature, ' ')
	}

	total := 28 + len(feature) + len(glb)
	buf := make([]byte, 0, total)
	buf = append(buf, "b3dm"...)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(total))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(feature)))
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = append(buf, feature...)
	return append(buf, glb...)
}
