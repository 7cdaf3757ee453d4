package formats

import (
	"bytes"
	"encoding/binary"
)

// GLB container constants.
const (
	glbMagic     = 0x46546C67 // "glTF"
	glbChunkJSON = 0x4E4F534A // "JSON"
)

// UsesMeshCompression reports whether glTF or GLB bytes reference the
// mesh-compression extension, without a full document parse. GLB data is
// walked to its first JSON chunk so signatures inside binary payloads do
// not count; .gltf text is scanned directly.
func UsesMeshCompression(data []byte) bool {
	sig := []byte(meshCompressionExt)
	if doc, ok := glbJSONChunk(data); ok {
		return bytes.Contains(doc, sig)
	}
	return bytes.Contains(data, sig)
}

// glbJSONChunk extracts the first JSON chunk of a GLB container. ok is
// false when the data is not well-formed GLB.
func glbJSONChunk(data []byte) ([]byte, bool) {
	if len(data) < 12 || binary.LittleEndian.Uint32(data) != glbMagic {
		return nil, false
	}
	off := 12
	for off+8 <= len(data) {
		length := int(binary.LittleEndian.Uint32(data[off:]))
		ctype := binary.LittleEndian.Uint32(data[off+4:])
		off += 8
		if length < 0 || off+length > len(data) {
			return nil, false
		}
		if ctype == glbChunkJSON {
			return data[off : off+length], true
		}
		off += length
	}
	return nil, false
}
