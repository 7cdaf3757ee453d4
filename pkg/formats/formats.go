// Package formats provides parsers for mesh asset file formats. Each parser
// takes raw file bytes and produces a *asset.Scene; the import pipeline picks
// the parser through Detect and never touches format details itself.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Shared format errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// Kind identifies a supported model file format.
type Kind int

const (
	KindUnknown Kind = iota
	KindGLTF         // .gltf JSON or .glb binary container
	KindFBX          // .fbx binary
	KindOBJ          // .obj text (with optional .mtl library)
)

// String returns a human-readable format name.
func (k Kind) String() string {
	switch k {
	case KindGLTF:
		return "glTF"
	case KindFBX:
		return "FBX"
	case KindOBJ:
		return "OBJ"
	default:
		return "unknown"
	}
}

// Detect maps a filename to its format by extension, case-insensitively.
// Unknown extensions fail with ErrUnsupportedFormat before any bytes are
// inspected.
func Detect(filename string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".gltf", ".glb":
		return KindGLTF, nil
	case ".fbx":
		return KindFBX, nil
	case ".obj":
		return KindOBJ, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
