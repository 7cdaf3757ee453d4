// Package material defines the normalized PBR material every imported mesh
// ends up with, and the normalizer that converts arbitrary source materials
// into it. The normalized shape is deliberately constrained: slots the render
// path does not implement (bump, displacement, emissive, specular, clearcoat
// and friends) do not exist on the type at all, so they cannot leak through.
package material

import (
	"github.com/meshworks/meshstudio/internal/engine/texture"
)

// AlphaMode tags how a material's alpha is applied, for the renderer and
// exporters. Mask wins over Blend wins over Opaque.
type AlphaMode int

const (
	Opaque AlphaMode = iota
	Mask
	Blend
)

// String returns the glTF-style tag name.
func (m AlphaMode) String() string {
	switch m {
	case Mask:
		return "MASK"
	case Blend:
		return "BLEND"
	default:
		return "OPAQUE"
	}
}

// Standard is the normalized material. All scalar channels are kept inside
// their documented ranges by the sanitation pass; consumers may rely on that.
type Standard struct {
	Name string

	BaseColor    [3]float32
	BaseColorMap *texture.Ref
	AlphaMap     *texture.Ref

	NormalMap   *texture.Ref
	NormalScale float32 // [0,3]

	Metalness    float32 // [0,1]
	MetalnessMap *texture.Ref
	Roughness    float32 // [0,1]
	RoughnessMap *texture.Ref

	AOMap       *texture.Ref
	AOIntensity float32 // [0,1]

	Opacity     float32 // [0,1]
	Transparent bool
	AlphaTest   float32 // [0,1]; >0 only in Mask mode
	AlphaMode   AlphaMode

	DoubleSided bool
	FlatShading bool
	DepthWrite  bool
	DepthTest   bool

	Skinned      bool
	MorphTargets bool
}

// NewStandard returns a material with neutral defaults: opaque white,
// fully rough, non-metallic, depth read/write on.
func NewStandard(name string) *Standard {
	return &Standard{
		Name:        name,
		BaseColor:   [3]float32{1, 1, 1},
		NormalScale: 1,
		Roughness:   1,
		AOIntensity: 1,
		Opacity:     1,
		DepthWrite:  true,
		DepthTest:   true,
	}
}
