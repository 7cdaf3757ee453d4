package asset

// Kind discriminates the source material types a parser can produce.
type Kind int

const (
	Unknown Kind = iota
	PBR
	Phong
	Lambert
)

// String returns the kind name as it appears in logs.
func (k Kind) String() string {
	switch k {
	case PBR:
		return "pbr"
	case Phong:
		return "phong"
	case Lambert:
		return "lambert"
	default:
		return "unknown"
	}
}

// Material is a parsed source material. The four concrete types in this
// package are the only implementations; consumers dispatch on Kind() or a
// type switch rather than probing individual fields.
type Material interface {
	Kind() Kind
	Base() *Surface
	isMaterial()
}

// Surface carries the fields shared by every source material kind. Parsers
// fill it from format data; the normalizer copies these verbatim before its
// sanitation pass.
type Surface struct {
	Name         string
	Opacity      float32
	Transparent  bool
	AlphaTest    float32
	DoubleSided  bool
	FlatShading  bool
	DepthWrite   bool
	DepthTest    bool
	Skinned      bool
	MorphTargets bool

	BaseColorMap *Texture
	AlphaMap     *Texture
	NormalMap    *Texture
	NormalScale  float32
	AOMap        *Texture
	AOIntensity  float32
}

// DefaultSurface returns a Surface with the neutral defaults all formats
// share: fully opaque, depth read/write on, unit normal and AO strength.
func DefaultSurface(name string) Surface {
	return Surface{
		Name:        name,
		Opacity:     1,
		NormalScale: 1,
		AOIntensity: 1,
		DepthWrite:  true,
		DepthTest:   true,
	}
}

// Base returns the shared surface fields.
func (s *Surface) Base() *Surface { return s }

func (s *Surface) isMaterial() {}

// PBRMaterial is a metallic/roughness material (glTF's native model).
type PBRMaterial struct {
	Surface
	BaseColor            [3]float32
	Metalness            float32
	Roughness            float32
	MetalnessMap         *Texture
	RoughnessMap         *Texture
	MetallicRoughnessMap *Texture // packed G=roughness B=metalness, glTF style
}

// Kind returns PBR.
func (m *PBRMaterial) Kind() Kind { return PBR }

// PhongMaterial is a legacy specular/shininess material (OBJ/MTL, FBX Phong).
type PhongMaterial struct {
	Surface
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
}

// Kind returns Phong.
func (m *PhongMaterial) Kind() Kind { return Phong }

// LambertMaterial is a legacy diffuse-only material (FBX Lambert).
type LambertMaterial struct {
	Surface
	Diffuse [3]float32
}

// Kind returns Lambert.
func (m *LambertMaterial) Kind() Kind { return Lambert }

// UnknownMaterial stands in for shading models no parser maps onto the other
// kinds. BaseColor is the parser's best-effort color; ShadingModel keeps the
// raw model string for logs.
type UnknownMaterial struct {
	Surface
	BaseColor    [3]float32
	ShadingModel string
}

// Kind returns Unknown.
func (m *UnknownMaterial) Kind() Kind { return Unknown }
