package material

import (
	"github.com/chewxy/math32"
	"github.com/jinzhu/copier"

	"github.com/meshworks/meshstudio/internal/engine/texture"
	"github.com/meshworks/meshstudio/pkg/asset"
)

// ResolveTexture turns a parsed texture reference into a renderer texture.
// The import pipeline injects one backed by its decode cache; when nil, a
// bare un-decoded Ref is produced, which headless tools are content with.
type ResolveTexture func(*asset.Texture) *texture.Ref

// Normalizer converts source materials into Standard materials and owns the
// side table of base colors that sanitation whitened away (so an editor can
// offer the original tint back when a base texture is removed).
type Normalizer struct {
	resolve ResolveTexture
	backups map[*Standard][3]float32
}

// NewNormalizer returns a normalizer using the given texture resolver.
func NewNormalizer(resolve ResolveTexture) *Normalizer {
	if resolve == nil {
		resolve = func(t *asset.Texture) *texture.Ref {
			return &texture.Ref{Name: t.Name, Source: t.Path}
		}
	}
	return &Normalizer{
		resolve: resolve,
		backups: make(map[*Standard][3]float32),
	}
}

// Normalize converts a source material of any kind into a sanitized Standard.
// hasUV and hasUV2 describe the geometry the material is paired with; they
// drive the UV-dependent sanitation rules. Normalize is total: unclassifiable
// input degrades to a neutral material rather than failing the import.
func (n *Normalizer) Normalize(src asset.Material, hasUV, hasUV2 bool) *Standard {
	var m *Standard
	switch s := src.(type) {
	case *asset.PBRMaterial:
		m = n.fromPBR(s)
	case *asset.PhongMaterial:
		m = n.fromPhong(s)
	case *asset.LambertMaterial:
		m = n.fromLambert(s)
	case *asset.UnknownMaterial:
		m = n.fromUnknown(s)
	case nil:
		m = NewStandard("")
	default:
		m = NewStandard("")
		n.applySurface(m, src.Base())
	}
	n.Sanitize(m, hasUV, hasUV2)
	return m
}

// fromPBR passes a modern material through as a deep copy. Texture slots are
// re-resolved rather than copied: they cross from parser refs to renderer
// refs.
func (n *Normalizer) fromPBR(src *asset.PBRMaterial) *Standard {
	m := NewStandard(src.Name)
	if err := copier.CopyWithOption(m, src, copier.Option{CaseSensitive: true, DeepCopy: true}); err != nil {
		m.BaseColor = src.BaseColor
		m.Metalness = src.Metalness
		m.Roughness = src.Roughness
	}
	n.applySurface(m, &src.Surface)

	m.MetalnessMap = n.tex(src.MetalnessMap)
	m.RoughnessMap = n.tex(src.RoughnessMap)
	if src.MetallicRoughnessMap != nil {
		// glTF packs both channels into one image; feed it to both slots
		packed := n.tex(src.MetallicRoughnessMap)
		m.MetalnessMap = packed
		m.RoughnessMap = packed
	}
	return m
}

// fromPhong converts a legacy specular material. Emissive terms are never
// carried over: under environment lighting they wash the surface out, so
// dropping them is a deliberate conversion rule, not an omission. Shininess
// maps onto roughness; legacy materials have no metalness concept.
func (n *Normalizer) fromPhong(src *asset.PhongMaterial) *Standard {
	m := NewStandard(src.Name)
	n.applySurface(m, &src.Surface)
	m.BaseColor = src.Diffuse
	m.Metalness = 0
	m.Roughness = 1 - math32.Min(src.Shininess/100, 1)
	return m
}

// fromLambert converts a legacy diffuse-only material: fully rough,
// non-metallic, emissive dropped like the Phong path.
func (n *Normalizer) fromLambert(src *asset.LambertMaterial) *Standard {
	m := NewStandard(src.Name)
	n.applySurface(m, &src.Surface)
	m.BaseColor = src.Diffuse
	m.Metalness = 0
	m.Roughness = 1
	return m
}

// fromUnknown shallow-copies what it can from an unclassified material.
func (n *Normalizer) fromUnknown(src *asset.UnknownMaterial) *Standard {
	m := NewStandard(src.Name)
	if err := copier.Copy(m, src); err != nil {
		m.BaseColor = src.BaseColor
	}
	n.applySurface(m, &src.Surface)
	return m
}

// applySurface copies the shared surface fields verbatim and resolves the
// shared texture slots.
func (n *Normalizer) applySurface(m *Standard, s *asset.Surface) {
	if s.Name != "" {
		m.Name = s.Name
	}
	m.Opacity = s.Opacity
	m.Transparent = s.Transparent
	m.AlphaTest = s.AlphaTest
	m.DoubleSided = s.DoubleSided
	m.FlatShading = s.FlatShading
	m.DepthWrite = s.DepthWrite
	m.DepthTest = s.DepthTest
	m.Skinned = s.Skinned
	m.MorphTargets = s.MorphTargets
	m.NormalScale = s.NormalScale
	m.AOIntensity = s.AOIntensity

	m.BaseColorMap = n.tex(s.BaseColorMap)
	m.AlphaMap = n.tex(s.AlphaMap)
	m.NormalMap = n.tex(s.NormalMap)
	m.AOMap = n.tex(s.AOMap)
}

func (n *Normalizer) tex(t *asset.Texture) *texture.Ref {
	if t == nil {
		return nil
	}
	return n.resolve(t)
}

// Sanitize applies the normalization rules every material must satisfy
// before rendering. It is idempotent: re-running it on an already sanitized
// material changes nothing, so editors can call it after every edit.
func (n *Normalizer) Sanitize(m *Standard, hasUV, hasUV2 bool) {
	// A base color texture already carries the color; a tint on top would
	// apply it twice. Remember the tint so the editor can restore it.
	if m.BaseColorMap != nil {
		white := [3]float32{1, 1, 1}
		if m.BaseColor != white {
			if _, ok := n.backups[m]; !ok {
				n.backups[m] = m.BaseColor
			}
			m.BaseColor = white
		}
		m.BaseColorMap.SRGB = true
	}

	m.AOIntensity = clamp01(m.AOIntensity)
	m.Metalness = clamp01(m.Metalness)
	m.Roughness = clamp01(m.Roughness)
	m.Opacity = clamp01(m.Opacity)
	m.AlphaTest = clamp01(m.AlphaTest)
	m.NormalScale = math32.Min(3, math32.Max(0, m.NormalScale))

	// Alpha resolution, in priority order: a positive alpha test means a
	// hard cutout that stays depth-writing; only unmasked materials may
	// blend; blended surfaces do not write depth.
	hasMask := m.AlphaTest > 0
	transparent := !hasMask && (m.Transparent || m.Opacity < 1 || m.AlphaMap != nil)

	m.Transparent = transparent
	m.DepthWrite = hasMask || !transparent
	switch {
	case hasMask:
		m.AlphaMode = Mask
	case transparent:
		m.AlphaMode = Blend
	default:
		m.AlphaMode = Opaque
	}
	if !hasMask {
		// stale thresholds must not leak into blend-mode materials
		m.AlphaTest = 0
	}

	// An occlusion map without any UV set to sample by is unusable.
	if m.AOMap != nil && !hasUV && !hasUV2 {
		m.AOMap = nil
	}
}

// OriginalBaseColor returns the tint a material carried before sanitation
// whitened it under a base color texture.
func (n *Normalizer) OriginalBaseColor(m *Standard) ([3]float32, bool) {
	c, ok := n.backups[m]
	return c, ok
}

// Forget drops any backup state held for the material. Call when a material
// is discarded with its record.
func (n *Normalizer) Forget(m *Standard) {
	delete(n.backups, m)
}

func clamp01(v float32) float32 {
	return math32.Min(1, math32.Max(0, v))
}
