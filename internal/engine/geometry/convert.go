package geometry

import (
	"github.com/meshworks/meshstudio/pkg/asset"
)

// FromAsset converts parser geometry into a renderer buffer. Attribute data
// is copied, never aliased, so the asset scene can be dropped after import.
func FromAsset(src *asset.Geometry) *Buffer {
	b := NewBuffer()
	b.SetAttr(Position, 3, flatten3(src.Positions))
	if len(src.Normals) > 0 {
		b.SetAttr(Normal, 3, flatten3(src.Normals))
	}
	if len(src.UVs) > 0 {
		b.SetAttr(UV, 2, flatten2(src.UVs))
	}
	if len(src.UV2s) > 0 {
		b.SetAttr(UV2, 2, flatten2(src.UV2s))
	}
	if len(src.Indices) > 0 {
		b.Index = append([]uint32(nil), src.Indices...)
	}
	for _, m := range src.Morphs {
		mt := MorphTarget{Name: m.Name, Attrs: map[string]*Attribute{}}
		if len(m.Positions) > 0 {
			mt.Attrs[Position] = &Attribute{ItemSize: 3, Data: flatten3(m.Positions)}
		}
		if len(m.Normals) > 0 {
			mt.Attrs[Normal] = &Attribute{ItemSize: 3, Data: flatten3(m.Normals)}
		}
		b.Morphs = append(b.Morphs, mt)
	}
	return b
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

func flatten2(v [][2]float32) []float32 {
	out := make([]float32, 0, len(v)*2)
	for _, p := range v {
		out = append(out, p[0], p[1])
	}
	return out
}
