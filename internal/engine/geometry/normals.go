package geometry

import (
	"github.com/meshworks/meshstudio/pkg/math"
)

// ComputeFlatNormals writes a per-face normal into every vertex of a
// non-indexed triangle-list buffer, replacing any existing normal attribute.
// Degenerate triangles get a zero normal rather than NaN.
func ComputeFlatNormals(b *Buffer) {
	pos := b.Attr(Position)
	if pos == nil {
		return
	}

	normals := make([]float32, len(pos.Data)/pos.ItemSize*3)
	for tri := 0; tri+8 < len(pos.Data); tri += 9 {
		v0 := math.Vec3{X: pos.Data[tri], Y: pos.Data[tri+1], Z: pos.Data[tri+2]}
		v1 := math.Vec3{X: pos.Data[tri+3], Y: pos.Data[tri+4], Z: pos.Data[tri+5]}
		v2 := math.Vec3{X: pos.Data[tri+6], Y: pos.Data[tri+7], Z: pos.Data[tri+8]}

		n := v1.Sub(v0).Cross(v2.Sub(v0))
		if n.Length() > 1e-10 {
			n = n.Normalize()
		} else {
			n = math.Vec3{}
		}

		for j := 0; j < 3; j++ {
			normals[tri+j*3] = n.X
			normals[tri+j*3+1] = n.Y
			normals[tri+j*3+2] = n.Z
		}
	}
	b.SetAttr(Normal, 3, normals)
}

// SmoothNormals averages the normal attribute across vertices that share a
// (quantized) position, reducing the faceted look of flat-shaded imports.
func SmoothNormals(b *Buffer) {
	pos := b.Attr(Position)
	norm := b.Attr(Normal)
	if pos == nil || norm == nil {
		return
	}

	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup.
	posMap := make(map[[3]int32][]int)
	n := pos.Count()
	for i := 0; i < n; i++ {
		key := [3]int32{
			int32(pos.Data[i*3] / epsilon),
			int32(pos.Data[i*3+1] / epsilon),
			int32(pos.Data[i*3+2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, idx := range idxs {
			sum.X += norm.Data[idx*3]
			sum.Y += norm.Data[idx*3+1]
			sum.Z += norm.Data[idx*3+2]
		}
		avg := sum.Normalize()

		for _, idx := range idxs {
			norm.Data[idx*3] = avg.X
			norm.Data[idx*3+1] = avg.Y
			norm.Data[idx*3+2] = avg.Z
		}
	}
}
