package geometry

import (
	"github.com/chewxy/math32"

	"github.com/meshworks/meshstudio/pkg/math"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the box midpoint.
func (b Box) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Box) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Volume returns the enclosed volume.
func (b Box) Volume() float32 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Transform returns the axis-aligned box enclosing this box under m,
// by transforming all eight corners.
func (b Box) Transform(m math.Mat4) Box {
	corners := [8]math.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	out := Box{
		Min: math.Vec3{X: math32.Inf(1), Y: math32.Inf(1), Z: math32.Inf(1)},
		Max: math.Vec3{X: math32.Inf(-1), Y: math32.Inf(-1), Z: math32.Inf(-1)},
	}
	for _, c := range corners {
		p := m.TransformVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// Transform returns a sphere enclosing this sphere under m: the center is
// transformed and the radius scaled by the largest axis scale of m.
func (s Sphere) Transform(m math.Mat4) Sphere {
	sx := math.Vec3{X: m[0], Y: m[1], Z: m[2]}.Length()
	sy := math.Vec3{X: m[4], Y: m[5], Z: m[6]}.Length()
	sz := math.Vec3{X: m[8], Y: m[9], Z: m[10]}.Length()

	return Sphere{
		Center: m.TransformVec3(s.Center),
		Radius: s.Radius * math32.Max(sx, math32.Max(sy, sz)),
	}
}

func computeBox(pos *Attribute) Box {
	if pos == nil || pos.Count() == 0 {
		return Box{}
	}

	box := Box{
		Min: math.Vec3{X: math32.Inf(1), Y: math32.Inf(1), Z: math32.Inf(1)},
		Max: math.Vec3{X: math32.Inf(-1), Y: math32.Inf(-1), Z: math32.Inf(-1)},
	}
	for i := 0; i+2 < len(pos.Data); i += pos.ItemSize {
		p := math.Vec3{X: pos.Data[i], Y: pos.Data[i+1], Z: pos.Data[i+2]}
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

func computeSphere(pos *Attribute, center math.Vec3) Sphere {
	if pos == nil || pos.Count() == 0 {
		return Sphere{}
	}

	var max2 float32
	for i := 0; i+2 < len(pos.Data); i += pos.ItemSize {
		d := math.Vec3{X: pos.Data[i], Y: pos.Data[i+1], Z: pos.Data[i+2]}.Sub(center)
		if d2 := d.Dot(d); d2 > max2 {
			max2 = d2
		}
	}
	return Sphere{Center: center, Radius: math32.Sqrt(max2)}
}
