// Package picking provides the ray casting mouse selection is built on:
// screen-to-world unprojection and the ray/shape tests the world's
// intersect query runs, cheapest first.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/pkg/math"
)

// Ray is a world-space ray with normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// ScreenToRay converts pixel coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H the viewport size,
// invViewProj the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // flip Y

	near := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, 1, 1})
	if near[3] != 0 {
		near[0] /= near[3]
		near[1] /= near[3]
		near[2] /= near[3]
	}
	if far[3] != 0 {
		far[0] /= far[3]
		far[1] /= far[3]
		far[2] /= far[3]
	}

	origin := math.Vec3{X: near[0], Y: near[1], Z: near[2]}
	dir := math.Vec3{X: far[0] - near[0], Y: far[1] - near[1], Z: far[2] - near[2]}
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlane intersects the ray with the plane through point with the
// given normal. Grazing and behind-origin intersections report no hit.
func (r Ray) IntersectPlane(point, normal math.Vec3) (math.Vec3, bool) {
	denom := r.Direction.Dot(normal)
	if math32.Abs(denom) < 1e-6 {
		return math.Vec3{}, false
	}
	t := point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}

// IntersectSphere tests the ray against a bounding sphere. Rays starting
// inside the sphere return the exit distance.
func (r Ray) IntersectSphere(s geometry.Sphere) (t float32, hit bool) {
	oc := r.Origin.Sub(s.Center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t = -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectBox tests the ray against an axis-aligned box using the slab
// method. Rays starting inside the box return the exit distance.
func (r Ray) IntersectBox(box geometry.Box) (t float32, hit bool) {
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	bmin := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	bmax := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	tmin := math32.Inf(-1)
	tmax := math32.Inf(1)
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < bmin[axis] || origin[axis] > bmax[axis] {
				return 0, false
			}
			continue
		}
		t1 := (bmin[axis] - origin[axis]) / dir[axis]
		t2 := (bmax[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle runs the Möller-Trumbore test against triangle abc,
// double-sided.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	const eps = 1e-7

	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false
	}

	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(q) * inv
	if t < eps {
		return 0, false
	}
	return t, true
}
