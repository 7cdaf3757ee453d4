package math

import "github.com/chewxy/math32"

// Mat4 is a column-major 4x4 matrix, laid out the way OpenGL expects:
// element (row, col) lives at m[col*4+row], so m[12..14] is the
// translation column.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = x, y, z, 1
	return m
}

// Perspective returns a right-handed perspective projection with clip
// depth in [-1, 1]. fovY is the vertical field of view in radians,
// aspect is width over height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	d := 1 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * d
	m[11] = -1
	m[14] = 2 * far * near * d
	return m
}

// LookAt returns a view matrix for a camera at eye looking toward
// center. up is the approximate up direction; it does not need to be
// orthogonal to the view direction.
func LookAt(eye, center, up Vec3) Mat4 {
	fwd := center.Sub(eye).Normalize()
	right := fwd.Cross(up).Normalize()
	top := right.Cross(fwd)

	var m Mat4
	m[0], m[4], m[8], m[12] = right.X, right.Y, right.Z, -right.Dot(eye)
	m[1], m[5], m[9], m[13] = top.X, top.Y, top.Z, -top.Dot(eye)
	m[2], m[6], m[10], m[14] = -fwd.X, -fwd.Y, -fwd.Z, fwd.Dot(eye)
	m[15] = 1
	return m
}

// Vec4 is a 4-component homogeneous vector.
type Vec4 [4]float32

// MulVec4 returns m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12]*v[3],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13]*v[3],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14]*v[3],
		m[3]*v[0] + m[7]*v[1] + m[11]*v[2] + m[15]*v[3],
	}
}

// Mul returns the product m * other. Column k of the result is m
// applied to column k of other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for k := 0; k < 4; k++ {
		col := m.MulVec4(Vec4{other[k*4], other[k*4+1], other[k*4+2], other[k*4+3]})
		out[k*4], out[k*4+1], out[k*4+2], out[k*4+3] = col[0], col[1], col[2], col[3]
	}
	return out
}

// TransformVec3 applies the full transform, translation included, to a
// point. The result is divided by w when the matrix is projective.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	h := m.MulVec4(Vec4{v.X, v.Y, v.Z, 1})
	if h[3] != 0 && h[3] != 1 {
		inv := 1 / h[3]
		return Vec3{h[0] * inv, h[1] * inv, h[2] * inv}
	}
	return Vec3{h[0], h[1], h[2]}
}

// TransformDirection applies the rotation and scale part of the
// transform to a direction. Translation is ignored.
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// pairDets computes the twelve 2x2 sub-determinants shared by
// Determinant and Inverse: s from the top two rows, c from the bottom
// two.
func (m Mat4) pairDets() (s, c [6]float32) {
	s[0] = m[0]*m[5] - m[1]*m[4]
	s[1] = m[0]*m[9] - m[1]*m[8]
	s[2] = m[0]*m[13] - m[1]*m[12]
	s[3] = m[4]*m[9] - m[5]*m[8]
	s[4] = m[4]*m[13] - m[5]*m[12]
	s[5] = m[8]*m[13] - m[9]*m[12]

	c[0] = m[2]*m[7] - m[3]*m[6]
	c[1] = m[2]*m[11] - m[3]*m[10]
	c[2] = m[2]*m[15] - m[3]*m[14]
	c[3] = m[6]*m[11] - m[7]*m[10]
	c[4] = m[6]*m[15] - m[7]*m[14]
	c[5] = m[10]*m[15] - m[11]*m[14]
	return s, c
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float32 {
	s, c := m.pairDets()
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// Inverse returns the inverse of the matrix, computed by Laplace
// expansion over the paired sub-determinants. A singular matrix yields
// the identity.
func (m Mat4) Inverse() Mat4 {
	s, c := m.pairDets()

	det := s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
	if det == 0 {
		return Identity()
	}
	id := 1 / det

	return Mat4{
		(m[5]*c[5] - m[9]*c[4] + m[13]*c[3]) * id,
		(-m[1]*c[5] + m[9]*c[2] - m[13]*c[1]) * id,
		(m[1]*c[4] - m[5]*c[2] + m[13]*c[0]) * id,
		(-m[1]*c[3] + m[5]*c[1] - m[9]*c[0]) * id,

		(-m[4]*c[5] + m[8]*c[4] - m[12]*c[3]) * id,
		(m[0]*c[5] - m[8]*c[2] + m[12]*c[1]) * id,
		(-m[0]*c[4] + m[4]*c[2] - m[12]*c[0]) * id,
		(m[0]*c[3] - m[4]*c[1] + m[8]*c[0]) * id,

		(m[7]*s[5] - m[11]*s[4] + m[15]*s[3]) * id,
		(-m[3]*s[5] + m[11]*s[2] - m[15]*s[1]) * id,
		(m[3]*s[4] - m[7]*s[2] + m[15]*s[0]) * id,
		(-m[3]*s[3] + m[7]*s[1] - m[11]*s[0]) * id,

		(-m[6]*s[5] + m[10]*s[4] - m[14]*s[3]) * id,
		(m[2]*s[5] - m[10]*s[2] + m[14]*s[1]) * id,
		(-m[2]*s[4] + m[6]*s[2] - m[14]*s[0]) * id,
		(m[2]*s[3] - m[6]*s[1] + m[10]*s[0]) * id,
	}
}
