package math

// Transform is a translation/rotation/scale triple describing a node pose.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// IdentityTransform returns a transform that maps every point to itself.
func IdentityTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3{1, 1, 1}}
}

// Mat4 composes the transform into a column-major matrix (T * R * S).
func (t Transform) Mat4() Mat4 {
	return Compose(t.Translation, t.Rotation, t.Scale)
}

// TransformFromMat4 decomposes a matrix into a Transform.
func TransformFromMat4(m Mat4) Transform {
	tr, r, s := m.Decompose()
	return Transform{Translation: tr, Rotation: r, Scale: s}
}

// Compose builds a matrix from translation, rotation and scale (T * R * S).
func Compose(translation Vec3, rotation Quat, scale Vec3) Mat4 {
	m := rotation.ToMat4()

	m[0] *= scale.X
	m[1] *= scale.X
	m[2] *= scale.X
	m[4] *= scale.Y
	m[5] *= scale.Y
	m[6] *= scale.Y
	m[8] *= scale.Z
	m[9] *= scale.Z
	m[10] *= scale.Z

	m[12] = translation.X
	m[13] = translation.Y
	m[14] = translation.Z

	return m
}

// Decompose splits the matrix into translation, rotation and scale.
// A negative determinant is folded into the X scale component so that
// Compose(Decompose(m)) reproduces m for any TRS matrix.
func (m Mat4) Decompose() (translation Vec3, rotation Quat, scale Vec3) {
	sx := Vec3{m[0], m[1], m[2]}.Length()
	sy := Vec3{m[4], m[5], m[6]}.Length()
	sz := Vec3{m[8], m[9], m[10]}.Length()

	if m.Determinant() < 0 {
		sx = -sx
	}

	translation = Vec3{m[12], m[13], m[14]}

	r := m
	if sx != 0 {
		inv := 1 / sx
		r[0] *= inv
		r[1] *= inv
		r[2] *= inv
	}
	if sy != 0 {
		inv := 1 / sy
		r[4] *= inv
		r[5] *= inv
		r[6] *= inv
	}
	if sz != 0 {
		inv := 1 / sz
		r[8] *= inv
		r[9] *= inv
		r[10] *= inv
	}

	rotation = QuatFromMat4(r)
	scale = Vec3{sx, sy, sz}
	return translation, rotation, scale
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}
