package math

import (
	"math"
	"testing"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := range m {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("Identity()[%d] = %v, want %v", i, m[i], want)
		}
	}
}

func TestTranslateScale(t *testing.T) {
	if got := Translate(1, 2, 3).TransformVec3(Vec3{1, 1, 1}); got != (Vec3{2, 3, 4}) {
		t.Errorf("translated point = %v, want (2, 3, 4)", got)
	}
	if got := Scale(2, 3, 4).TransformVec3(Vec3{1, 1, 1}); got != (Vec3{2, 3, 4}) {
		t.Errorf("scaled point = %v, want (2, 3, 4)", got)
	}
	// The right-hand factor applies first.
	if got := Translate(5, 0, 0).Mul(Scale(2, 2, 2)).TransformVec3(Vec3{1, 0, 0}); got != (Vec3{7, 0, 0}) {
		t.Errorf("translate * scale point = %v, want (7, 0, 0)", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	// fovY of 90 degrees with unit aspect gives f = 1.
	p := Perspective(float32(math.Pi/2), 1, 1, 3)

	near := p.TransformVec3(Vec3{0, 0, -1})
	if abs(near.Z+1) > 1e-5 {
		t.Errorf("near plane maps to z = %v, want -1", near.Z)
	}

	far := p.TransformVec3(Vec3{0, 0, -3})
	if abs(far.Z-1) > 1e-5 {
		t.Errorf("far plane maps to z = %v, want 1", far.Z)
	}
}

func TestPerspectiveDivide(t *testing.T) {
	p := Perspective(float32(math.Pi/2), 1, 1, 3)

	// A point on the far plane, one unit off axis: w = 3 after
	// projection, so x must come back divided.
	got := p.TransformVec3(Vec3{1, 1, -3})
	want := Vec3{1.0 / 3, 1.0 / 3, 1}
	if !vecNear(got, want, 1e-5) {
		t.Errorf("projected point = %v, want %v", got, want)
	}
}

func TestLookAt(t *testing.T) {
	view := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})

	if got := view.TransformVec3(Vec3{0, 0, 5}); !vecNear(got, Vec3{}, 1e-5) {
		t.Errorf("eye maps to %v, want origin", got)
	}
	if got := view.TransformVec3(Vec3{}); !vecNear(got, Vec3{0, 0, -5}, 1e-5) {
		t.Errorf("center maps to %v, want (0, 0, -5)", got)
	}
	// +X in world stays +X for a camera on the Z axis.
	if got := view.TransformDirection(Vec3{1, 0, 0}); !vecNear(got, Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("right direction maps to %v, want (1, 0, 0)", got)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Compose(Vec3{1, 2, 3}, QuatFromAxisAngle(Vec3{0, 1, 0}, 0.8), Vec3{2, 1, 0.5})

	if got := m.Mul(Identity()); !matNear(got, m, 0) {
		t.Errorf("M * I = %v, want M", got)
	}
	if got := Identity().Mul(m); !matNear(got, m, 0) {
		t.Errorf("I * M = %v, want M", got)
	}
}

func TestMulMatchesVectorPath(t *testing.T) {
	a := Compose(Vec3{1, 0, -2}, QuatFromAxisAngle(Vec3{1, 0, 0}, 0.4), Vec3{1, 1, 1})
	b := Compose(Vec3{0, 3, 0}, QuatFromAxisAngle(Vec3{0, 0, 1}, -1.1), Vec3{2, 2, 2})
	v := Vec4{0.5, -1, 2, 1}

	left := a.Mul(b).MulVec4(v)
	right := a.MulVec4(b.MulVec4(v))
	for i := range left {
		if abs(left[i]-right[i]) > 1e-4 {
			t.Fatalf("(A*B)*v = %v, A*(B*v) = %v", left, right)
		}
	}
}

func TestDeterminant(t *testing.T) {
	if got := Identity().Determinant(); got != 1 {
		t.Errorf("det(I) = %v, want 1", got)
	}

	scaled := Compose(Vec3{}, QuatIdentity(), Vec3{2, 3, 4})
	if got := scaled.Determinant(); abs(got-24) > 1e-4 {
		t.Errorf("det(scale 2,3,4) = %v, want 24", got)
	}

	mirrored := Compose(Vec3{7, 0, 0}, QuatIdentity(), Vec3{-1, 1, 1})
	if got := mirrored.Determinant(); abs(got+1) > 1e-4 {
		t.Errorf("det(mirror) = %v, want -1", got)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Compose(Vec3{-3, 8, 1}, QuatFromAxisAngle(Vec3{2, -1, 4}.Normalize(), 1.3), Vec3{0.5, 2, 1.5})

	if got := m.Mul(m.Inverse()); !matNear(got, Identity(), 1e-4) {
		t.Errorf("M * M^-1 = %v, want identity", got)
	}
	if got := m.Inverse().Mul(m); !matNear(got, Identity(), 1e-4) {
		t.Errorf("M^-1 * M = %v, want identity", got)
	}
}

func TestInverseSingular(t *testing.T) {
	flat := Compose(Vec3{}, QuatIdentity(), Vec3{1, 0, 1})
	if got := flat.Inverse(); !matNear(got, Identity(), 0) {
		t.Errorf("inverse of singular matrix = %v, want identity", got)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Compose(Vec3{100, 100, 100}, QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2)), Vec3{1, 1, 1})

	got := m.TransformDirection(Vec3{1, 0, 0})
	if !vecNear(got, Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("direction = %v, want (0, 0, -1)", got)
	}
}
