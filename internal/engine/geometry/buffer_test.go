package geometry

import (
	"testing"

	"github.com/meshworks/meshstudio/pkg/math"
)

func TestVertexCount(t *testing.T) {
	b := NewBuffer()
	if got := b.VertexCount(); got != 0 {
		t.Errorf("empty VertexCount() = %d, want 0", got)
	}

	b.SetAttr(Position, 3, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	if got := b.VertexCount(); got != 3 {
		t.Errorf("VertexCount() = %d, want 3", got)
	}
}

func TestDrawRange(t *testing.T) {
	b := NewBuffer()
	b.SetAttr(Position, 3, make([]float32, 30)) // 10 vertices

	tests := []struct {
		name  string
		start int
		count int
		want  Range
	}{
		{"full by default", 0, DrawAll, Range{0, 10}},
		{"explicit sub-range", 3, 4, Range{3, 4}},
		{"count overflow clamps", 6, 100, Range{6, 4}},
		{"negative start resets", -5, DrawAll, Range{0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.DrawStart, b.DrawCount = tt.start, tt.count
			if got := b.DrawRange(); got != tt.want {
				t.Errorf("DrawRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	b := NewBuffer()
	b.SetAttr(Position, 3, []float32{
		-1, -2, -3,
		4, 0, 0,
		0, 5, 6,
	})

	box := b.Bounds()
	if box.Min != (math.Vec3{X: -1, Y: -2, Z: -3}) {
		t.Errorf("Bounds().Min = %v, want (-1,-2,-3)", box.Min)
	}
	if box.Max != (math.Vec3{X: 4, Y: 5, Z: 6}) {
		t.Errorf("Bounds().Max = %v, want (4,5,6)", box.Max)
	}
}

func TestBoundingSphereExactRadius(t *testing.T) {
	// Vertices clustered near the -X face: the exact max-distance radius is
	// smaller than the AABB half-diagonal would be.
	b := NewBuffer()
	b.SetAttr(Position, 3, []float32{
		-10, 0, 0,
		10, 0, 0,
		-10, 1, 0,
		-10, -1, 0,
	})

	s := b.BoundingSphere()
	if s.Center != (math.Vec3{X: 0, Y: 0, Z: 0}) {
		t.Errorf("sphere center = %v, want origin", s.Center)
	}
	// Farthest vertex from the center is (-10, ±1, 0): distance sqrt(101).
	want := float32(10.049875)
	if d := s.Radius - want; d < -1e-3 || d > 1e-3 {
		t.Errorf("sphere radius = %v, want %v", s.Radius, want)
	}
}

func TestBoundsCached(t *testing.T) {
	b := NewBuffer()
	b.SetAttr(Position, 3, []float32{1, 1, 1})
	first := b.Bounds()

	// Mutating after the first query must not change the cached box;
	// buffers are immutable once imported.
	b.SetAttr(Position, 3, []float32{9, 9, 9})
	if got := b.Bounds(); got != first {
		t.Errorf("Bounds() after mutation = %v, want cached %v", got, first)
	}
}

func TestBoxTransform(t *testing.T) {
	box := Box{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}

	moved := box.Transform(math.Translate(10, 0, 0))
	if moved.Min != (math.Vec3{X: 9, Y: -1, Z: -1}) || moved.Max != (math.Vec3{X: 11, Y: 1, Z: 1}) {
		t.Errorf("translated box = %+v", moved)
	}

	scaled := box.Transform(math.Scale(2, 3, 1))
	if scaled.Min != (math.Vec3{X: -2, Y: -3, Z: -1}) || scaled.Max != (math.Vec3{X: 2, Y: 3, Z: 1}) {
		t.Errorf("scaled box = %+v", scaled)
	}
}

func TestBoxVolume(t *testing.T) {
	box := Box{Min: math.Vec3{}, Max: math.Vec3{X: 2, Y: 3, Z: 4}}
	if got := box.Volume(); got != 24 {
		t.Errorf("Volume() = %v, want 24", got)
	}
}

func TestSphereTransform(t *testing.T) {
	s := Sphere{Center: math.Vec3{X: 1, Y: 0, Z: 0}, Radius: 2}
	got := s.Transform(math.Scale(3, 1, 1))

	if got.Center != (math.Vec3{X: 3, Y: 0, Z: 0}) {
		t.Errorf("transformed center = %v, want (3,0,0)", got.Center)
	}
	if got.Radius != 6 {
		t.Errorf("transformed radius = %v, want 6 (max axis scale)", got.Radius)
	}
}
