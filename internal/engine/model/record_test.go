package model

import (
	"testing"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/pkg/math"
)

func TestNewRecordDefaults(t *testing.T) {
	a := NewRecord("a")
	b := NewRecord("b")

	if a.ID == b.ID {
		t.Error("records should get unique IDs")
	}
	if !a.Visible {
		t.Error("new records should be visible")
	}
	if a.Scale != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Scale = %v, want identity", a.Scale)
	}
	if a.Rotation != math.QuatIdentity() {
		t.Errorf("Rotation = %v, want identity", a.Rotation)
	}
}

func TestCaptureInitialOnce(t *testing.T) {
	r := NewRecord("r")
	r.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	r.CaptureInitial()

	// A second capture after moving must not overwrite the snapshot.
	r.Position = math.Vec3{X: 9, Y: 9, Z: 9}
	r.CaptureInitial()

	initial, ok := r.Initial()
	if !ok {
		t.Fatal("initial snapshot should exist")
	}
	if initial.Translation != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("initial translation = %v, want first capture", initial.Translation)
	}
}

func TestResetToInitial(t *testing.T) {
	r := NewRecord("r")
	if r.ResetToInitial() {
		t.Error("reset without a snapshot should report false")
	}

	r.Position = math.Vec3{X: 5, Y: 0, Z: 0}
	r.CaptureInitial()
	r.Position = math.Vec3{X: 100, Y: 100, Z: 100}
	r.Scale = math.Vec3{X: 2, Y: 2, Z: 2}

	if !r.ResetToInitial() {
		t.Fatal("reset with a snapshot should report true")
	}
	if r.Position != (math.Vec3{X: 5, Y: 0, Z: 0}) {
		t.Errorf("Position after reset = %v", r.Position)
	}
	if r.Scale != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Scale after reset = %v", r.Scale)
	}
}

func TestWorldBounds(t *testing.T) {
	buf := geometry.NewBuffer()
	buf.SetAttr(geometry.Position, 3, []float32{
		-1, -1, -1,
		1, 1, 1,
	})

	r := NewRecord("r")
	r.Geometry = buf
	r.Position = math.Vec3{X: 10, Y: 0, Z: 0}

	box := r.WorldBounds()
	if box.Min != (math.Vec3{X: 9, Y: -1, Z: -1}) || box.Max != (math.Vec3{X: 11, Y: 1, Z: 1}) {
		t.Errorf("WorldBounds() = %+v, want translated unit box", box)
	}

	s := r.WorldSphere()
	if s.Center != (math.Vec3{X: 10, Y: 0, Z: 0}) {
		t.Errorf("WorldSphere().Center = %v, want (10,0,0)", s.Center)
	}
}

func TestPoseRoundTrip(t *testing.T) {
	r := NewRecord("r")
	want := math.Transform{
		Translation: math.Vec3{X: 1, Y: 2, Z: 3},
		Rotation:    math.QuatFromAxisAngle(math.Vec3{Y: 1}, 1.5),
		Scale:       math.Vec3{X: 2, Y: 2, Z: 2},
	}
	r.SetPose(want)

	if got := r.Pose(); got != want {
		t.Errorf("Pose() = %+v, want %+v", got, want)
	}
}
