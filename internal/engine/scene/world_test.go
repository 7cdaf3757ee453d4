package scene

import (
	"testing"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/picking"
	"github.com/meshworks/meshstudio/pkg/math"
)

// quadRecord builds a record with a two-triangle quad spanning x,y in
// [-1,1] at the given local z.
func quadRecord(name string, z float32) *model.Record {
	r := model.NewRecord(name)
	buf := geometry.NewBuffer()
	buf.SetAttr(geometry.Position, 3, []float32{
		-1, -1, z, 1, -1, z, 1, 1, z,
		-1, -1, z, 1, 1, z, -1, 1, z,
	})
	r.Geometry = buf
	return r
}

func zRay(x, y float32) picking.Ray {
	return picking.Ray{Origin: math.Vec3{X: x, Y: y, Z: -5}, Direction: math.Vec3{Z: 1}}
}

func TestWorld_AddRemove(t *testing.T) {
	w := NewWorld()
	a := model.NewRecord("a")
	b := model.NewRecord("b")

	w.Add(a)
	w.Add(b)
	w.Add(a) // duplicate
	if w.Count() != 2 {
		t.Fatalf("Count = %d, want 2", w.Count())
	}

	got, ok := w.Get(a.ID)
	if !ok || got != a {
		t.Errorf("Get(%d) = %v, %v, want a", a.ID, got, ok)
	}
	if !w.Contains(b) {
		t.Error("Contains(b) = false")
	}

	if !w.Remove(a) {
		t.Fatal("Remove(a) = false")
	}
	if w.Remove(a) {
		t.Error("second Remove(a) = true")
	}
	if w.Contains(a) {
		t.Error("Contains(a) = true after removal")
	}
	if all := w.All(); len(all) != 1 || all[0] != b {
		t.Errorf("All = %v, want [b]", all)
	}
}

func TestWorld_IntersectNearestFirst(t *testing.T) {
	w := NewWorld()
	far := quadRecord("far", -1)
	far.Position = math.Vec3{Z: 5} // quad lands at world z=4
	near := quadRecord("near", -1) // quad at world z=-1
	w.Add(far)
	w.Add(near)

	hits := w.Intersect(zRay(0, 0))
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Record != near || hits[1].Record != far {
		t.Fatalf("hit order = %s, %s, want near, far", hits[0].Record.Name, hits[1].Record.Name)
	}
	if hits[0].Distance != 4 || hits[1].Distance != 9 {
		t.Errorf("distances = %v, %v, want 4, 9", hits[0].Distance, hits[1].Distance)
	}
	if want := (math.Vec3{Z: -1}); hits[0].Point != want {
		t.Errorf("near hit Point = %v, want %v", hits[0].Point, want)
	}
}

func TestWorld_IntersectSkipsInvisible(t *testing.T) {
	w := NewWorld()
	hidden := quadRecord("hidden", -1)
	hidden.Visible = false
	shown := quadRecord("shown", -1)
	shown.Position = math.Vec3{Z: 2}
	w.Add(hidden)
	w.Add(shown)

	hits := w.Intersect(zRay(0, 0))
	if len(hits) != 1 || hits[0].Record != shown {
		t.Fatalf("hits = %v, want only the visible record", hits)
	}
}

func TestWorld_IntersectTriangleAccuracy(t *testing.T) {
	// One triangle in the z=0 plane: the bounding box covers the whole
	// unit square, so a ray beyond the hypotenuse must be rejected by the
	// triangle test, not the pre-tests.
	r := model.NewRecord("tri")
	buf := geometry.NewBuffer()
	buf.SetAttr(geometry.Position, 3, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	r.Geometry = buf

	w := NewWorld()
	w.Add(r)

	if hits := w.Intersect(zRay(0.9, 0.9)); len(hits) != 0 {
		t.Errorf("hits beyond the hypotenuse = %d, want 0", len(hits))
	}
	if hits := w.Intersect(zRay(0.1, 0.1)); len(hits) != 1 {
		t.Errorf("hits inside the triangle = %d, want 1", len(hits))
	}
}

func TestWorld_IntersectScaledRecord(t *testing.T) {
	r := quadRecord("big", -1)
	r.Scale = math.Vec3{X: 2, Y: 2, Z: 2} // quad now spans [-2,2] at world z=-2

	w := NewWorld()
	w.Add(r)

	hits := w.Intersect(zRay(1.5, 1.5))
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1 (point only inside the scaled quad)", len(hits))
	}
	// Distance must be measured in world space, not the local frame.
	if hits[0].Distance != 3 {
		t.Errorf("Distance = %v, want 3", hits[0].Distance)
	}
}

func TestWorld_IntersectIndexed(t *testing.T) {
	r := model.NewRecord("quad")
	buf := geometry.NewBuffer()
	buf.SetAttr(geometry.Position, 3, []float32{
		-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0,
	})
	buf.Index = []uint32{0, 1, 2, 0, 2, 3}
	r.Geometry = buf

	w := NewWorld()
	w.Add(r)

	hits := w.Intersect(zRay(0, 0))
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].Distance != 5 {
		t.Errorf("Distance = %v, want 5", hits[0].Distance)
	}
}

func TestWorld_IntersectHonorsDrawRange(t *testing.T) {
	r := model.NewRecord("partial")
	buf := geometry.NewBuffer()
	buf.SetAttr(geometry.Position, 3, []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0, // first triangle, outside the draw range
		5, 0, 0, 6, 0, 0, 5, 1, 0, // second triangle, drawn
	})
	buf.DrawStart = 3
	buf.DrawCount = 3
	r.Geometry = buf

	w := NewWorld()
	w.Add(r)

	if hits := w.Intersect(zRay(0.2, 0.2)); len(hits) != 0 {
		t.Errorf("hits on the undrawn triangle = %d, want 0", len(hits))
	}
	if hits := w.Intersect(zRay(5.2, 0.2)); len(hits) != 1 {
		t.Errorf("hits on the drawn triangle = %d, want 1", len(hits))
	}
}

func TestWorld_Bounds(t *testing.T) {
	w := NewWorld()
	if _, ok := w.Bounds(); ok {
		t.Fatal("Bounds reported content for an empty world")
	}

	a := quadRecord("a", 0)
	b := quadRecord("b", 0)
	b.Position = math.Vec3{X: 10}
	hidden := quadRecord("hidden", 0)
	hidden.Position = math.Vec3{X: -50}
	hidden.Visible = false
	w.Add(a)
	w.Add(b)
	w.Add(hidden)

	box, ok := w.Bounds()
	if !ok {
		t.Fatal("Bounds found nothing")
	}
	if box.Min.X != -1 || box.Max.X != 11 {
		t.Errorf("Bounds X = [%v, %v], want [-1, 11] (hidden record excluded)", box.Min.X, box.Max.X)
	}
}
