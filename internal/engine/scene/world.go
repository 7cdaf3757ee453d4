// Package scene owns the flat list of live mesh records and answers the ray
// queries mouse picking runs against them.
package scene

import (
	"sort"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/picking"
	"github.com/meshworks/meshstudio/pkg/math"
)

// Hit is one record struck by a ray.
type Hit struct {
	Record   *model.Record
	Distance float32   // world-space distance from the ray origin
	Point    math.Vec3 // world-space intersection point
}

// World holds the live records in insertion order. Like the selection
// registry it feeds, it is owned by the main goroutine.
type World struct {
	records []*model.Record
	byID    map[uint64]*model.Record
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{byID: make(map[uint64]*model.Record)}
}

// Add inserts a record. Re-adding a present record is a no-op.
func (w *World) Add(r *model.Record) {
	if r == nil || w.byID[r.ID] != nil {
		return
	}
	w.records = append(w.records, r)
	w.byID[r.ID] = r
}

// Remove deletes a record, reporting whether it was present.
func (w *World) Remove(r *model.Record) bool {
	if r == nil || w.byID[r.ID] == nil {
		return false
	}
	delete(w.byID, r.ID)
	for i, rec := range w.records {
		if rec == r {
			w.records = append(w.records[:i], w.records[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the record with the given id.
func (w *World) Get(id uint64) (*model.Record, bool) {
	r, ok := w.byID[id]
	return r, ok
}

// Contains reports whether the record is in the world. Its signature fits
// the undo history's live check.
func (w *World) Contains(r *model.Record) bool {
	return r != nil && w.byID[r.ID] == r
}

// All returns the records in insertion order.
func (w *World) All() []*model.Record {
	return append([]*model.Record(nil), w.records...)
}

// Count returns the number of records.
func (w *World) Count() int {
	return len(w.records)
}

// Bounds returns the box enclosing every visible record, and whether any
// visible record contributed. Cameras frame on this.
func (w *World) Bounds() (geometry.Box, bool) {
	var box geometry.Box
	found := false
	for _, r := range w.records {
		if !r.Visible || r.Geometry == nil {
			continue
		}
		b := r.WorldBounds()
		if !found {
			box = b
			found = true
			continue
		}
		box.Min = box.Min.Min(b.Min)
		box.Max = box.Max.Max(b.Max)
	}
	return box, found
}

// Intersect returns the visible records the ray strikes, nearest first.
// Each record runs the cheap tests before triangles: bounding sphere, then
// bounding box, then Möller-Trumbore over the draw range.
func (w *World) Intersect(ray picking.Ray) []Hit {
	var hits []Hit
	for _, r := range w.records {
		if !r.Visible || r.Geometry == nil {
			continue
		}
		if _, ok := ray.IntersectSphere(r.WorldSphere()); !ok {
			continue
		}
		if _, ok := ray.IntersectBox(r.WorldBounds()); !ok {
			continue
		}
		if point, ok := intersectRecord(ray, r); ok {
			hits = append(hits, Hit{
				Record:   r,
				Distance: point.Sub(ray.Origin).Length(),
				Point:    point,
			})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// intersectRecord tests the ray against the record's triangles. The ray is
// taken into the record's local frame; the nearest local hit is mapped back
// to world space, so distances stay correct under scaled poses.
func intersectRecord(ray picking.Ray, r *model.Record) (math.Vec3, bool) {
	world := r.WorldMatrix()
	inv := world.Inverse()
	local := picking.Ray{
		Origin:    inv.TransformVec3(ray.Origin),
		Direction: inv.TransformDirection(ray.Direction), // not renormalized: t is discarded
	}

	pos := r.Geometry.Attr(geometry.Position)
	if pos == nil || pos.ItemSize < 3 {
		return math.Vec3{}, false
	}

	best := float32(0)
	found := false
	dr := r.Geometry.DrawRange()
	for i := dr.Start; i+2 < dr.Start+dr.Count; i += 3 {
		a, okA := triangleVertex(r.Geometry, pos, i)
		b, okB := triangleVertex(r.Geometry, pos, i+1)
		c, okC := triangleVertex(r.Geometry, pos, i+2)
		if !okA || !okB || !okC {
			continue
		}
		if t, ok := local.IntersectTriangle(a, b, c); ok && (!found || t < best) {
			best = t
			found = true
		}
	}
	if !found {
		return math.Vec3{}, false
	}
	return world.TransformVec3(local.Origin.Add(local.Direction.Scale(best))), true
}

// triangleVertex resolves draw-range position i through the index array
// when present.
func triangleVertex(g *geometry.Buffer, pos *geometry.Attribute, i int) (math.Vec3, bool) {
	k := i
	if len(g.Index) > 0 {
		if i >= len(g.Index) {
			return math.Vec3{}, false
		}
		k = int(g.Index[i])
	}
	off := k * pos.ItemSize
	if off < 0 || off+2 >= len(pos.Data) {
		return math.Vec3{}, false
	}
	return math.Vec3{X: pos.Data[off], Y: pos.Data[off+1], Z: pos.Data[off+2]}, true
}
