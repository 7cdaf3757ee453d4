// Package transform implements the drag anchor: the synthetic pivot a
// manipulation gizmo moves, propagating its motion to every selected record
// while preserving the records' spatial relationships.
package transform

import (
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/undo"
	"github.com/meshworks/meshstudio/pkg/math"
)

// State of the anchor's drag machine.
type State int

const (
	Idle State = iota
	Dragging
)

// volumeFloor keeps flat or empty bounding boxes from dropping out of the
// centroid weighting entirely.
const volumeFloor = 1e-6

// Anchor is the selection pivot. Its own scale is always identity; scaling
// selected records goes through ApplyUniformScale instead of the drag path.
//
// The relative-pose map is rebuilt at every drag start and discarded at
// drag end, never carried across drags.
type Anchor struct {
	Position math.Vec3
	Rotation math.Quat

	state    State
	members  []*model.Record
	relative map[uint64]math.Mat4

	history *undo.History
	entry   *undo.Entry

	onChanged   []func()
	onCommitted []func()
}

// NewAnchor returns an idle anchor. history may be nil, in which case drags
// are not recorded.
func NewAnchor(history *undo.History) *Anchor {
	return &Anchor{Rotation: math.QuatIdentity(), history: history}
}

// OnChanged subscribes to per-update notifications during a drag.
func (a *Anchor) OnChanged(fn func()) { a.onChanged = append(a.onChanged, fn) }

// OnCommitted subscribes to drag-end and direct-edit notifications.
func (a *Anchor) OnCommitted(fn func()) { a.onCommitted = append(a.onCommitted, fn) }

// State returns the drag state.
func (a *Anchor) State() State { return a.state }

// Active reports whether the anchor has members to manipulate.
func (a *Anchor) Active() bool { return len(a.members) > 0 }

// Members returns the records the anchor currently drives.
func (a *Anchor) Members() []*model.Record {
	return append([]*model.Record(nil), a.members...)
}

// Matrix returns the anchor's world matrix.
func (a *Anchor) Matrix() math.Mat4 {
	return math.Compose(a.Position, a.Rotation, math.Vec3{X: 1, Y: 1, Z: 1})
}

// SetSelection adopts a new member set and places the anchor: a single
// member hands over its exact position and orientation, several members put
// the anchor at the volume-weighted centroid of their bounding-box centers
// with identity orientation. Ignored during a drag; the map captured at
// drag start stays authoritative until the drag ends.
func (a *Anchor) SetSelection(records []*model.Record) {
	if a.state == Dragging {
		return
	}
	a.members = append([]*model.Record(nil), records...)
	switch len(a.members) {
	case 0:
	case 1:
		a.Position = a.members[0].Position
		a.Rotation = a.members[0].Rotation
	default:
		a.Position = weightedCenter(a.members)
		a.Rotation = math.QuatIdentity()
	}
}

// BeginDrag enters the drag state, capturing every member's pose relative
// to the anchor's current frame. A drag with no members never starts.
func (a *Anchor) BeginDrag() {
	if a.state != Idle || len(a.members) == 0 {
		return
	}
	a.state = Dragging
	inv := a.Matrix().Inverse()
	a.relative = make(map[uint64]math.Mat4, len(a.members))
	for _, r := range a.members {
		a.relative[r.ID] = inv.Mul(r.WorldMatrix())
	}
	if a.history != nil {
		a.entry = a.history.Capture(a.members)
	}
}

// Drag moves the anchor to a new world pose and re-derives every member's
// pose as anchor * relative, decomposed back into TRS.
func (a *Anchor) Drag(position math.Vec3, rotation math.Quat) {
	if a.state != Dragging {
		return
	}
	a.Position = position
	a.Rotation = rotation
	cur := a.Matrix()
	for _, r := range a.members {
		t, q, s := cur.Mul(a.relative[r.ID]).Decompose()
		r.Position, r.Rotation, r.Scale = t, q, s
	}
	a.notifyChanged()
}

// EndDrag leaves the drag state. One undo entry is committed when any
// member's pose actually changed over the drag.
func (a *Anchor) EndDrag() {
	if a.state != Dragging {
		return
	}
	a.state = Idle
	if a.history != nil {
		a.history.Commit(a.entry)
	}
	a.relative = nil
	a.entry = nil
	a.notifyCommitted()
}

// ApplyUniformScale sets every member's local scale to the absolute value.
// This is deliberately not anchor-relative: "scale all selected to v", each
// about its own origin, committed as one undo entry.
func (a *Anchor) ApplyUniformScale(v float32) {
	if a.state == Dragging || len(a.members) == 0 {
		return
	}
	var entry *undo.Entry
	if a.history != nil {
		entry = a.history.Capture(a.members)
	}
	for _, r := range a.members {
		r.Scale = math.Vec3{X: v, Y: v, Z: v}
	}
	a.notifyChanged()
	if a.history != nil {
		a.history.Commit(entry)
	}
	a.notifyCommitted()
}

func weightedCenter(records []*model.Record) math.Vec3 {
	var sum math.Vec3
	var total float32
	for _, r := range records {
		box := r.WorldBounds()
		w := box.Volume()
		if w < volumeFloor {
			w = volumeFloor
		}
		sum = sum.Add(box.Center().Scale(w))
		total += w
	}
	return sum.Scale(1 / total)
}

func (a *Anchor) notifyChanged() {
	for _, fn := range a.onChanged {
		fn()
	}
}

func (a *Anchor) notifyCommitted() {
	for _, fn := range a.onCommitted {
		fn()
	}
}
