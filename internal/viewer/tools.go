package viewer

import (
	"github.com/chewxy/math32"

	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/undo"
	"github.com/meshworks/meshstudio/pkg/math"
)

// Tool selects what a left drag on the selection does.
type Tool int

const (
	ToolTranslate Tool = iota
	ToolRotate
	ToolScale
)

func (t Tool) String() string {
	switch t {
	case ToolTranslate:
		return "translate"
	case ToolRotate:
		return "rotate"
	case ToolScale:
		return "scale"
	default:
		return "unknown"
	}
}

const (
	rotateSensitivity = 0.008
	scaleSensitivity  = 0.004
)

// dragState tracks one tool drag from press to release.
type dragState struct {
	tool Tool

	// anchor frame at press, the reference all motion applies to
	startPos math.Vec3
	startRot math.Quat

	// translate: grab point on the drag plane and the plane normal
	grab        math.Vec3
	planeNormal math.Vec3

	// rotate and scale accumulate raw cursor deltas
	accumX float32
	accumY float32

	// scale bypasses the anchor and edits member scales directly, so it
	// carries its own undo entry and the scales captured at press
	members []*model.Record
	starts  []math.Vec3
	entry   *undo.Entry
}

// beginToolDrag starts a drag of the current tool at a cursor position.
// Translate needs a grab point: if the pick ray only grazes the drag
// plane the press selects but never drags.
func (v *Viewer) beginToolDrag(mx, my int) {
	if v.drag != nil || !v.anchor.Active() {
		return
	}

	d := &dragState{
		tool:     v.tool,
		startPos: v.anchor.Position,
		startRot: v.anchor.Rotation,
	}

	switch v.tool {
	case ToolTranslate:
		d.planeNormal = v.cameraForward()
		grab, ok := v.pickRay(mx, my).IntersectPlane(d.startPos, d.planeNormal)
		if !ok {
			return
		}
		d.grab = grab
		v.anchor.BeginDrag()

	case ToolRotate:
		v.anchor.BeginDrag()

	case ToolScale:
		d.members = v.anchor.Members()
		d.starts = make([]math.Vec3, len(d.members))
		for i, rec := range d.members {
			d.starts[i] = rec.Scale
		}
		d.entry = v.history.Capture(d.members)
	}

	v.drag = d
}

// updateToolDrag applies cursor motion to the active drag.
func (v *Viewer) updateToolDrag(mx, my, dx, dy int) {
	d := v.drag
	if d == nil {
		return
	}

	switch d.tool {
	case ToolTranslate:
		// Slide the anchor in the view plane through its start position.
		p, ok := v.pickRay(mx, my).IntersectPlane(d.startPos, d.planeNormal)
		if !ok {
			return
		}
		v.anchor.Drag(d.startPos.Add(p.Sub(d.grab)), d.startRot)

	case ToolRotate:
		// Horizontal motion spins around world up, vertical motion tips
		// around the camera's right axis.
		d.accumX += float32(dx)
		d.accumY += float32(dy)
		yaw := math.QuatFromAxisAngle(math.Vec3{Y: 1}, d.accumX*rotateSensitivity)
		pitch := math.QuatFromAxisAngle(v.cameraRight(), d.accumY*rotateSensitivity)
		v.anchor.Drag(d.startPos, pitch.Mul(yaw).Mul(d.startRot).Normalize())

	case ToolScale:
		// Exponential response: every step right multiplies, every step
		// left divides, and the release factor never depends on the path.
		d.accumX += float32(dx)
		factor := math32.Exp2(d.accumX * scaleSensitivity)
		for i, rec := range d.members {
			rec.Scale = d.starts[i].Scale(factor)
		}
	}
}

// endToolDrag finishes the active drag. Translate and rotate commit
// through the anchor, scale commits the entry captured at press.
func (v *Viewer) endToolDrag() {
	d := v.drag
	if d == nil {
		return
	}
	v.drag = nil

	switch d.tool {
	case ToolTranslate, ToolRotate:
		v.anchor.EndDrag()
	case ToolScale:
		v.history.Commit(d.entry)
	}
}

// cameraForward is the unit vector from the eye through the orbit center.
func (v *Viewer) cameraForward() math.Vec3 {
	return v.camera.Center.Sub(v.camera.Position()).Normalize()
}

// cameraRight is the camera's horizontal right axis in world space. It
// matches the axis the orbit camera pans along.
func (v *Viewer) cameraRight() math.Vec3 {
	return math.Vec3{X: math32.Cos(v.camera.RotationY), Z: -math32.Sin(v.camera.RotationY)}
}
