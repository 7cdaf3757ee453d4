// Package model defines the mesh record, the unit everything downstream
// operates on: one geometry buffer, one normalized material, one local pose.
// The splitter produces records from parsed scene nodes, partitioning
// multi-material geometry so the invariant holds.
package model

import (
	"sync/atomic"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/material"
	"github.com/meshworks/meshstudio/pkg/math"
)

var nextID atomic.Uint64

// Record is one renderable unit. Records sit in a flat list (no parenting),
// so the local pose is the world pose. The world and selection registry
// reference records; the world owns them.
type Record struct {
	ID   uint64
	Name string

	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3

	Geometry *geometry.Buffer
	Material *material.Standard

	Visible bool
	Source  string // originating file, for provenance display

	initial    math.Transform
	hasInitial bool
}

// NewRecord returns a visible record with a fresh ID and identity pose.
func NewRecord(name string) *Record {
	r := &Record{
		ID:      nextID.Add(1),
		Name:    name,
		Visible: true,
	}
	r.SetPose(math.IdentityTransform())
	return r
}

// Pose returns the record's local TRS.
func (r *Record) Pose() math.Transform {
	return math.Transform{Translation: r.Position, Rotation: r.Rotation, Scale: r.Scale}
}

// SetPose applies a TRS to the record.
func (r *Record) SetPose(t math.Transform) {
	r.Position = t.Translation
	r.Rotation = t.Rotation
	r.Scale = t.Scale
}

// WorldMatrix composes the record's pose. Records have no parents, so this
// is both local and world.
func (r *Record) WorldMatrix() math.Mat4 {
	return math.Compose(r.Position, r.Rotation, r.Scale)
}

// CaptureInitial snapshots the current pose as the import-time original.
// Only the first call takes effect.
func (r *Record) CaptureInitial() {
	if !r.hasInitial {
		r.initial = r.Pose()
		r.hasInitial = true
	}
}

// Initial returns the import-time pose snapshot, if one was captured.
func (r *Record) Initial() (math.Transform, bool) {
	return r.initial, r.hasInitial
}

// ResetToInitial restores the import-time pose. It reports whether a
// snapshot existed to restore.
func (r *Record) ResetToInitial() bool {
	if !r.hasInitial {
		return false
	}
	r.SetPose(r.initial)
	return true
}

// WorldBounds returns the record's bounding box in world space.
func (r *Record) WorldBounds() geometry.Box {
	if r.Geometry == nil {
		return geometry.Box{}
	}
	return r.Geometry.Bounds().Transform(r.WorldMatrix())
}

// WorldSphere returns the record's bounding sphere in world space.
func (r *Record) WorldSphere() geometry.Sphere {
	if r.Geometry == nil {
		return geometry.Sphere{}
	}
	return r.Geometry.BoundingSphere().Transform(r.WorldMatrix())
}
