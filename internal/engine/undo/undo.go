// Package undo keeps a bounded history of record pose edits. Entries hold
// pose snapshots, not operations: undoing swaps the stored poses with the
// records' current ones, so the same entry flips between the undo and redo
// stacks without re-deriving anything.
package undo

import (
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/pkg/math"
)

// DefaultLimit bounds the history when the config does not say otherwise.
const DefaultLimit = 100

type snapshot struct {
	record *model.Record
	pose   math.Transform
}

// Entry is one capture of the poses of a set of records.
type Entry struct {
	poses []snapshot
}

// History is the two-stack pose history. A committed entry lands on the
// undo stack and clears the redo stack; the oldest entry falls off when the
// depth limit is hit.
type History struct {
	limit int
	undo  []*Entry
	redo  []*Entry
	alive func(*model.Record) bool
}

// NewHistory returns a history bounded to limit entries. Non-positive
// limits fall back to DefaultLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// SetLiveCheck installs the probe deciding whether a record still exists
// when an entry is applied; snapshots of records it rejects are skipped.
// Without a probe every record counts as live.
func (h *History) SetLiveCheck(fn func(*model.Record) bool) {
	h.alive = fn
}

// Capture snapshots the current poses of the given records. The entry is
// inert until committed.
func (h *History) Capture(records []*model.Record) *Entry {
	e := &Entry{poses: make([]snapshot, 0, len(records))}
	for _, r := range records {
		if r == nil {
			continue
		}
		e.poses = append(e.poses, snapshot{record: r, pose: r.Pose()})
	}
	return e
}

// Commit pushes the entry if at least one captured record's pose has since
// changed. It reports whether the entry was kept; an unchanged capture
// pushes nothing.
func (h *History) Commit(e *Entry) bool {
	if e == nil || !e.changed() {
		return false
	}
	h.undo = append(h.undo, e)
	h.redo = nil
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	return true
}

// Undo applies the most recent entry, moving the swapped inverse onto the
// redo stack. It reports whether there was an entry to apply.
func (h *History) Undo() bool {
	n := len(h.undo)
	if n == 0 {
		return false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, h.apply(e))
	return true
}

// Redo reverses the most recent Undo.
func (h *History) Redo() bool {
	n := len(h.redo)
	if n == 0 {
		return false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, h.apply(e))
	return true
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the undo stack depth.
func (h *History) Depth() int { return len(h.undo) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// apply restores the entry's poses and returns the inverse entry built from
// the poses current at application time. Dead records are skipped on both
// sides.
func (h *History) apply(e *Entry) *Entry {
	inverse := &Entry{poses: make([]snapshot, 0, len(e.poses))}
	for _, s := range e.poses {
		if h.alive != nil && !h.alive(s.record) {
			continue
		}
		inverse.poses = append(inverse.poses, snapshot{record: s.record, pose: s.record.Pose()})
		s.record.SetPose(s.pose)
	}
	return inverse
}

func (e *Entry) changed() bool {
	for _, s := range e.poses {
		if s.record.Pose() != s.pose {
			return true
		}
	}
	return false
}
