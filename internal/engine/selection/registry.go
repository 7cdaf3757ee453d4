// Package selection tracks which mesh records are selected. The registry
// keeps two orders: the registration order of every live record (what the
// outliner list shows, and what range selection slices), and the recency
// order of the selection itself (most recently selected last, which the
// transform anchor and status readouts key off).
package selection

import (
	"github.com/meshworks/meshstudio/internal/engine/model"
)

// Event carries the selection after a membership change.
type Event struct {
	Selected []*model.Record // recency order, most recent last
}

// Listener receives selection-changed events. Listeners run synchronously
// on the goroutine mutating the registry.
type Listener func(Event)

// Registry is the selection state machine. Every operation that changes the
// resulting membership fires exactly one event; operations that would leave
// the membership as-is fire nothing.
type Registry struct {
	order     []*model.Record
	selected  []*model.Record
	isSel     map[uint64]bool
	listeners []Listener
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{isSel: make(map[uint64]bool)}
}

// AddListener subscribes to selection changes.
func (g *Registry) AddListener(fn Listener) {
	g.listeners = append(g.listeners, fn)
}

// Register adds a record to the registry in registration order. Registering
// never changes the selection, so no event fires. Re-registering is a no-op.
func (g *Registry) Register(r *model.Record) {
	if r == nil || g.position(r) >= 0 {
		return
	}
	g.order = append(g.order, r)
}

// Unregister removes a record. A selected record is evicted from the
// selection as well, which fires the change event.
func (g *Registry) Unregister(r *model.Record) {
	if r == nil {
		return
	}
	if i := g.position(r); i >= 0 {
		g.order = append(g.order[:i], g.order[i+1:]...)
	}
	if g.isSel[r.ID] {
		g.removeSelected(r)
		g.notify()
	}
}

// All returns the registered records in registration order.
func (g *Registry) All() []*model.Record {
	return append([]*model.Record(nil), g.order...)
}

// Selected returns the selection in recency order, most recent last.
func (g *Registry) Selected() []*model.Record {
	return append([]*model.Record(nil), g.selected...)
}

// IsSelected reports whether the record is in the selection.
func (g *Registry) IsSelected(r *model.Record) bool {
	return r != nil && g.isSel[r.ID]
}

// Last returns the most recently selected record, or nil.
func (g *Registry) Last() *model.Record {
	if len(g.selected) == 0 {
		return nil
	}
	return g.selected[len(g.selected)-1]
}

// Count returns the selection size.
func (g *Registry) Count() int {
	return len(g.selected)
}

// SelectOne replaces the selection with the single record. Selecting the
// sole already-selected record changes nothing and fires nothing.
func (g *Registry) SelectOne(r *model.Record) {
	if r == nil || g.position(r) < 0 {
		return
	}
	if len(g.selected) == 1 && g.selected[0] == r {
		return
	}
	g.setSelection([]*model.Record{r})
	g.notify()
}

// Toggle flips the record's membership, keeping the rest of the selection.
func (g *Registry) Toggle(r *model.Record) {
	if r == nil || g.position(r) < 0 {
		return
	}
	if g.isSel[r.ID] {
		g.removeSelected(r)
	} else {
		g.selected = append(g.selected, r)
		g.isSel[r.ID] = true
	}
	g.notify()
}

// SelectRange replaces the selection with the contiguous registration-order
// run between the most recently selected record and the target, inclusive.
// Either end may come first. With nothing selected it behaves like
// SelectOne. The previous anchor stays the recency tail so a following
// range re-anchors from the same record.
func (g *Registry) SelectRange(r *model.Record) {
	if r == nil {
		return
	}
	j := g.position(r)
	if j < 0 {
		return
	}
	anchor := g.Last()
	i := -1
	if anchor != nil {
		i = g.position(anchor)
	}
	if i < 0 {
		g.SelectOne(r)
		return
	}

	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	run := make([]*model.Record, 0, hi-lo+1)
	for _, rec := range g.order[lo : hi+1] {
		if rec != anchor {
			run = append(run, rec)
		}
	}
	run = append(run, anchor)

	if g.sameMembership(run) {
		return
	}
	g.setSelection(run)
	g.notify()
}

// SelectAll selects every registered record in registration order.
func (g *Registry) SelectAll() {
	if len(g.order) == 0 || len(g.selected) == len(g.order) {
		return
	}
	g.setSelection(append([]*model.Record(nil), g.order...))
	g.notify()
}

// Clear empties the selection. Clearing an empty selection fires nothing.
func (g *Registry) Clear() {
	if len(g.selected) == 0 {
		return
	}
	g.setSelection(nil)
	g.notify()
}

func (g *Registry) position(r *model.Record) int {
	for i, rec := range g.order {
		if rec == r {
			return i
		}
	}
	return -1
}

func (g *Registry) setSelection(records []*model.Record) {
	g.selected = records
	g.isSel = make(map[uint64]bool, len(records))
	for _, rec := range records {
		g.isSel[rec.ID] = true
	}
}

func (g *Registry) removeSelected(r *model.Record) {
	for i, rec := range g.selected {
		if rec == r {
			g.selected = append(g.selected[:i], g.selected[i+1:]...)
			break
		}
	}
	delete(g.isSel, r.ID)
}

func (g *Registry) sameMembership(records []*model.Record) bool {
	if len(records) != len(g.selected) {
		return false
	}
	for _, rec := range records {
		if !g.isSel[rec.ID] {
			return false
		}
	}
	return true
}

func (g *Registry) notify() {
	ev := Event{Selected: g.Selected()}
	for _, fn := range g.listeners {
		fn(ev)
	}
}
