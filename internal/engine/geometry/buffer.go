// Package geometry holds the renderer-facing vertex data of mesh records:
// attribute buffers, morph targets, bounds, and the repacking used when a
// multi-material mesh is split into per-material records.
package geometry

// Canonical attribute names shared by parsers, the splitter and the renderer.
const (
	Position = "position"
	Normal   = "normal"
	UV       = "uv"
	UV2      = "uv2"
	Color    = "color"
)

// DrawAll as a draw count selects every vertex in the buffer.
const DrawAll = -1

// Attribute is one vertex attribute: ItemSize floats per vertex, packed.
type Attribute struct {
	ItemSize int
	Data     []float32
}

// Count returns the number of vertices the attribute covers.
func (a *Attribute) Count() int {
	if a.ItemSize == 0 {
		return 0
	}
	return len(a.Data) / a.ItemSize
}

// MorphTarget is a named set of per-vertex delta attributes shaped like the
// base attributes they shadow.
type MorphTarget struct {
	Name  string
	Attrs map[string]*Attribute
}

// Range addresses Count vertices starting at Start of a non-indexed buffer.
type Range struct {
	Start int
	Count int
}

// Buffer is the vertex data of one mesh record. Attributes are parallel
// arrays over the same vertex count. After import buffers are treated as
// immutable, so bounds are computed once and cached.
type Buffer struct {
	Attrs     map[string]*Attribute
	Index     []uint32
	Morphs    []MorphTarget
	DrawStart int
	DrawCount int // DrawAll for the full buffer

	box    *Box
	sphere *Sphere
}

// NewBuffer returns an empty buffer drawing its full (future) contents.
func NewBuffer() *Buffer {
	return &Buffer{Attrs: map[string]*Attribute{}, DrawCount: DrawAll}
}

// SetAttr installs an attribute, replacing any previous one with that name.
func (b *Buffer) SetAttr(name string, itemSize int, data []float32) {
	b.Attrs[name] = &Attribute{ItemSize: itemSize, Data: data}
}

// Attr returns the named attribute or nil.
func (b *Buffer) Attr(name string) *Attribute {
	return b.Attrs[name]
}

// HasAttr reports whether the named attribute is present and non-empty.
func (b *Buffer) HasAttr(name string) bool {
	a := b.Attrs[name]
	return a != nil && len(a.Data) > 0
}

// VertexCount returns the vertex count of the position attribute.
func (b *Buffer) VertexCount() int {
	pos := b.Attr(Position)
	if pos == nil {
		return 0
	}
	return pos.Count()
}

// DrawRange resolves the draw range against the current vertex or index
// count: DrawAll (and out-of-range values from hand-edited state) collapse
// to the full buffer.
func (b *Buffer) DrawRange() Range {
	n := b.VertexCount()
	if len(b.Index) > 0 {
		n = len(b.Index)
	}
	start, count := b.DrawStart, b.DrawCount
	if start < 0 || start > n {
		start = 0
	}
	if count == DrawAll || start+count > n {
		count = n - start
	}
	return Range{Start: start, Count: count}
}

// Bounds returns the axis-aligned bounding box of the position attribute,
// computing and caching it on first use.
func (b *Buffer) Bounds() Box {
	if b.box == nil {
		box := computeBox(b.Attr(Position))
		b.box = &box
	}
	return *b.box
}

// BoundingSphere returns a sphere centered on the AABB center with radius
// equal to the exact maximum vertex distance, cached like Bounds.
func (b *Buffer) BoundingSphere() Sphere {
	if b.sphere == nil {
		s := computeSphere(b.Attr(Position), b.Bounds().Center())
		b.sphere = &s
	}
	return *b.sphere
}
