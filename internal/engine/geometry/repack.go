package geometry

// ToNonIndexed expands an indexed buffer into triangle-list layout: every
// attribute and morph target is de-indexed in index order. A buffer without
// an index array is returned as-is.
func ToNonIndexed(src *Buffer) *Buffer {
	if len(src.Index) == 0 {
		return src
	}

	dst := NewBuffer()
	for name, a := range src.Attrs {
		dst.Attrs[name] = expandAttr(a, src.Index)
	}
	for _, m := range src.Morphs {
		em := MorphTarget{Name: m.Name, Attrs: make(map[string]*Attribute, len(m.Attrs))}
		for name, a := range m.Attrs {
			em.Attrs[name] = expandAttr(a, src.Index)
		}
		dst.Morphs = append(dst.Morphs, em)
	}
	return dst
}

func expandAttr(a *Attribute, index []uint32) *Attribute {
	n := a.Count()
	out := make([]float32, 0, len(index)*a.ItemSize)
	for _, idx := range index {
		i := int(idx)
		if i >= n {
			// malformed index; clamp rather than panic on hostile files
			i = n - 1
		}
		base := i * a.ItemSize
		out = append(out, a.Data[base:base+a.ItemSize]...)
	}
	return &Attribute{ItemSize: a.ItemSize, Data: out}
}

// Repack copies the given vertex ranges of src, in order, into a new buffer.
// Every attribute and every morph target is sliced the same way, the draw
// range covers the whole result, and bounds are left to be recomputed on
// demand. Indexed input is expanded first so ranges always address vertices.
// Ranges are clamped to the buffer; a fully clamped-away range contributes
// nothing, and a zero-vertex result is legal (callers skip such parts).
func Repack(src *Buffer, ranges []Range) *Buffer {
	src = ToNonIndexed(src)
	n := src.VertexCount()

	clamped := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < 0 {
			r.Count += r.Start
			r.Start = 0
		}
		if r.Start >= n {
			continue
		}
		if r.Start+r.Count > n {
			r.Count = n - r.Start
		}
		if r.Count <= 0 {
			continue
		}
		clamped = append(clamped, r)
	}

	dst := NewBuffer()
	for name, a := range src.Attrs {
		dst.Attrs[name] = copyRanges(a, clamped)
	}
	for _, m := range src.Morphs {
		rm := MorphTarget{Name: m.Name, Attrs: make(map[string]*Attribute, len(m.Attrs))}
		for name, a := range m.Attrs {
			rm.Attrs[name] = copyRanges(a, clamped)
		}
		dst.Morphs = append(dst.Morphs, rm)
	}
	return dst
}

func copyRanges(a *Attribute, ranges []Range) *Attribute {
	total := 0
	for _, r := range ranges {
		total += r.Count
	}
	out := make([]float32, 0, total*a.ItemSize)
	for _, r := range ranges {
		start := r.Start * a.ItemSize
		end := (r.Start + r.Count) * a.ItemSize
		if end > len(a.Data) {
			end = len(a.Data)
		}
		if start >= end {
			continue
		}
		out = append(out, a.Data[start:end]...)
	}
	return &Attribute{ItemSize: a.ItemSize, Data: out}
}
