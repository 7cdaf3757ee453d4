package model

import (
	"fmt"
	"sort"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/material"
	"github.com/meshworks/meshstudio/pkg/asset"
	"github.com/meshworks/meshstudio/pkg/math"
)

// Splitter decomposes parsed nodes into standalone single-material records.
// A node with several materials is partitioned along its geometry groups,
// one record per distinct material index; the node's world placement is
// decomposed once and assigned to every part, since splitting partitions
// geometry, never spatial placement.
type Splitter struct {
	materials *material.Normalizer
	fallback  string
	unnamed   int
}

// NewSplitter returns a splitter normalizing materials through n. fallback
// names nodes that arrive nameless ("mesh" gives mesh_1, mesh_2, ...).
func NewSplitter(n *material.Normalizer, fallback string) *Splitter {
	if fallback == "" {
		fallback = "mesh"
	}
	return &Splitter{materials: n, fallback: fallback}
}

// Split converts one renderable node placed at world into records. A node
// with geometry always yields at least one record; degenerate grouping
// falls back to whole-node single-material treatment rather than failing.
func (s *Splitter) Split(node *asset.Node, world math.Mat4) []*Record {
	if node == nil || node.Geometry == nil || node.Geometry.VertexCount() == 0 {
		return nil
	}

	pose := math.TransformFromMat4(world)
	name := node.Name
	if name == "" {
		s.unnamed++
		name = fmt.Sprintf("%s_%d", s.fallback, s.unnamed)
	}

	if len(node.Materials) > 1 && len(node.Groups) > 0 {
		if records := s.splitByMaterial(node, name, pose); len(records) > 0 {
			return records
		}
		// degenerate groups; fall through to single-material treatment
	}

	var src asset.Material
	if len(node.Materials) > 0 {
		src = node.Materials[0]
	}
	buf := geometry.FromAsset(node.Geometry)
	rec := s.newRecord(name, buf, src, pose)
	return []*Record{rec}
}

// splitByMaterial buckets the node's group ranges by clamped material index,
// repacks one buffer per distinct index, and returns a record per non-empty
// result. Parts are ordered by material index and named _part1.._partN when
// there is more than one.
func (s *Splitter) splitByMaterial(node *asset.Node, name string, pose math.Transform) []*Record {
	// The repacker wants vertex ranges over non-indexed data; expanding
	// first keeps group start/count addressing valid.
	full := geometry.ToNonIndexed(geometry.FromAsset(node.Geometry))

	buckets := make(map[int][]geometry.Range)
	for _, g := range node.Groups {
		if g.Count <= 0 {
			continue
		}
		idx := g.MaterialIndex
		if idx < 0 {
			idx = 0
		}
		if idx >= len(node.Materials) {
			idx = len(node.Materials) - 1
		}
		buckets[idx] = append(buckets[idx], geometry.Range{Start: g.Start, Count: g.Count})
	}

	indices := make([]int, 0, len(buckets))
	for idx := range buckets {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var parts []*Record
	for _, idx := range indices {
		buf := geometry.Repack(full, buckets[idx])
		if buf.VertexCount() == 0 {
			continue
		}
		parts = append(parts, s.newRecord(name, buf, node.Materials[idx], pose))
	}

	if len(parts) > 1 {
		for i, rec := range parts {
			rec.Name = fmt.Sprintf("%s_part%d", name, i+1)
		}
	}
	return parts
}

// newRecord assembles one record: normalized material, primed bounds, the
// shared decomposed pose, and the initial-pose snapshot.
func (s *Splitter) newRecord(name string, buf *geometry.Buffer, src asset.Material, pose math.Transform) *Record {
	mat := s.materials.Normalize(src, buf.HasAttr(geometry.UV), buf.HasAttr(geometry.UV2))

	// An occlusion map with only a primary UV set samples a synthesized
	// copy; dropping the map instead would lose data for no reason.
	if mat.AOMap != nil && buf.HasAttr(geometry.UV) && !buf.HasAttr(geometry.UV2) {
		uv := buf.Attr(geometry.UV)
		buf.SetAttr(geometry.UV2, uv.ItemSize, append([]float32(nil), uv.Data...))
	}

	// Hit-testing and framing rely on bounds being present.
	buf.Bounds()
	buf.BoundingSphere()

	rec := NewRecord(name)
	rec.Geometry = buf
	rec.Material = mat
	rec.SetPose(pose)
	rec.CaptureInitial()
	return rec
}
