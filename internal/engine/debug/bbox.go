// Package debug provides overlay and capture utilities for the viewer.
package debug

import (
	"github.com/meshworks/meshstudio/internal/engine/geometry"
)

// BoxWireframeVertexCount is the number of line vertices in a box wireframe
// (12 edges, 2 endpoints each).
const BoxWireframeVertexCount = 24

// BoxWireframe returns line-list vertices tracing the edges of a bounding
// box, three floats per vertex. padding expands the box on all sides so the
// wireframe clears the surface it encloses.
func BoxWireframe(box geometry.Box, padding float32) []float32 {
	minX := box.Min.X - padding
	minY := box.Min.Y - padding
	minZ := box.Min.Z - padding
	maxX := box.Max.X + padding
	maxY := box.Max.Y + padding
	maxZ := box.Max.Z + padding

	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}
