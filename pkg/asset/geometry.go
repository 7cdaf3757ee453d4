package asset

// Geometry holds the vertex data of one node in parser-native layout:
// parallel attribute arrays plus an optional index array. All attribute
// slices that are non-empty must have the same length as Positions.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	UV2s      [][2]float32
	Indices   []uint32
	Morphs    []Morph
}

// Morph is one morph target: per-vertex deltas against the base attributes.
// Slices are either empty or Positions-length, like the base geometry.
type Morph struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
}

// VertexCount returns the number of vertices in the base attributes.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// Indexed reports whether the geometry uses an index array.
func (g *Geometry) Indexed() bool {
	return len(g.Indices) > 0
}

// TriangleCount returns the number of triangles the geometry draws.
func (g *Geometry) TriangleCount() int {
	if g.Indexed() {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// HasUV reports whether the primary UV channel is present.
func (g *Geometry) HasUV() bool { return len(g.UVs) > 0 }

// HasUV2 reports whether the secondary UV channel is present.
func (g *Geometry) HasUV2() bool { return len(g.UV2s) > 0 }
