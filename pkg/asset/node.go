package asset

import (
	"github.com/meshworks/meshstudio/pkg/math"
)

// Node is one element of the scene tree. A node may carry geometry with one
// or more materials, or exist only to group and transform its children.
//
// The local transform is either the TRS triple or, when UseMatrix is set,
// the explicit Matrix (glTF allows both forms).
type Node struct {
	Name string

	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
	Matrix      math.Mat4
	UseMatrix   bool

	Children []*Node

	Geometry  *Geometry
	Materials []Material
	Groups    []Group
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// LocalMatrix returns the node's local transform as a matrix.
func (n *Node) LocalMatrix() math.Mat4 {
	if n.UseMatrix {
		return n.Matrix
	}
	return math.Compose(n.Translation, n.Rotation, n.Scale)
}

// Renderable reports whether the node carries drawable geometry.
func (n *Node) Renderable() bool {
	return n.Geometry != nil && len(n.Geometry.Positions) > 0
}

// Group maps a contiguous run of the node's geometry to one entry of its
// material slice. Start and Count address index positions when the geometry
// is indexed, vertex positions otherwise (the same convention the splitter's
// non-indexed expansion preserves).
type Group struct {
	Start         int
	Count         int
	MaterialIndex int
}
