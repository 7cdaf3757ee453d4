// Package asset defines the scene graph that format front ends produce and
// the import pipeline consumes. It is a plain data model: no GL types, no
// renderer state, so format parsers and headless tools can share it.
package asset

import (
	"github.com/meshworks/meshstudio/pkg/math"
)

// Scene is the root of a parsed model file.
type Scene struct {
	Nodes     []*Node    // root nodes
	Textures  []*Texture // every texture referenced by the scene's materials
	Generator string     // producing tool, when the file records one
	Source    string     // originating path or name, set by the importer
}

// AddTexture appends a texture to the scene table and returns it, reusing an
// existing entry when one with the same path already exists.
func (s *Scene) AddTexture(t *Texture) *Texture {
	if t.Path != "" {
		for _, have := range s.Textures {
			if have.Path == t.Path {
				return have
			}
		}
	}
	s.Textures = append(s.Textures, t)
	return t
}

// Walk visits every node depth-first in document order, carrying the
// accumulated world matrix (parent world * node local).
func (s *Scene) Walk(visit func(n *Node, world math.Mat4)) {
	for _, n := range s.Nodes {
		walkNode(n, math.Identity(), visit)
	}
}

func walkNode(n *Node, parent math.Mat4, visit func(*Node, math.Mat4)) {
	world := parent.Mul(n.LocalMatrix())
	visit(n, world)
	for _, c := range n.Children {
		walkNode(c, world, visit)
	}
}

// Texture identifies an image used by a material. Exactly one of Path
// (external file, relative to the scene source) or Data (embedded payload)
// is set by parsers.
type Texture struct {
	Name string
	Path string
	Data []byte
	MIME string // of Data, when known
}
