// Package exporter writes mesh records back out as GLB: one glTF mesh and
// node per record, carrying the record's live pose. Materials are written at
// factor level (base color, metal-rough, alpha mode); texture images stay
// with their original files and are not re-embedded.
package exporter

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/material"
	"github.com/meshworks/meshstudio/internal/engine/model"
)

// ErrNoRecords reports an export with nothing to write.
var ErrNoRecords = errors.New("no records to export")

// ExportGLB writes records to w as a binary glTF container.
func ExportGLB(w io.Writer, records []*model.Record) error {
	doc, err := buildDocument(records)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding glb: %w", err)
	}
	return nil
}

// SaveGLB writes records to a GLB file at path.
func SaveGLB(path string, records []*model.Record) error {
	doc, err := buildDocument(records)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func buildDocument(records []*model.Record) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "meshstudio"
	materials := map[*material.Standard]uint32{}

	for _, r := range records {
		if r == nil || r.Geometry == nil || r.Geometry.VertexCount() == 0 {
			continue
		}
		if r.Geometry.DrawRange().Count <= 0 {
			continue
		}

		prim := recordPrimitive(doc, r, materials)
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       r.Name,
			Primitives: []*gltf.Primitive{prim},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        r.Name,
			Mesh:        gltf.Index(uint32(len(doc.Meshes) - 1)),
			Translation: [3]float32{r.Position.X, r.Position.Y, r.Position.Z},
			Rotation:    [4]float32{r.Rotation.X, r.Rotation.Y, r.Rotation.Z, r.Rotation.W},
			Scale:       [3]float32{r.Scale.X, r.Scale.Y, r.Scale.Z},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	if len(doc.Nodes) == 0 {
		return nil, ErrNoRecords
	}
	return doc, nil
}

// recordPrimitive writes one record's drawn geometry into the document. For
// indexed buffers the full vertex set is written and the draw range slices
// the index stream; for non-indexed buffers the range slices the vertex
// attributes themselves.
func recordPrimitive(doc *gltf.Document, r *model.Record, materials map[*material.Standard]uint32) *gltf.Primitive {
	buf := r.Geometry
	rng := buf.DrawRange()
	indexed := len(buf.Index) > 0

	vStart, vCount := rng.Start, rng.Count
	if indexed {
		vStart, vCount = 0, buf.VertexCount()
	}

	pos := buf.Attr(geometry.Position)
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(modeler.WritePosition(doc, vec3s(pos, vStart, vCount))),
		},
	}
	if n := buf.Attr(geometry.Normal); n != nil && n.ItemSize == 3 && n.Count() >= vStart+vCount {
		prim.Attributes[gltf.NORMAL] = uint32(modeler.WriteNormal(doc, vec3s(n, vStart, vCount)))
	}
	if uv := buf.Attr(geometry.UV); uv != nil && uv.ItemSize == 2 && uv.Count() >= vStart+vCount {
		prim.Attributes[gltf.TEXCOORD_0] = uint32(modeler.WriteTextureCoord(doc, vec2s(uv, vStart, vCount)))
	}
	if uv2 := buf.Attr(geometry.UV2); uv2 != nil && uv2.ItemSize == 2 && uv2.Count() >= vStart+vCount {
		prim.Attributes[gltf.TEXCOORD_1] = uint32(modeler.WriteTextureCoord(doc, vec2s(uv2, vStart, vCount)))
	}

	if indexed {
		idx := buf.Index[rng.Start : rng.Start+rng.Count]
		prim.Indices = gltf.Index(uint32(modeler.WriteIndices(doc, idx)))
	}

	for _, morph := range buf.Morphs {
		target := map[string]uint32{}
		if d := morph.Attrs[geometry.Position]; d != nil && d.ItemSize == 3 && d.Count() >= vStart+vCount {
			target[gltf.POSITION] = uint32(modeler.WritePosition(doc, vec3s(d, vStart, vCount)))
		}
		if d := morph.Attrs[geometry.Normal]; d != nil && d.ItemSize == 3 && d.Count() >= vStart+vCount {
			target[gltf.NORMAL] = uint32(modeler.WriteNormal(doc, vec3s(d, vStart, vCount)))
		}
		if len(target) > 0 {
			prim.Targets = append(prim.Targets, target)
		}
	}

	if r.Material != nil {
		prim.Material = gltf.Index(materialIndex(doc, r.Material, materials))
	}
	return prim
}

// materialIndex writes a material once per distinct pointer and returns its
// document index.
func materialIndex(doc *gltf.Document, m *material.Standard, seen map[*material.Standard]uint32) uint32 {
	if idx, ok := seen[m]; ok {
		return idx
	}

	out := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{m.BaseColor[0], m.BaseColor[1], m.BaseColor[2], m.Opacity},
			MetallicFactor:  gltf.Float(m.Metalness),
			RoughnessFactor: gltf.Float(m.Roughness),
		},
		DoubleSided: m.DoubleSided,
	}
	switch m.AlphaMode {
	case material.Mask:
		out.AlphaMode = gltf.AlphaMask
		out.AlphaCutoff = gltf.Float(m.AlphaTest)
	case material.Blend:
		out.AlphaMode = gltf.AlphaBlend
	default:
		out.AlphaMode = gltf.AlphaOpaque
	}

	idx := uint32(len(doc.Materials))
	doc.Materials = append(doc.Materials, out)
	seen[m] = idx
	return idx
}

func vec3s(a *geometry.Attribute, start, count int) [][3]float32 {
	out := make([][3]float32, count)
	for i := range out {
		j := (start + i) * 3
		out[i] = [3]float32{a.Data[j], a.Data[j+1], a.Data[j+2]}
	}
	return out
}

func vec2s(a *geometry.Attribute, start, count int) [][2]float32 {
	out := make([][2]float32, count)
	for i := range out {
		j := (start + i) * 2
		out[i] = [2]float32{a.Data[j], a.Data[j+1]}
	}
	return out
}
