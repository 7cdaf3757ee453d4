// glTF 2.0 parser, covering both the JSON form and the GLB container via
// the qmuntal/gltf decoder. Accessor payloads go through gltf/modeler so
// component types and strides never leak in here.
package formats

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/meshworks/meshstudio/pkg/asset"
	"github.com/meshworks/meshstudio/pkg/math"
)

// meshCompressionExt is the extension name compressed primitives carry,
// both in extensionsUsed and per primitive.
const meshCompressionExt = "KHR_draco_mesh_compression"

// glTF format errors.
var (
	ErrCompressedMesh = errors.New("mesh uses compressed geometry and no decompressor is attached")
)

// MeshDecompressor decodes one compressed primitive payload into geometry
// arrays. attrs maps canonical glTF attribute names (POSITION, NORMAL, ...)
// to compressed-stream attribute ids.
type MeshDecompressor interface {
	DecodeMesh(payload []byte, attrs map[string]uint32) (*asset.Geometry, error)
}

// ParseGLTF parses glTF JSON or GLB data into a scene. When path names an
// existing file the document is opened from disk so relative buffer URIs
// resolve; dec handles compressed primitives and may be nil.
func ParseGLTF(data []byte, path string, dec MeshDecompressor) (*asset.Scene, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			doc, err := gltf.Open(path)
			if err != nil {
				return nil, fmt.Errorf("opening glTF file: %w", err)
			}
			return convertGLTF(doc, dec)
		}
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding glTF: %w", err)
	}
	return convertGLTF(doc, dec)
}

// ParseGLTFFile parses a glTF or GLB file from disk.
func ParseGLTFFile(path string, dec MeshDecompressor) (*asset.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading glTF file: %w", err)
	}
	return ParseGLTF(data, path, dec)
}

// gltfConverter carries the per-document conversion state: the texture and
// material tables are converted once and shared by every referencing node.
type gltfConverter struct {
	doc       *gltf.Document
	dec       MeshDecompressor
	scene     *asset.Scene
	textures  map[int]*asset.Texture
	materials map[int]asset.Material
	seen      map[int]bool
}

func convertGLTF(doc *gltf.Document, dec MeshDecompressor) (*asset.Scene, error) {
	c := &gltfConverter{
		doc:       doc,
		dec:       dec,
		scene:     &asset.Scene{Generator: doc.Asset.Generator},
		textures:  make(map[int]*asset.Texture),
		materials: make(map[int]asset.Material),
		seen:      make(map[int]bool),
	}
	for _, idx := range gltfRootNodes(doc) {
		n, err := c.convertNode(idx)
		if err != nil {
			return nil, err
		}
		c.scene.Nodes = append(c.scene.Nodes, n)
	}
	return c.scene, nil
}

// gltfRootNodes returns the root node indices of the default scene, or of
// the first scene, or every unparented node when the document declares no
// scene at all.
func gltfRootNodes(doc *gltf.Document) []int {
	var scene *gltf.Scene
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		scene = doc.Scenes[*doc.Scene]
	} else if len(doc.Scenes) > 0 {
		scene = doc.Scenes[0]
	}
	if scene != nil {
		out := make([]int, 0, len(scene.Nodes))
		for _, n := range scene.Nodes {
			out = append(out, int(n))
		}
		return out
	}

	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, ci := range n.Children {
			child[int(ci)] = true
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !child[i] {
			out = append(out, i)
		}
	}
	return out
}

var gltfIdentityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func (c *gltfConverter) convertNode(idx int) (*asset.Node, error) {
	if idx < 0 || idx >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if c.seen[idx] {
		return nil, fmt.Errorf("node %d appears twice in the hierarchy", idx)
	}
	c.seen[idx] = true

	src := c.doc.Nodes[idx]
	n := asset.NewNode(src.Name)

	// A non-default matrix wins over TRS; zero-valued TRS fields keep the
	// identity defaults NewNode set.
	if src.Matrix != gltfIdentityMatrix && src.Matrix != ([16]float32{}) {
		n.Matrix = math.Mat4(src.Matrix)
		n.UseMatrix = true
	} else {
		if src.Translation != ([3]float32{}) {
			n.Translation = math.Vec3{X: src.Translation[0], Y: src.Translation[1], Z: src.Translation[2]}
		}
		if r := src.Rotation; r != ([4]float32{}) && r != ([4]float32{0, 0, 0, 1}) {
			n.Rotation = math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}
		}
		if s := src.Scale; s != ([3]float32{}) && s != ([3]float32{1, 1, 1}) {
			n.Scale = math.Vec3{X: s[0], Y: s[1], Z: s[2]}
		}
	}

	if src.Mesh != nil && int(*src.Mesh) < len(c.doc.Meshes) {
		if err := c.attachMesh(n, c.doc.Meshes[*src.Mesh]); err != nil {
			return nil, err
		}
	}

	for _, ci := range src.Children {
		childNode, err := c.convertNode(int(ci))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, childNode)
	}
	return n, nil
}

// attachMesh converts a mesh's primitives. A single primitive lands on the
// node itself; several become one child node each, since every primitive
// carries its own geometry and material.
func (c *gltfConverter) attachMesh(n *asset.Node, mesh *gltf.Mesh) error {
	type prim struct {
		geo *asset.Geometry
		mat asset.Material
	}
	var prims []prim
	for i, p := range mesh.Primitives {
		geo, mat, err := c.convertPrimitive(p)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
		if geo == nil {
			continue // non-triangle primitives are skipped
		}
		prims = append(prims, prim{geo: geo, mat: mat})
	}

	if len(prims) == 1 {
		n.Geometry = prims[0].geo
		if prims[0].mat != nil {
			n.Materials = []asset.Material{prims[0].mat}
		}
		return nil
	}

	base := n.Name
	if base == "" {
		base = mesh.Name
	}
	for i, p := range prims {
		name := ""
		if base != "" {
			name = fmt.Sprintf("%s_prim%d", base, i)
		}
		childNode := asset.NewNode(name)
		childNode.Geometry = p.geo
		if p.mat != nil {
			childNode.Materials = []asset.Material{p.mat}
		}
		n.Children = append(n.Children, childNode)
	}
	return nil
}

// convertPrimitive reads one primitive's accessors. It returns nil geometry
// for primitive modes other than triangles (mode zero doubles as the
// decoder's absent value).
func (c *gltfConverter) convertPrimitive(p *gltf.Primitive) (*asset.Geometry, asset.Material, error) {
	if p.Mode != gltf.PrimitiveTriangles && p.Mode != 0 {
		return nil, nil, nil
	}

	var mat asset.Material
	if p.Material != nil {
		mat = c.convertMaterial(int(*p.Material))
	}

	if raw, ok := p.Extensions[meshCompressionExt]; ok {
		geo, err := c.decompressPrimitive(raw)
		if err != nil {
			return nil, nil, err
		}
		return geo, mat, nil
	}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, nil
	}
	posAcc, ok := c.accessor(posIdx)
	if !ok {
		return nil, nil, fmt.Errorf("position accessor %d out of range", posIdx)
	}
	positions, err := modeler.ReadPosition(c.doc, posAcc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("reading positions: %w", err)
	}
	geo := &asset.Geometry{Positions: positions}

	// Secondary attributes degrade to absent instead of failing the import.
	if acc, ok := c.attrAccessor(p.Attributes, gltf.NORMAL); ok {
		if normals, err := modeler.ReadNormal(c.doc, acc, nil); err == nil && len(normals) == len(positions) {
			geo.Normals = normals
		}
	}
	if acc, ok := c.attrAccessor(p.Attributes, gltf.TEXCOORD_0); ok {
		if uv, err := modeler.ReadTextureCoord(c.doc, acc, nil); err == nil && len(uv) == len(positions) {
			geo.UVs = uv
		}
	}
	if acc, ok := c.attrAccessor(p.Attributes, gltf.TEXCOORD_1); ok {
		if uv, err := modeler.ReadTextureCoord(c.doc, acc, nil); err == nil && len(uv) == len(positions) {
			geo.UV2s = uv
		}
	}

	if p.Indices != nil {
		acc, ok := c.accessor(*p.Indices)
		if !ok {
			return nil, nil, fmt.Errorf("index accessor %d out of range", *p.Indices)
		}
		indices, err := modeler.ReadIndices(c.doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("reading indices: %w", err)
		}
		geo.Indices = indices
	}

	for ti, target := range p.Targets {
		morph := asset.Morph{Name: fmt.Sprintf("target_%d", ti)}
		if acc, ok := c.attrAccessor(target, gltf.POSITION); ok {
			if mp, err := modeler.ReadPosition(c.doc, acc, nil); err == nil && len(mp) == len(positions) {
				morph.Positions = mp
			}
		}
		if acc, ok := c.attrAccessor(target, gltf.NORMAL); ok {
			if mn, err := modeler.ReadNormal(c.doc, acc, nil); err == nil && len(mn) == len(positions) {
				morph.Normals = mn
			}
		}
		if len(morph.Positions) > 0 || len(morph.Normals) > 0 {
			geo.Morphs = append(geo.Morphs, morph)
		}
	}

	return geo, mat, nil
}

func (c *gltfConverter) accessor(idx uint32) (*gltf.Accessor, bool) {
	if int(idx) >= len(c.doc.Accessors) {
		return nil, false
	}
	return c.doc.Accessors[idx], true
}

func (c *gltfConverter) attrAccessor(attrs map[string]uint32, name string) (*gltf.Accessor, bool) {
	idx, ok := attrs[name]
	if !ok {
		return nil, false
	}
	return c.accessor(idx)
}

// decompressPrimitive hands a compressed primitive's buffer view to the
// attached decompressor.
func (c *gltfConverter) decompressPrimitive(raw any) (*asset.Geometry, error) {
	if c.dec == nil {
		return nil, ErrCompressedMesh
	}

	var ext struct {
		BufferView uint32            `json:"bufferView"`
		Attributes map[string]uint32 `json:"attributes"`
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("reading compression extension: %w", err)
	}
	if err := json.Unmarshal(b, &ext); err != nil {
		return nil, fmt.Errorf("reading compression extension: %w", err)
	}

	payload, err := c.bufferViewData(int(ext.BufferView))
	if err != nil {
		return nil, err
	}
	geo, err := c.dec.DecodeMesh(payload, ext.Attributes)
	if err != nil {
		return nil, fmt.Errorf("decompressing primitive: %w", err)
	}
	return geo, nil
}

// bufferViewData returns the raw bytes a buffer view covers.
func (c *gltfConverter) bufferViewData(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(c.doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	bv := c.doc.BufferViews[idx]
	if int(bv.Buffer) >= len(c.doc.Buffers) {
		return nil, fmt.Errorf("buffer view %d names missing buffer %d", idx, bv.Buffer)
	}
	buf := c.doc.Buffers[bv.Buffer]
	off, length := int(bv.ByteOffset), int(bv.ByteLength)
	if off < 0 || length < 0 || off+length > len(buf.Data) {
		return nil, fmt.Errorf("buffer view %d exceeds its buffer", idx)
	}
	return buf.Data[off : off+length], nil
}

// convertMaterial maps a glTF material onto the PBR kind, converting each
// document material at most once.
func (c *gltfConverter) convertMaterial(idx int) asset.Material {
	if m, ok := c.materials[idx]; ok {
		return m
	}
	if idx < 0 || idx >= len(c.doc.Materials) {
		return nil
	}
	src := c.doc.Materials[idx]

	out := &asset.PBRMaterial{Surface: asset.DefaultSurface(src.Name)}
	out.BaseColor = [3]float32{1, 1, 1}
	out.Metalness = 1
	out.Roughness = 1

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := *pbr.BaseColorFactor
			out.BaseColor = [3]float32{f[0], f[1], f[2]}
			out.Opacity = f[3]
		}
		if pbr.MetallicFactor != nil {
			out.Metalness = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			out.Roughness = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			out.BaseColorMap = c.textureRef(pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			out.MetallicRoughnessMap = c.textureRef(pbr.MetallicRoughnessTexture.Index)
		}
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		out.NormalMap = c.textureRef(*nt.Index)
		if nt.Scale != nil {
			out.NormalScale = *nt.Scale
		}
	}
	if ot := src.OcclusionTexture; ot != nil && ot.Index != nil {
		out.AOMap = c.textureRef(*ot.Index)
		if ot.Strength != nil {
			out.AOIntensity = *ot.Strength
		}
	}

	switch src.AlphaMode {
	case gltf.AlphaMask:
		out.AlphaTest = 0.5
		if src.AlphaCutoff != nil {
			out.AlphaTest = *src.AlphaCutoff
		}
	case gltf.AlphaBlend:
		out.Transparent = true
	}
	out.DoubleSided = src.DoubleSided

	c.materials[idx] = out
	return out
}

// textureRef resolves a document texture into the scene table: external
// URIs stay paths, data URIs and buffer-view images become payloads.
func (c *gltfConverter) textureRef(idx uint32) *asset.Texture {
	if t, ok := c.textures[int(idx)]; ok {
		return t
	}
	if int(idx) >= len(c.doc.Textures) {
		return nil
	}
	tex := c.doc.Textures[idx]
	if tex.Source == nil || int(*tex.Source) >= len(c.doc.Images) {
		return nil
	}
	img := c.doc.Images[*tex.Source]

	out := &asset.Texture{Name: img.Name}
	switch {
	case img.BufferView != nil:
		if data, err := c.bufferViewData(int(*img.BufferView)); err == nil {
			out.Data = append([]byte(nil), data...)
			out.MIME = img.MimeType
		}
	case strings.HasPrefix(img.URI, "data:"):
		if mime, payload, err := decodeDataURI(img.URI); err == nil {
			out.Data = payload
			out.MIME = mime
		}
	default:
		out.Path = img.URI
		if out.Name == "" && img.URI != "" {
			out.Name = filepath.Base(img.URI)
		}
	}
	if out.Name == "" {
		out.Name = fmt.Sprintf("texture_%d", idx)
	}

	ref := c.scene.AddTexture(out)
	c.textures[int(idx)] = ref
	return ref
}

// decodeDataURI splits a data: URI into its MIME type and decoded payload.
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decoding data URI: %w", err)
		}
		return strings.TrimSuffix(meta, ";base64"), data, nil
	}
	return meta, []byte(payload), nil
}
