// Binary FBX 7.x parser. FBX is a general scene container; this parser
// covers the mesh subset: the node-record tree with typed (optionally
// zlib-compressed) properties, Geometry/Model/Material/Texture objects and
// the OO/OP connection table that ties them together.
package formats

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"path/filepath"
	"strings"

	"github.com/meshworks/meshstudio/pkg/asset"
	"github.com/meshworks/meshstudio/pkg/math"
)

// FBX format errors.
var (
	ErrInvalidFBXMagic       = errors.New("invalid FBX magic: expected binary FBX header")
	ErrASCIIFBX              = errors.New("ASCII FBX is not supported: re-export as binary FBX")
	ErrTruncatedFBXData      = errors.New("truncated FBX data")
	ErrUnsupportedFBXVersion = errors.New("unsupported FBX version")
	ErrNoFBXGeometry         = errors.New("FBX contains no mesh geometry")
)

// fbxMagic is the 23-byte binary FBX file signature.
const fbxMagic = "Kaydara FBX Binary  \x00\x1a\x00"

// fbxHeaderSize is the magic plus the uint32 version that follows it.
const fbxHeaderSize = len(fbxMagic) + 4

// fbx64BitVersion is the version from which node record headers use 64-bit
// offsets.
const fbx64BitVersion = 7500

// fbxMaxArrayLen caps property array sizes against corrupt length fields.
const fbxMaxArrayLen = 50_000_000

// ParseFBX parses binary FBX data into a scene.
func ParseFBX(data []byte) (*asset.Scene, error) {
	if !bytes.HasPrefix(data, []byte(fbxMagic)) {
		if looksLikeASCIIFBX(data) {
			return nil, ErrASCIIFBX
		}
		if len(data) < fbxHeaderSize {
			return nil, ErrTruncatedFBXData
		}
		return nil, ErrInvalidFBXMagic
	}
	if len(data) < fbxHeaderSize {
		return nil, ErrTruncatedFBXData
	}

	version := binary.LittleEndian.Uint32(data[len(fbxMagic):])
	if version < 7100 || version >= 8000 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFBXVersion, version)
	}

	r := &fbxReader{data: data, off: fbxHeaderSize, version: version}
	var root []*fbxNode
	for {
		node, ok := r.readNode()
		if !ok {
			break
		}
		root = append(root, node)
	}
	if r.err != nil {
		return nil, fmt.Errorf("parsing FBX node tree: %w", r.err)
	}

	return buildFBXScene(root)
}

// ParseFBXFile parses an FBX file from disk.
func ParseFBXFile(path string) (*asset.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading FBX file: %w", err)
	}
	return ParseFBX(data)
}

// looksLikeASCIIFBX recognizes the text form of FBX, which opens with a
// comment banner or a header extension block instead of the binary magic.
func looksLikeASCIIFBX(data []byte) bool {
	head := bytes.TrimLeft(data, " \t\r\n")
	return bytes.HasPrefix(head, []byte(";")) ||
		bytes.HasPrefix(head, []byte("FBXHeaderExtension"))
}

// fbxNode is one record of the binary node tree.
type fbxNode struct {
	Name     string
	Props    []any
	Children []*fbxNode
}

// child returns the first child with the given name, or nil.
func (n *fbxNode) child(name string) *fbxNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// children returns every child with the given name, in document order.
func (n *fbxNode) children(name string) []*fbxNode {
	var out []*fbxNode
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// propString returns property i as a string, or "" when absent or mistyped.
func (n *fbxNode) propString(i int) string {
	if i >= len(n.Props) {
		return ""
	}
	s, _ := n.Props[i].(string)
	return s
}

// propInt64 returns property i as an int64, coercing the narrower integer
// property types.
func (n *fbxNode) propInt64(i int) int64 {
	if i >= len(n.Props) {
		return 0
	}
	switch v := n.Props[i].(type) {
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// propFloat returns property i as a float64, coercing float32.
func (n *fbxNode) propFloat(i int) float64 {
	if i >= len(n.Props) {
		return 0
	}
	switch v := n.Props[i].(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// propFloats returns array property i as float64s, coercing a float32 array.
func (n *fbxNode) propFloats(i int) []float64 {
	if i >= len(n.Props) {
		return nil
	}
	switch v := n.Props[i].(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for j, f := range v {
			out[j] = float64(f)
		}
		return out
	}
	return nil
}

// propInts returns array property i as int32s, coercing an int64 array.
func (n *fbxNode) propInts(i int) []int32 {
	if i >= len(n.Props) {
		return nil
	}
	switch v := n.Props[i].(type) {
	case []int32:
		return v
	case []int64:
		out := make([]int32, len(v))
		for j, x := range v {
			out[j] = int32(x)
		}
		return out
	}
	return nil
}

// fbxReader walks the byte slice with a sticky error. Node end offsets in
// the file are absolute, so parsing tracks absolute positions too.
type fbxReader struct {
	data    []byte
	off     int
	version uint32
	err     error
}

func (r *fbxReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *fbxReader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	if r.off+1 > len(r.data) {
		r.fail(ErrTruncatedFBXData)
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *fbxReader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	if r.off+2 > len(r.data) {
		r.fail(ErrTruncatedFBXData)
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *fbxReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	if r.off+4 > len(r.data) {
		r.fail(ErrTruncatedFBXData)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *fbxReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	if r.off+8 > len(r.data) {
		r.fail(ErrTruncatedFBXData)
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *fbxReader) raw(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.fail(ErrTruncatedFBXData)
		return nil
	}
	v := r.data[r.off : r.off+n]
	r.off += n
	return v
}

// readNode reads one node record. It returns ok=false at a null record
// (the list terminator) or on error; r.err distinguishes the two.
func (r *fbxReader) readNode() (*fbxNode, bool) {
	var end, numProps, propListLen uint64
	if r.version >= fbx64BitVersion {
		end = r.u64()
		numProps = r.u64()
		propListLen = r.u64()
	} else {
		end = uint64(r.u32())
		numProps = uint64(r.u32())
		propListLen = uint64(r.u32())
	}
	nameLen := r.u8()
	if r.err != nil {
		return nil, false
	}
	if end == 0 && numProps == 0 && propListLen == 0 && nameLen == 0 {
		return nil, false
	}
	if end > uint64(len(r.data)) || numProps > fbxMaxArrayLen {
		r.fail(ErrTruncatedFBXData)
		return nil, false
	}

	node := &fbxNode{Name: string(r.raw(int(nameLen)))}

	propEnd := r.off + int(propListLen)
	for i := uint64(0); i < numProps && r.err == nil; i++ {
		node.Props = append(node.Props, r.readProp())
	}
	if r.err == nil && r.off < propEnd {
		r.off = propEnd
	}

	for r.err == nil && r.off < int(end) {
		child, ok := r.readNode()
		if !ok {
			break
		}
		node.Children = append(node.Children, child)
	}
	if r.err == nil && r.off < int(end) {
		r.off = int(end)
	}
	if r.err != nil {
		return nil, false
	}
	return node, true
}

// readProp reads one typed property.
func (r *fbxReader) readProp() any {
	typ := r.u8()
	switch typ {
	case 'Y':
		return int16(r.u16())
	case 'C':
		return r.u8() != 0
	case 'I':
		return int32(r.u32())
	case 'F':
		return gomath.Float32frombits(r.u32())
	case 'D':
		return gomath.Float64frombits(r.u64())
	case 'L':
		return int64(r.u64())
	case 'S':
		return string(r.raw(int(r.u32())))
	case 'R':
		return append([]byte(nil), r.raw(int(r.u32()))...)
	case 'f', 'd', 'l', 'i', 'b':
		return r.readArray(typ)
	default:
		if r.err == nil {
			r.fail(fmt.Errorf("unknown FBX property type %q", typ))
		}
		return nil
	}
}

// readArray reads one array property, inflating zlib-compressed payloads.
func (r *fbxReader) readArray(typ uint8) any {
	count := int(r.u32())
	encoding := r.u32()
	compLen := int(r.u32())
	if r.err != nil {
		return nil
	}
	if count < 0 || count > fbxMaxArrayLen {
		r.fail(fmt.Errorf("FBX array length %d out of range", count))
		return nil
	}

	elemSize := 4
	switch typ {
	case 'd', 'l':
		elemSize = 8
	case 'b':
		elemSize = 1
	}

	var raw []byte
	if encoding == 0 {
		raw = r.raw(count * elemSize)
	} else {
		comp := r.raw(compLen)
		if r.err != nil {
			return nil
		}
		zr, err := zlib.NewReader(bytes.NewReader(comp))
		if err != nil {
			r.fail(fmt.Errorf("opening FBX compressed array: %w", err))
			return nil
		}
		raw, err = io.ReadAll(zr)
		zr.Close()
		if err != nil {
			r.fail(fmt.Errorf("inflating FBX array: %w", err))
			return nil
		}
	}
	if r.err != nil {
		return nil
	}
	if len(raw) < count*elemSize {
		r.fail(ErrTruncatedFBXData)
		return nil
	}

	switch typ {
	case 'f':
		out := make([]float32, count)
		for i := range out {
			out[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out
	case 'd':
		out := make([]float64, count)
		for i := range out {
			out[i] = gomath.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out
	case 'i':
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out
	case 'l':
		out := make([]int64, count)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out
	default: // 'b'
		out := make([]bool, count)
		for i := range out {
			out[i] = raw[i] != 0
		}
		return out
	}
}

// fbxConn is one entry of the Connections table: child attaches to parent,
// with a target property name for OP connections.
type fbxConn struct {
	child, parent int64
	prop          string
}

// fbxObjectName splits the "name\x00\x01Class" form object names use.
func fbxObjectName(raw string) string {
	if i := strings.Index(raw, "\x00\x01"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// buildFBXScene assembles the asset scene from the parsed node tree.
func buildFBXScene(root []*fbxNode) (*asset.Scene, error) {
	var objects, connections *fbxNode
	scene := &asset.Scene{}
	for _, n := range root {
		switch n.Name {
		case "Objects":
			objects = n
		case "Connections":
			connections = n
		case "Creator":
			scene.Generator = n.propString(0)
		}
	}
	if objects == nil {
		return nil, ErrNoFBXGeometry
	}

	var (
		modelOrder []int64
		models     = make(map[int64]*asset.Node)
		geoms      = make(map[int64]*fbxNode)
		matOrder   []int64
		mats       = make(map[int64]asset.Material)
		texs       = make(map[int64]*asset.Texture)
	)

	for _, obj := range objects.Children {
		id := obj.propInt64(0)
		name := fbxObjectName(obj.propString(1))
		switch obj.Name {
		case "Model":
			n := asset.NewNode(name)
			applyFBXModelTransform(n, obj)
			models[id] = n
			modelOrder = append(modelOrder, id)
		case "Geometry":
			if obj.propString(2) == "Mesh" {
				geoms[id] = obj
			}
		case "Material":
			mats[id] = convertFBXMaterial(name, obj)
			matOrder = append(matOrder, id)
		case "Texture":
			texs[id] = convertFBXTexture(name, obj)
		}
	}

	var oo, op []fbxConn
	if connections != nil {
		for _, c := range connections.children("C") {
			conn := fbxConn{child: c.propInt64(1), parent: c.propInt64(2)}
			switch c.propString(0) {
			case "OO":
				oo = append(oo, conn)
			case "OP":
				conn.prop = c.propString(3)
				op = append(op, conn)
			}
		}
	}

	// Texture maps attach to material slots through OP connections.
	for _, conn := range op {
		tex, ok := texs[conn.child]
		if !ok {
			continue
		}
		m, ok := mats[conn.parent]
		if !ok {
			continue
		}
		switch conn.prop {
		case "DiffuseColor":
			m.Base().BaseColorMap = tex
		case "NormalMap":
			m.Base().NormalMap = tex
		case "TransparentColor":
			m.Base().AlphaMap = tex
		}
	}

	// OO connections in file order: materials fill model slots in order,
	// geometry attaches to its model, models nest under parent models.
	isChild := make(map[int64]bool)
	var geoErr error
	for _, conn := range oo {
		parentNode, parentIsModel := models[conn.parent]

		if m, ok := mats[conn.child]; ok && parentIsModel {
			parentNode.Materials = append(parentNode.Materials, m)
			continue
		}
		if g, ok := geoms[conn.child]; ok && parentIsModel {
			geo, groups, err := convertFBXGeometry(g)
			if err != nil {
				if geoErr == nil {
					geoErr = fmt.Errorf("geometry %q: %w", fbxObjectName(g.propString(1)), err)
				}
				continue
			}
			parentNode.Geometry = geo
			parentNode.Groups = groups
			continue
		}
		if childNode, ok := models[conn.child]; ok && parentIsModel {
			// First parent wins. Repeat or self connections would turn the
			// model tree into a graph and break scene traversal.
			if conn.child == conn.parent || isChild[conn.child] {
				continue
			}
			parentNode.Children = append(parentNode.Children, childNode)
			isChild[conn.child] = true
		}
	}
	if geoErr != nil {
		return nil, geoErr
	}

	for _, id := range modelOrder {
		if !isChild[id] {
			scene.Nodes = append(scene.Nodes, models[id])
		}
	}
	for _, id := range matOrder {
		addMaterialTextures(scene, mats[id])
	}

	if len(scene.Nodes) == 0 {
		return nil, ErrNoFBXGeometry
	}
	return scene, nil
}

// fbxProps70 indexes a node's Properties70 block by property name.
func fbxProps70(n *fbxNode) map[string]*fbxNode {
	out := make(map[string]*fbxNode)
	p70 := n.child("Properties70")
	if p70 == nil {
		return out
	}
	for _, p := range p70.children("P") {
		if name := p.propString(0); name != "" {
			out[name] = p
		}
	}
	return out
}

// A P record lays out as [name, type, label, flags, value...]; values start
// at index 4.
const fbxPropValueIndex = 4

func fbxPropVec3(props map[string]*fbxNode, name string) ([3]float64, bool) {
	p, ok := props[name]
	if !ok || len(p.Props) < fbxPropValueIndex+3 {
		return [3]float64{}, false
	}
	return [3]float64{
		p.propFloat(fbxPropValueIndex),
		p.propFloat(fbxPropValueIndex + 1),
		p.propFloat(fbxPropValueIndex + 2),
	}, true
}

func fbxPropFloat(props map[string]*fbxNode, name string) (float64, bool) {
	p, ok := props[name]
	if !ok || len(p.Props) < fbxPropValueIndex+1 {
		return 0, false
	}
	return p.propFloat(fbxPropValueIndex), true
}

// applyFBXModelTransform sets the node TRS from the model's Lcl properties.
// Pre and post rotation, pivots and geometric transforms are not applied.
func applyFBXModelTransform(n *asset.Node, model *fbxNode) {
	props := fbxProps70(model)
	if t, ok := fbxPropVec3(props, "Lcl Translation"); ok {
		n.Translation = math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}
	}
	if r, ok := fbxPropVec3(props, "Lcl Rotation"); ok {
		n.Rotation = quatFromFBXEuler(r)
	}
	if s, ok := fbxPropVec3(props, "Lcl Scaling"); ok {
		n.Scale = math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}
	}
}

// quatFromFBXEuler converts an FBX Lcl Rotation (XYZ order, degrees) to a
// quaternion: X is applied first, then Y, then Z.
func quatFromFBXEuler(deg [3]float64) math.Quat {
	const degToRad = gomath.Pi / 180
	qx := math.QuatFromAxisAngle(math.Vec3{X: 1}, float32(deg[0]*degToRad))
	qy := math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(deg[1]*degToRad))
	qz := math.QuatFromAxisAngle(math.Vec3{Z: 1}, float32(deg[2]*degToRad))
	return qz.Mul(qy).Mul(qx)
}

// convertFBXMaterial maps an FBX material onto the Phong or Lambert kind its
// shading model names, or the unknown kind for anything else.
func convertFBXMaterial(name string, m *fbxNode) asset.Material {
	props := fbxProps70(m)

	shading := ""
	if sm := m.child("ShadingModel"); sm != nil {
		shading = sm.propString(0)
	}
	if p, ok := props["ShadingModel"]; ok && shading == "" {
		shading = p.propString(fbxPropValueIndex)
	}

	surface := asset.DefaultSurface(name)
	if o, ok := fbxPropFloat(props, "Opacity"); ok {
		surface.Opacity = float32(o)
	} else if tf, ok := fbxPropFloat(props, "TransparencyFactor"); ok && tf > 0 && tf < 1 {
		surface.Opacity = float32(1 - tf)
	}

	diffuse := [3]float32{0.8, 0.8, 0.8}
	if d, ok := fbxPropVec3(props, "DiffuseColor"); ok {
		diffuse = [3]float32{float32(d[0]), float32(d[1]), float32(d[2])}
	} else if d, ok := fbxPropVec3(props, "Diffuse"); ok {
		diffuse = [3]float32{float32(d[0]), float32(d[1]), float32(d[2])}
	}

	switch strings.ToLower(shading) {
	case "phong":
		out := &asset.PhongMaterial{Surface: surface, Diffuse: diffuse}
		if s, ok := fbxPropVec3(props, "SpecularColor"); ok {
			out.Specular = [3]float32{float32(s[0]), float32(s[1]), float32(s[2])}
		}
		if sh, ok := fbxPropFloat(props, "Shininess"); ok {
			out.Shininess = float32(sh)
		} else if sh, ok := fbxPropFloat(props, "ShininessExponent"); ok {
			out.Shininess = float32(sh)
		}
		return out
	case "lambert":
		return &asset.LambertMaterial{Surface: surface, Diffuse: diffuse}
	default:
		return &asset.UnknownMaterial{Surface: surface, BaseColor: diffuse, ShadingModel: shading}
	}
}

// convertFBXTexture builds a texture reference from a Texture object,
// preferring the relative filename and normalizing Windows separators.
func convertFBXTexture(name string, t *fbxNode) *asset.Texture {
	path := ""
	if rf := t.child("RelativeFilename"); rf != nil {
		path = rf.propString(0)
	}
	if path == "" {
		if fn := t.child("FileName"); fn != nil {
			path = fn.propString(0)
		}
	}
	path = strings.ReplaceAll(path, "\\", "/")
	if name == "" {
		name = filepath.Base(path)
	}
	return &asset.Texture{Name: name, Path: path}
}

// fbxLayer is one resolved layer element: a value array plus the mapping
// that assigns values to corners.
type fbxLayer struct {
	mapping string
	values  []float64
	index   []int32
	indexed bool
}

func readFBXLayer(n *fbxNode, valueName, indexName string) *fbxLayer {
	if n == nil {
		return nil
	}
	l := &fbxLayer{}
	if m := n.child("MappingInformationType"); m != nil {
		l.mapping = m.propString(0)
	}
	if v := n.child(valueName); v != nil {
		l.values = v.propFloats(0)
	}
	if ref := n.child("ReferenceInformationType"); ref != nil && ref.propString(0) == "IndexToDirect" {
		l.indexed = true
		if ix := n.child(indexName); ix != nil {
			l.index = ix.propInts(0)
		}
	}
	if len(l.values) == 0 {
		return nil
	}
	return l
}

// value resolves the layer value for one corner, identified both by its
// position in the polygon-vertex stream and by its control point. dim is the
// component count per value. ok is false when the layer data does not cover
// the corner; callers drop the attribute then.
func (l *fbxLayer) value(stream, ctrl, dim int) ([]float64, bool) {
	var i int
	switch l.mapping {
	case "ByPolygonVertex":
		i = stream
	case "ByVertice", "ByVertex", "ByControlPoint":
		i = ctrl
	case "AllSame":
		i = 0
	default:
		return nil, false
	}
	if l.indexed {
		if i >= len(l.index) {
			return nil, false
		}
		i = int(l.index[i])
	}
	if i < 0 || (i+1)*dim > len(l.values) {
		return nil, false
	}
	return l.values[i*dim : (i+1)*dim], true
}

// fbxCorner ties a polygon-vertex stream position to its control point.
type fbxCorner struct {
	stream int
	ctrl   int32
}

// convertFBXGeometry expands one Geometry object into a non-indexed triangle
// list. Polygons fan-triangulate; per-polygon material assignments become
// vertex-space groups over the expanded stream.
func convertFBXGeometry(g *fbxNode) (*asset.Geometry, []asset.Group, error) {
	vertsNode := g.child("Vertices")
	pviNode := g.child("PolygonVertexIndex")
	if vertsNode == nil || pviNode == nil {
		return nil, nil, errors.New("missing Vertices or PolygonVertexIndex")
	}

	verts := vertsNode.propFloats(0)
	pvi := pviNode.propInts(0)
	if len(verts) < 3 || len(pvi) == 0 {
		return nil, nil, errors.New("empty Vertices or PolygonVertexIndex")
	}

	points := make([][3]float32, len(verts)/3)
	for i := range points {
		points[i] = [3]float32{
			float32(verts[i*3]),
			float32(verts[i*3+1]),
			float32(verts[i*3+2]),
		}
	}

	// Split the stream into polygons. A negative entry marks the last
	// corner of a polygon and encodes its index as the bitwise complement.
	var polys [][]fbxCorner
	var poly []fbxCorner
	for stream, v := range pvi {
		ctrl := v
		last := false
		if ctrl < 0 {
			ctrl = ^ctrl
			last = true
		}
		if int(ctrl) >= len(points) {
			return nil, nil, fmt.Errorf("control point index %d out of range (%d points)", ctrl, len(points))
		}
		poly = append(poly, fbxCorner{stream: stream, ctrl: ctrl})
		if last {
			if len(poly) >= 3 {
				polys = append(polys, poly)
			}
			poly = nil
		}
	}
	if len(polys) == 0 {
		return nil, nil, errors.New("no complete polygons")
	}

	normalLayer := readFBXLayer(g.child("LayerElementNormal"), "Normals", "NormalsIndex")
	uvLayers := g.children("LayerElementUV")
	var uvLayer, uv2Layer *fbxLayer
	if len(uvLayers) > 0 {
		uvLayer = readFBXLayer(uvLayers[0], "UV", "UVIndex")
	}
	if len(uvLayers) > 1 {
		uv2Layer = readFBXLayer(uvLayers[1], "UV", "UVIndex")
	}

	// Per-polygon material indices, when the file assigns them.
	var polyMats []int32
	if lm := g.child("LayerElementMaterial"); lm != nil {
		if m := lm.child("MappingInformationType"); m != nil && m.propString(0) == "ByPolygon" {
			if arr := lm.child("Materials"); arr != nil {
				polyMats = arr.propInts(0)
				if len(polyMats) < len(polys) {
					polyMats = nil
				}
			}
		}
	}

	geo := &asset.Geometry{}
	haveNormals, haveUV, haveUV2 := normalLayer != nil, uvLayer != nil, uv2Layer != nil

	emit := func(c fbxCorner) {
		geo.Positions = append(geo.Positions, points[c.ctrl])
		if haveNormals {
			if v, ok := normalLayer.value(c.stream, int(c.ctrl), 3); ok {
				geo.Normals = append(geo.Normals, [3]float32{float32(v[0]), float32(v[1]), float32(v[2])})
			} else {
				haveNormals = false
				geo.Normals = nil
			}
		}
		if haveUV {
			if v, ok := uvLayer.value(c.stream, int(c.ctrl), 2); ok {
				geo.UVs = append(geo.UVs, [2]float32{float32(v[0]), float32(v[1])})
			} else {
				haveUV = false
				geo.UVs = nil
			}
		}
		if haveUV2 {
			if v, ok := uv2Layer.value(c.stream, int(c.ctrl), 2); ok {
				geo.UV2s = append(geo.UV2s, [2]float32{float32(v[0]), float32(v[1])})
			} else {
				haveUV2 = false
				geo.UV2s = nil
			}
		}
	}

	var groups []asset.Group
	var curMat int32
	groupStart := 0
	for p, poly := range polys {
		if polyMats != nil {
			mat := polyMats[p]
			if p == 0 {
				curMat = mat
			} else if mat != curMat {
				groups = append(groups, asset.Group{
					Start:         groupStart,
					Count:         len(geo.Positions) - groupStart,
					MaterialIndex: int(curMat),
				})
				groupStart = len(geo.Positions)
				curMat = mat
			}
		}
		for i := 1; i+1 < len(poly); i++ {
			emit(poly[0])
			emit(poly[i])
			emit(poly[i+1])
		}
	}
	if polyMats != nil {
		groups = append(groups, asset.Group{
			Start:         groupStart,
			Count:         len(geo.Positions) - groupStart,
			MaterialIndex: int(curMat),
		})
	}

	return geo, groups, nil
}
