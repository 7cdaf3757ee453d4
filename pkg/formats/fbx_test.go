package formats

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	gomath "math"
	"testing"

	"github.com/meshworks/meshstudio/pkg/asset"
	"github.com/meshworks/meshstudio/pkg/math"
)

func TestParseFBX_HeaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "empty data",
			data:    []byte{},
			wantErr: ErrTruncatedFBXData,
		},
		{
			name:    "wrong magic",
			data:    bytes.Repeat([]byte{'X'}, 64),
			wantErr: ErrInvalidFBXMagic,
		},
		{
			name:    "ascii banner",
			data:    []byte("; FBX 7.4.0 project file\nFBXHeaderExtension:  {\n"),
			wantErr: ErrASCIIFBX,
		},
		{
			name:    "ascii header block",
			data:    []byte("FBXHeaderExtension:  {\n\tFBXHeaderVersion: 1003\n"),
			wantErr: ErrASCIIFBX,
		},
		{
			name:    "magic only",
			data:    []byte(fbxMagic),
			wantErr: ErrTruncatedFBXData,
		},
		{
			name:    "unsupported old version",
			data:    binary.LittleEndian.AppendUint32([]byte(fbxMagic), 6100),
			wantErr: ErrUnsupportedFBXVersion,
		},
		{
			name:    "unsupported future version",
			data:    binary.LittleEndian.AppendUint32([]byte(fbxMagic), 8000),
			wantErr: ErrUnsupportedFBXVersion,
		},
		{
			name:    "truncated node tree",
			data:    append(binary.LittleEndian.AppendUint32([]byte(fbxMagic), 7400), 0x10, 0x00),
			wantErr: ErrTruncatedFBXData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFBX(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFBX_NoObjects(t *testing.T) {
	data := buildFBXDoc(7400, fnode("Creator", "unit test"))
	if _, err := ParseFBX(data); !errors.Is(err, ErrNoFBXGeometry) {
		t.Errorf("got error %v, want %v", err, ErrNoFBXGeometry)
	}
}

func TestFBXReader_PropertyTypes(t *testing.T) {
	node := fnode("Test",
		int16(-5),
		true,
		int32(42),
		float32(1.5),
		float64(2.25),
		int64(1<<40),
		"hello",
		[]byte{0xDE, 0xAD},
		[]int32{1, -2, 3},
		[]int64{4, 5},
		[]float32{0.5, 1.5},
		[]float64{2.5, 3.5},
		[]bool{true, false, true},
	)
	nodes := parseFBXTestTree(t, buildFBXDoc(7400, node))

	if len(nodes) != 1 {
		t.Fatalf("node count = %d, want 1", len(nodes))
	}
	got := nodes[0]
	if got.Name != "Test" {
		t.Errorf("name = %q, want %q", got.Name, "Test")
	}
	if len(got.Props) != 13 {
		t.Fatalf("prop count = %d, want 13", len(got.Props))
	}
	if v := got.Props[0].(int16); v != -5 {
		t.Errorf("int16 prop = %d, want -5", v)
	}
	if v := got.Props[1].(bool); !v {
		t.Error("bool prop = false, want true")
	}
	if v := got.Props[2].(int32); v != 42 {
		t.Errorf("int32 prop = %d, want 42", v)
	}
	if v := got.Props[3].(float32); v != 1.5 {
		t.Errorf("float32 prop = %v, want 1.5", v)
	}
	if v := got.Props[4].(float64); v != 2.25 {
		t.Errorf("float64 prop = %v, want 2.25", v)
	}
	if v := got.Props[5].(int64); v != 1<<40 {
		t.Errorf("int64 prop = %d, want 2^40", v)
	}
	if v := got.Props[6].(string); v != "hello" {
		t.Errorf("string prop = %q, want %q", v, "hello")
	}
	if v := got.Props[7].([]byte); !bytes.Equal(v, []byte{0xDE, 0xAD}) {
		t.Errorf("raw prop = %v", v)
	}
	if v := got.Props[8].([]int32); len(v) != 3 || v[1] != -2 {
		t.Errorf("int32 array = %v", v)
	}
	if v := got.Props[12].([]bool); len(v) != 3 || v[1] {
		t.Errorf("bool array = %v", v)
	}
}

func TestFBXReader_CompressedArray(t *testing.T) {
	values := make([]int32, 100)
	for i := range values {
		values[i] = int32(i * 7)
	}
	node := fnode("Compressed", zlibInts(values))
	nodes := parseFBXTestTree(t, buildFBXDoc(7400, node))

	got, ok := nodes[0].Props[0].([]int32)
	if !ok {
		t.Fatalf("prop type = %T, want []int32", nodes[0].Props[0])
	}
	if len(got) != len(values) {
		t.Fatalf("array length = %d, want %d", len(got), len(values))
	}
	for i, v := range values {
		if got[i] != v {
			t.Fatalf("array[%d] = %d, want %d", i, got[i], v)
		}
	}
}

func TestFBXReader_64BitHeaders(t *testing.T) {
	node := fnode("Root", int64(7)).add(fnode("Leaf", "nested"))
	nodes := parseFBXTestTree(t, buildFBXDoc(7500, node))

	if len(nodes) != 1 {
		t.Fatalf("node count = %d, want 1", len(nodes))
	}
	if nodes[0].propInt64(0) != 7 {
		t.Errorf("root prop = %d, want 7", nodes[0].propInt64(0))
	}
	leaf := nodes[0].child("Leaf")
	if leaf == nil || leaf.propString(0) != "nested" {
		t.Errorf("nested child = %+v, want Leaf with %q", leaf, "nested")
	}
}

func TestFBXObjectName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"cube\x00\x01Model", "cube"},
		{"plain", "plain"},
		{"\x00\x01Material", ""},
	}
	for _, tt := range tests {
		if got := fbxObjectName(tt.raw); got != tt.want {
			t.Errorf("fbxObjectName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestQuatFromFBXEuler(t *testing.T) {
	got := quatFromFBXEuler([3]float64{0, 90, 0})
	want := math.QuatFromAxisAngle(math.Vec3{Y: 1}, gomath.Pi/2)
	if !quatClose(got, want, 1e-5) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// X then Z: the Z rotation applies second.
	got = quatFromFBXEuler([3]float64{90, 0, 90})
	qx := math.QuatFromAxisAngle(math.Vec3{X: 1}, gomath.Pi/2)
	qz := math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi/2)
	want = qz.Mul(qx)
	if !quatClose(got, want, 1e-5) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func quatClose(a, b math.Quat, tol float32) bool {
	d := func(x, y float32) float32 {
		if x > y {
			return x - y
		}
		return y - x
	}
	direct := d(a.X, b.X) < tol && d(a.Y, b.Y) < tol && d(a.Z, b.Z) < tol && d(a.W, b.W) < tol
	negated := d(a.X, -b.X) < tol && d(a.Y, -b.Y) < tol && d(a.Z, -b.Z) < tol && d(a.W, -b.W) < tol
	return direct || negated
}

func TestParseFBX_MeshScene(t *testing.T) {
	data := buildFBXDoc(7400, testFBXObjects(), testFBXConnections())

	scene, err := ParseFBX(data)
	if err != nil {
		t.Fatalf("ParseFBX failed: %v", err)
	}
	if len(scene.Nodes) != 1 {
		t.Fatalf("root count = %d, want 1", len(scene.Nodes))
	}

	n := scene.Nodes[0]
	if n.Name != "cube" {
		t.Errorf("node name = %q, want %q", n.Name, "cube")
	}
	if n.Translation != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("translation = %+v, want (1,2,3)", n.Translation)
	}
	if n.Scale != (math.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("scale = %+v, want (2,2,2)", n.Scale)
	}
	wantRot := math.QuatFromAxisAngle(math.Vec3{Y: 1}, gomath.Pi/2)
	if !quatClose(n.Rotation, wantRot, 1e-5) {
		t.Errorf("rotation = %+v, want 90 deg about Y", n.Rotation)
	}

	geo := n.Geometry
	if geo == nil {
		t.Fatal("node has no geometry")
	}
	// Quad fans into 2 triangles, plus 1 triangle: 9 expanded corners.
	if geo.VertexCount() != 9 {
		t.Fatalf("vertex count = %d, want 9", geo.VertexCount())
	}
	if geo.Indexed() {
		t.Error("FBX geometry should expand non-indexed")
	}
	if geo.Positions[0] != [3]float32{0, 0, 0} {
		t.Errorf("Positions[0] = %v, want [0 0 0]", geo.Positions[0])
	}
	if geo.Positions[5] != [3]float32{0, 1, 0} {
		t.Errorf("Positions[5] = %v, want [0 1 0] (fan second triangle end)", geo.Positions[5])
	}

	if len(geo.Normals) != 9 {
		t.Fatalf("normal count = %d, want 9", len(geo.Normals))
	}
	for i, nrm := range geo.Normals {
		if nrm != [3]float32{0, 0, 1} {
			t.Fatalf("Normals[%d] = %v, want [0 0 1]", i, nrm)
		}
	}

	wantUVs := [][2]float32{
		{0, 0}, {1, 0}, {1, 1},
		{0, 0}, {1, 1}, {0, 1},
		{1, 0}, {1, 1}, {0, 0},
	}
	if len(geo.UVs) != len(wantUVs) {
		t.Fatalf("uv count = %d, want %d", len(geo.UVs), len(wantUVs))
	}
	for i, w := range wantUVs {
		if geo.UVs[i] != w {
			t.Errorf("UVs[%d] = %v, want %v", i, geo.UVs[i], w)
		}
	}

	wantGroups := []asset.Group{
		{Start: 0, Count: 6, MaterialIndex: 0},
		{Start: 6, Count: 3, MaterialIndex: 1},
	}
	if len(n.Groups) != len(wantGroups) {
		t.Fatalf("group count = %d, want %d", len(n.Groups), len(wantGroups))
	}
	for i, w := range wantGroups {
		if n.Groups[i] != w {
			t.Errorf("Groups[%d] = %+v, want %+v", i, n.Groups[i], w)
		}
	}

	if len(n.Materials) != 2 {
		t.Fatalf("material count = %d, want 2", len(n.Materials))
	}
	phong, ok := n.Materials[0].(*asset.PhongMaterial)
	if !ok {
		t.Fatalf("Materials[0] type = %T, want *asset.PhongMaterial", n.Materials[0])
	}
	if phong.Name != "matA" {
		t.Errorf("Materials[0] name = %q, want %q", phong.Name, "matA")
	}
	if phong.Diffuse != [3]float32{0.8, 0.2, 0.2} {
		t.Errorf("phong diffuse = %v, want [0.8 0.2 0.2]", phong.Diffuse)
	}
	if phong.Shininess != 50 {
		t.Errorf("phong shininess = %v, want 50", phong.Shininess)
	}
	if phong.BaseColorMap == nil || phong.BaseColorMap.Path != "textures/wood.png" {
		t.Errorf("phong base map = %+v, want textures/wood.png", phong.BaseColorMap)
	}

	lambert, ok := n.Materials[1].(*asset.LambertMaterial)
	if !ok {
		t.Fatalf("Materials[1] type = %T, want *asset.LambertMaterial", n.Materials[1])
	}
	if lambert.Diffuse != [3]float32{0.2, 0.2, 0.8} {
		t.Errorf("lambert diffuse = %v, want [0.2 0.2 0.8]", lambert.Diffuse)
	}

	if len(scene.Textures) != 1 || scene.Textures[0].Path != "textures/wood.png" {
		t.Errorf("scene textures = %+v, want the diffuse map", scene.Textures)
	}
}

func TestParseFBX_ModelHierarchy(t *testing.T) {
	objects := fnode("Objects").add(
		fnode("Model", int64(200), "parent\x00\x01Model", "Null"),
		fnode("Model", int64(201), "child\x00\x01Model", "Mesh"),
	)
	connections := fnode("Connections").add(
		fnode("C", "OO", int64(201), int64(200)),
		fnode("C", "OO", int64(200), int64(0)),
	)
	scene, err := ParseFBX(buildFBXDoc(7400, objects, connections))
	if err != nil {
		t.Fatalf("ParseFBX failed: %v", err)
	}
	if len(scene.Nodes) != 1 {
		t.Fatalf("root count = %d, want 1", len(scene.Nodes))
	}
	root := scene.Nodes[0]
	if root.Name != "parent" {
		t.Errorf("root = %q, want %q", root.Name, "parent")
	}
	if len(root.Children) != 1 || root.Children[0].Name != "child" {
		t.Fatalf("children = %+v, want one named child", root.Children)
	}
}

func TestParseFBX_MalformedNesting(t *testing.T) {
	t.Run("repeat parent closing a cycle", func(t *testing.T) {
		objects := fnode("Objects").add(
			fnode("Model", int64(210), "root\x00\x01Model", "Null"),
			fnode("Model", int64(200), "a\x00\x01Model", "Null"),
			fnode("Model", int64(201), "b\x00\x01Model", "Null"),
		)
		connections := fnode("Connections").add(
			fnode("C", "OO", int64(200), int64(210)),
			fnode("C", "OO", int64(201), int64(200)),
			// Second parent for "a": would close the cycle a -> b -> a.
			fnode("C", "OO", int64(200), int64(201)),
		)
		scene, err := ParseFBX(buildFBXDoc(7400, objects, connections))
		if err != nil {
			t.Fatalf("ParseFBX failed: %v", err)
		}
		if len(scene.Nodes) != 1 || scene.Nodes[0].Name != "root" {
			t.Fatalf("roots = %+v, want one named root", scene.Nodes)
		}
		var visited []string
		scene.Walk(func(n *asset.Node, _ math.Mat4) {
			visited = append(visited, n.Name)
		})
		if len(visited) != 3 {
			t.Errorf("walk visited %v, want root a b once each", visited)
		}
	})

	t.Run("self connection", func(t *testing.T) {
		objects := fnode("Objects").add(
			fnode("Model", int64(220), "loop\x00\x01Model", "Null"),
		)
		connections := fnode("Connections").add(
			fnode("C", "OO", int64(220), int64(220)),
		)
		scene, err := ParseFBX(buildFBXDoc(7400, objects, connections))
		if err != nil {
			t.Fatalf("ParseFBX failed: %v", err)
		}
		if len(scene.Nodes) != 1 || len(scene.Nodes[0].Children) != 0 {
			t.Fatalf("scene = %+v, want one childless root", scene.Nodes)
		}
	})
}

func TestParseFBX_UnknownShadingModel(t *testing.T) {
	objects := fnode("Objects").add(
		fnode("Model", int64(200), "thing\x00\x01Model", "Mesh"),
		fnode("Material", int64(300), "weird\x00\x01Material", "").add(
			fnode("ShadingModel", "anisotropic"),
			fnode("Properties70").add(
				fprop("DiffuseColor", "Color", 0.1, 0.2, 0.3),
			),
		),
	)
	connections := fnode("Connections").add(
		fnode("C", "OO", int64(300), int64(200)),
	)
	scene, err := ParseFBX(buildFBXDoc(7400, objects, connections))
	if err != nil {
		t.Fatalf("ParseFBX failed: %v", err)
	}

	m := scene.Nodes[0].Materials[0]
	unknown, ok := m.(*asset.UnknownMaterial)
	if !ok {
		t.Fatalf("material type = %T, want *asset.UnknownMaterial", m)
	}
	if unknown.ShadingModel != "anisotropic" {
		t.Errorf("shading model = %q, want %q", unknown.ShadingModel, "anisotropic")
	}
	if unknown.BaseColor != [3]float32{0.1, 0.2, 0.3} {
		t.Errorf("base color = %v, want diffuse", unknown.BaseColor)
	}
}

func TestFBXLayer_Mappings(t *testing.T) {
	layer := &fbxLayer{
		mapping: "ByVertice",
		values:  []float64{1, 2, 3, 4, 5, 6},
	}
	if v, ok := layer.value(9, 1, 3); !ok || v[0] != 4 {
		t.Errorf("ByVertice value = %v ok=%v, want [4 5 6]", v, ok)
	}

	layer = &fbxLayer{mapping: "AllSame", values: []float64{7, 8, 9}}
	if v, ok := layer.value(5, 2, 3); !ok || v[2] != 9 {
		t.Errorf("AllSame value = %v ok=%v, want [7 8 9]", v, ok)
	}

	layer = &fbxLayer{
		mapping: "ByPolygonVertex",
		values:  []float64{1, 2},
		indexed: true,
		index:   []int32{0},
	}
	if _, ok := layer.value(3, 0, 2); ok {
		t.Error("out-of-range indexed lookup should fail")
	}
}

// Fixture helpers: these encode the binary node-record layout the parser
// reads, including the null-record list terminators.

type fbxTestNode struct {
	name     string
	props    []any
	children []*fbxTestNode
}

// zlibInts marks an int32 array that the encoder should zlib-compress.
type zlibInts []int32

func fnode(name string, props ...any) *fbxTestNode {
	return &fbxTestNode{name: name, props: props}
}

func (n *fbxTestNode) add(children ...*fbxTestNode) *fbxTestNode {
	n.children = append(n.children, children...)
	return n
}

// fprop builds a Properties70 P record: [name, type, label, flags, values...].
func fprop(name, typ string, values ...any) *fbxTestNode {
	props := append([]any{name, typ, "", "A"}, values...)
	return fnode("P", props...)
}

func buildFBXDoc(version uint32, nodes ...*fbxTestNode) []byte {
	out := []byte(fbxMagic)
	out = binary.LittleEndian.AppendUint32(out, version)
	for _, n := range nodes {
		out = append(out, encodeFBXNode(n, len(out), version >= fbx64BitVersion)...)
	}
	headerSize := 13
	if version >= fbx64BitVersion {
		headerSize = 25
	}
	return append(out, make([]byte, headerSize)...)
}

func encodeFBXNode(n *fbxTestNode, start int, bits64 bool) []byte {
	props := encodeFBXProps(n.props)
	headerSize := 13
	if bits64 {
		headerSize = 25
	}

	childStart := start + headerSize + len(n.name) + len(props)
	var children []byte
	for _, c := range n.children {
		children = append(children, encodeFBXNode(c, childStart+len(children), bits64)...)
	}
	if len(n.children) > 0 {
		children = append(children, make([]byte, headerSize)...)
	}

	end := childStart + len(children)
	var out []byte
	if bits64 {
		out = binary.LittleEndian.AppendUint64(out, uint64(end))
		out = binary.LittleEndian.AppendUint64(out, uint64(len(n.props)))
		out = binary.LittleEndian.AppendUint64(out, uint64(len(props)))
	} else {
		out = binary.LittleEndian.AppendUint32(out, uint32(end))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(n.props)))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(props)))
	}
	out = append(out, byte(len(n.name)))
	out = append(out, n.name...)
	out = append(out, props...)
	return append(out, children...)
}

func encodeFBXProps(props []any) []byte {
	var b bytes.Buffer
	for _, p := range props {
		switch v := p.(type) {
		case int16:
			b.WriteByte('Y')
			b.Write(binary.LittleEndian.AppendUint16(nil, uint16(v)))
		case bool:
			b.WriteByte('C')
			if v {
				b.WriteByte(1)
			} else {
				b.WriteByte(0)
			}
		case int32:
			b.WriteByte('I')
			b.Write(binary.LittleEndian.AppendUint32(nil, uint32(v)))
		case float32:
			b.WriteByte('F')
			b.Write(binary.LittleEndian.AppendUint32(nil, gomath.Float32bits(v)))
		case float64:
			b.WriteByte('D')
			b.Write(binary.LittleEndian.AppendUint64(nil, gomath.Float64bits(v)))
		case int64:
			b.WriteByte('L')
			b.Write(binary.LittleEndian.AppendUint64(nil, uint64(v)))
		case string:
			b.WriteByte('S')
			b.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(v))))
			b.WriteString(v)
		case []byte:
			b.WriteByte('R')
			b.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(v))))
			b.Write(v)
		case []int32:
			b.WriteByte('i')
			writeFBXArrayHeader(&b, len(v), 0, 0)
			for _, x := range v {
				b.Write(binary.LittleEndian.AppendUint32(nil, uint32(x)))
			}
		case []int64:
			b.WriteByte('l')
			writeFBXArrayHeader(&b, len(v), 0, 0)
			for _, x := range v {
				b.Write(binary.LittleEndian.AppendUint64(nil, uint64(x)))
			}
		case []float32:
			b.WriteByte('f')
			writeFBXArrayHeader(&b, len(v), 0, 0)
			for _, x := range v {
				b.Write(binary.LittleEndian.AppendUint32(nil, gomath.Float32bits(x)))
			}
		case []float64:
			b.WriteByte('d')
			writeFBXArrayHeader(&b, len(v), 0, 0)
			for _, x := range v {
				b.Write(binary.LittleEndian.AppendUint64(nil, gomath.Float64bits(x)))
			}
		case []bool:
			b.WriteByte('b')
			writeFBXArrayHeader(&b, len(v), 0, 0)
			for _, x := range v {
				if x {
					b.WriteByte(1)
				} else {
					b.WriteByte(0)
				}
			}
		case zlibInts:
			var payload bytes.Buffer
			for _, x := range v {
				payload.Write(binary.LittleEndian.AppendUint32(nil, uint32(x)))
			}
			var comp bytes.Buffer
			zw := zlib.NewWriter(&comp)
			zw.Write(payload.Bytes())
			zw.Close()
			b.WriteByte('i')
			writeFBXArrayHeader(&b, len(v), 1, comp.Len())
			b.Write(comp.Bytes())
		default:
			panic("unsupported fixture property type")
		}
	}
	return b.Bytes()
}

func writeFBXArrayHeader(b *bytes.Buffer, count int, encoding, compLen int) {
	b.Write(binary.LittleEndian.AppendUint32(nil, uint32(count)))
	b.Write(binary.LittleEndian.AppendUint32(nil, uint32(encoding)))
	b.Write(binary.LittleEndian.AppendUint32(nil, uint32(compLen)))
}

func parseFBXTestTree(t *testing.T, data []byte) []*fbxNode {
	t.Helper()
	version := binary.LittleEndian.Uint32(data[len(fbxMagic):])
	r := &fbxReader{data: data, off: fbxHeaderSize, version: version}
	var nodes []*fbxNode
	for {
		n, ok := r.readNode()
		if !ok {
			break
		}
		nodes = append(nodes, n)
	}
	if r.err != nil {
		t.Fatalf("parsing fixture tree: %v", r.err)
	}
	return nodes
}

// testFBXObjects builds a one-mesh scene: a quad plus a triangle sharing a
// 5-point control mesh, two materials split ByPolygon, one diffuse texture.
func testFBXObjects() *fbxTestNode {
	geometry := fnode("Geometry", int64(100), "geo\x00\x01Geometry", "Mesh").add(
		fnode("Vertices", []float64{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
			2, 0, 0,
		}),
		// Quad 0,1,2,3 and triangle 1,2,4; last corner bit-complemented.
		fnode("PolygonVertexIndex", []int32{0, 1, 2, -4, 1, 2, -5}),
		fnode("LayerElementNormal", int32(0)).add(
			fnode("MappingInformationType", "ByPolygonVertex"),
			fnode("ReferenceInformationType", "Direct"),
			fnode("Normals", []float64{
				0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1,
				0, 0, 1, 0, 0, 1, 0, 0, 1,
			}),
		),
		fnode("LayerElementUV", int32(0)).add(
			fnode("MappingInformationType", "ByPolygonVertex"),
			fnode("ReferenceInformationType", "IndexToDirect"),
			fnode("UV", []float64{0, 0, 1, 0, 1, 1, 0, 1}),
			fnode("UVIndex", []int32{0, 1, 2, 3, 1, 2, 0}),
		),
		fnode("LayerElementMaterial", int32(0)).add(
			fnode("MappingInformationType", "ByPolygon"),
			fnode("ReferenceInformationType", "IndexToDirect"),
			fnode("Materials", []int32{0, 1}),
		),
	)

	model := fnode("Model", int64(200), "cube\x00\x01Model", "Mesh").add(
		fnode("Properties70").add(
			fprop("Lcl Translation", "Lcl Translation", 1.0, 2.0, 3.0),
			fprop("Lcl Rotation", "Lcl Rotation", 0.0, 90.0, 0.0),
			fprop("Lcl Scaling", "Lcl Scaling", 2.0, 2.0, 2.0),
		),
	)

	matA := fnode("Material", int64(300), "matA\x00\x01Material", "").add(
		fnode("ShadingModel", "phong"),
		fnode("Properties70").add(
			fprop("DiffuseColor", "Color", 0.8, 0.2, 0.2),
			fprop("SpecularColor", "Color", 1.0, 1.0, 1.0),
			fprop("Shininess", "double", 50.0),
			fprop("Opacity", "double", 1.0),
		),
	)
	matB := fnode("Material", int64(301), "matB\x00\x01Material", "").add(
		fnode("ShadingModel", "lambert"),
		fnode("Properties70").add(
			fprop("DiffuseColor", "Color", 0.2, 0.2, 0.8),
		),
	)

	texture := fnode("Texture", int64(400), "diffuse\x00\x01Texture", "").add(
		fnode("RelativeFilename", `textures\wood.png`),
	)

	return fnode("Objects").add(geometry, model, matA, matB, texture)
}

func testFBXConnections() *fbxTestNode {
	return fnode("Connections").add(
		fnode("C", "OO", int64(100), int64(200)),
		fnode("C", "OO", int64(300), int64(200)),
		fnode("C", "OO", int64(301), int64(200)),
		fnode("C", "OP", int64(400), int64(300), "DiffuseColor"),
	)
}
