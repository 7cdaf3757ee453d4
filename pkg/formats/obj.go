// Wavefront OBJ/MTL parser. OBJ indexes positions, texcoords and normals
// independently per face corner, so parsed geometry comes out as an expanded
// non-indexed triangle list with material groups over usemtl runs.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/meshworks/meshstudio/pkg/asset"
)

// OBJ format errors.
var (
	ErrNoOBJGeometry = errors.New("OBJ contains no face geometry")
	ErrOBJIndexRange = errors.New("OBJ face index out of range")
)

// objCorner is one face corner with resolved 0-based indices; -1 marks an
// absent texcoord or normal reference.
type objCorner struct {
	v, vt, vn int
}

// objRun is a contiguous usemtl run, addressed in corners.
type objRun struct {
	material string
	start    int
}

// objObject accumulates the triangulated corners of one o/g block.
type objObject struct {
	name    string
	corners []objCorner
	runs    []objRun
}

// ParseOBJ parses OBJ data into a scene. lib supplies materials for usemtl
// statements by name, typically from ParseMTL; unresolved names get a neutral
// gray material so geometry never imports bare.
func ParseOBJ(data []byte, lib map[string]asset.Material) (*asset.Scene, error) {
	var (
		positions [][3]float32
		normals   [][3]float32
		uvs       [][2]float32

		objects  []*objObject
		cur      *objObject
		material string
	)

	// ensure returns the current object, creating the implicit unnamed one
	// for files that start with faces right away.
	ensure := func() *objObject {
		if cur == nil {
			cur = &objObject{}
			objects = append(objects, cur)
		}
		return cur
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("OBJ line %d: %w", lineNum, err)
			}
			positions = append(positions, p)

		case "vn":
			n, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("OBJ line %d: %w", lineNum, err)
			}
			normals = append(normals, n)

		case "vt":
			uv, err := parseFloats2(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("OBJ line %d: %w", lineNum, err)
			}
			uvs = append(uvs, uv)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("OBJ line %d: face needs at least 3 corners", lineNum)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseOBJCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("OBJ line %d: %w", lineNum, err)
				}
				corners = append(corners, c)
			}
			o := ensure()
			if len(o.runs) == 0 || o.runs[len(o.runs)-1].material != material {
				o.runs = append(o.runs, objRun{material: material, start: len(o.corners)})
			}
			// Fan-triangulate polygons with more than 3 corners.
			for i := 1; i+1 < len(corners); i++ {
				o.corners = append(o.corners, corners[0], corners[i], corners[i+1])
			}

		case "o", "g":
			name := strings.Join(fields[1:], " ")
			if cur != nil && len(cur.corners) == 0 {
				cur.name = name
				continue
			}
			cur = &objObject{name: name}
			objects = append(objects, cur)

		case "usemtl":
			material = strings.Join(fields[1:], " ")

		default:
			// mtllib is handled by MTLReferences; s, l, p and anything
			// unrecognized is skipped.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	scene := &asset.Scene{}
	for _, o := range objects {
		if len(o.corners) == 0 {
			continue
		}
		scene.Nodes = append(scene.Nodes, buildOBJNode(o, positions, normals, uvs, lib, scene))
	}
	if len(scene.Nodes) == 0 {
		return nil, ErrNoOBJGeometry
	}
	return scene, nil
}

// buildOBJNode expands one object's corners into non-indexed geometry and
// maps its usemtl runs onto material groups.
func buildOBJNode(o *objObject, positions, normals [][3]float32, uvs [][2]float32, lib map[string]asset.Material, scene *asset.Scene) *asset.Node {
	n := asset.NewNode(o.name)
	geo := &asset.Geometry{
		Positions: make([][3]float32, len(o.corners)),
	}

	hasUV, hasNormal := false, false
	for _, c := range o.corners {
		if c.vt >= 0 {
			hasUV = true
		}
		if c.vn >= 0 {
			hasNormal = true
		}
	}
	if hasUV {
		geo.UVs = make([][2]float32, len(o.corners))
	}
	if hasNormal {
		geo.Normals = make([][3]float32, len(o.corners))
	}
	for i, c := range o.corners {
		geo.Positions[i] = positions[c.v]
		if hasUV && c.vt >= 0 {
			geo.UVs[i] = uvs[c.vt]
		}
		if hasNormal && c.vn >= 0 {
			geo.Normals[i] = normals[c.vn]
		}
	}
	n.Geometry = geo

	// Objects that never saw a usemtl keep a nil material list; the
	// splitter substitutes its default there.
	named := false
	for _, r := range o.runs {
		if r.material != "" {
			named = true
			break
		}
	}
	if !named {
		return n
	}

	index := make(map[string]int)
	for _, r := range o.runs {
		if _, ok := index[r.material]; ok {
			continue
		}
		m := lookupOBJMaterial(lib, r.material)
		index[r.material] = len(n.Materials)
		n.Materials = append(n.Materials, m)
		addMaterialTextures(scene, m)
	}
	for i, r := range o.runs {
		end := len(o.corners)
		if i+1 < len(o.runs) {
			end = o.runs[i+1].start
		}
		if end == r.start {
			continue
		}
		n.Groups = append(n.Groups, asset.Group{
			Start:         r.start,
			Count:         end - r.start,
			MaterialIndex: index[r.material],
		})
	}
	return n
}

// lookupOBJMaterial resolves a usemtl name against the parsed library,
// falling back to a neutral gray Phong material.
func lookupOBJMaterial(lib map[string]asset.Material, name string) asset.Material {
	if m, ok := lib[name]; ok && m != nil {
		return m
	}
	m := &asset.PhongMaterial{Surface: asset.DefaultSurface(name)}
	m.Diffuse = [3]float32{0.8, 0.8, 0.8}
	return m
}

// addMaterialTextures registers a material's texture references in the scene
// table so the importer can resolve them in one place.
func addMaterialTextures(scene *asset.Scene, m asset.Material) {
	s := m.Base()
	for _, t := range []*asset.Texture{s.BaseColorMap, s.AlphaMap, s.NormalMap, s.AOMap} {
		if t != nil {
			scene.AddTexture(t)
		}
	}
}

// parseOBJCorner resolves one face token (v, v/vt, v//vn or v/vt/vn) into
// 0-based indices. OBJ indices are 1-based; negative values count back from
// the end of the respective array.
func parseOBJCorner(tok string, nv, nvt, nvn int) (objCorner, error) {
	c := objCorner{v: -1, vt: -1, vn: -1}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, fmt.Errorf("malformed face corner %q", tok)
	}

	v, err := resolveOBJIndex(parts[0], nv)
	if err != nil {
		return c, err
	}
	c.v = v

	if len(parts) > 1 && parts[1] != "" {
		vt, err := resolveOBJIndex(parts[1], nvt)
		if err != nil {
			return c, err
		}
		c.vt = vt
	}
	if len(parts) > 2 && parts[2] != "" {
		vn, err := resolveOBJIndex(parts[2], nvn)
		if err != nil {
			return c, err
		}
		c.vn = vn
	}
	return c, nil
}

// resolveOBJIndex converts a raw OBJ index into a 0-based one and bounds-checks
// it against the n elements seen so far.
func resolveOBJIndex(raw string, n int) (int, error) {
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing face index %q: %w", raw, err)
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx = n + idx
	default:
		return 0, fmt.Errorf("%w: index 0", ErrOBJIndexRange)
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("%w: %s of %d", ErrOBJIndexRange, raw, n)
	}
	return idx, nil
}

// parseFloats3 parses the first three fields as float32.
func parseFloats3(fields []string) ([3]float32, error) {
	var out [3]float32
	if len(fields) < 3 {
		return out, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, fmt.Errorf("parsing %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFloats2 parses the first two fields as float32.
func parseFloats2(fields []string) ([2]float32, error) {
	var out [2]float32
	if len(fields) < 2 {
		return out, fmt.Errorf("expected 2 components, got %d", len(fields))
	}
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, fmt.Errorf("parsing %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// MTLReferences scans OBJ data for mtllib statements and returns the library
// names in order of appearance. The rest of each line is taken as one name,
// so paths containing spaces survive.
func MTLReferences(data []byte) []string {
	var refs []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "mtllib" {
			continue
		}
		if name := strings.TrimSpace(strings.TrimPrefix(line, "mtllib")); name != "" {
			refs = append(refs, name)
		}
	}
	return refs
}

// ParseMTL parses a material library into materials keyed by name. MTL maps
// onto the Phong model directly: Kd/Ks/Ns plus dissolve and texture maps.
func ParseMTL(data []byte) (map[string]asset.Material, error) {
	out := make(map[string]asset.Material)
	var cur *asset.PhongMaterial

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])

		if key == "newmtl" {
			name := strings.Join(fields[1:], " ")
			cur = &asset.PhongMaterial{Surface: asset.DefaultSurface(name)}
			cur.Diffuse = [3]float32{0.8, 0.8, 0.8}
			out[name] = cur
			continue
		}
		if cur == nil {
			// Statements before the first newmtl have nothing to attach to.
			continue
		}

		var err error
		switch key {
		case "kd":
			cur.Diffuse, err = parseFloats3(fields[1:])
		case "ks":
			cur.Specular, err = parseFloats3(fields[1:])
		case "ns":
			cur.Shininess, err = parseFloat(fields[1:])
		case "d":
			cur.Opacity, err = parseFloat(fields[1:])
		case "tr":
			var tr float32
			tr, err = parseFloat(fields[1:])
			cur.Opacity = 1 - tr
		case "map_kd":
			cur.BaseColorMap = mtlTexture(fields[1:])
		case "map_d":
			cur.AlphaMap = mtlTexture(fields[1:])
		case "map_bump", "bump", "norm":
			cur.NormalMap = mtlTexture(fields[1:])
			if bm, ok := mtlOption(fields[1:], "-bm"); ok {
				cur.NormalScale, err = parseFloat([]string{bm})
			}
		default:
			// Ka, Ke, illum, map_Ks and friends have no slot here.
		}
		if err != nil {
			return nil, fmt.Errorf("MTL line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL data: %w", err)
	}
	return out, nil
}

// mtlTexture builds a texture reference from a map statement's arguments.
// Options like -bm or -o precede the path, so the last field is the path.
func mtlTexture(args []string) *asset.Texture {
	if len(args) == 0 {
		return nil
	}
	path := args[len(args)-1]
	return &asset.Texture{Name: filepath.Base(path), Path: path}
}

// mtlOption returns the value following a named option flag.
func mtlOption(args []string, name string) (string, bool) {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// parseFloat parses the first field as float32.
func parseFloat(fields []string) (float32, error) {
	if len(fields) < 1 {
		return 0, errors.New("expected a value")
	}
	f, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", fields[0], err)
	}
	return float32(f), nil
}

// ParseOBJFile parses an OBJ file from disk, loading any material libraries
// it references relative to the file. Missing or malformed libraries are
// skipped so geometry still imports without its materials.
func ParseOBJFile(path string) (*asset.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}

	lib := make(map[string]asset.Material)
	for _, ref := range MTLReferences(data) {
		mtlPath := ref
		if !filepath.IsAbs(mtlPath) {
			mtlPath = filepath.Join(filepath.Dir(path), ref)
		}
		mtlData, err := os.ReadFile(mtlPath)
		if err != nil {
			continue
		}
		parsed, err := ParseMTL(mtlData)
		if err != nil {
			continue
		}
		for name, m := range parsed {
			lib[name] = m
		}
	}
	return ParseOBJ(data, lib)
}
