// Package renderer draws mesh records with OpenGL: one program, one
// interleaved vertex buffer per record, material factors as uniforms. All
// methods must run on the thread that owns the GL context.
package renderer

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/meshworks/meshstudio/internal/engine/debug"
	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/material"
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/renderer/shaders"
	"github.com/meshworks/meshstudio/internal/engine/shader"
	"github.com/meshworks/meshstudio/internal/engine/texture"
	"github.com/meshworks/meshstudio/internal/logger"
	"github.com/meshworks/meshstudio/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer owns the mesh program and the per-record GPU resources. Geometry
// is static after import, so each record uploads once and is looked up by ID
// afterwards; textures upload once per decoded Ref.
type Renderer struct {
	config Config

	program uint32

	locMVP           int32
	locModel         int32
	locNormalMatrix  int32
	locCameraPos     int32
	locBaseColor     int32
	locOpacity       int32
	locMetallic      int32
	locRoughness     int32
	locNormalScale   int32
	locAOIntensity   int32
	locAlphaCutoff   int32
	locFlatShading   int32
	locUseNormalMap  int32
	locSelected      int32
	locBaseTex       int32
	locNormalTex     int32
	locMetalRoughTex int32
	locAOTex         int32
	locUnlit         int32
	locHighlight     int32

	highlight [3]float32

	meshes   map[uint64]*gpuMesh
	textures map[*texture.Ref]uint32

	white uint32
	flat  uint32

	// Dynamic buffer for selection wireframes.
	lineVAO uint32
	lineVBO uint32
}

// New initializes OpenGL state and compiles the mesh program.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config, store *texture.Store) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	if store == nil {
		store = texture.NewStore()
	}

	r := &Renderer{
		config:    cfg,
		highlight: [3]float32{1.0, 0.55, 0.1},
		meshes:    map[uint64]*gpuMesh{},
		textures:  map[*texture.Ref]uint32{},
	}

	program, err := shader.CompileProgram(shaders.ModelVertexShader, shaders.ModelFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.program = program

	r.locMVP = shader.GetUniform(program, "uMVP")
	r.locModel = shader.GetUniform(program, "uModel")
	r.locNormalMatrix = shader.GetUniform(program, "uNormalMatrix")
	r.locCameraPos = shader.GetUniform(program, "uCameraPos")
	r.locBaseColor = shader.GetUniform(program, "uBaseColor")
	r.locOpacity = shader.GetUniform(program, "uOpacity")
	r.locMetallic = shader.GetUniform(program, "uMetallic")
	r.locRoughness = shader.GetUniform(program, "uRoughness")
	r.locNormalScale = shader.GetUniform(program, "uNormalScale")
	r.locAOIntensity = shader.GetUniform(program, "uAOIntensity")
	r.locAlphaCutoff = shader.GetUniform(program, "uAlphaCutoff")
	r.locFlatShading = shader.GetUniform(program, "uFlatShading")
	r.locUseNormalMap = shader.GetUniform(program, "uUseNormalMap")
	r.locSelected = shader.GetUniform(program, "uSelected")
	r.locBaseTex = shader.GetUniform(program, "uBaseTex")
	r.locNormalTex = shader.GetUniform(program, "uNormalTex")
	r.locMetalRoughTex = shader.GetUniform(program, "uMetalRoughTex")
	r.locAOTex = shader.GetUniform(program, "uAOTex")
	r.locUnlit = shader.GetUniform(program, "uUnlit")
	r.locHighlight = shader.GetUniform(program, "uHighlight")

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.ClearColor(0.13, 0.14, 0.17, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	// Fallbacks bound whenever a material slot has no usable image.
	r.white = r.resolveTexture(store.White(), 0)
	r.flat = r.resolveTexture(store.FlatNormal(), 0)

	return r, nil
}

// SetHighlightColor changes the tint of selected records and their
// bounds wireframe.
func (r *Renderer) SetHighlightColor(red, green, blue float32) {
	r.highlight = [3]float32{red, green, blue}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Render draws the given records. Opaque records draw first, transparent
// ones after, back to front. selected marks records for the highlight tint
// and may be nil.
func (r *Renderer) Render(view, proj math.Mat4, camPos math.Vec3, records []*model.Record, selected func(uint64) bool) {
	viewProj := proj.Mul(view)

	var opaque, blended []*model.Record
	for _, rec := range records {
		if rec == nil || !rec.Visible || rec.Geometry == nil || rec.Material == nil {
			continue
		}
		if rec.Material.AlphaMode == material.Blend || rec.Material.Transparent {
			blended = append(blended, rec)
		} else {
			opaque = append(opaque, rec)
		}
	}
	sort.SliceStable(blended, func(i, j int) bool {
		return blended[i].WorldSphere().Center.Distance(camPos) >
			blended[j].WorldSphere().Center.Distance(camPos)
	})

	gl.UseProgram(r.program)
	gl.Uniform3f(r.locCameraPos, camPos.X, camPos.Y, camPos.Z)
	gl.Uniform3f(r.locHighlight, r.highlight[0], r.highlight[1], r.highlight[2])
	gl.Uniform1i(r.locBaseTex, 0)
	gl.Uniform1i(r.locNormalTex, 1)
	gl.Uniform1i(r.locMetalRoughTex, 2)
	gl.Uniform1i(r.locAOTex, 3)

	for _, rec := range opaque {
		r.drawRecord(rec, viewProj, selected != nil && selected(rec.ID))
	}
	for _, rec := range blended {
		r.drawRecord(rec, viewProj, selected != nil && selected(rec.ID))
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	gl.Enable(gl.DEPTH_TEST)
}

func (r *Renderer) drawRecord(rec *model.Record, viewProj math.Mat4, selected bool) {
	mesh := r.meshFor(rec)
	if mesh == nil || mesh.drawCount == 0 {
		return
	}
	mat := rec.Material

	modelMat := rec.WorldMatrix()
	mvp := viewProj.Mul(modelMat)
	nm := normalMatrix(modelMat)

	gl.UniformMatrix4fv(r.locMVP, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.locModel, 1, false, &modelMat[0])
	gl.UniformMatrix3fv(r.locNormalMatrix, 1, false, &nm[0])

	gl.Uniform3f(r.locBaseColor, mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2])
	gl.Uniform1f(r.locOpacity, mat.Opacity)
	gl.Uniform1f(r.locMetallic, mat.Metalness)
	gl.Uniform1f(r.locRoughness, mat.Roughness)
	gl.Uniform1f(r.locNormalScale, mat.NormalScale)
	gl.Uniform1f(r.locAOIntensity, mat.AOIntensity)

	cutoff := float32(-1)
	if mat.AlphaMode == material.Mask {
		cutoff = mat.AlphaTest
	}
	gl.Uniform1f(r.locAlphaCutoff, cutoff)

	flat := int32(0)
	if mat.FlatShading || !mesh.hasNormals {
		flat = 1
	}
	gl.Uniform1i(r.locFlatShading, flat)

	useNormal := int32(0)
	if mat.NormalMap != nil && mat.NormalMap.Image != nil {
		useNormal = 1
	}
	gl.Uniform1i(r.locUseNormalMap, useNormal)

	sel := int32(0)
	if selected {
		sel = 1
	}
	gl.Uniform1i(r.locSelected, sel)

	// glTF packs roughness and metalness into one image, so either slot
	// resolves to the same upload.
	mrMap := mat.RoughnessMap
	if mrMap == nil {
		mrMap = mat.MetalnessMap
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.resolveTexture(mat.BaseColorMap, r.white))
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, r.resolveTexture(mat.NormalMap, r.flat))
	gl.ActiveTexture(gl.TEXTURE2)
	gl.BindTexture(gl.TEXTURE_2D, r.resolveTexture(mrMap, r.white))
	gl.ActiveTexture(gl.TEXTURE3)
	gl.BindTexture(gl.TEXTURE_2D, r.resolveTexture(mat.AOMap, r.white))

	if mat.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(mat.DepthWrite)
	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}
	if mat.AlphaMode == material.Blend || mat.Transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	mesh.draw()
}

// DrawBounds draws a wireframe box in world space with the highlight color,
// reusing the mesh program in unlit mode. The viewer calls it per selected
// record after the main pass.
func (r *Renderer) DrawBounds(view, proj math.Mat4, box geometry.Box) {
	verts := debug.BoxWireframe(box, boundsPadding(box))

	if r.lineVAO == 0 {
		gl.GenVertexArrays(1, &r.lineVAO)
		gl.BindVertexArray(r.lineVAO)
		gl.GenBuffers(1, &r.lineVBO)
		gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
		gl.EnableVertexAttribArray(0)
	} else {
		gl.BindVertexArray(r.lineVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.DYNAMIC_DRAW)

	gl.UseProgram(r.program)
	mvp := proj.Mul(view)
	ident := math.Identity()
	gl.UniformMatrix4fv(r.locMVP, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.locModel, 1, false, &ident[0])
	gl.Uniform1i(r.locUnlit, 1)
	gl.Uniform3f(r.locBaseColor, r.highlight[0], r.highlight[1], r.highlight[2])
	gl.Uniform1f(r.locOpacity, 1)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	gl.DrawArrays(gl.LINES, 0, int32(len(verts)/3))

	gl.Uniform1i(r.locUnlit, 0)
	gl.BindVertexArray(0)
}

// boundsPadding keeps the wireframe visibly clear of the surface without
// ballooning around small models.
func boundsPadding(box geometry.Box) float32 {
	s := box.Size()
	m := s.X
	if s.Y > m {
		m = s.Y
	}
	if s.Z > m {
		m = s.Z
	}
	return m * 0.01
}

// Evict releases the GPU mesh of a record that is gone for good. Records
// merely hidden, or removed but still reachable through undo, keep theirs.
func (r *Renderer) Evict(id uint64) {
	m, ok := r.meshes[id]
	if !ok {
		return
	}
	delete(r.meshes, id)
	if m != nil {
		m.release()
	}
}

// Close releases every GPU resource the renderer created.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, m := range r.meshes {
		if m != nil {
			m.release()
		}
	}
	r.meshes = map[uint64]*gpuMesh{}
	for _, id := range r.textures {
		tex := id
		gl.DeleteTextures(1, &tex)
	}
	r.textures = map[*texture.Ref]uint32{}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
		gl.DeleteBuffers(1, &r.lineVBO)
		r.lineVAO = 0
		r.lineVBO = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

// normalMatrix is the inverse transpose of the model's upper 3x3, so
// normals survive non-uniform scaling.
func normalMatrix(m math.Mat4) [9]float32 {
	it := m.Inverse().Transpose()
	return [9]float32{
		it[0], it[1], it[2],
		it[4], it[5], it[6],
		it[8], it[9], it[10],
	}
}
