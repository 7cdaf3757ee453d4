package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/texture"
)

// gpuMesh is one record's uploaded geometry.
type gpuMesh struct {
	vao uint32
	vbo uint32
	ebo uint32

	indexed    bool
	drawStart  int32
	drawCount  int32
	hasNormals bool
}

// vertexStride is the interleaved layout in floats: position, normal, uv,
// uv2. Missing attributes upload as zeros, so setup is identical for every
// record.
const vertexStride = 10

func (r *Renderer) meshFor(rec *model.Record) *gpuMesh {
	if m, ok := r.meshes[rec.ID]; ok {
		return m
	}
	m := uploadMesh(rec.Geometry)
	r.meshes[rec.ID] = m
	return m
}

func uploadMesh(buf *geometry.Buffer) *gpuMesh {
	pos := buf.Attr(geometry.Position)
	if pos == nil || pos.Count() == 0 {
		return nil
	}

	count := buf.VertexCount()
	norm := buf.Attr(geometry.Normal)
	uv := buf.Attr(geometry.UV)
	uv2 := buf.Attr(geometry.UV2)

	verts := make([]float32, count*vertexStride)
	for i := 0; i < count; i++ {
		o := i * vertexStride
		copyAttr(verts[o:], pos, i, 3)
		copyAttr(verts[o+3:], norm, i, 3)
		copyAttr(verts[o+6:], uv, i, 2)
		copyAttr(verts[o+8:], uv2, i, 2)
	}

	m := &gpuMesh{hasNormals: norm != nil && norm.ItemSize >= 3}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride*4, 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride*4, 3*4)
	gl.EnableVertexAttribArray(1)
	// UV
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexStride*4, 6*4)
	gl.EnableVertexAttribArray(2)
	// UV2
	gl.VertexAttribPointerWithOffset(3, 2, gl.FLOAT, false, vertexStride*4, 8*4)
	gl.EnableVertexAttribArray(3)

	if len(buf.Index) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(buf.Index)*4, unsafe.Pointer(&buf.Index[0]), gl.STATIC_DRAW)
		m.indexed = true
	}

	rng := buf.DrawRange()
	m.drawStart = int32(rng.Start)
	m.drawCount = int32(rng.Count)

	gl.BindVertexArray(0)
	return m
}

func copyAttr(dst []float32, a *geometry.Attribute, i, want int) {
	if a == nil || a.ItemSize < want || (i+1)*a.ItemSize > len(a.Data) {
		return
	}
	copy(dst[:want], a.Data[i*a.ItemSize:])
}

func (m *gpuMesh) draw() {
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElementsWithOffset(gl.TRIANGLES, m.drawCount, gl.UNSIGNED_INT, uintptr(m.drawStart)*4)
	} else {
		gl.DrawArrays(gl.TRIANGLES, m.drawStart, m.drawCount)
	}
}

func (m *gpuMesh) release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}

// resolveTexture returns the GL texture for a decoded ref, uploading on
// first use. Refs without an image fall back without being cached, so a
// later successful reload of the same store entry is not masked.
func (r *Renderer) resolveTexture(ref *texture.Ref, fallback uint32) uint32 {
	if ref == nil || ref.Image == nil {
		return fallback
	}
	if id, ok := r.textures[ref]; ok {
		return id
	}
	id := uploadTexture(ref)
	r.textures[ref] = id
	return id
}

// uploadTexture pushes a decoded image to the GPU. Base color maps carry the
// sRGB tag and upload with an sRGB internal format, so sampling returns
// linear values; data maps stay linear.
func uploadTexture(ref *texture.Ref) uint32 {
	img := ref.Image
	internal := int32(gl.RGBA8)
	if ref.SRGB {
		internal = gl.SRGB8_ALPHA8
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 4)
	gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, 8.0)
	return id
}
