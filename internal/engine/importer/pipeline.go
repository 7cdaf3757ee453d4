// Package importer orchestrates model import: format dispatch, parsing,
// and splitting the parsed scene graph into flat mesh records. It registers
// nothing itself; the caller applies returned records to the world and
// selection against whatever state those hold by then.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/internal/engine/material"
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/texture"
	"github.com/meshworks/meshstudio/internal/logger"
	"github.com/meshworks/meshstudio/pkg/asset"
	"github.com/meshworks/meshstudio/pkg/formats"
	"github.com/meshworks/meshstudio/pkg/math"
)

// DecompressorProvider supplies a mesh decompressor on demand. The pipeline
// calls it only for files that actually carry compressed geometry, so a
// provider backed by expensive setup costs nothing on plain files.
type DecompressorProvider func() (formats.MeshDecompressor, error)

// Options tune record production. The zero value imports files as-is.
type Options struct {
	GenerateNormals bool    // build flat normals for meshes without any
	SmoothNormals   bool    // then average them at shared positions
	DoubleSided     bool    // disable backface culling on all imports
	Scale           float32 // uniform pre-scale applied above the scene root, <=0 keeps 1
}

// Pipeline imports model files into mesh records. One pipeline serves the
// whole process; imports may run concurrently from worker goroutines.
type Pipeline struct {
	textures *texture.Store
	provider DecompressorProvider
	opts     Options

	mu         sync.Mutex
	decompress formats.MeshDecompressor // cached after the first provide
}

// NewPipeline returns a pipeline decoding textures through store. provider
// may be nil when compressed meshes are not supported.
func NewPipeline(store *texture.Store, provider DecompressorProvider) *Pipeline {
	if store == nil {
		store = texture.NewStore()
	}
	return &Pipeline{textures: store, provider: provider}
}

// SetOptions installs import policies. Call before the first import;
// options are not synchronized against running imports.
func (p *Pipeline) SetOptions(o Options) {
	p.opts = o
}

// Textures returns the texture store, shared with the renderer.
func (p *Pipeline) Textures() *texture.Store {
	return p.textures
}

// Import parses model bytes into mesh records in scene traversal order.
// filename drives format dispatch and anchors relative resource paths; when
// it names a readable file, parsers may pull external buffers and material
// libraries from its directory.
func (p *Pipeline) Import(ctx context.Context, data []byte, filename string) ([]*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind, err := formats.Detect(filename)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scene, err := p.parse(data, filename, kind)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", filepath.Base(filename), err)
	}
	scene.Source = filename

	resolve := p.textures.Resolver(filepath.Dir(filename))
	splitter := model.NewSplitter(material.NewNormalizer(resolve), recordBase(filename))

	// A pre-scale multiplies above the scene root so node translations
	// scale with the geometry and the splitter captures scaled poses.
	root := math.Identity()
	if s := p.opts.Scale; s > 0 && s != 1 {
		root = math.Compose(math.Vec3{}, math.QuatIdentity(), math.Vec3{X: s, Y: s, Z: s})
	}

	var records []*model.Record
	scene.Walk(func(n *asset.Node, world math.Mat4) {
		records = append(records, splitter.Split(n, root.Mul(world))...)
	})
	for _, r := range records {
		r.Source = filename
		p.applyPolicies(r)
	}

	logger.Info("model imported",
		zap.String("file", filepath.Base(filename)),
		zap.String("format", kind.String()),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return records, nil
}

// ImportFile reads and imports a model file from disk.
func (p *Pipeline) ImportFile(ctx context.Context, path string) ([]*model.Record, error) {
	if _, err := formats.Detect(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return p.Import(ctx, data, path)
}

func (p *Pipeline) parse(data []byte, filename string, kind formats.Kind) (*asset.Scene, error) {
	switch kind {
	case formats.KindGLTF:
		return p.parseGLTF(data, filename)
	case formats.KindFBX:
		return formats.ParseFBX(data)
	case formats.KindOBJ:
		return formats.ParseOBJ(data, p.materialLibraries(data, filename))
	default:
		return nil, formats.ErrUnsupportedFormat
	}
}

// parseGLTF attaches a mesh decompressor only when the compression extension
// signature shows up in the raw bytes. A parse that still trips on
// compressed data (signature hidden in an external buffer) gets one retry
// with the decompressor attached.
func (p *Pipeline) parseGLTF(data []byte, filename string) (*asset.Scene, error) {
	var dec formats.MeshDecompressor
	if formats.UsesMeshCompression(data) {
		dec = p.decompressor()
	}
	scene, err := formats.ParseGLTF(data, filename, dec)
	if err != nil && dec == nil && errors.Is(err, formats.ErrCompressedMesh) {
		if dec = p.decompressor(); dec != nil {
			scene, err = formats.ParseGLTF(data, filename, dec)
		}
	}
	return scene, err
}

// decompressor returns the process-wide decompressor, asking the provider on
// first use. When the provider fails, compressed files keep failing with
// the compressed-mesh error; plain files are unaffected.
func (p *Pipeline) decompressor() formats.MeshDecompressor {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.decompress != nil {
		return p.decompress
	}
	if p.provider == nil {
		return nil
	}
	dec, err := p.provider()
	if err != nil {
		logger.Warn("mesh decompressor unavailable", zap.Error(err))
		return nil
	}
	p.decompress = dec
	return dec
}

// materialLibraries loads the MTL files an OBJ references, resolved against
// the model's directory. Unreadable or malformed libraries are skipped so
// geometry still imports without its materials.
func (p *Pipeline) materialLibraries(data []byte, filename string) map[string]asset.Material {
	refs := formats.MTLReferences(data)
	if len(refs) == 0 {
		return nil
	}
	dir := filepath.Dir(filename)
	lib := make(map[string]asset.Material)
	for _, ref := range refs {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, ref)
		}
		mtlData, err := os.ReadFile(path)
		if err != nil {
			logger.Debug("material library unavailable", zap.String("mtl", ref), zap.Error(err))
			continue
		}
		parsed, err := formats.ParseMTL(mtlData)
		if err != nil {
			logger.Debug("material library unreadable", zap.String("mtl", ref), zap.Error(err))
			continue
		}
		for name, m := range parsed {
			lib[name] = m
		}
	}
	return lib
}

// applyPolicies enforces the import options on a finished record. Normal
// generation works per face, so indexed buffers are expanded first; the
// positions are unchanged either way and cached bounds stay valid.
func (p *Pipeline) applyPolicies(r *model.Record) {
	if p.opts.DoubleSided && r.Material != nil {
		r.Material.DoubleSided = true
	}

	buf := r.Geometry
	if !p.opts.GenerateNormals || buf == nil || buf.HasAttr(geometry.Normal) {
		return
	}
	if len(buf.Index) > 0 {
		buf = geometry.ToNonIndexed(buf)
	}
	geometry.ComputeFlatNormals(buf)
	if p.opts.SmoothNormals {
		geometry.SmoothNormals(buf)
	}
	r.Geometry = buf
}

// recordBase derives the fallback name for unnamed nodes from the filename:
// "chair.glb" imports its unnamed meshes as chair_1, chair_2, ...
func recordBase(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		return "mesh"
	}
	return base
}
