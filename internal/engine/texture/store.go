// Package texture decodes material images into CPU-side refs shared by the
// importer and the renderer. Decoding stays headless (no GL types), so the
// import pipeline and conversion tools work without a window; upload is the
// renderer's job.
package texture

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"

	"github.com/meshworks/meshstudio/pkg/asset"
)

// Store resolves parsed texture references into decoded Refs. External
// textures are cached by resolved path, embedded payloads by content, so an
// image shared between materials decodes once and its Ref compares equal by
// pointer. Decode failures produce a Ref with a nil Image; the renderer
// substitutes a fallback at draw time, never the importer.
type Store struct {
	mu   sync.Mutex
	refs map[string]*Ref

	whiteOnce sync.Once
	white     *Ref
	flatOnce  sync.Once
	flat      *Ref
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{refs: map[string]*Ref{}}
}

// Resolver returns a resolve function for one import, with relative texture
// paths anchored at dir. The importer hands it to the material normalizer.
func (s *Store) Resolver(dir string) func(*asset.Texture) *Ref {
	return func(t *asset.Texture) *Ref {
		return s.Resolve(t, dir)
	}
}

// Resolve returns the cached or freshly decoded Ref for a parsed texture.
func (s *Store) Resolve(t *asset.Texture, dir string) *Ref {
	if t == nil {
		return nil
	}

	key, path := cacheKey(t, dir)

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.refs[key]; ok {
		return r
	}
	r := decodeRef(t, path)
	s.refs[key] = r
	return r
}

// Len returns the number of cached refs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refs)
}

// cacheKey derives the cache key and, for external textures, the resolved
// file path.
func cacheKey(t *asset.Texture, dir string) (key, path string) {
	if t.Path != "" {
		path = t.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return "file:" + filepath.Clean(path), path
	}
	h := fnv.New64a()
	h.Write(t.Data)
	return fmt.Sprintf("data:%016x", h.Sum64()), ""
}

// decodeRef builds the Ref for a texture, leaving Image nil when the payload
// is missing or undecodable.
func decodeRef(t *asset.Texture, path string) *Ref {
	name := t.Name
	if name == "" && t.Path != "" {
		name = filepath.Base(t.Path)
	}
	ref := &Ref{Name: name, Source: path}

	data := t.Data
	if len(data) == 0 {
		if path == "" {
			return ref
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return ref
		}
		data = b
	}

	hint := t.Path
	if hint == "" {
		hint = t.MIME
	}
	if hint == "" {
		hint = t.Name
	}
	img, err := Decode(data, hint)
	if err != nil {
		return ref
	}
	ref.Image = img
	return ref
}

// Decode decodes an image payload into RGBA. TGA has no magic number, so it
// is selected by the path or MIME hint; everything else goes through the
// registered stdlib decoders (PNG, JPEG, BMP).
func Decode(data []byte, hint string) (*image.RGBA, error) {
	h := strings.ToLower(hint)
	if strings.HasSuffix(h, ".tga") || h == "image/x-tga" || h == "image/x-targa" {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, err
		}
		return ToRGBA(img), nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ToRGBA(img), nil
}

// ToRGBA converts a decoded image to RGBA, passing one through untouched.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// White returns the store's 1x1 opaque white texture, built on first use
// and shared by every material slot that has no image to sample.
func (s *Store) White() *Ref {
	s.whiteOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		s.white = &Ref{Name: "white", SRGB: true, Image: img}
	})
	return s.white
}

// FlatNormal returns the store's 1x1 neutral normal map: every sample points
// straight out of the surface. Built on first use like White.
func (s *Store) FlatNormal() *Ref {
	s.flatOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 128, G: 128, B: 255, A: 255})
		s.flat = &Ref{Name: "flat-normal", Image: img}
	})
	return s.flat
}
