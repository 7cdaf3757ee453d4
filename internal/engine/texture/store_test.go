package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/meshworks/meshstudio/pkg/asset"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func solidRGBA(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}

func TestDecode(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	var bmpBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, solidRGBA(red)); err != nil {
		t.Fatalf("encoding bmp: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		hint string
	}{
		{"png by extension", encodePNG(t, solidRGBA(red)), "tex.png"},
		{"bmp by extension", bmpBuf.Bytes(), "tex.bmp"},
		{"tga by extension", tga(2, 1, 1, 24, 0x20, []byte{0, 0, 255}), "skin.TGA"},
		{"tga by mime", tga(2, 1, 1, 24, 0x20, []byte{0, 0, 255}), "image/x-tga"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data, tt.hint)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := img.RGBAAt(0, 0); got != red {
				t.Errorf("pixel = %v, want %v", got, red)
			}
		})
	}

	if _, err := Decode([]byte("not an image"), "tex.png"); err == nil {
		t.Error("Decode accepted garbage")
	}
}

func TestToRGBA(t *testing.T) {
	rgba := solidRGBA(color.RGBA{R: 9, A: 255})
	if ToRGBA(rgba) != rgba {
		t.Error("ToRGBA copied an image that was already RGBA")
	}

	n := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	n.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	got := ToRGBA(n).RGBAAt(0, 0)
	if want := (color.RGBA{R: 10, G: 20, B: 30, A: 255}); got != want {
		t.Errorf("converted pixel = %v, want %v", got, want)
	}
}

func TestStore_CachesByPath(t *testing.T) {
	dir := t.TempDir()
	data := encodePNG(t, solidRGBA(color.RGBA{G: 255, A: 255}))
	if err := os.WriteFile(filepath.Join(dir, "skin.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore()
	a := s.Resolve(&asset.Texture{Path: "skin.png"}, dir)
	b := s.Resolve(&asset.Texture{Path: "skin.png"}, dir)
	if a == nil || a.Image == nil {
		t.Fatalf("Resolve = %+v, want a decoded ref", a)
	}
	if a != b {
		t.Error("same path resolved to distinct refs")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if a.Name != "skin.png" {
		t.Errorf("Name = %q, want skin.png", a.Name)
	}
	if a.Source != filepath.Join(dir, "skin.png") {
		t.Errorf("Source = %q, want the resolved path", a.Source)
	}
}

func TestStore_CachesByContent(t *testing.T) {
	payload := encodePNG(t, solidRGBA(color.RGBA{B: 255, A: 255}))
	other := encodePNG(t, solidRGBA(color.RGBA{R: 255, A: 255}))

	s := NewStore()
	a := s.Resolve(&asset.Texture{Name: "embedded", Data: payload, MIME: "image/png"}, "")
	b := s.Resolve(&asset.Texture{Name: "copy", Data: payload, MIME: "image/png"}, "")
	c := s.Resolve(&asset.Texture{Name: "other", Data: other, MIME: "image/png"}, "")

	if a != b {
		t.Error("identical payloads resolved to distinct refs")
	}
	if a == c {
		t.Error("different payloads shared a ref")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestStore_DecodeFailureDegrades(t *testing.T) {
	s := NewStore()

	bad := s.Resolve(&asset.Texture{Name: "bad", Data: []byte("garbage")}, "")
	if bad == nil || bad.Image != nil {
		t.Errorf("garbage payload: ref = %+v, want nil Image", bad)
	}
	if bad.Name != "bad" {
		t.Errorf("Name = %q, want bad", bad.Name)
	}

	missing := s.Resolve(&asset.Texture{Path: "no/such/file.png"}, t.TempDir())
	if missing == nil || missing.Image != nil {
		t.Errorf("missing file: ref = %+v, want nil Image", missing)
	}
	// failures are cached too, so a scene full of broken refs decodes once
	s.Resolve(&asset.Texture{Name: "bad", Data: []byte("garbage")}, "")
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	if s.Resolve(nil, "") != nil {
		t.Error("Resolve(nil) != nil")
	}
}

func TestStore_Resolver(t *testing.T) {
	dir := t.TempDir()
	data := encodePNG(t, solidRGBA(color.RGBA{R: 1, G: 2, B: 3, A: 255}))
	if err := os.WriteFile(filepath.Join(dir, "diffuse.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	resolve := NewStore().Resolver(dir)
	ref := resolve(&asset.Texture{Path: "diffuse.png"})
	if ref == nil || ref.Image == nil {
		t.Fatalf("resolver ref = %+v, want a decoded image", ref)
	}
}

func TestFallbackTextures(t *testing.T) {
	s := NewStore()
	if s.White() != s.White() {
		t.Error("White rebuilt on second call")
	}
	if s.FlatNormal() != s.FlatNormal() {
		t.Error("FlatNormal rebuilt on second call")
	}
	if other := NewStore(); other.White() == s.White() {
		t.Error("stores share fallback refs")
	}

	w := s.White()
	if !w.SRGB {
		t.Error("white fallback not tagged sRGB")
	}
	if got := w.Image.RGBAAt(0, 0); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("white pixel = %v", got)
	}

	n := s.FlatNormal()
	if n.SRGB {
		t.Error("normal fallback tagged sRGB; normals are linear data")
	}
	if got := n.Image.RGBAAt(0, 0); got != (color.RGBA{R: 128, G: 128, B: 255, A: 255}) {
		t.Errorf("neutral normal pixel = %v", got)
	}
}
