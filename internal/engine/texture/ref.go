package texture

import "image"

// Ref is a CPU-side texture reference shared by materials: the decoded
// pixels plus sampling metadata. Decoding happens during import (off the
// render goroutine); GL upload happens in the renderer on first draw.
type Ref struct {
	Name   string
	Source string      // originating path inside the asset, used for caching
	SRGB   bool        // sample as sRGB (base color maps); linear otherwise
	Image  *image.RGBA // nil when decoding failed; the store substitutes a fallback
}
