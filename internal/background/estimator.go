// Package background reconstructs a plausible fill color for a text region
// without sampling the glyph pixels themselves.
package background

import (
	"image"
	"image/color"
	"sort"

	"github.com/rasterloc/rasterloc/internal/geometry"
)

// sampleWindow bounds the corner sample to at most 4x4 pixels. A small
// top-left window is far more likely to be pure background than the whole
// region, which mixes in glyph pixels and desaturates toward gray.
const sampleWindow = 4

// White is the fallback fill for regions that clip to nothing.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Estimate returns the per-channel median color of a corner sample window
// anchored at the clipped rectangle's top-left. The median resists the few
// glyph-adjacent pixels that leak into the sample. Empty rectangles yield
// opaque white. Grayscale sources are broadcast to all color channels by the
// color-model conversion before sampling.
func Estimate(img image.Image, r geometry.Rect) color.NRGBA {
	if img == nil || r.Empty() {
		return White
	}

	w := r.Width()
	if w > sampleWindow {
		w = sampleWindow
	}
	h := r.Height()
	if h > sampleWindow {
		h = sampleWindow
	}

	bounds := img.Bounds()
	rs := make([]int, 0, w*h)
	gs := make([]int, 0, w*h)
	bs := make([]int, 0, w*h)
	as := make([]int, 0, w*h)
	for y := r.Y0; y < r.Y0+h; y++ {
		for x := r.X0; x < r.X0+w; x++ {
			px := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			rs = append(rs, int(px.R))
			gs = append(gs, int(px.G))
			bs = append(bs, int(px.B))
			as = append(as, int(px.A))
		}
	}
	if len(rs) == 0 {
		return White
	}

	return color.NRGBA{
		R: median(rs),
		G: median(gs),
		B: median(bs),
		A: median(as),
	}
}

func median(vals []int) uint8 {
	sort.Ints(vals)
	return uint8(vals[len(vals)/2])
}
