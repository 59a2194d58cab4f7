// Package reinsert erases detected text regions and repaints them with
// translated strings, auto-fit to each region's bounding rectangle.
package reinsert

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rasterloc/rasterloc/internal/background"
	"github.com/rasterloc/rasterloc/internal/classify"
	"github.com/rasterloc/rasterloc/internal/geometry"
	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/textfit"
)

// Engine paints translated text over source regions. It is synchronous and
// holds no state shared across calls; the canvas of each Reinsert call is
// exclusively owned by that call. Callers wanting parallelism run one
// Reinsert per image in independent workers, each with its own FontSet.
type Engine struct {
	fonts  *textfit.FontSet
	logger *slog.Logger
}

// NewEngine returns an engine drawing with the given caller-owned fonts.
func NewEngine(fonts *textfit.FontSet) *Engine {
	return &Engine{fonts: fonts, logger: slog.Default()}
}

// Reinsert loads the source image, repaints every region pair in input order
// and writes the localized image to outputPath. It returns outputPath.
//
// Region lists must be positionally aligned and equal in length; a mismatch
// fails fast with ErrRegionCountMismatch. Malformed and degenerate regions
// are skipped, never fatal: one bad region must not abort the whole image.
func (e *Engine) Reinsert(originalPath string, src, tgt []region.TextRegion, outputPath string) (string, error) {
	if len(src) != len(tgt) {
		return "", ErrRegionCountMismatch
	}

	canvas, err := loadCanvas(originalPath)
	if err != nil {
		return "", err
	}
	width := canvas.Bounds().Dx()
	height := canvas.Bounds().Dy()

	for i := range src {
		if err := e.paintRegion(canvas, width, height, src[i], tgt[i].Text); err != nil {
			return "", err
		}
	}

	if err := saveCanvas(canvas, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// paintRegion erases and redraws a single region. Later regions may paint
// over earlier ones; detected regions do not overlap in practice and no
// z-ordering is attempted.
func (e *Engine) paintRegion(canvas *image.NRGBA, width, height int, src region.TextRegion, text string) error {
	rect, ok := geometry.FromPolygon(src.Polygon)
	if !ok {
		e.logger.Debug("skipping malformed region", "points", len(src.Polygon))
		return nil
	}
	if classify.NonTranslatable(src.Text) {
		e.logger.Debug("skipping non-translatable region", "text", src.Text)
		return nil
	}

	clipped := rect.Clip(width, height)
	if clipped.Empty() {
		e.logger.Debug("skipping out-of-canvas region",
			"rect", rect, "width", width, "height", height)
		return nil
	}

	fill := background.Estimate(canvas, clipped)
	draw.Draw(canvas,
		image.Rect(clipped.X0, clipped.Y0, clipped.X1, clipped.Y1),
		&image.Uniform{fill}, image.Point{}, draw.Src)

	layout, err := textfit.Fit(e.fonts, text, clipped.Width())
	if err != nil {
		return err
	}
	face, err := e.fonts.Face(layout.Size)
	if err != nil {
		return err
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(inkFor(fill)),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	lineHeight := textfit.LineHeight(face)
	// Lines run top-down from the rect origin, left-aligned. No vertical
	// centering: overflow past the bottom edge is accepted.
	y := clipped.Y0
	for _, line := range layout.Lines {
		drawer.Dot = fixed.P(clipped.X0, y+ascent)
		drawer.DrawString(line)
		y += lineHeight
	}
	return nil
}

// inkFor picks a legible glyph color against the reconstructed background:
// black over light fills, white over dark ones.
func inkFor(fill color.NRGBA) color.NRGBA {
	c, ok := colorful.MakeColor(fill)
	if !ok {
		return color.NRGBA{A: 255}
	}
	if l, _, _ := c.Lab(); l < 0.45 {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.NRGBA{A: 255}
}
