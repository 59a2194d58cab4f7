package reinsert

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasterloc/rasterloc/internal/geometry"
	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/testutil"
	"github.com/rasterloc/rasterloc/internal/textfit"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	fonts, err := textfit.NewFontSet()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fonts.Close() })
	return NewEngine(fonts)
}

func saveButtonPolygon() []geometry.Point {
	return []geometry.Point{{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 30}, {X: 10, Y: 30}}
}

func writeScreenshot(t *testing.T, dir string) string {
	t.Helper()
	cfg := testutil.DefaultTextImageConfig()
	path := filepath.Join(dir, "button.png")
	testutil.SaveImage(t, testutil.GenerateTextImage(cfg), path)
	return path
}

func TestReinsertReplacesLabel(t *testing.T) {
	dir := t.TempDir()
	inPath := writeScreenshot(t, dir)
	outPath := filepath.Join(dir, "localized", "button.png")

	src := []region.TextRegion{{Text: "Save", Polygon: saveButtonPolygon(), Page: 1, Confidence: 0.95}}
	tgt := []region.TextRegion{src[0].WithText("Salva")}

	engine := newEngine(t)
	got, err := engine.Reinsert(inPath, src, tgt, outPath)
	require.NoError(t, err)
	assert.Equal(t, outPath, got)

	in := testutil.LoadImage(t, inPath)
	out := testutil.LoadImage(t, outPath)
	require.Equal(t, in.Bounds(), out.Bounds())

	// The rect corner is repainted with the sampled background, which for a
	// flat screenshot equals the background itself.
	bg := color.NRGBAModel.Convert(in.At(0, 0))
	assert.Equal(t, bg, color.NRGBAModel.Convert(out.At(10, 10)))

	// New glyphs appear inside the rect.
	rect := image.Rect(10, 10, 90, 30)
	assert.Positive(t, testutil.CountDiffering(in, out, rect))

	// Pixels outside every region are untouched.
	assert.True(t, testutil.EqualWithin(in, out, image.Rect(0, 35, 200, 60)))
	assert.True(t, testutil.EqualWithin(in, out, image.Rect(95, 0, 200, 60)))
}

func TestReinsertSkipsNonTranslatable(t *testing.T) {
	dir := t.TempDir()

	cfg := testutil.DefaultTextImageConfig()
	cfg.Text = "192.168.1.1"
	inPath := filepath.Join(dir, "address.png")
	testutil.SaveImage(t, testutil.GenerateTextImage(cfg), inPath)
	outPath := filepath.Join(dir, "address_out.png")

	for _, text := range []string{
		"192.168.1.1",
		"123-456-7890",
		"a@b.com",
		"550e8400-e29b-41d4-a716-446655440000",
		"12.5%",
	} {
		src := []region.TextRegion{{Text: text, Polygon: saveButtonPolygon(), Page: 1, Confidence: 1}}
		tgt := []region.TextRegion{src[0].WithText("anything")}

		engine := newEngine(t)
		_, err := engine.Reinsert(inPath, src, tgt, outPath)
		require.NoError(t, err)

		in := testutil.LoadImage(t, inPath)
		out := testutil.LoadImage(t, outPath)
		assert.True(t, testutil.EqualWithin(in, out, image.Rect(10, 10, 90, 30)),
			"region with source %q must keep its original pixels", text)
	}
}

func TestReinsertSkipsMalformedPolygon(t *testing.T) {
	dir := t.TempDir()
	inPath := writeScreenshot(t, dir)
	outPath := filepath.Join(dir, "out.png")

	src := []region.TextRegion{{Text: "Save", Polygon: []geometry.Point{{X: 10, Y: 10}}, Page: 1}}
	tgt := []region.TextRegion{src[0].WithText("Salva")}

	engine := newEngine(t)
	_, err := engine.Reinsert(inPath, src, tgt, outPath)
	require.NoError(t, err)

	in := testutil.LoadImage(t, inPath)
	out := testutil.LoadImage(t, outPath)
	assert.True(t, testutil.EqualWithin(in, out, in.Bounds()))
}

func TestReinsertSkipsOutOfCanvasRegion(t *testing.T) {
	dir := t.TempDir()
	inPath := writeScreenshot(t, dir)
	outPath := filepath.Join(dir, "out.png")

	src := []region.TextRegion{{
		Text:    "Save",
		Polygon: []geometry.Point{{X: 500, Y: 500}, {X: 600, Y: 550}},
		Page:    1,
	}}
	tgt := []region.TextRegion{src[0].WithText("Salva")}

	engine := newEngine(t)
	_, err := engine.Reinsert(inPath, src, tgt, outPath)
	require.NoError(t, err)

	in := testutil.LoadImage(t, inPath)
	out := testutil.LoadImage(t, outPath)
	assert.True(t, testutil.EqualWithin(in, out, in.Bounds()))
}

func TestReinsertWrapsLongTranslation(t *testing.T) {
	dir := t.TempDir()
	inPath := writeScreenshot(t, dir)
	outPath := filepath.Join(dir, "out.png")

	// 40px wide region forces the minimum-size wrap path.
	src := []region.TextRegion{{
		Text:    "Settings",
		Polygon: []geometry.Point{{X: 10, Y: 10}, {X: 50, Y: 30}},
		Page:    1,
	}}
	tgt := []region.TextRegion{src[0].WithText("Configuration Properties")}

	engine := newEngine(t)
	_, err := engine.Reinsert(inPath, src, tgt, outPath)
	require.NoError(t, err)

	in := testutil.LoadImage(t, inPath)
	out := testutil.LoadImage(t, outPath)

	// With two wrapped lines, glyphs are drawn below the first line height.
	assert.Positive(t, testutil.CountDiffering(in, out, image.Rect(10, 20, 50, 45)))
}

func TestReinsertCountMismatchFailsFast(t *testing.T) {
	dir := t.TempDir()
	inPath := writeScreenshot(t, dir)

	src := []region.TextRegion{{Text: "Save", Polygon: saveButtonPolygon()}}

	engine := newEngine(t)
	_, err := engine.Reinsert(inPath, src, nil, filepath.Join(dir, "out.png"))
	assert.ErrorIs(t, err, ErrRegionCountMismatch)
}

func TestReinsertDecodeError(t *testing.T) {
	dir := t.TempDir()

	engine := newEngine(t)
	_, err := engine.Reinsert(filepath.Join(dir, "missing.png"), nil, nil, filepath.Join(dir, "out.png"))
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestReinsertFlattensAlpha(t *testing.T) {
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 50, 20))
	// Half-transparent background.
	for y := 0; y < 20; y++ {
		for x := 0; x < 50; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 100, G: 100, B: 100, A: 128})
		}
	}
	inPath := filepath.Join(dir, "translucent.png")
	testutil.SaveImage(t, img, inPath)
	outPath := filepath.Join(dir, "out.png")

	engine := newEngine(t)
	_, err := engine.Reinsert(inPath, nil, nil, outPath)
	require.NoError(t, err)

	out := testutil.LoadImage(t, outPath)
	for y := 0; y < 20; y++ {
		for x := 0; x < 50; x++ {
			_, _, _, a := out.At(x, y).RGBA()
			require.Equal(t, uint32(0xFFFF), a, "pixel (%d,%d) must be opaque", x, y)
		}
	}
}

func TestReinsertEmptyTranslationStillErases(t *testing.T) {
	dir := t.TempDir()
	inPath := writeScreenshot(t, dir)
	outPath := filepath.Join(dir, "out.png")

	src := []region.TextRegion{{Text: "Save", Polygon: saveButtonPolygon(), Page: 1}}
	tgt := []region.TextRegion{src[0].WithText("")}

	engine := newEngine(t)
	_, err := engine.Reinsert(inPath, src, tgt, outPath)
	require.NoError(t, err)

	in := testutil.LoadImage(t, inPath)
	out := testutil.LoadImage(t, outPath)

	// The original glyphs are gone and nothing was drawn in their place:
	// the whole rect is the flat background color.
	bg := color.NRGBAModel.Convert(in.At(0, 0))
	rect := image.Rect(10, 10, 90, 30)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			require.Equal(t, bg, color.NRGBAModel.Convert(out.At(x, y)))
		}
	}
}
