// Package testutil provides synthetic UI-screenshot generation and pixel
// comparison helpers for reinsertion tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextImageConfig describes a synthetic screenshot: a flat background with
// one string drawn at a fixed position, the way UI chrome carries a label.
type TextImageConfig struct {
	Text       string
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
	// TextAt is the top-left corner of the drawn string.
	TextAt image.Point
}

// DefaultTextImageConfig returns a 200x60 screenshot with a label at (10,10).
func DefaultTextImageConfig() TextImageConfig {
	return TextImageConfig{
		Text:       "Save",
		Width:      200,
		Height:     60,
		Background: color.NRGBA{R: 230, G: 230, B: 230, A: 255},
		Foreground: color.NRGBA{A: 255},
		TextAt:     image.Pt(10, 10),
	}
}

// GenerateTextImage renders the configured synthetic screenshot.
func GenerateTextImage(config TextImageConfig) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, config.Width, config.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: face,
		Dot:  fixed.P(config.TextAt.X, config.TextAt.Y+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(config.Text)
	return img
}

// SaveImage writes a PNG to path, creating parent directories.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path) //nolint:gosec // G304: test file creation with controlled path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	require.NoError(t, png.Encode(f, img))
}

// LoadImage decodes an image from path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path) //nolint:gosec // G304: test file reading with controlled path
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img
}

// EqualWithin reports whether two images have identical pixels inside rect.
func EqualWithin(a, b image.Image, rect image.Rectangle) bool {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				return false
			}
		}
	}
	return true
}

// CountDiffering returns the number of pixels inside rect where the images
// disagree.
func CountDiffering(a, b image.Image, rect image.Rectangle) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				n++
			}
		}
	}
	return n
}
