package reinsert

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// loadCanvas decodes the source image into a fresh NRGBA canvas owned by the
// calling reinsertion. The source file itself is never modified.
func loadCanvas(path string) (*image.NRGBA, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading a user-provided asset path is expected
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return imaging.Clone(img), nil
}

// saveCanvas flattens the canvas to opaque pixels and writes it to path,
// creating parent directories as needed. The encoder is chosen by the output
// extension, keeping the source format family.
func saveCanvas(canvas *image.NRGBA, path string) error {
	// Drop transparency: localized screenshot assets are opaque by design.
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 0xFF
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return &IOError{Path: path, Err: err}
		}
	}
	if err := imaging.Save(canvas, path); err != nil {
		// Don't leave a half-written file that downstream could mistake
		// for a valid asset.
		_ = os.Remove(path)
		return &IOError{Path: path, Err: err}
	}
	return nil
}
