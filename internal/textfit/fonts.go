package textfit

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontSet is a caller-owned font resource handle. It parses the embedded
// Go Regular face once and memoizes one rendering face per integer size, so
// a batch pays the load cost once without hiding the resource in process
// globals. A FontSet belongs to a single batch and is not safe for
// concurrent use; callers running assets in parallel create one per worker.
type FontSet struct {
	source *sfnt.Font
	faces  map[int]font.Face
}

// NewFontSet parses the embedded font and returns a ready handle.
func NewFontSet() (*FontSet, error) {
	src, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return &FontSet{
		source: src,
		faces:  make(map[int]font.Face),
	}, nil
}

// Face returns a rendering face for the given point size, creating and
// caching it on first use.
func (fs *FontSet) Face(size int) (font.Face, error) {
	if f, ok := fs.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fs.source, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %dpt face: %w", size, err)
	}
	fs.faces[size] = f
	return f, nil
}

// Close releases all cached faces. The FontSet must not be used afterwards.
func (fs *FontSet) Close() error {
	var firstErr error
	for size, f := range fs.faces {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %dpt face: %w", size, err)
		}
		delete(fs.faces, size)
	}
	return firstErr
}
