// Package region defines the text-region data model shared by the detector,
// translator and reinsertion engine.
package region

import (
	"strings"

	"github.com/rasterloc/rasterloc/internal/geometry"
)

// TextRegion is one detected run of text in an asset. The polygon is in
// image pixel space, origin top-left. Translated regions use the same shape
// with Text holding the translated string and every other field copied from
// the source region; the two lists are positionally aligned.
type TextRegion struct {
	Text       string           `json:"text"`
	Polygon    []geometry.Point `json:"polygon"`
	Page       int              `json:"page"`
	Confidence float64          `json:"confidence"`
	// ElementID is only meaningful for vector formats and unused by the
	// raster engine.
	ElementID string `json:"element_id,omitempty"`
}

// WithText returns a copy of the region carrying translated text, with all
// geometry and metadata preserved.
func (r TextRegion) WithText(text string) TextRegion {
	out := r
	out.Text = text
	out.Polygon = append([]geometry.Point(nil), r.Polygon...)
	return out
}

// WordCount returns the number of whitespace-separated words across regions.
func WordCount(regions []TextRegion) int {
	n := 0
	for _, r := range regions {
		n += len(strings.Fields(r.Text))
	}
	return n
}
