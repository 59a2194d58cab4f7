// Package textfit chooses a font size and line layout that keeps a
// translated string inside a fixed target rectangle. UI strings are designed
// for a single line, so the fitter shrinks before it wraps.
package textfit

import (
	"strings"

	"golang.org/x/image/font"
)

const (
	// DefaultSize is the starting point size for fitting.
	DefaultSize = 13
	// MinSize is the smallest point size tried before falling back to
	// word wrapping.
	MinSize = 7
	// linePadding is added below each drawn line.
	linePadding = 1
	// heightProbe approximates ascent+descent for line-height purposes.
	heightProbe = "Ag"
)

// Layout is a terminal fitting outcome: either a single line at some size in
// [MinSize, DefaultSize], or multiple wrapped lines at MinSize.
type Layout struct {
	Size  int
	Lines []string
}

// Fit returns the largest size at which the whole string fits on one line
// within maxWidth, or a greedy word-wrapped layout at MinSize when no size
// fits. Only the width drives sizing: detector boxes carry generous vertical
// padding, so height-based sizing systematically overshoots.
func Fit(fonts *FontSet, text string, maxWidth int) (Layout, error) {
	if maxWidth < 1 {
		maxWidth = 1
	}

	for size := DefaultSize; size >= MinSize; size-- {
		face, err := fonts.Face(size)
		if err != nil {
			return Layout{}, err
		}
		if font.MeasureString(face, text).Ceil() <= maxWidth {
			return Layout{Size: size, Lines: []string{text}}, nil
		}
	}

	face, err := fonts.Face(MinSize)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Size: MinSize, Lines: wrapWords(face, text, maxWidth)}, nil
}

// LineHeight returns the vertical advance between successive lines: the
// rendered height of a two-character probe plus one pixel of padding.
func LineHeight(face font.Face) int {
	bounds, _ := font.BoundString(face, heightProbe)
	return (bounds.Max.Y - bounds.Min.Y).Ceil() + linePadding
}

// wrapWords greedily accumulates words into lines not wider than maxWidth.
// A single word wider than maxWidth is placed alone on its own line; words
// are never split. Text without any word yields one line holding the text
// as-is, never zero lines.
func wrapWords(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	lines := make([]string, 0, len(words))
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
