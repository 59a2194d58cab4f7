package geometry

import "math"

// Point represents a 2D coordinate in image pixel space (origin top-left,
// y increasing downward).
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in integer pixel coordinates.
// X1/Y1 are exclusive.
type Rect struct {
	X0 int
	Y0 int
	X1 int
	Y1 int
}

// FromPolygon reduces a polygon to its axis-aligned bounding rectangle.
// Rotated or skewed regions are deliberately approximated by their envelope.
// Returns ok=false when fewer than 2 points are supplied; callers skip such
// regions instead of treating them as errors.
func FromPolygon(pts []Point) (Rect, bool) {
	if len(pts) < 2 {
		return Rect{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{
		X0: int(math.Floor(minX)),
		Y0: int(math.Floor(minY)),
		X1: int(math.Ceil(maxX)),
		Y1: int(math.Ceil(maxY)),
	}, true
}

// Clip clamps the rectangle to the canvas extent [0,width]x[0,height].
// Clip is idempotent: clipping a clipped rectangle is a no-op.
func (r Rect) Clip(width, height int) Rect {
	return Rect{
		X0: clampInt(r.X0, 0, width),
		Y0: clampInt(r.Y0, 0, height),
		X1: clampInt(r.X1, 0, width),
		Y1: clampInt(r.Y1, 0, height),
	}
}

// Empty reports whether the rectangle has zero or negative extent.
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Width returns the rectangle width, never negative.
func (r Rect) Width() int {
	if r.X1 < r.X0 {
		return 0
	}
	return r.X1 - r.X0
}

// Height returns the rectangle height, never negative.
func (r Rect) Height() int {
	if r.Y1 < r.Y0 {
		return 0
	}
	return r.Y1 - r.Y0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
