package geometry

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genRect generates rectangles that may lie partly or fully outside the canvas.
func genRect() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(-500, 500),
		gen.IntRange(-500, 500),
		gen.IntRange(-500, 500),
		gen.IntRange(-500, 500),
	).Map(func(vals []interface{}) Rect {
		return Rect{
			X0: vals[0].(int),
			Y0: vals[1].(int),
			X1: vals[2].(int),
			Y1: vals[3].(int),
		}
	})
}

// TestClip_Idempotent verifies clip(clip(r)) == clip(r) for arbitrary rects.
func TestClip_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("clipping twice equals clipping once", prop.ForAll(
		func(r Rect, w, h int) bool {
			once := r.Clip(w, h)
			return once.Clip(w, h) == once
		},
		genRect(),
		gen.IntRange(1, 400),
		gen.IntRange(1, 400),
	))

	properties.TestingRun(t)
}

// TestClip_WithinBounds verifies clipped coordinates stay inside the canvas.
func TestClip_WithinBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("clipped rect lies within [0,w]x[0,h]", prop.ForAll(
		func(r Rect, w, h int) bool {
			c := r.Clip(w, h)
			return c.X0 >= 0 && c.Y0 >= 0 && c.X1 <= w && c.Y1 <= h
		},
		genRect(),
		gen.IntRange(1, 400),
		gen.IntRange(1, 400),
	))

	properties.TestingRun(t)
}

// TestFromPolygon_ContainsAllPoints verifies every input point lies inside
// the computed envelope.
func TestFromPolygon_ContainsAllPoints(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genPoint := gopter.CombineGens(
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	).Map(func(vals []interface{}) Point {
		return Point{X: vals[0].(float64), Y: vals[1].(float64)}
	})

	properties.Property("envelope contains all polygon points", prop.ForAll(
		func(pts []Point) bool {
			r, ok := FromPolygon(pts)
			if !ok {
				return len(pts) < 2
			}
			for _, p := range pts {
				if p.X < float64(r.X0) || p.X > float64(r.X1) ||
					p.Y < float64(r.Y0) || p.Y > float64(r.Y1) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, genPoint),
	))

	properties.TestingRun(t)
}
