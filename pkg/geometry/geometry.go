// Package geometry provides the primitive types for slice resolution:
// 2D points, quads, float rectangles, and integer pixel boxes.
//
// Coordinates live in composition space. Quads arrive from descriptors in
// no guaranteed winding order, so all derived extents are computed as
// min/max folds over every vertex rather than assuming a corner layout.
package geometry

import "math"

// Point is a single 2D coordinate in composition space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an integer width/height pair (a resolution).
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero returns true if either dimension is unset.
func (s Size) IsZero() bool { return s.Width == 0 || s.Height == 0 }

// Rect is an axis-aligned rectangle in unrounded composition coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Scale returns a copy of r with both position and extent scaled by
// independent per-axis factors. Anisotropic factors are expected; nothing
// here preserves aspect ratio.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{
		X:      r.X * sx,
		Y:      r.Y * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}
}

// Round converts r to an integer pixel box. Rounding is half-away-from-zero
// (math.Round) so pixel placement is deterministic across platforms.
func (r Rect) Round() Box {
	return Box{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
	}
}

// Box is an axis-aligned rectangle rounded to integer pixels.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsDegenerate returns true if the box has no renderable area.
func (b Box) IsDegenerate() bool { return b.Width == 0 || b.Height == 0 }
