package geometry

import "errors"

// MinQuadVertices is the minimum vertex count for a usable quad.
const MinQuadVertices = 4

// Validation failure reasons. Validate returns these as sentinel errors so
// callers can classify drops with errors.Is instead of string matching.
var (
	// ErrTooFewVertices is returned when a quad has fewer than four points.
	ErrTooFewVertices = errors.New("too few vertices")

	// ErrDegenerateExtent is returned when a quad's derived width or height
	// is not strictly positive.
	ErrDegenerateExtent = errors.New("degenerate extent")
)

// Quad is an ordered sequence of points describing one region's corners in
// a single coordinate space (input or output). An empty Quad means the
// descriptor carried no container for that space.
type Quad []Point

// Bounds returns the axis-aligned bounding rectangle of the quad, folding
// min/max over every vertex. Descriptors are not guaranteed to enumerate
// corners in a canonical winding order across tool versions, so the first
// three points alone cannot be trusted to span the extent.
//
// Bounds on an empty quad returns the zero Rect.
func (q Quad) Bounds() Rect {
	if len(q) == 0 {
		return Rect{}
	}
	minX, maxX := q[0].X, q[0].X
	minY, maxY := q[0].Y, q[0].Y
	for _, p := range q[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Validate classifies the quad as usable for geometry. It returns
// ErrTooFewVertices or ErrDegenerateExtent on failure, nil otherwise.
func (q Quad) Validate() error {
	if len(q) < MinQuadVertices {
		return ErrTooFewVertices
	}
	b := q.Bounds()
	if b.Width <= 0 || b.Height <= 0 {
		return ErrDegenerateExtent
	}
	return nil
}
