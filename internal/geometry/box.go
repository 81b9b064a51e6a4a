// Package geometry converts between device and layout coordinate spaces and
// provides the rectangle and region arithmetic used for pointer confinement.
//
// Everything here is a pure function of its inputs.
package geometry

import (
	"fmt"
	"math"
)

// Point is a position in layout or surface-local space.
type Point struct {
	X, Y float64
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return IsFinite(p.X) && IsFinite(p.Y)
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Box is an integer rectangle. The right and bottom edges are exclusive.
type Box struct {
	X, Y          int
	Width, Height int
}

func (b Box) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", b.Width, b.Height, b.X, b.Y)
}

// Empty reports whether the box covers no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// ContainsPoint reports whether (x, y) lies inside the box.
func (b Box) ContainsPoint(x, y float64) bool {
	if b.Empty() {
		return false
	}
	return x >= float64(b.X) && x < float64(b.X+b.Width) &&
		y >= float64(b.Y) && y < float64(b.Y+b.Height)
}

// ClosestPoint returns the point inside the box nearest to (x, y). The result
// stays a fraction of a pixel short of the exclusive edges so that it is
// itself contained by the box.
func (b Box) ClosestPoint(x, y float64) (float64, float64) {
	if b.Empty() {
		return math.NaN(), math.NaN()
	}
	cx := math.Max(float64(b.X), math.Min(x, float64(b.X+b.Width)-edgeEpsilon))
	cy := math.Max(float64(b.Y), math.Min(y, float64(b.Y+b.Height)-edgeEpsilon))
	return cx, cy
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{
		X: float64(b.X) + float64(b.Width)/2,
		Y: float64(b.Y) + float64(b.Height)/2,
	}
}

// Intersect returns the overlap of two boxes; the result is Empty when they
// do not overlap.
func (b Box) Intersect(o Box) Box {
	if b.Empty() || o.Empty() {
		return Box{}
	}
	x1 := max(b.X, o.X)
	y1 := max(b.Y, o.Y)
	x2 := min(b.X+b.Width, o.X+o.Width)
	y2 := min(b.Y+b.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Box{}
	}
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest box covering both boxes.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	x1 := min(b.X, o.X)
	y1 := min(b.Y, o.Y)
	x2 := max(b.X+b.Width, o.X+o.Width)
	y2 := max(b.Y+b.Height, o.Y+o.Height)
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Translate moves the box by (dx, dy).
func (b Box) Translate(dx, dy int) Box {
	b.X += dx
	b.Y += dy
	return b
}

// edgeEpsilon is the distance kept from an exclusive edge when clamping. It
// matches the 1/256 pixel resolution of wire fixed-point coordinates.
const edgeEpsilon = 1.0 / 256.0
