package geometry

import (
	"math"
	"strings"
)

// Region is a union of rectangles, in the order they were added.
// The zero value is the empty region.
type Region struct {
	rects []Box
}

// NewRegion builds a region from the non-empty boxes given.
func NewRegion(boxes ...Box) Region {
	r := Region{}
	for _, b := range boxes {
		r = r.Add(b)
	}
	return r
}

// Add returns a copy of the region that also covers b.
func (r Region) Add(b Box) Region {
	if b.Empty() {
		return r
	}
	rects := make([]Box, len(r.rects), len(r.rects)+1)
	copy(rects, r.rects)
	return Region{rects: append(rects, b)}
}

// Empty reports whether the region covers no area.
func (r Region) Empty() bool {
	return len(r.rects) == 0
}

// Rects returns a copy of the region's rectangles.
func (r Region) Rects() []Box {
	out := make([]Box, len(r.rects))
	copy(out, r.rects)
	return out
}

// Extents returns the bounding box of the region.
func (r Region) Extents() Box {
	var ext Box
	for _, b := range r.rects {
		ext = ext.Union(b)
	}
	return ext
}

// ContainsPoint reports whether (x, y) is inside the region and returns the
// first rectangle containing it.
func (r Region) ContainsPoint(x, y float64) (Box, bool) {
	for _, b := range r.rects {
		if b.ContainsPoint(x, y) {
			return b, true
		}
	}
	return Box{}, false
}

// Intersect returns the area covered by both regions.
func (r Region) Intersect(o Region) Region {
	out := Region{}
	for _, a := range r.rects {
		for _, b := range o.rects {
			out = out.Add(a.Intersect(b))
		}
	}
	return out
}

// Translate moves every rectangle by (dx, dy).
func (r Region) Translate(dx, dy int) Region {
	out := Region{rects: make([]Box, len(r.rects))}
	for i, b := range r.rects {
		out.rects[i] = b.Translate(dx, dy)
	}
	return out
}

// Equal reports whether both regions hold the same rectangles in the same order.
func (r Region) Equal(o Region) bool {
	if len(r.rects) != len(o.rects) {
		return false
	}
	for i := range r.rects {
		if r.rects[i] != o.rects[i] {
			return false
		}
	}
	return true
}

func (r Region) String() string {
	if r.Empty() {
		return "{}"
	}
	parts := make([]string, len(r.rects))
	for i, b := range r.rects {
		parts[i] = b.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Confine moves from (x1, y1) towards (x2, y2) and returns the furthest point
// reachable without leaving the region. Motion that would exit a rectangle
// continues into an adjacent rectangle when one borders the exit point, and
// otherwise slides along the edge it hit. It returns false when the starting
// point is outside the region, in which case no motion is allowed.
func (r Region) Confine(x1, y1, x2, y2 float64) (float64, float64, bool) {
	box, ok := r.ContainsPoint(x1, y1)
	if !ok {
		return x1, y1, false
	}
	x, y := r.confine(x1, y1, x2, y2, box, maxConfineDepth)
	return x, y, true
}

// maxConfineDepth bounds the walk across adjacent rectangles.
const maxConfineDepth = 64

func (r Region) confine(x1, y1, x2, y2 float64, box Box, depth int) (float64, float64) {
	minX, minY := float64(box.X), float64(box.Y)
	maxX := float64(box.X+box.Width) - edgeEpsilon
	maxY := float64(box.Y+box.Height) - edgeEpsilon

	xClamped := clamp(x2, minX, maxX)
	yClamped := clamp(y2, minY, maxY)
	if xClamped == x2 && yClamped == y2 {
		return x2, y2
	}

	dx := x2 - x1
	dy := y2 - y1

	// Fraction of the segment that stays inside this box.
	delta := math.Min(fraction(xClamped-x1, dx), fraction(yClamped-y1, dy))
	if math.IsInf(delta, 1) {
		delta = 0
	}

	x := clamp(delta*dx+x1, minX, maxX)
	y := clamp(delta*dy+y1, minY, maxY)

	if depth > 0 {
		extX := x + sign(dx)*edgeEpsilon*2
		extY := y + sign(dy)*edgeEpsilon*2
		if next, ok := r.ContainsPoint(extX, extY); ok && next != box {
			return r.confine(x1, y1, x2, y2, next, depth-1)
		}
	}

	if dx == 0 || dy == 0 || depth == 0 {
		return x, y
	}

	borderingX := x == minX || x == maxX
	borderingY := y == minY || y == maxY

	switch {
	case borderingX && !borderingY:
		return r.confine(x, y, x, y2, box, depth-1)
	case borderingY && !borderingX:
		return r.confine(x, y, x2, y, box, depth-1)
	default:
		// Cornered: slide along whichever axis gets further.
		_, yPotential := r.confine(x, y, x, y2, box, depth-1)
		xPotential, _ := r.confine(x, y, x2, y, box, depth-1)
		if math.Abs(xPotential-x) > math.Abs(yPotential-y) {
			return xPotential, y
		}
		return x, yPotential
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// fraction returns |num/den|, or +Inf for a zero denominator so that an axis
// without motion never limits the other one.
func fraction(num, den float64) float64 {
	if den == 0 {
		return math.Inf(1)
	}
	return math.Abs(num) / math.Abs(den)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
