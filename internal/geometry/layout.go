package geometry

import (
	"math"
)

// Output is one monitor placed in layout space.
type Output struct {
	Name    string
	Box     Box
	Enabled bool
}

// Layout arranges outputs edge-to-edge in one logical coordinate system.
// Only enabled, non-empty outputs take part in lookups.
type Layout struct {
	outputs []*Output
}

// NewLayout creates a layout holding the given outputs.
func NewLayout(outputs ...*Output) *Layout {
	l := &Layout{}
	for _, o := range outputs {
		l.Add(o)
	}
	return l
}

// Add places an output, replacing any output with the same name.
func (l *Layout) Add(o *Output) {
	for i, existing := range l.outputs {
		if existing.Name == o.Name {
			l.outputs[i] = o
			return
		}
	}
	l.outputs = append(l.outputs, o)
}

// Remove drops the named output. It reports whether an output was removed.
func (l *Layout) Remove(name string) bool {
	for i, o := range l.outputs {
		if o.Name == name {
			l.outputs = append(l.outputs[:i], l.outputs[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the named output.
func (l *Layout) Get(name string) (*Output, bool) {
	for _, o := range l.outputs {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Outputs returns every output, enabled or not.
func (l *Layout) Outputs() []*Output {
	out := make([]*Output, len(l.outputs))
	copy(out, l.outputs)
	return out
}

// HasActiveOutputs reports whether at least one output takes part in the layout.
func (l *Layout) HasActiveOutputs() bool {
	for _, o := range l.outputs {
		if l.active(o) {
			return true
		}
	}
	return false
}

func (l *Layout) active(o *Output) bool {
	return o.Enabled && !o.Box.Empty()
}

// OutputAt returns the output containing (x, y).
func (l *Layout) OutputAt(x, y float64) (*Output, bool) {
	for _, o := range l.outputs {
		if l.active(o) && o.Box.ContainsPoint(x, y) {
			return o, true
		}
	}
	return nil, false
}

// Contains reports whether (x, y) lies on any active output.
func (l *Layout) Contains(x, y float64) bool {
	_, ok := l.OutputAt(x, y)
	return ok
}

// ClosestPoint returns the point of the active outputs nearest to (x, y).
// NaN input propagates. With no active output the origin is returned.
func (l *Layout) ClosestPoint(x, y float64) (float64, float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN(), math.NaN()
	}

	minX, minY := 0.0, 0.0
	minDistance := 0.0
	found := false
	for _, o := range l.outputs {
		if !l.active(o) {
			continue
		}
		ox, oy := o.Box.ClosestPoint(x, y)
		if ox == x && oy == y {
			return x, y
		}
		// Overflows to +Inf for far away input; the first output still wins.
		distance := (ox-x)*(ox-x) + (oy-y)*(oy-y)
		if !found || distance < minDistance {
			minX, minY = ox, oy
			minDistance = distance
			found = true
		}
	}
	return minX, minY
}

// Extents returns the bounding box of all active outputs.
func (l *Layout) Extents() Box {
	var ext Box
	for _, o := range l.outputs {
		if l.active(o) {
			ext = ext.Union(o.Box)
		}
	}
	return ext
}
