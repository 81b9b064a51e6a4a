package scene

import (
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/signal"
)

// NodeKind classifies what a hit landed on.
type NodeKind int

const (
	// NodeNone means no node is under the point.
	NodeNone NodeKind = iota
	// NodeSurface is a client surface.
	NodeSurface
	// NodeDecoration is compositor-drawn chrome such as a border or title
	// bar. It is interactive but has no client surface.
	NodeDecoration
)

func (k NodeKind) String() string {
	switch k {
	case NodeSurface:
		return "surface"
	case NodeDecoration:
		return "decoration"
	default:
		return "none"
	}
}

// Hit is the result of a hit-test.
type Hit struct {
	Kind NodeKind
	// Name labels decorations.
	Name    string
	Surface *Surface
	// SX, SY are surface-local coordinates, set when Surface is not nil.
	SX, SY float64
}

// HitTester finds the topmost interactive node at a layout position.
type HitTester interface {
	NodeAt(x, y float64) Hit
}

// Decoration is an interactive compositor-owned rectangle.
type Decoration struct {
	Name string
	Box  geometry.Box
}

type entry struct {
	surface    *Surface
	decoration *Decoration
	sub        *signal.Subscription
}

// Graph is a bottom-to-top stack of surfaces and decorations.
type Graph struct {
	stack []*entry
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddSurface puts s on top of the stack. The surface leaves the graph on its
// own when it is destroyed.
func (g *Graph) AddSurface(s *Surface) {
	g.RemoveSurface(s)
	e := &entry{surface: s}
	e.sub = s.Events.Destroy.Subscribe(func(s *Surface) {
		g.RemoveSurface(s)
	})
	g.stack = append(g.stack, e)
}

// AddDecoration puts d on top of the stack.
func (g *Graph) AddDecoration(d *Decoration) {
	g.stack = append(g.stack, &entry{decoration: d})
}

// RemoveSurface takes s out of the graph.
func (g *Graph) RemoveSurface(s *Surface) {
	for i, e := range g.stack {
		if e.surface == s {
			e.sub.Close()
			g.stack = append(g.stack[:i], g.stack[i+1:]...)
			return
		}
	}
}

// Raise moves s to the top of the stack.
func (g *Graph) Raise(s *Surface) {
	for i, e := range g.stack {
		if e.surface == s {
			g.stack = append(g.stack[:i], g.stack[i+1:]...)
			g.stack = append(g.stack, e)
			return
		}
	}
}

// Surfaces returns the surfaces from bottom to top.
func (g *Graph) Surfaces() []*Surface {
	var out []*Surface
	for _, e := range g.stack {
		if e.surface != nil {
			out = append(out, e.surface)
		}
	}
	return out
}

// SurfaceByID finds a surface by its id.
func (g *Graph) SurfaceByID(id uint32) (*Surface, bool) {
	for _, e := range g.stack {
		if e.surface != nil && e.surface.ID == id {
			return e.surface, true
		}
	}
	return nil, false
}

// NodeAt implements HitTester.
func (g *Graph) NodeAt(x, y float64) Hit {
	for i := len(g.stack) - 1; i >= 0; i-- {
		e := g.stack[i]
		if d := e.decoration; d != nil {
			if d.Box.ContainsPoint(x, y) {
				return Hit{Kind: NodeDecoration, Name: d.Name}
			}
			continue
		}

		s := e.surface
		if !s.Box.ContainsPoint(x, y) {
			continue
		}
		sx, sy := s.ToLocal(x, y)
		if _, ok := s.EffectiveInputRegion().ContainsPoint(sx, sy); !ok {
			continue
		}
		return Hit{Kind: NodeSurface, Surface: s, SX: sx, SY: sy}
	}
	return Hit{}
}
