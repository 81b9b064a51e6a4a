// Package scene is a minimal stand-in for a compositor scene graph: a stack
// of client surfaces that can be hit-tested in layout space.
package scene

import (
	"fmt"

	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/signal"
)

// ClientID identifies the client owning a surface.
type ClientID uint32

// Surface is a client surface placed in layout space.
type Surface struct {
	ID     uint32
	Client ClientID
	// Box is the surface's position and size in layout space.
	Box geometry.Box
	// InputRegion is surface-local. An empty region accepts input on the
	// whole surface.
	InputRegion geometry.Region

	AcceptsTablet bool
	AcceptsTouch  bool

	Events SurfaceEvents

	destroyed bool
}

// SurfaceEvents are the notifications a surface emits.
type SurfaceEvents struct {
	Commit  signal.Signal[*Surface]
	Destroy signal.Signal[*Surface]
}

func (s *Surface) String() string {
	return fmt.Sprintf("surface %d (client %d) %s", s.ID, s.Client, s.Box)
}

// EffectiveInputRegion returns the surface-local area that receives input.
func (s *Surface) EffectiveInputRegion() geometry.Region {
	whole := geometry.NewRegion(geometry.Box{Width: s.Box.Width, Height: s.Box.Height})
	if s.InputRegion.Empty() {
		return whole
	}
	return s.InputRegion.Intersect(whole)
}

// ToLocal converts layout coordinates into surface-local ones.
func (s *Surface) ToLocal(x, y float64) (float64, float64) {
	return x - float64(s.Box.X), y - float64(s.Box.Y)
}

// ToLayout converts surface-local coordinates into layout ones.
func (s *Surface) ToLayout(sx, sy float64) (float64, float64) {
	return sx + float64(s.Box.X), sy + float64(s.Box.Y)
}

// Commit applies pending state. Listeners see the new state.
func (s *Surface) Commit() {
	if s.destroyed {
		return
	}
	s.Events.Commit.Emit(s)
}

// Destroy notifies listeners that the surface is gone. Only the first call
// has an effect.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.Events.Destroy.Emit(s)
}

// Destroyed reports whether Destroy was called.
func (s *Surface) Destroyed() bool {
	return s.destroyed
}
