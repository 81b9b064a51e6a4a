// Package constraint implements pointer confinement and locking requested by
// client surfaces.
package constraint

import (
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/bnema/waycursor/internal/signal"
)

// Kind is the type of a constraint.
type Kind int

const (
	// Confined keeps the pointer inside a region.
	Confined Kind = iota
	// Locked stops the pointer from moving at all.
	Locked
)

func (k Kind) String() string {
	if k == Locked {
		return "locked"
	}
	return "confined"
}

// Constraint is a client's request to confine or lock the pointer over one
// of its surfaces. Region and cursor hint changes are double-buffered and
// take effect on the next surface commit.
type Constraint struct {
	Kind    Kind
	Surface *scene.Surface

	region        geometry.Region
	pendingRegion *geometry.Region

	hint        geometry.Point
	hasHint     bool
	pendingHint *geometry.Point

	Events Events

	subs      signal.Group
	destroyed bool
}

// Events are the notifications of a constraint.
type Events struct {
	// SetRegion fires from the commit that changed the region.
	SetRegion signal.Signal[*Constraint]
	// Destroy fires once when the constraint ends.
	Destroy signal.Signal[*Constraint]
}

// New creates a constraint on surface. An empty region means the whole
// input region of the surface. The constraint is destroyed together with
// its surface.
func New(kind Kind, surface *scene.Surface, region geometry.Region) *Constraint {
	c := &Constraint{
		Kind:    kind,
		Surface: surface,
		region:  region,
	}
	signal.Connect(&c.subs, &surface.Events.Commit, c.handleCommit)
	signal.Connect(&c.subs, &surface.Events.Destroy, func(*scene.Surface) {
		c.Destroy()
	})
	return c
}

// SetRegion requests a new region, applied on the next surface commit.
func (c *Constraint) SetRegion(region geometry.Region) {
	c.pendingRegion = &region
}

// SetCursorHint sets where the client expects the pointer to be, in
// surface-local coordinates, when the constraint ends. Applied on commit.
func (c *Constraint) SetCursorHint(sx, sy float64) {
	c.pendingHint = &geometry.Point{X: sx, Y: sy}
}

func (c *Constraint) handleCommit(*scene.Surface) {
	if c.pendingHint != nil {
		c.hint = *c.pendingHint
		c.hasHint = true
		c.pendingHint = nil
	}
	if c.pendingRegion != nil {
		changed := !c.pendingRegion.Equal(c.region)
		c.region = *c.pendingRegion
		c.pendingRegion = nil
		if changed {
			c.Events.SetRegion.Emit(c)
		}
	}
}

// Region returns the committed region clipped to the surface's input
// region, in surface-local coordinates.
func (c *Constraint) Region() geometry.Region {
	input := c.Surface.EffectiveInputRegion()
	if c.region.Empty() {
		return input
	}
	return input.Intersect(c.region)
}

// ConfineRegion returns the area the pointer may move in. It is empty for a
// locked constraint, which allows no motion.
func (c *Constraint) ConfineRegion() geometry.Region {
	if c.Kind == Locked {
		return geometry.Region{}
	}
	return c.Region()
}

// CursorHint returns the committed cursor hint.
func (c *Constraint) CursorHint() (geometry.Point, bool) {
	return c.hint, c.hasHint
}

// Destroy ends the constraint. Only the first call has an effect.
func (c *Constraint) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.subs.Close()
	c.Events.Destroy.Emit(c)
}

// Destroyed reports whether the constraint has ended.
func (c *Constraint) Destroyed() bool {
	return c.destroyed
}
