package constraint

import (
	"errors"
	"math"

	"github.com/charmbracelet/log"

	"github.com/bnema/waycursor/internal/cursor"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/bnema/waycursor/internal/signal"
)

// ErrAlreadyConstrained is returned when a surface already has a constraint.
var ErrAlreadyConstrained = errors.New("surface already has a pointer constraint")

// Focus tells the engine which surface has keyboard focus.
type Focus interface {
	KeyboardFocus() *scene.Surface
}

// Engine applies at most one active constraint to a cursor.
type Engine struct {
	cursor  *cursor.Cursor
	rebaser cursor.Rebaser
	focus   Focus
	allow   bool
	log     *log.Logger

	constraints map[*scene.Surface]*tracked

	active         *Constraint
	confine        geometry.Region
	requiresRewarp bool
	commitSub      *signal.Subscription

	// Changed fires with the new active constraint, or nil.
	Changed signal.Signal[*Constraint]
}

type tracked struct {
	constraint *Constraint
	subs       signal.Group
}

// NewEngine creates an engine driving cur. Constraints only activate when
// allow is true.
func NewEngine(cur *cursor.Cursor, rebaser cursor.Rebaser, focus Focus, allow bool) *Engine {
	return &Engine{
		cursor:      cur,
		rebaser:     rebaser,
		focus:       focus,
		allow:       allow,
		log:         logger.With("constraint"),
		constraints: make(map[*scene.Surface]*tracked),
	}
}

// Add registers a new constraint and activates it right away when its
// surface has keyboard focus.
func (e *Engine) Add(c *Constraint) error {
	if _, exists := e.constraints[c.Surface]; exists {
		return ErrAlreadyConstrained
	}

	t := &tracked{constraint: c}
	signal.Connect(&t.subs, &c.Events.SetRegion, func(*Constraint) {
		e.requiresRewarp = true
	})
	signal.Connect(&t.subs, &c.Events.Destroy, e.handleDestroy)
	e.constraints[c.Surface] = t

	if focused := e.focus.KeyboardFocus(); focused != nil && focused == c.Surface {
		e.Constrain(c)
	}
	return nil
}

// ForSurface returns the constraint registered for surface.
func (e *Engine) ForSurface(surface *scene.Surface) (*Constraint, bool) {
	t, ok := e.constraints[surface]
	if !ok {
		return nil, false
	}
	return t.constraint, true
}

// Active returns the active constraint, or nil.
func (e *Engine) Active() *Constraint {
	return e.active
}

// Allowed reports whether constraints may activate.
func (e *Engine) Allowed() bool {
	return e.allow
}

// SetAllowed enables or disables constraints. Disabling deactivates the
// active one.
func (e *Engine) SetAllowed(allow bool) {
	if !allow && e.active != nil {
		e.setActive(nil)
	}
	e.allow = allow
}

// KeyboardFocusChanged activates the constraint of the newly focused
// surface, or deactivates the current one when the surface has none.
func (e *Engine) KeyboardFocusChanged(surface *scene.Surface) {
	var c *Constraint
	if t, ok := e.constraints[surface]; ok && surface != nil {
		c = t.constraint
	}
	e.Constrain(c)
}

// Constrain makes c the active constraint; nil deactivates.
func (e *Engine) Constrain(c *Constraint) {
	if !e.allow {
		return
	}
	e.setActive(c)
}

func (e *Engine) setActive(c *Constraint) {
	if e.active == c {
		return
	}

	e.commitSub.Close()
	e.commitSub = nil
	if prev := e.active; prev != nil {
		if c == nil {
			e.warpToCursorHint()
		}
		e.log.Debug("constraint deactivated", "kind", prev.Kind, "surface", prev.Surface.ID)
	}

	e.active = c
	if c == nil {
		e.confine = geometry.Region{}
		e.Changed.Emit(nil)
		return
	}

	e.requiresRewarp = true
	e.checkRegion()
	e.log.Debug("constraint activated", "kind", c.Kind, "surface", c.Surface.ID, "region", e.confine)

	e.commitSub = c.Surface.Events.Commit.Subscribe(e.handleCommit)
	e.Changed.Emit(c)
}

// checkRegion brings the cursor back into a reshaped region and refreshes
// the confine snapshot.
func (e *Engine) checkRegion() {
	c := e.active
	region := c.Region()

	if e.requiresRewarp {
		e.requiresRewarp = false

		x, y := e.cursor.Position()
		sx, sy := c.Surface.ToLocal(x, y)
		if _, inside := region.ContainsPoint(math.Floor(sx), math.Floor(sy)); !inside {
			if rects := region.Rects(); len(rects) > 0 {
				center := rects[0].Center()
				lx, ly := c.Surface.ToLayout(center.X, center.Y)
				e.cursor.Warp(lx, ly)
				e.rebaser.Rebase()
			}
		}
	}

	e.confine = c.ConfineRegion()
}

func (e *Engine) handleCommit(*scene.Surface) {
	if e.active == nil {
		return
	}
	e.checkRegion()

	if e.active.Kind == Confined && e.confine.Empty() {
		e.log.Debug("confine region cleared by commit, releasing pointer", "surface", e.active.Surface.ID)
		e.setActive(nil)
	}
}

func (e *Engine) warpToCursorHint() {
	c := e.active
	hint, ok := c.CursorHint()
	if !ok || c.Surface.Destroyed() {
		return
	}
	lx, ly := c.Surface.ToLayout(hint.X, hint.Y)
	e.cursor.Warp(lx, ly)
}

func (e *Engine) handleDestroy(c *Constraint) {
	if t, ok := e.constraints[c.Surface]; ok && t.constraint == c {
		t.subs.Close()
		delete(e.constraints, c.Surface)
	}

	if e.active != c {
		return
	}
	e.warpToCursorHint()
	e.commitSub.Close()
	e.commitSub = nil
	e.active = nil
	e.confine = geometry.Region{}
	e.Changed.Emit(nil)
}

// Clip limits a pointer motion of (dx, dy) to the active constraint. hit is
// what lies under the cursor before the motion. It returns the allowed
// delta, or false when the motion must be dropped: the cursor is not over
// the constrained surface, or the constraint allows no motion from here.
func (e *Engine) Clip(hit scene.Hit, dx, dy float64) (float64, float64, bool) {
	if e.active == nil {
		return dx, dy, true
	}
	if hit.Surface != e.active.Surface {
		return 0, 0, false
	}

	sx, sy := hit.SX, hit.SY
	cx, cy, ok := e.confine.Confine(sx, sy, sx+dx, sy+dy)
	if !ok {
		return 0, 0, false
	}
	return cx - sx, cy - sy, true
}

// ConfineSnapshot returns the region motion is currently clipped against,
// in surface-local coordinates of the active constraint.
func (e *Engine) ConfineSnapshot() geometry.Region {
	return e.confine
}

// Close deactivates and forgets every constraint.
func (e *Engine) Close() {
	e.commitSub.Close()
	e.commitSub = nil
	e.active = nil
	for surface, t := range e.constraints {
		t.subs.Close()
		delete(e.constraints, surface)
	}
}
