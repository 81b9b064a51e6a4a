// Package cursor holds the logical cursor of a seat: its position in layout
// space, its image, the pressed button count and the idle auto-hide state.
package cursor

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/scene"
)

// ActivitySource classifies user activity for idle handling.
type ActivitySource int

const (
	ActivityPointer ActivitySource = iota
	ActivityTouch
	ActivityTabletTool
)

func (s ActivitySource) String() string {
	switch s {
	case ActivityTouch:
		return "touch"
	case ActivityTabletTool:
		return "tablet_tool"
	default:
		return "pointer"
	}
}

// Timer is a one-shot timer. Update with a zero duration disarms it.
type Timer interface {
	Update(d time.Duration)
	Remove()
}

// Rebaser is notified when what lies under the cursor must be recomputed or
// when pointer focus must be dropped.
type Rebaser interface {
	Rebase()
	ClearPointerFocus()
}

// Image is what the cursor shows: a named shape or a client surface.
type Image struct {
	Name     string
	Surface  *scene.Surface
	HotspotX int32
	HotspotY int32
	Client   scene.ClientID
}

// Options configure a cursor.
type Options struct {
	// HideTimeout hides the cursor after this much inactivity; 0 disables it.
	HideTimeout time.Duration
	// NewTimer creates the idle timer; fire must run on the event loop.
	NewTimer func(fire func()) Timer
}

// Cursor is the logical cursor. It is not safe for concurrent use.
type Cursor struct {
	layout  *geometry.Layout
	rebaser Rebaser
	log     *log.Logger

	x, y float64

	image         *Image
	imageSerial   uint64
	pointerCap    bool
	hidden        bool
	pressed       uint32
	hideTimeout   time.Duration
	hideTimer     Timer
	lastHideArmed time.Duration
}

// New creates a cursor at the layout origin.
func New(layout *geometry.Layout, rebaser Rebaser, opts Options) *Cursor {
	c := &Cursor{
		layout:      layout,
		rebaser:     rebaser,
		log:         logger.With("cursor"),
		hideTimeout: opts.HideTimeout,
	}
	if opts.NewTimer != nil {
		c.hideTimer = opts.NewTimer(c.hideNotify)
	}
	return c
}

// Position returns the cursor position in layout space.
func (c *Cursor) Position() (float64, float64) {
	return c.x, c.y
}

// Layout returns the output layout the cursor lives in.
func (c *Cursor) Layout() *geometry.Layout {
	return c.layout
}

// Warp moves the cursor to the point of the layout closest to (x, y).
// Non-finite coordinates are ignored.
func (c *Cursor) Warp(x, y float64) {
	if !geometry.IsFinite(x) || !geometry.IsFinite(y) {
		c.log.Debug("ignoring warp to non-finite position", "x", x, "y", y)
		return
	}
	c.x, c.y = c.layout.ClosestPoint(x, y)
}

// MoveBy moves the cursor by a delta, clamped to the layout.
func (c *Cursor) MoveBy(dx, dy float64) {
	c.Warp(c.x+dx, c.y+dy)
}

// WarpToBox moves the cursor to the center of box unless it already is
// inside and force is false. The cursor is revealed afterwards.
func (c *Cursor) WarpToBox(box geometry.Box, force bool) {
	if box.Empty() {
		return
	}
	if !force && box.ContainsPoint(c.x, c.y) {
		return
	}
	c.WarpToCenter(box)
}

// WarpToCenter moves the cursor to the center of box and reveals it.
func (c *Cursor) WarpToCenter(box geometry.Box) {
	if box.Empty() {
		return
	}
	center := box.Center()
	c.Warp(center.X, center.Y)
	c.Unhide()
}
