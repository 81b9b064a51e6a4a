package seat

import (
	"github.com/bnema/waycursor/internal/cursor"
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/signal"
)

// PointerAdapter feeds a mouse or touchpad into the seat.
type PointerAdapter struct {
	base
}

func newPointerAdapter(s *Seat, dev *device.Device) *PointerAdapter {
	a := &PointerAdapter{base: newBase(s, dev)}
	ev := &dev.Pointer
	signal.Connect(&a.subs, &ev.Motion, a.handleMotion)
	signal.Connect(&a.subs, &ev.MotionAbsolute, a.handleMotionAbsolute)
	signal.Connect(&a.subs, &ev.Button, a.handleButton)
	signal.Connect(&a.subs, &ev.Axis, a.handleAxis)
	signal.Connect(&a.subs, &ev.Frame, a.handleFrame)
	signal.Connect(&a.subs, &ev.Gesture, a.handleGesture)
	a.watchRemoval()
	return a
}

func (a *PointerAdapter) Kind() Kind { return KindPointer }

func (a *PointerAdapter) handleMotion(e device.MotionEvent) {
	a.seat.activity(cursor.ActivityPointer)
	a.seat.pointerMotion(a.dev, e.TimeMsec, e.DX, e.DY, e.UnaccelDX, e.UnaccelDY, false)
}

// Absolute motion becomes a delta against the current position, so it goes
// through the same constraint handling as relative motion.
func (a *PointerAdapter) handleMotionAbsolute(e device.MotionAbsoluteEvent) {
	a.seat.activity(cursor.ActivityPointer)

	lx, ly := a.seat.toLayout(a.dev, e.X, e.Y)
	if !geometry.IsFinite(lx) || !geometry.IsFinite(ly) {
		a.seat.log.Debug("dropping absolute motion outside the layout", "device", a.dev.Name, "x", e.X, "y", e.Y)
		return
	}
	x, y := a.seat.cursor.Position()
	dx, dy := lx-x, ly-y
	a.seat.pointerMotion(a.dev, e.TimeMsec, dx, dy, dx, dy, false)
}

func (a *PointerAdapter) handleButton(e device.ButtonEvent) {
	if e.State == device.ButtonPressed {
		a.seat.cursor.PressButton()
	} else {
		a.seat.cursor.ReleaseButton()
	}
	a.seat.activity(cursor.ActivityPointer)
	a.seat.button(a.dev, e.TimeMsec, e.Button, e.State, false)
}

func (a *PointerAdapter) handleAxis(e device.AxisEvent) {
	a.seat.activity(cursor.ActivityPointer)
	x, y := a.seat.cursor.Position()
	a.seat.funnel.Send(dispatch.Event{
		Kind:     dispatch.Axis,
		TimeMsec: e.TimeMsec,
		Device:   a.dev,
		X:        x,
		Y:        y,
		Axis:     e,
	})
}

func (a *PointerAdapter) handleFrame(e device.FrameEvent) {
	a.seat.activity(cursor.ActivityPointer)
	a.seat.frame(a.dev, e.TimeMsec, false)
}

func (a *PointerAdapter) handleGesture(e device.GestureEvent) {
	a.seat.activity(cursor.ActivityPointer)
	x, y := a.seat.cursor.Position()
	a.seat.funnel.Send(dispatch.Event{
		Kind:     dispatch.Gesture,
		TimeMsec: e.TimeMsec,
		Device:   a.dev,
		X:        x,
		Y:        y,
		Gesture:  e,
	})
}
