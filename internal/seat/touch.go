package seat

import (
	"github.com/bnema/waycursor/internal/cursor"
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/emulation"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/bnema/waycursor/internal/signal"
)

// TouchAdapter feeds a touch panel into the seat. Contacts over surfaces
// that accept touch are forwarded as touch events; a contact over anything
// else drives the pointer instead, one contact at a time.
type TouchAdapter struct {
	base

	points  map[int32]*touchPoint
	dropped map[int32]bool
	// Set when the emulating contact ended; emulation stops at the frame.
	pendingStop bool
}

type touchPoint struct {
	native  bool
	surface *scene.Surface
	x, y    float64
}

func newTouchAdapter(s *Seat, dev *device.Device) *TouchAdapter {
	a := &TouchAdapter{
		base:    newBase(s, dev),
		points:  make(map[int32]*touchPoint),
		dropped: make(map[int32]bool),
	}
	ev := &dev.Touch
	signal.Connect(&a.subs, &ev.Down, a.handleDown)
	signal.Connect(&a.subs, &ev.Up, a.handleUp)
	signal.Connect(&a.subs, &ev.Motion, a.handleMotion)
	signal.Connect(&a.subs, &ev.Cancel, a.handleCancel)
	signal.Connect(&a.subs, &ev.Frame, a.handleFrame)
	a.watchRemoval()
	return a
}

func (a *TouchAdapter) Kind() Kind { return KindTouch }

// Points returns the number of contacts currently down.
func (a *TouchAdapter) Points() int { return len(a.points) }

func (a *TouchAdapter) source(id int32) emulation.Source {
	return emulation.TouchSource(a.dev, id)
}

func (a *TouchAdapter) handleDown(e device.TouchDownEvent) {
	s := a.seat
	s.activity(cursor.ActivityTouch)
	s.cursor.Hide()

	if _, exists := a.points[e.TouchID]; !exists && len(a.points) >= s.opts.MaxTouchPoints {
		s.log.Debug("too many touch points, dropping contact", "device", a.dev.Name, "id", e.TouchID)
		a.dropped[e.TouchID] = true
		return
	}

	lx, ly := s.toLayout(a.dev, e.X, e.Y)
	if !geometry.IsFinite(lx) || !geometry.IsFinite(ly) {
		s.log.Debug("dropping touch down outside the layout", "device", a.dev.Name, "id", e.TouchID)
		a.dropped[e.TouchID] = true
		return
	}

	s.touchID, s.touchX, s.touchY, s.touchValid = e.TouchID, lx, ly, true

	hit := s.scene.NodeAt(lx, ly)
	if hit.Surface != nil && hit.Surface.AcceptsTouch {
		a.points[e.TouchID] = &touchPoint{native: true, surface: hit.Surface, x: lx, y: ly}
		s.funnel.Send(dispatch.Event{
			Kind:     dispatch.TouchDown,
			TimeMsec: e.TimeMsec,
			Device:   a.dev,
			TouchID:  e.TouchID,
			X:        lx,
			Y:        ly,
			Surface:  hit.Surface,
			SX:       hit.SX,
			SY:       hit.SY,
		})
		return
	}

	if !s.emulation.Start(a.source(e.TouchID), emulation.ReasonTouch) {
		a.dropped[e.TouchID] = true
		return
	}
	a.points[e.TouchID] = &touchPoint{x: lx, y: ly}
	a.pendingStop = false

	x, y := s.cursor.Position()
	s.pointerMotion(a.dev, e.TimeMsec, lx-x, ly-y, lx-x, ly-y, true)
	s.button(a.dev, e.TimeMsec, device.BtnLeft, device.ButtonPressed, true)
}

func (a *TouchAdapter) handleUp(e device.TouchUpEvent) {
	a.end(e.TimeMsec, e.TouchID, dispatch.TouchUp)
}

func (a *TouchAdapter) handleCancel(e device.TouchCancelEvent) {
	a.end(e.TimeMsec, e.TouchID, dispatch.TouchCancel)
}

func (a *TouchAdapter) end(timeMsec uint32, id int32, kind dispatch.Kind) {
	s := a.seat
	s.activity(cursor.ActivityTouch)

	if a.dropped[id] {
		delete(a.dropped, id)
		return
	}
	p, ok := a.points[id]
	if !ok {
		s.log.Debug("touch event for unknown contact", "device", a.dev.Name, "id", id, "kind", kind)
		return
	}
	delete(a.points, id)

	if p.native {
		s.funnel.Send(dispatch.Event{Kind: kind, TimeMsec: timeMsec, Device: a.dev, TouchID: id})
		return
	}
	if s.emulation.Holds(a.source(id), emulation.ReasonTouch) {
		s.button(a.dev, timeMsec, device.BtnLeft, device.ButtonReleased, true)
		a.pendingStop = true
	}
}

func (a *TouchAdapter) handleMotion(e device.TouchMotionEvent) {
	s := a.seat
	s.activity(cursor.ActivityTouch)

	if a.dropped[e.TouchID] {
		return
	}
	p, ok := a.points[e.TouchID]
	if !ok {
		s.log.Debug("touch motion for unknown contact", "device", a.dev.Name, "id", e.TouchID)
		return
	}

	lx, ly := s.toLayout(a.dev, e.X, e.Y)
	if !geometry.IsFinite(lx) || !geometry.IsFinite(ly) {
		return
	}
	p.x, p.y = lx, ly

	if s.opts.TouchHandoff == HandoffAnyActivity || (s.touchValid && s.touchID == e.TouchID) {
		s.touchID, s.touchX, s.touchY, s.touchValid = e.TouchID, lx, ly, true
	}

	if p.native {
		sx, sy := p.surface.ToLocal(lx, ly)
		s.funnel.Send(dispatch.Event{
			Kind:     dispatch.TouchMotion,
			TimeMsec: e.TimeMsec,
			Device:   a.dev,
			TouchID:  e.TouchID,
			X:        lx,
			Y:        ly,
			Surface:  p.surface,
			SX:       sx,
			SY:       sy,
		})
		return
	}
	if s.emulation.Holds(a.source(e.TouchID), emulation.ReasonTouch) {
		x, y := s.cursor.Position()
		s.pointerMotion(a.dev, e.TimeMsec, lx-x, ly-y, lx-x, ly-y, true)
	}
}

// handleFrame closes a hardware scan. An emulating contact that lifted
// during the scan gives up the pointer here.
func (a *TouchAdapter) handleFrame(e device.FrameEvent) {
	s := a.seat
	src, active := s.emulation.Active()
	emulating := active && src.Kind == emulation.SourceTouch && src.Device == a.dev

	if emulating || a.pendingStop {
		s.frame(a.dev, e.TimeMsec, true)
	}
	if a.pendingStop {
		if emulating {
			s.emulation.Stop(src, emulation.ReasonTouch)
		}
		a.pendingStop = false
	}

	if !emulating || a.hasNative() {
		s.funnel.Send(dispatch.Event{Kind: dispatch.TouchFrame, TimeMsec: e.TimeMsec, Device: a.dev})
	}
}

func (a *TouchAdapter) hasNative() bool {
	for _, p := range a.points {
		if p.native {
			return true
		}
	}
	return false
}
