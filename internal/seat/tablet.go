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

// TabletAdapter feeds a drawing tablet into the seat. Each tool is bound on
// its first proximity event; events of unbound tools are dropped.
type TabletAdapter struct {
	base

	tools map[device.ToolKey]*toolState
}

type toolState struct {
	tool device.Tool
	mode ToolMode

	// Native proximity-in was sent for the current approach.
	proximity bool
	// Tip is down on a tablet-aware surface; it keeps receiving tablet
	// events until the tip goes up.
	implicitGrab bool
	grabSurface  *scene.Surface
	// Buttons pressed natively, released natively.
	nativeButtons map[uint32]bool
	// Buttons whose press emulated the right button. The emulated release
	// goes out with the last of them.
	emulatedButtons map[uint32]bool
	// Axis values accumulated since proximity-in.
	axes dispatch.ToolAxes
}

// merge folds the axes named by e.Updated into the tool's state. The wheel
// is a delta and only lasts for the event that carries it.
func (ts *toolState) merge(e device.TabletAxisEvent) {
	ax := &ts.axes
	ax.Updated = e.Updated &^ (device.AxisX | device.AxisY)
	ax.WheelDelta = 0
	if e.Updated.Has(device.AxisPressure) {
		ax.Pressure = e.Pressure
	}
	if e.Updated.Has(device.AxisDistance) {
		ax.Distance = e.Distance
	}
	if e.Updated.Has(device.AxisTiltX) {
		ax.TiltX = e.TiltX
	}
	if e.Updated.Has(device.AxisTiltY) {
		ax.TiltY = e.TiltY
	}
	if e.Updated.Has(device.AxisRotation) {
		ax.Rotation = e.Rotation
	}
	if e.Updated.Has(device.AxisSlider) {
		ax.Slider = e.Slider
	}
	if e.Updated.Has(device.AxisWheel) {
		ax.WheelDelta = e.WheelDelta
	}
}

func newTabletAdapter(s *Seat, dev *device.Device) *TabletAdapter {
	a := &TabletAdapter{
		base:  newBase(s, dev),
		tools: make(map[device.ToolKey]*toolState),
	}
	ev := &dev.Tablet
	signal.Connect(&a.subs, &ev.Proximity, a.handleProximity)
	signal.Connect(&a.subs, &ev.Axis, a.handleAxis)
	signal.Connect(&a.subs, &ev.Tip, a.handleTip)
	signal.Connect(&a.subs, &ev.Button, a.handleButton)
	a.watchRemoval()
	return a
}

func (a *TabletAdapter) Kind() Kind { return KindTablet }

// ToolMode returns the positioning mode of a bound tool.
func (a *TabletAdapter) ToolMode(tool device.Tool) (ToolMode, bool) {
	ts, ok := a.tools[tool]
	if !ok {
		return 0, false
	}
	return ts.mode, true
}

// ToolAxes returns the axis values a bound tool reported since it last came
// into proximity. Updated holds the axes changed by the latest event.
func (a *TabletAdapter) ToolAxes(tool device.Tool) (dispatch.ToolAxes, bool) {
	ts, ok := a.tools[tool]
	if !ok {
		return dispatch.ToolAxes{}, false
	}
	return ts.axes, true
}

func (a *TabletAdapter) source(tool device.Tool) emulation.Source {
	return emulation.ToolSource(a.dev, tool)
}

// bind creates the state of a tool seen for the first time. Pucks and
// lenses move like mice; everything else maps absolutely.
func (a *TabletAdapter) bind(tool device.Tool) *toolState {
	ts := &toolState{
		tool:            tool,
		mode:            ToolModeAbsolute,
		nativeButtons:   make(map[uint32]bool),
		emulatedButtons: make(map[uint32]bool),
	}
	if tool.Type == device.ToolMouse || tool.Type == device.ToolLens {
		ts.mode = ToolModeRelative
	}
	if ic := a.seat.inputConfig(a.dev); ic != nil {
		if mode, ok := ic.ToolModes[tool.Type]; ok {
			ts.mode = mode
		}
	}
	a.tools[tool] = ts
	a.seat.log.Debug("Tablet tool bound", "device", a.dev.Name, "tool", tool, "mode", ts.mode)
	return ts
}

func (a *TabletAdapter) lookup(tool device.Tool, what string) (*toolState, bool) {
	ts, ok := a.tools[tool]
	if !ok {
		a.seat.log.Debug("tablet tool event before proximity", "device", a.dev.Name, "tool", tool, "event", what)
	}
	return ts, ok
}

func (a *TabletAdapter) handleProximity(e device.TabletProximityEvent) {
	a.seat.activity(cursor.ActivityTabletTool)

	ts, ok := a.tools[e.Tool]
	if !ok {
		ts = a.bind(e.Tool)
	}

	if e.State == device.ProximityOut {
		a.releaseEmulation(ts, e.TimeMsec)
		a.proximityOut(ts, e.TimeMsec)
		return
	}
	ts.axes = dispatch.ToolAxes{}
	a.position(ts, e.TimeMsec, true, true, e.X, e.Y, 0, 0)
}

func (a *TabletAdapter) handleAxis(e device.TabletAxisEvent) {
	a.seat.activity(cursor.ActivityTabletTool)

	ts, ok := a.lookup(e.Tool, "axis")
	if !ok {
		return
	}
	ts.merge(e)

	native := a.position(ts, e.TimeMsec, e.Updated.Has(device.AxisX), e.Updated.Has(device.AxisY), e.X, e.Y, e.DX, e.DY)
	if !native {
		return
	}
	if ts.axes.Updated != 0 {
		a.send(ts, dispatch.Event{Kind: dispatch.TabletAxis, TimeMsec: e.TimeMsec, Axes: ts.axes})
	}
}

// position moves the cursor for a tool and routes the motion. A tool whose
// tip emulates a pointer press keeps emulating; otherwise the motion goes
// to the tablet-aware surface under the cursor or to the one holding the
// implicit grab. It reports whether the motion was routed natively.
func (a *TabletAdapter) position(ts *toolState, timeMsec uint32, changeX, changeY bool, x, y, dx, dy float64) bool {
	s := a.seat
	oldX, oldY := s.cursor.Position()

	switch ts.mode {
	case ToolModeAbsolute:
		lx, ly := s.toLayout(a.dev, x, y)
		if !changeX {
			lx = oldX
		}
		if !changeY {
			ly = oldY
		}
		if !geometry.IsFinite(lx) || !geometry.IsFinite(ly) {
			s.log.Debug("dropping non-finite tablet position", "device", a.dev.Name, "tool", ts.tool)
			return false
		}
		s.cursor.Warp(lx, ly)
	case ToolModeRelative:
		if !geometry.IsFinite(dx) || !geometry.IsFinite(dy) {
			return false
		}
		s.cursor.MoveBy(dx, dy)
	}

	hit := s.hitAtCursor()
	sticky := s.emulation.Holds(a.source(ts.tool), emulation.ReasonTip)
	if !sticky && (acceptsTablet(hit) || ts.implicitGrab) {
		a.send(ts, dispatch.Event{Kind: dispatch.TabletMotion, TimeMsec: timeMsec})
		return true
	}

	if ts.proximity {
		a.proximityOut(ts, timeMsec)
	}
	nx, ny := s.cursor.Position()
	mdx, mdy := nx-oldX, ny-oldY
	s.RelativeMotion.Emit(RelativeMotionEvent{
		TimeMsec: timeMsec, Device: a.dev,
		DX: mdx, DY: mdy, UnaccelDX: mdx, UnaccelDY: mdy,
	})
	s.sendMotion(a.dev, timeMsec, mdx, mdy, mdx, mdy, true)
	return false
}

func (a *TabletAdapter) handleTip(e device.TabletTipEvent) {
	s := a.seat
	s.activity(cursor.ActivityTabletTool)

	ts, ok := a.lookup(e.Tool, "tip")
	if !ok {
		return
	}

	src := a.source(ts.tool)
	hit := s.hitAtCursor()

	switch {
	case e.State == device.TipUp && s.emulation.Holds(src, emulation.ReasonTip):
		s.emulation.Stop(src, emulation.ReasonTip)
		s.button(a.dev, e.TimeMsec, device.BtnLeft, device.ButtonReleased, true)
		s.frame(a.dev, e.TimeMsec, true)
	case e.State == device.TipDown && (!acceptsTablet(hit) || s.emulation.IsActive(src)):
		if !s.emulation.Start(src, emulation.ReasonTip) {
			return
		}
		s.button(a.dev, e.TimeMsec, device.BtnLeft, device.ButtonPressed, true)
		s.frame(a.dev, e.TimeMsec, true)
	case e.State == device.TipUp && !acceptsTablet(hit) && !ts.implicitGrab:
		s.log.Debug("dropping tip up without a tablet surface", "device", a.dev.Name, "tool", ts.tool)
	case e.State == device.TipDown:
		ts.implicitGrab = true
		ts.grabSurface = hit.Surface
		a.send(ts, dispatch.Event{Kind: dispatch.TabletTip, TimeMsec: e.TimeMsec, Tip: e.State})
	default:
		// A tip lifted over a surface without tablet support still ends
		// the grab of the surface it went down on.
		a.send(ts, dispatch.Event{Kind: dispatch.TabletTip, TimeMsec: e.TimeMsec, Tip: e.State})
		ts.implicitGrab = false
		ts.grabSurface = nil
	}
}

func (a *TabletAdapter) handleButton(e device.TabletButtonEvent) {
	s := a.seat
	s.activity(cursor.ActivityTabletTool)

	ts, ok := a.lookup(e.Tool, "button")
	if !ok {
		return
	}

	src := a.source(ts.tool)
	emulating := s.emulation.IsActive(src)

	if e.State == device.ButtonReleased && ts.nativeButtons[e.Button] {
		delete(ts.nativeButtons, e.Button)
		a.send(ts, dispatch.Event{Kind: dispatch.TabletButton, TimeMsec: e.TimeMsec, Button: e.Button, State: e.State})
		return
	}
	if !emulating && !s.focus.FloatingModifierHeld() && acceptsTablet(s.hitAtCursor()) {
		if e.State == device.ButtonPressed {
			ts.nativeButtons[e.Button] = true
		}
		a.send(ts, dispatch.Event{Kind: dispatch.TabletButton, TimeMsec: e.TimeMsec, Button: e.Button, State: e.State})
		return
	}

	// Every tool button emulates the right button. Presses refused by the
	// multiplexer are not tracked, so their releases are dropped as well.
	switch e.State {
	case device.ButtonPressed:
		if ts.emulatedButtons[e.Button] {
			return
		}
		if len(ts.emulatedButtons) == 0 {
			if !s.emulation.Start(src, emulation.ReasonToolButton) {
				return
			}
			s.button(a.dev, e.TimeMsec, device.BtnRight, device.ButtonPressed, true)
			s.frame(a.dev, e.TimeMsec, true)
		}
		ts.emulatedButtons[e.Button] = true
	case device.ButtonReleased:
		if !ts.emulatedButtons[e.Button] {
			s.log.Debug("dropping release of an untracked tool button", "device", a.dev.Name, "tool", ts.tool, "button", e.Button)
			return
		}
		delete(ts.emulatedButtons, e.Button)
		if len(ts.emulatedButtons) == 0 && s.emulation.Stop(src, emulation.ReasonToolButton) {
			s.button(a.dev, e.TimeMsec, device.BtnRight, device.ButtonReleased, true)
			s.frame(a.dev, e.TimeMsec, true)
		}
	}
}

// releaseEmulation ends whatever the tool still emulates when it leaves
// proximity.
func (a *TabletAdapter) releaseEmulation(ts *toolState, timeMsec uint32) {
	s := a.seat
	src := a.source(ts.tool)
	for b := range ts.emulatedButtons {
		delete(ts.emulatedButtons, b)
	}
	released := false
	if s.emulation.Stop(src, emulation.ReasonTip) {
		s.button(a.dev, timeMsec, device.BtnLeft, device.ButtonReleased, true)
		released = true
	}
	if s.emulation.Stop(src, emulation.ReasonToolButton) {
		s.button(a.dev, timeMsec, device.BtnRight, device.ButtonReleased, true)
		released = true
	}
	if released {
		s.frame(a.dev, timeMsec, true)
	}
}

func (a *TabletAdapter) proximityOut(ts *toolState, timeMsec uint32) {
	if !ts.proximity {
		return
	}
	ts.proximity = false
	ts.implicitGrab = false
	ts.grabSurface = nil
	a.seat.funnel.Send(dispatch.Event{
		Kind:      dispatch.TabletProximity,
		TimeMsec:  timeMsec,
		Device:    a.dev,
		Tool:      ts.tool,
		Proximity: device.ProximityOut,
	})
}

// send forwards a native tablet event, announcing the tool to the surface
// first if needed.
func (a *TabletAdapter) send(ts *toolState, ev dispatch.Event) {
	s := a.seat
	x, y := s.cursor.Position()
	hit := s.scene.NodeAt(x, y)
	if ts.implicitGrab && ts.grabSurface != nil && !ts.grabSurface.Destroyed() {
		sx, sy := ts.grabSurface.ToLocal(x, y)
		hit = scene.Hit{Kind: scene.NodeSurface, Surface: ts.grabSurface, SX: sx, SY: sy}
	}

	if !ts.proximity {
		ts.proximity = true
		s.funnel.Send(dispatch.Event{
			Kind:      dispatch.TabletProximity,
			TimeMsec:  ev.TimeMsec,
			Device:    a.dev,
			Tool:      ts.tool,
			Proximity: device.ProximityIn,
			X:         x,
			Y:         y,
			Surface:   hit.Surface,
			SX:        hit.SX,
			SY:        hit.SY,
		})
	}

	ev.Device = a.dev
	ev.Tool = ts.tool
	ev.X, ev.Y = x, y
	ev.Surface, ev.SX, ev.SY = hit.Surface, hit.SX, hit.SY
	s.funnel.Send(ev)
}

func acceptsTablet(hit scene.Hit) bool {
	return hit.Surface != nil && hit.Surface.AcceptsTablet
}
