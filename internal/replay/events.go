package replay

import "github.com/bnema/waycursor/internal/device"

func parseButtonState(s string) (device.ButtonState, error) {
	switch s {
	case "pressed":
		return device.ButtonPressed, nil
	case "released":
		return device.ButtonReleased, nil
	}
	return 0, invalid("state must be pressed or released, got %q", s)
}

func parseOrientation(s string) (device.Orientation, error) {
	switch s {
	case "", "vertical":
		return device.OrientationVertical, nil
	case "horizontal":
		return device.OrientationHorizontal, nil
	}
	return 0, invalid("orientation must be vertical or horizontal, got %q", s)
}

func parseGesture(kind, phase string) (device.GestureKind, device.GesturePhase, bool, error) {
	var k device.GestureKind
	switch kind {
	case "hold":
		k = device.GestureHold
	case "pinch":
		k = device.GesturePinch
	case "swipe":
		k = device.GestureSwipe
	default:
		return 0, 0, false, invalid("gesture must be hold, pinch or swipe, got %q", kind)
	}
	switch phase {
	case "begin":
		return k, device.GestureBegin, false, nil
	case "update":
		return k, device.GestureUpdate, false, nil
	case "end":
		return k, device.GestureEnd, false, nil
	case "cancel":
		return k, device.GestureEnd, true, nil
	}
	return 0, 0, false, invalid("phase must be begin, update, end or cancel, got %q", phase)
}

var axisNames = map[string]device.AxisMask{
	"x":        device.AxisX,
	"y":        device.AxisY,
	"distance": device.AxisDistance,
	"pressure": device.AxisPressure,
	"tilt_x":   device.AxisTiltX,
	"tilt_y":   device.AxisTiltY,
	"rotation": device.AxisRotation,
	"slider":   device.AxisSlider,
	"wheel":    device.AxisWheel,
}

func parseAxes(names []string) (device.AxisMask, error) {
	if len(names) == 0 {
		return device.AxisX | device.AxisY, nil
	}
	var mask device.AxisMask
	for _, n := range names {
		bit, ok := axisNames[n]
		if !ok {
			return 0, invalid("unknown axis %q", n)
		}
		mask |= bit
	}
	return mask, nil
}

func parseTool(ev Event) (device.Tool, error) {
	name := ev.Tool
	if name == "" {
		name = "pen"
	}
	typ, ok := device.ParseToolType(name)
	if !ok {
		return device.Tool{}, invalid("unknown tool %q", ev.Tool)
	}
	return device.Tool{Type: typ, Serial: ev.Serial}, nil
}

// family lists the device class each device event type needs.
var family = map[string]device.Class{
	"motion":           device.ClassPointer,
	"motion_absolute":  device.ClassPointer,
	"button":           device.ClassPointer,
	"axis":             device.ClassPointer,
	"frame":            device.ClassPointer,
	"gesture":          device.ClassPointer,
	"touch_down":       device.ClassTouch,
	"touch_up":         device.ClassTouch,
	"touch_motion":     device.ClassTouch,
	"touch_cancel":     device.ClassTouch,
	"touch_frame":      device.ClassTouch,
	"tablet_proximity": device.ClassTabletTool,
	"tablet_axis":      device.ClassTabletTool,
	"tablet_tip":       device.ClassTabletTool,
	"tablet_button":    device.ClassTabletTool,
}

// compileEvent turns a scripted event into a step. Device events are emitted
// on the device's signals exactly as a backend would.
func compileEvent(p *plan, devices map[string]*device.Device, ev Event) (func(*runner), error) {
	t := ev.At

	switch ev.Type {
	case "focus":
		target := ev.Surface
		if target != 0 {
			if _, ok := p.byID[target]; !ok {
				return nil, invalid("unknown surface %d", target)
			}
		}
		return func(r *runner) { r.setFocus(target) }, nil
	case "modifier":
		state, err := parseButtonState(ev.State)
		if err != nil {
			return nil, err
		}
		return func(r *runner) { r.focus.modifier = state == device.ButtonPressed }, nil
	case "destroy_surface":
		surface, ok := p.byID[ev.Surface]
		if !ok {
			return nil, invalid("unknown surface %d", ev.Surface)
		}
		return func(r *runner) { r.destroySurface(surface) }, nil
	case "warp":
		return func(r *runner) { r.seat.Cursor().Warp(ev.X, ev.Y) }, nil
	}

	dev, ok := devices[ev.Device]
	if !ok {
		return nil, invalid("unknown device %q", ev.Device)
	}
	if ev.Type == "remove" {
		return func(*runner) { dev.Remove() }, nil
	}
	want, ok := family[ev.Type]
	if !ok {
		return nil, invalid("unknown event type %q", ev.Type)
	}
	if dev.Class != want {
		return nil, invalid("%s events need a %s device, %q is a %s", ev.Type, want, dev.Name, dev.Class)
	}

	ptr, touch, tab := &dev.Pointer, &dev.Touch, &dev.Tablet
	switch ev.Type {
	case "motion":
		e := device.MotionEvent{TimeMsec: t, DX: ev.DX, DY: ev.DY, UnaccelDX: ev.DX, UnaccelDY: ev.DY}
		return func(*runner) { ptr.Motion.Emit(e) }, nil
	case "motion_absolute":
		e := device.MotionAbsoluteEvent{TimeMsec: t, X: ev.X, Y: ev.Y}
		return func(*runner) { ptr.MotionAbsolute.Emit(e) }, nil
	case "button":
		button, err := device.ParseButton(ev.Button)
		if err != nil {
			return nil, invalid("%v", err)
		}
		state, err := parseButtonState(ev.State)
		if err != nil {
			return nil, err
		}
		e := device.ButtonEvent{TimeMsec: t, Button: button, State: state}
		return func(*runner) { ptr.Button.Emit(e) }, nil
	case "axis":
		orientation, err := parseOrientation(ev.Orientation)
		if err != nil {
			return nil, err
		}
		e := device.AxisEvent{TimeMsec: t, Orientation: orientation, Delta: ev.Delta, DeltaDiscrete: ev.Discrete}
		return func(*runner) { ptr.Axis.Emit(e) }, nil
	case "frame":
		return func(*runner) { ptr.Frame.Emit(device.FrameEvent{TimeMsec: t}) }, nil
	case "gesture":
		kind, phase, cancelled, err := parseGesture(ev.Gesture, ev.Phase)
		if err != nil {
			return nil, err
		}
		e := device.GestureEvent{
			TimeMsec: t, Kind: kind, Phase: phase, Fingers: ev.Fingers,
			DX: ev.DX, DY: ev.DY, Scale: ev.Scale, Cancelled: cancelled,
		}
		return func(*runner) { ptr.Gesture.Emit(e) }, nil

	case "touch_down":
		e := device.TouchDownEvent{TimeMsec: t, TouchID: ev.ID, X: ev.X, Y: ev.Y}
		return func(*runner) { touch.Down.Emit(e) }, nil
	case "touch_up":
		e := device.TouchUpEvent{TimeMsec: t, TouchID: ev.ID}
		return func(*runner) { touch.Up.Emit(e) }, nil
	case "touch_motion":
		e := device.TouchMotionEvent{TimeMsec: t, TouchID: ev.ID, X: ev.X, Y: ev.Y}
		return func(*runner) { touch.Motion.Emit(e) }, nil
	case "touch_cancel":
		e := device.TouchCancelEvent{TimeMsec: t, TouchID: ev.ID}
		return func(*runner) { touch.Cancel.Emit(e) }, nil
	case "touch_frame":
		return func(*runner) { touch.Frame.Emit(device.FrameEvent{TimeMsec: t}) }, nil
	}

	tool, err := parseTool(ev)
	if err != nil {
		return nil, err
	}
	switch ev.Type {
	case "tablet_proximity":
		var state device.ProximityState
		switch ev.State {
		case "in":
			state = device.ProximityIn
		case "out":
			state = device.ProximityOut
		default:
			return nil, invalid("proximity state must be in or out, got %q", ev.State)
		}
		e := device.TabletProximityEvent{TimeMsec: t, Tool: tool, X: ev.X, Y: ev.Y, State: state}
		return func(*runner) { tab.Proximity.Emit(e) }, nil
	case "tablet_axis":
		mask, err := parseAxes(ev.Axes)
		if err != nil {
			return nil, err
		}
		e := device.TabletAxisEvent{
			TimeMsec: t, Tool: tool, Updated: mask,
			X: ev.X, Y: ev.Y, DX: ev.DX, DY: ev.DY,
			Pressure: ev.Pressure, Distance: ev.Distance, TiltX: ev.TiltX, TiltY: ev.TiltY,
			WheelDelta: ev.Delta,
		}
		return func(*runner) { tab.Axis.Emit(e) }, nil
	case "tablet_tip":
		var state device.TipState
		switch ev.State {
		case "down":
			state = device.TipDown
		case "up":
			state = device.TipUp
		default:
			return nil, invalid("tip state must be down or up, got %q", ev.State)
		}
		e := device.TabletTipEvent{TimeMsec: t, Tool: tool, X: ev.X, Y: ev.Y, State: state}
		return func(*runner) { tab.Tip.Emit(e) }, nil
	default: // tablet_button
		button, err := device.ParseButton(ev.Button)
		if err != nil {
			return nil, invalid("%v", err)
		}
		state, err := parseButtonState(ev.State)
		if err != nil {
			return nil, err
		}
		e := device.TabletButtonEvent{TimeMsec: t, Tool: tool, Button: button, State: state}
		return func(*runner) { tab.Button.Emit(e) }, nil
	}
}
