package evdev

import (
	"math"
	"syscall"

	goevdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/waycursor/internal/device"
)

// Translator turns one SYN_REPORT-terminated batch of kernel events into
// signals on a device.
type Translator interface {
	Translate(batch []goevdev.InputEvent)
}

// NewTranslator picks the translator matching the device class.
func NewTranslator(dev *device.Device, caps Capabilities, abs map[uint16]AbsInfo) Translator {
	switch dev.Class {
	case device.ClassTouch:
		return newTouchTranslator(dev, caps, abs)
	case device.ClassTabletTool:
		return newTabletTranslator(dev, abs)
	case device.ClassPointer:
		if isTouchpad(caps) {
			return newTouchpadTranslator(dev, abs)
		}
		return newPointerTranslator(dev, abs, isAbsolutePointer(caps))
	}
	return nopTranslator{}
}

type nopTranslator struct{}

func (nopTranslator) Translate([]goevdev.InputEvent) {}

func timeMsec(tv syscall.Timeval) uint32 {
	return uint32(int64(tv.Sec)*1000 + int64(tv.Usec)/1000)
}

func batchTime(batch []goevdev.InputEvent) uint32 {
	if len(batch) == 0 {
		return 0
	}
	return timeMsec(batch[len(batch)-1].Time)
}

func isPointerButton(code uint16) bool {
	return code >= goevdev.BTN_MOUSE && code <= goevdev.BTN_TASK
}

func buttonState(value int32) device.ButtonState {
	if value != 0 {
		return device.ButtonPressed
	}
	return device.ButtonReleased
}

// wheelStep is the scroll distance of one wheel detent, in pixels.
const wheelStep = 15

type pointerTranslator struct {
	dev      *device.Device
	absolute bool
	absX     AbsInfo
	absY     AbsInfo
	x, y     int32
}

func newPointerTranslator(dev *device.Device, abs map[uint16]AbsInfo, absolute bool) *pointerTranslator {
	p := &pointerTranslator{
		dev:      dev,
		absolute: absolute,
		absX:     abs[goevdev.ABS_X],
		absY:     abs[goevdev.ABS_Y],
	}
	p.x, p.y = p.absX.Value, p.absY.Value
	return p
}

func (p *pointerTranslator) Translate(batch []goevdev.InputEvent) {
	t := batchTime(batch)
	ev := &p.dev.Pointer

	var dx, dy float64
	var absMoved bool
	var buttons []device.ButtonEvent
	var axes []device.AxisEvent

	for _, e := range batch {
		switch e.Type {
		case goevdev.EV_REL:
			switch e.Code {
			case goevdev.REL_X:
				dx += float64(e.Value)
			case goevdev.REL_Y:
				dy += float64(e.Value)
			case goevdev.REL_WHEEL:
				axes = append(axes, device.AxisEvent{
					TimeMsec:      t,
					Source:        device.AxisSourceWheel,
					Orientation:   device.OrientationVertical,
					Delta:         -float64(e.Value) * wheelStep,
					DeltaDiscrete: -e.Value,
				})
			case goevdev.REL_HWHEEL:
				axes = append(axes, device.AxisEvent{
					TimeMsec:      t,
					Source:        device.AxisSourceWheel,
					Orientation:   device.OrientationHorizontal,
					Delta:         float64(e.Value) * wheelStep,
					DeltaDiscrete: e.Value,
				})
			}
		case goevdev.EV_ABS:
			switch e.Code {
			case goevdev.ABS_X:
				p.x = e.Value
				absMoved = true
			case goevdev.ABS_Y:
				p.y = e.Value
				absMoved = true
			}
		case goevdev.EV_KEY:
			// Autorepeat has value 2.
			if isPointerButton(e.Code) && e.Value != 2 {
				buttons = append(buttons, device.ButtonEvent{
					TimeMsec: t, Button: uint32(e.Code), State: buttonState(e.Value),
				})
			}
		}
	}

	emitted := false
	if dx != 0 || dy != 0 {
		ev.Motion.Emit(device.MotionEvent{TimeMsec: t, DX: dx, DY: dy, UnaccelDX: dx, UnaccelDY: dy})
		emitted = true
	}
	if p.absolute && absMoved {
		ev.MotionAbsolute.Emit(device.MotionAbsoluteEvent{
			TimeMsec: t,
			X:        p.absX.Normalize(p.x),
			Y:        p.absY.Normalize(p.y),
		})
		emitted = true
	}
	for _, b := range buttons {
		ev.Button.Emit(b)
		emitted = true
	}
	for _, a := range axes {
		ev.Axis.Emit(a)
		emitted = true
	}
	if emitted {
		ev.Frame.Emit(device.FrameEvent{TimeMsec: t})
	}
}

// touchpadSpeed converts millimetres of finger travel to pixels.
const touchpadSpeed = 4.0

// touchpadTranslator turns finger travel into relative motion. Two fingers
// scroll; three or more fingers swipe.
type touchpadTranslator struct {
	dev        *device.Device
	absX, absY AbsInfo

	touching bool
	fingers  int
	x, y     int32
	valid    bool

	swiping bool
}

func newTouchpadTranslator(dev *device.Device, abs map[uint16]AbsInfo) *touchpadTranslator {
	return &touchpadTranslator{dev: dev, absX: abs[goevdev.ABS_X], absY: abs[goevdev.ABS_Y], fingers: 1}
}

func (p *touchpadTranslator) scale(info AbsInfo, d int32) float64 {
	if info.Resolution > 0 {
		return float64(d) / float64(info.Resolution) * touchpadSpeed
	}
	// Without a resolution assume a 100mm wide pad.
	return info.Normalize(info.Minimum+d) * 100 * touchpadSpeed
}

func (p *touchpadTranslator) Translate(batch []goevdev.InputEvent) {
	t := batchTime(batch)
	ev := &p.dev.Pointer

	x, y := p.x, p.y
	moved := false
	var buttons []device.ButtonEvent

	for _, e := range batch {
		switch e.Type {
		case goevdev.EV_ABS:
			switch e.Code {
			case goevdev.ABS_X:
				x = e.Value
				moved = true
			case goevdev.ABS_Y:
				y = e.Value
				moved = true
			}
		case goevdev.EV_KEY:
			switch e.Code {
			case goevdev.BTN_TOUCH:
				p.touching = e.Value != 0
				p.valid = false
			case goevdev.BTN_TOOL_FINGER:
				if e.Value != 0 {
					p.fingers = 1
				}
			case goevdev.BTN_TOOL_DOUBLETAP:
				if e.Value != 0 {
					p.fingers = 2
				}
			case goevdev.BTN_TOOL_TRIPLETAP:
				if e.Value != 0 {
					p.fingers = 3
				}
			case goevdev.BTN_TOOL_QUADTAP:
				if e.Value != 0 {
					p.fingers = 4
				}
			default:
				if isPointerButton(e.Code) && e.Value != 2 {
					buttons = append(buttons, device.ButtonEvent{
						TimeMsec: t, Button: uint32(e.Code), State: buttonState(e.Value),
					})
				}
			}
		}
	}

	emitted := false
	if p.swiping && (!p.touching || p.fingers < 3) {
		ev.Gesture.Emit(device.GestureEvent{TimeMsec: t, Kind: device.GestureSwipe, Phase: device.GestureEnd, Fingers: 3})
		p.swiping = false
		emitted = true
	}

	if p.touching && moved && p.valid {
		dx := p.scale(p.absX, x-p.x)
		dy := p.scale(p.absY, y-p.y)
		switch {
		case dx == 0 && dy == 0:
		case p.fingers >= 3:
			if !p.swiping {
				ev.Gesture.Emit(device.GestureEvent{TimeMsec: t, Kind: device.GestureSwipe, Phase: device.GestureBegin, Fingers: uint32(p.fingers)})
				p.swiping = true
			}
			ev.Gesture.Emit(device.GestureEvent{TimeMsec: t, Kind: device.GestureSwipe, Phase: device.GestureUpdate, Fingers: uint32(p.fingers), DX: dx, DY: dy})
			emitted = true
		case p.fingers == 2:
			if dy != 0 {
				ev.Axis.Emit(device.AxisEvent{TimeMsec: t, Source: device.AxisSourceFinger, Orientation: device.OrientationVertical, Delta: dy})
			}
			if dx != 0 {
				ev.Axis.Emit(device.AxisEvent{TimeMsec: t, Source: device.AxisSourceFinger, Orientation: device.OrientationHorizontal, Delta: dx})
			}
			emitted = true
		default:
			ev.Motion.Emit(device.MotionEvent{TimeMsec: t, DX: dx, DY: dy, UnaccelDX: dx, UnaccelDY: dy})
			emitted = true
		}
	}
	if p.touching {
		p.x, p.y = x, y
		p.valid = true
	}

	for _, b := range buttons {
		ev.Button.Emit(b)
		emitted = true
	}
	if emitted {
		ev.Frame.Emit(device.FrameEvent{TimeMsec: t})
	}
}

type touchSlot struct {
	id     int32
	x, y   int32
	active bool
	// pending state for the current batch
	down, up, moved bool
}

// touchTranslator implements multi-touch protocol B. Devices without slots
// are treated as a single slot driven by ABS_X, ABS_Y and BTN_TOUCH.
type touchTranslator struct {
	dev        *device.Device
	absX, absY AbsInfo
	multi      bool

	slots []touchSlot
	cur   int
}

func newTouchTranslator(dev *device.Device, caps Capabilities, abs map[uint16]AbsInfo) *touchTranslator {
	t := &touchTranslator{dev: dev}
	t.multi = caps.has(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_X)
	n := 1
	if t.multi {
		t.absX, t.absY = abs[goevdev.ABS_MT_POSITION_X], abs[goevdev.ABS_MT_POSITION_Y]
		n = 10
		if slot, ok := abs[goevdev.ABS_MT_SLOT]; ok && slot.Maximum >= 0 {
			n = int(slot.Maximum) + 1
		}
	} else {
		t.absX, t.absY = abs[goevdev.ABS_X], abs[goevdev.ABS_Y]
	}
	t.slots = make([]touchSlot, n)
	for i := range t.slots {
		t.slots[i].id = -1
	}
	return t
}

func (t *touchTranslator) slot() *touchSlot {
	if t.cur < 0 || t.cur >= len(t.slots) {
		return nil
	}
	return &t.slots[t.cur]
}

func (t *touchTranslator) Translate(batch []goevdev.InputEvent) {
	ts := batchTime(batch)

	for _, e := range batch {
		switch {
		case e.Type == goevdev.EV_ABS && t.multi:
			t.multiEvent(e)
		case e.Type == goevdev.EV_ABS:
			s := &t.slots[0]
			switch e.Code {
			case goevdev.ABS_X:
				s.x = e.Value
				s.moved = true
			case goevdev.ABS_Y:
				s.y = e.Value
				s.moved = true
			}
		case e.Type == goevdev.EV_KEY && e.Code == goevdev.BTN_TOUCH && !t.multi:
			s := &t.slots[0]
			if e.Value != 0 && !s.active {
				s.id = 0
				s.active = true
				s.down = true
			} else if e.Value == 0 && s.active {
				s.active = false
				s.up = true
			}
		}
	}

	ev := &t.dev.Touch
	emitted := false
	for i := range t.slots {
		s := &t.slots[i]
		id := int32(i)
		switch {
		case s.up && s.down:
			// Lifted and replaced within one frame.
			ev.Up.Emit(device.TouchUpEvent{TimeMsec: ts, TouchID: id})
			ev.Down.Emit(device.TouchDownEvent{TimeMsec: ts, TouchID: id, X: t.absX.Normalize(s.x), Y: t.absY.Normalize(s.y)})
			emitted = true
		case s.up:
			ev.Up.Emit(device.TouchUpEvent{TimeMsec: ts, TouchID: id})
			emitted = true
		case s.down:
			ev.Down.Emit(device.TouchDownEvent{TimeMsec: ts, TouchID: id, X: t.absX.Normalize(s.x), Y: t.absY.Normalize(s.y)})
			emitted = true
		case s.moved && s.active:
			ev.Motion.Emit(device.TouchMotionEvent{TimeMsec: ts, TouchID: id, X: t.absX.Normalize(s.x), Y: t.absY.Normalize(s.y)})
			emitted = true
		}
		s.down, s.up, s.moved = false, false, false
	}
	if emitted {
		ev.Frame.Emit(device.FrameEvent{TimeMsec: ts})
	}
}

func (t *touchTranslator) multiEvent(e goevdev.InputEvent) {
	if e.Code == goevdev.ABS_MT_SLOT {
		t.cur = int(e.Value)
		return
	}
	s := t.slot()
	if s == nil {
		return
	}
	switch e.Code {
	case goevdev.ABS_MT_TRACKING_ID:
		if e.Value < 0 {
			if s.active {
				s.active = false
				s.up = true
			}
			s.id = -1
			return
		}
		if s.active {
			s.up = true
		}
		s.id = e.Value
		s.active = true
		s.down = true
	case goevdev.ABS_MT_POSITION_X:
		s.x = e.Value
		s.moved = true
	case goevdev.ABS_MT_POSITION_Y:
		s.y = e.Value
		s.moved = true
	}
}

// Cancel ends every active contact, used when the kernel reports dropped
// events and the slot state can no longer be trusted.
func (t *touchTranslator) Cancel(timeMsec uint32) {
	ev := &t.dev.Touch
	emitted := false
	for i := range t.slots {
		s := &t.slots[i]
		if s.active {
			ev.Cancel.Emit(device.TouchCancelEvent{TimeMsec: timeMsec, TouchID: int32(i)})
			emitted = true
		}
		*s = touchSlot{id: -1}
	}
	if emitted {
		ev.Frame.Emit(device.FrameEvent{TimeMsec: timeMsec})
	}
}

var toolCodes = map[uint16]device.ToolType{
	goevdev.BTN_TOOL_PEN:      device.ToolPen,
	goevdev.BTN_TOOL_RUBBER:   device.ToolEraser,
	goevdev.BTN_TOOL_BRUSH:    device.ToolBrush,
	goevdev.BTN_TOOL_PENCIL:   device.ToolPencil,
	goevdev.BTN_TOOL_AIRBRUSH: device.ToolAirbrush,
	goevdev.BTN_TOOL_MOUSE:    device.ToolMouse,
	goevdev.BTN_TOOL_LENS:     device.ToolLens,
}

// tabletTranslator tracks the tool in proximity and reports its axes. Within
// one batch events go out as proximity in, axes, tip, buttons, proximity out.
type tabletTranslator struct {
	dev *device.Device
	abs map[uint16]AbsInfo

	tool    device.Tool
	inProx  bool
	serial  uint64
	values  map[uint16]int32
	tipDown bool
}

func newTabletTranslator(dev *device.Device, abs map[uint16]AbsInfo) *tabletTranslator {
	t := &tabletTranslator{dev: dev, abs: abs, values: make(map[uint16]int32)}
	for axis, info := range abs {
		t.values[axis] = info.Value
	}
	return t
}

func (t *tabletTranslator) norm(axis uint16) float64 {
	return t.abs[axis].Normalize(t.values[axis])
}

// tilt returns degrees from the vertical.
func (t *tabletTranslator) tilt(axis uint16) float64 {
	info := t.abs[axis]
	v := t.values[axis]
	if info.Resolution > 0 {
		return float64(v) / float64(info.Resolution) * 180 / math.Pi
	}
	span := float64(info.Maximum) - float64(info.Minimum)
	if span <= 0 {
		return 0
	}
	return ((float64(v)-float64(info.Minimum))/span*2 - 1) * 64
}

func (t *tabletTranslator) Translate(batch []goevdev.InputEvent) {
	ts := batchTime(batch)
	ev := &t.dev.Tablet

	var (
		proxIn, proxOut bool
		newTool         device.ToolType
		updated         device.AxisMask
		tipChanged      bool
		tipDown         = t.tipDown
		wheel           float64
		buttons         []device.TabletButtonEvent
	)

	for _, e := range batch {
		switch e.Type {
		case goevdev.EV_KEY:
			if typ, ok := toolCodes[e.Code]; ok {
				if e.Value != 0 {
					proxIn = true
					newTool = typ
				} else {
					proxOut = true
				}
				continue
			}
			switch e.Code {
			case goevdev.BTN_TOUCH:
				tipDown = e.Value != 0
				tipChanged = tipDown != t.tipDown
			case goevdev.BTN_STYLUS, goevdev.BTN_STYLUS2:
				buttons = append(buttons, device.TabletButtonEvent{
					TimeMsec: ts, Button: uint32(e.Code), State: buttonState(e.Value),
				})
			default:
				if isPointerButton(e.Code) {
					buttons = append(buttons, device.TabletButtonEvent{
						TimeMsec: ts, Button: uint32(e.Code), State: buttonState(e.Value),
					})
				}
			}
		case goevdev.EV_ABS:
			t.values[e.Code] = e.Value
			switch e.Code {
			case goevdev.ABS_X:
				updated |= device.AxisX
			case goevdev.ABS_Y:
				updated |= device.AxisY
			case goevdev.ABS_PRESSURE:
				updated |= device.AxisPressure
			case goevdev.ABS_DISTANCE:
				updated |= device.AxisDistance
			case goevdev.ABS_TILT_X:
				updated |= device.AxisTiltX
			case goevdev.ABS_TILT_Y:
				updated |= device.AxisTiltY
			case goevdev.ABS_Z:
				updated |= device.AxisRotation
			case goevdev.ABS_WHEEL:
				updated |= device.AxisSlider
			}
		case goevdev.EV_REL:
			if e.Code == goevdev.REL_WHEEL {
				wheel += -float64(e.Value) * wheelStep
				updated |= device.AxisWheel
			}
		case goevdev.EV_MSC:
			if e.Code == goevdev.MSC_SERIAL {
				t.serial = uint64(uint32(e.Value))
			}
		}
	}

	if proxIn && !t.inProx {
		t.tool = device.Tool{Type: newTool, Serial: t.serial}
		t.inProx = true
		ev.Proximity.Emit(device.TabletProximityEvent{
			TimeMsec: ts, Tool: t.tool, X: t.norm(goevdev.ABS_X), Y: t.norm(goevdev.ABS_Y), State: device.ProximityIn,
		})
		// Axis state was reported with the proximity event.
		updated &^= device.AxisX | device.AxisY
	}
	if !t.inProx {
		return
	}

	if updated != 0 {
		ev.Axis.Emit(device.TabletAxisEvent{
			TimeMsec:   ts,
			Tool:       t.tool,
			Updated:    updated,
			X:          t.norm(goevdev.ABS_X),
			Y:          t.norm(goevdev.ABS_Y),
			Pressure:   t.norm(goevdev.ABS_PRESSURE),
			Distance:   t.norm(goevdev.ABS_DISTANCE),
			TiltX:      t.tilt(goevdev.ABS_TILT_X),
			TiltY:      t.tilt(goevdev.ABS_TILT_Y),
			Rotation:   t.norm(goevdev.ABS_Z) * 360,
			Slider:     t.norm(goevdev.ABS_WHEEL)*2 - 1,
			WheelDelta: wheel,
		})
	}
	if tipChanged && tipDown {
		t.emitTip(ts, device.TipDown)
	}
	for _, b := range buttons {
		b.Tool = t.tool
		ev.Button.Emit(b)
	}
	if tipChanged && !tipDown {
		t.emitTip(ts, device.TipUp)
	}
	t.tipDown = tipDown

	if proxOut {
		if t.tipDown {
			t.emitTip(ts, device.TipUp)
			t.tipDown = false
		}
		ev.Proximity.Emit(device.TabletProximityEvent{
			TimeMsec: ts, Tool: t.tool, X: t.norm(goevdev.ABS_X), Y: t.norm(goevdev.ABS_Y), State: device.ProximityOut,
		})
		t.inProx = false
		t.serial = 0
	}
}

func (t *tabletTranslator) emitTip(ts uint32, state device.TipState) {
	t.dev.Tablet.Tip.Emit(device.TabletTipEvent{
		TimeMsec: ts, Tool: t.tool, X: t.norm(goevdev.ABS_X), Y: t.norm(goevdev.ABS_Y), State: state,
	})
}
