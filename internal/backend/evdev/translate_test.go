package evdev

import (
	"fmt"
	"syscall"
	"testing"

	goevdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/waycursor/internal/device"
)

func ev(typ, code int, value int32) goevdev.InputEvent {
	return goevdev.InputEvent{
		Time:  syscall.Timeval{Sec: 12, Usec: 345000},
		Type:  uint16(typ),
		Code:  uint16(code),
		Value: value,
	}
}

func batch(events ...goevdev.InputEvent) []goevdev.InputEvent {
	return append(events, ev(goevdev.EV_SYN, goevdev.SYN_REPORT, 0))
}

// trace records every signal of a device as a short string.
type trace struct {
	lines []string
	last  any
}

func (tr *trace) add(format string, args ...any) {
	tr.lines = append(tr.lines, fmt.Sprintf(format, args...))
}

func watch(dev *device.Device) *trace {
	tr := &trace{}
	p := &dev.Pointer
	p.Motion.Subscribe(func(e device.MotionEvent) { tr.add("motion %v %v", e.DX, e.DY); tr.last = e })
	p.MotionAbsolute.Subscribe(func(e device.MotionAbsoluteEvent) { tr.add("absolute %.3f %.3f", e.X, e.Y) })
	p.Button.Subscribe(func(e device.ButtonEvent) { tr.add("button %s %s", device.ButtonName(e.Button), e.State) })
	p.Axis.Subscribe(func(e device.AxisEvent) { tr.add("axis %s %v %d", e.Orientation, e.Delta, e.DeltaDiscrete) })
	p.Frame.Subscribe(func(e device.FrameEvent) { tr.add("frame") })
	p.Gesture.Subscribe(func(e device.GestureEvent) { tr.add("gesture %s %s %d", e.Kind, e.Phase, e.Fingers) })

	tc := &dev.Touch
	tc.Down.Subscribe(func(e device.TouchDownEvent) { tr.add("down %d %.2f %.2f", e.TouchID, e.X, e.Y) })
	tc.Motion.Subscribe(func(e device.TouchMotionEvent) { tr.add("touch-motion %d %.2f %.2f", e.TouchID, e.X, e.Y) })
	tc.Up.Subscribe(func(e device.TouchUpEvent) { tr.add("up %d", e.TouchID) })
	tc.Cancel.Subscribe(func(e device.TouchCancelEvent) { tr.add("cancel %d", e.TouchID) })
	tc.Frame.Subscribe(func(e device.FrameEvent) { tr.add("touch-frame") })

	tb := &dev.Tablet
	tb.Proximity.Subscribe(func(e device.TabletProximityEvent) { tr.add("proximity %s %s", e.Tool, e.State); tr.last = e })
	tb.Axis.Subscribe(func(e device.TabletAxisEvent) { tr.add("tablet-axis %b", e.Updated); tr.last = e })
	tb.Tip.Subscribe(func(e device.TabletTipEvent) { tr.add("tip %s", e.State) })
	tb.Button.Subscribe(func(e device.TabletButtonEvent) { tr.add("tablet-button %s %s", device.ButtonName(e.Button), e.State) })
	return tr
}

func TestPointerTranslator(t *testing.T) {
	dev := device.New("mouse", device.ClassPointer)
	caps := Capabilities{
		goevdev.EV_REL: {goevdev.REL_X, goevdev.REL_Y, goevdev.REL_WHEEL, goevdev.REL_HWHEEL},
		goevdev.EV_KEY: {goevdev.BTN_LEFT},
	}
	tr := watch(dev)
	tl := NewTranslator(dev, caps, nil)

	tl.Translate(batch(
		ev(goevdev.EV_REL, goevdev.REL_X, 3),
		ev(goevdev.EV_REL, goevdev.REL_Y, -2),
		ev(goevdev.EV_REL, goevdev.REL_X, 1),
		ev(goevdev.EV_KEY, goevdev.BTN_LEFT, 1),
	))
	tl.Translate(batch(ev(goevdev.EV_REL, goevdev.REL_WHEEL, 1)))
	tl.Translate(batch(ev(goevdev.EV_REL, goevdev.REL_HWHEEL, -2)))
	tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_LEFT, 2)))
	tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_LEFT, 0)))

	assert.Equal(t, []string{
		"motion 4 -2", "button BTN_LEFT pressed", "frame",
		"axis vertical -15 -1", "frame",
		"axis horizontal -30 -2", "frame",
		"button BTN_LEFT released", "frame",
	}, tr.lines)
}

func TestPointerTranslatorTimestamp(t *testing.T) {
	dev := device.New("mouse", device.ClassPointer)
	tr := watch(dev)
	NewTranslator(dev, Capabilities{}, nil).Translate(batch(ev(goevdev.EV_REL, goevdev.REL_X, 1)))

	motion, ok := tr.last.(device.MotionEvent)
	require.True(t, ok)
	assert.Equal(t, uint32(12345), motion.TimeMsec)
	assert.Equal(t, 1.0, motion.UnaccelDX)
}

func TestAbsolutePointerTranslator(t *testing.T) {
	dev := device.New("QEMU tablet", device.ClassPointer)
	caps := Capabilities{
		goevdev.EV_ABS: {goevdev.ABS_X, goevdev.ABS_Y},
		goevdev.EV_KEY: {goevdev.BTN_LEFT},
	}
	abs := map[uint16]AbsInfo{
		goevdev.ABS_X: {Maximum: 32767},
		goevdev.ABS_Y: {Maximum: 32767},
	}
	tr := watch(dev)
	tl := NewTranslator(dev, caps, abs)

	tl.Translate(batch(ev(goevdev.EV_ABS, goevdev.ABS_X, 16384), ev(goevdev.EV_ABS, goevdev.ABS_Y, 8192)))
	tl.Translate(batch(ev(goevdev.EV_ABS, goevdev.ABS_Y, 0)))

	assert.Equal(t, []string{"absolute 0.500 0.250", "frame", "absolute 0.500 0.000", "frame"}, tr.lines)
}

func TestTouchpadTranslator(t *testing.T) {
	dev := device.New("touchpad", device.ClassPointer)
	caps := Capabilities{
		goevdev.EV_ABS: {goevdev.ABS_X, goevdev.ABS_Y},
		goevdev.EV_KEY: {goevdev.BTN_TOUCH, goevdev.BTN_TOOL_FINGER, goevdev.BTN_LEFT},
	}
	abs := map[uint16]AbsInfo{
		goevdev.ABS_X: {Maximum: 1000, Resolution: 10},
		goevdev.ABS_Y: {Maximum: 1000, Resolution: 10},
	}
	tr := watch(dev)
	tl := NewTranslator(dev, caps, abs)

	t.Run("first contact does not move", func(t *testing.T) {
		tl.Translate(batch(
			ev(goevdev.EV_KEY, goevdev.BTN_TOUCH, 1),
			ev(goevdev.EV_KEY, goevdev.BTN_TOOL_FINGER, 1),
			ev(goevdev.EV_ABS, goevdev.ABS_X, 100),
			ev(goevdev.EV_ABS, goevdev.ABS_Y, 100),
		))
		assert.Empty(t, tr.lines)
	})

	t.Run("finger travel becomes motion", func(t *testing.T) {
		tl.Translate(batch(ev(goevdev.EV_ABS, goevdev.ABS_X, 110)))
		// 10 units at 10 units/mm is 1mm.
		assert.Equal(t, []string{"motion 4 0", "frame"}, tr.lines)
		tr.lines = nil
	})

	t.Run("two fingers scroll", func(t *testing.T) {
		tl.Translate(batch(
			ev(goevdev.EV_KEY, goevdev.BTN_TOOL_FINGER, 0),
			ev(goevdev.EV_KEY, goevdev.BTN_TOOL_DOUBLETAP, 1),
			ev(goevdev.EV_ABS, goevdev.ABS_Y, 120),
		))
		assert.Equal(t, []string{"axis vertical 8 0", "frame"}, tr.lines)
		tr.lines = nil
	})

	t.Run("three fingers swipe", func(t *testing.T) {
		tl.Translate(batch(
			ev(goevdev.EV_KEY, goevdev.BTN_TOOL_DOUBLETAP, 0),
			ev(goevdev.EV_KEY, goevdev.BTN_TOOL_TRIPLETAP, 1),
			ev(goevdev.EV_ABS, goevdev.ABS_X, 130),
		))
		tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_TOUCH, 0)))
		assert.Equal(t, []string{
			"gesture swipe begin 3", "gesture swipe update 3", "frame",
			"gesture swipe end 3", "frame",
		}, tr.lines)
	})
}

func TestTouchTranslatorProtocolB(t *testing.T) {
	dev := device.New("touchscreen", device.ClassTouch)
	caps := Capabilities{
		goevdev.EV_ABS: {goevdev.ABS_MT_SLOT, goevdev.ABS_MT_TRACKING_ID, goevdev.ABS_MT_POSITION_X, goevdev.ABS_MT_POSITION_Y},
	}
	abs := map[uint16]AbsInfo{
		goevdev.ABS_MT_SLOT:       {Maximum: 4},
		goevdev.ABS_MT_POSITION_X: {Maximum: 99},
		goevdev.ABS_MT_POSITION_Y: {Maximum: 199},
	}
	tr := watch(dev)
	tl := NewTranslator(dev, caps, abs)

	tl.Translate(batch(
		ev(goevdev.EV_ABS, goevdev.ABS_MT_SLOT, 0),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_TRACKING_ID, 40),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_X, 50),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_Y, 100),
	))
	tl.Translate(batch(
		ev(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_X, 25),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_SLOT, 3),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_TRACKING_ID, 41),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_X, 0),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_Y, 0),
	))
	tl.Translate(batch(
		ev(goevdev.EV_ABS, goevdev.ABS_MT_SLOT, 0),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_TRACKING_ID, -1),
	))
	// Slots beyond the advertised range are ignored.
	tl.Translate(batch(
		ev(goevdev.EV_ABS, goevdev.ABS_MT_SLOT, 9),
		ev(goevdev.EV_ABS, goevdev.ABS_MT_TRACKING_ID, 50),
	))

	assert.Equal(t, []string{
		"down 0 0.50 0.50", "touch-frame",
		"touch-motion 0 0.25 0.50", "down 3 0.00 0.00", "touch-frame",
		"up 0", "touch-frame",
	}, tr.lines)

	tr.lines = nil
	tl.(*touchTranslator).Cancel(99)
	assert.Equal(t, []string{"cancel 3", "touch-frame"}, tr.lines)
}

func TestTouchTranslatorSingleTouch(t *testing.T) {
	dev := device.New("resistive", device.ClassTouch)
	caps := Capabilities{
		goevdev.EV_ABS: {goevdev.ABS_X, goevdev.ABS_Y},
		goevdev.EV_KEY: {goevdev.BTN_TOUCH},
	}
	abs := map[uint16]AbsInfo{
		goevdev.ABS_X: {Maximum: 9},
		goevdev.ABS_Y: {Maximum: 9},
	}
	tr := watch(dev)
	tl := NewTranslator(dev, caps, abs)

	tl.Translate(batch(
		ev(goevdev.EV_ABS, goevdev.ABS_X, 5),
		ev(goevdev.EV_ABS, goevdev.ABS_Y, 5),
		ev(goevdev.EV_KEY, goevdev.BTN_TOUCH, 1),
	))
	tl.Translate(batch(ev(goevdev.EV_ABS, goevdev.ABS_X, 0)))
	tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_TOUCH, 0)))
	// Motion without contact is not reported.
	tl.Translate(batch(ev(goevdev.EV_ABS, goevdev.ABS_X, 3)))

	assert.Equal(t, []string{
		"down 0 0.50 0.50", "touch-frame",
		"touch-motion 0 0.00 0.50", "touch-frame",
		"up 0", "touch-frame",
	}, tr.lines)
}

func TestTabletTranslator(t *testing.T) {
	dev := device.New("pen", device.ClassTabletTool)
	abs := map[uint16]AbsInfo{
		goevdev.ABS_X:        {Maximum: 999},
		goevdev.ABS_Y:        {Maximum: 499},
		goevdev.ABS_PRESSURE: {Maximum: 1023},
	}
	tr := watch(dev)
	tl := NewTranslator(dev, Capabilities{}, abs)

	t.Run("events before proximity are dropped", func(t *testing.T) {
		tl.Translate(batch(ev(goevdev.EV_ABS, goevdev.ABS_X, 10)))
		assert.Empty(t, tr.lines)
	})

	t.Run("stroke", func(t *testing.T) {
		tl.Translate(batch(
			ev(goevdev.EV_KEY, goevdev.BTN_TOOL_PEN, 1),
			ev(goevdev.EV_MSC, goevdev.MSC_SERIAL, 0xbeef),
			ev(goevdev.EV_ABS, goevdev.ABS_X, 500),
			ev(goevdev.EV_ABS, goevdev.ABS_Y, 250),
		))
		prox, ok := tr.last.(device.TabletProximityEvent)
		require.True(t, ok)
		assert.Equal(t, device.Tool{Type: device.ToolPen, Serial: 0xbeef}, prox.Tool)
		assert.Equal(t, 0.5, prox.X)

		tl.Translate(batch(
			ev(goevdev.EV_ABS, goevdev.ABS_PRESSURE, 512),
			ev(goevdev.EV_KEY, goevdev.BTN_TOUCH, 1),
		))
		axis, ok := tr.last.(device.TabletAxisEvent)
		require.True(t, ok)
		assert.Equal(t, device.AxisPressure, axis.Updated)
		assert.Equal(t, 0.5, axis.Pressure)

		tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_STYLUS, 1)))
		tl.Translate(batch(
			ev(goevdev.EV_KEY, goevdev.BTN_STYLUS, 0),
			ev(goevdev.EV_KEY, goevdev.BTN_TOUCH, 0),
		))
		tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_TOOL_PEN, 0)))

		assert.Equal(t, []string{
			"proximity pen#beef in",
			fmt.Sprintf("tablet-axis %b", device.AxisPressure), "tip down",
			"tablet-button BTN_STYLUS pressed",
			"tablet-button BTN_STYLUS released", "tip up",
			"proximity pen#beef out",
		}, tr.lines)
	})

	t.Run("leaving proximity with the tip down lifts it", func(t *testing.T) {
		tr.lines = nil
		tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_TOOL_RUBBER, 1), ev(goevdev.EV_KEY, goevdev.BTN_TOUCH, 1)))
		tl.Translate(batch(ev(goevdev.EV_KEY, goevdev.BTN_TOOL_RUBBER, 0)))
		assert.Equal(t, []string{"proximity eraser in", "tip down", "tip up", "proximity eraser out"}, tr.lines)
	})
}
