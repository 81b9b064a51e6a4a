// Package dispatch is the single exit point of the input core. Every
// normalized event passes through a Funnel on its way to the interaction
// policy.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/scene"
)

// Kind identifies an event type.
type Kind int

const (
	Motion Kind = iota
	Button
	Axis
	Frame
	Gesture
	TouchDown
	TouchUp
	TouchMotion
	TouchCancel
	TouchFrame
	TabletMotion
	TabletTip
	TabletButton
	TabletProximity
	TabletAxis
)

var kindNames = [...]string{
	Motion:          "motion",
	Button:          "button",
	Axis:            "axis",
	Frame:           "frame",
	Gesture:         "gesture",
	TouchDown:       "touch_down",
	TouchUp:         "touch_up",
	TouchMotion:     "touch_motion",
	TouchCancel:     "touch_cancel",
	TouchFrame:      "touch_frame",
	TabletMotion:    "tablet_motion",
	TabletTip:       "tablet_tip",
	TabletButton:    "tablet_button",
	TabletProximity: "tablet_proximity",
	TabletAxis:      "tablet_axis",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ToolAxes are the non-positional values of a tablet tool.
type ToolAxes struct {
	Updated    device.AxisMask
	Pressure   float64
	Distance   float64
	TiltX      float64
	TiltY      float64
	Rotation   float64
	Slider     float64
	WheelDelta float64
}

// Event is a normalized input event. Only the fields relevant to Kind are
// set.
type Event struct {
	Kind     Kind
	TimeMsec uint32
	// Seq numbers the events of one device in arrival order, starting at 1.
	Seq    uint64
	Device *device.Device
	// Emulated marks pointer events synthesized on behalf of a touch
	// contact or tablet tool.
	Emulated bool

	// Cursor position in layout space after the event.
	X, Y float64
	// Motion deltas in layout pixels.
	DX, DY               float64
	UnaccelDX, UnaccelDY float64

	Button uint32
	State  device.ButtonState

	Axis    device.AxisEvent
	Gesture device.GestureEvent

	TouchID int32

	Tool      device.Tool
	Tip       device.TipState
	Proximity device.ProximityState
	Axes      ToolAxes

	// Surface under the event position, with surface-local coordinates.
	Surface *scene.Surface
	SX, SY  float64
}

func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%8d %-16s", e.TimeMsec, e.Kind)
	if e.Device != nil {
		fmt.Fprintf(&b, " dev=%q", e.Device.Name)
	}

	switch e.Kind {
	case Motion:
		fmt.Fprintf(&b, " pos=(%.2f,%.2f) delta=(%.2f,%.2f)", e.X, e.Y, e.DX, e.DY)
	case Button:
		fmt.Fprintf(&b, " %s %s", device.ButtonName(e.Button), e.State)
	case Axis:
		fmt.Fprintf(&b, " %s delta=%.2f discrete=%d", e.Axis.Orientation, e.Axis.Delta, e.Axis.DeltaDiscrete)
	case Gesture:
		fmt.Fprintf(&b, " %s %s fingers=%d", e.Gesture.Kind, e.Gesture.Phase, e.Gesture.Fingers)
	case TouchDown, TouchMotion:
		fmt.Fprintf(&b, " id=%d pos=(%.2f,%.2f)", e.TouchID, e.X, e.Y)
	case TouchUp, TouchCancel:
		fmt.Fprintf(&b, " id=%d", e.TouchID)
	case TabletMotion:
		fmt.Fprintf(&b, " tool=%s pos=(%.2f,%.2f)", e.Tool, e.X, e.Y)
	case TabletTip:
		fmt.Fprintf(&b, " tool=%s tip=%s", e.Tool, e.Tip)
	case TabletButton:
		fmt.Fprintf(&b, " tool=%s %s %s", e.Tool, device.ButtonName(e.Button), e.State)
	case TabletProximity:
		fmt.Fprintf(&b, " tool=%s %s", e.Tool, e.Proximity)
	case TabletAxis:
		fmt.Fprintf(&b, " tool=%s pressure=%.3f tilt=(%.1f,%.1f)", e.Tool, e.Axes.Pressure, e.Axes.TiltX, e.Axes.TiltY)
	}

	if e.Emulated {
		b.WriteString(" emulated")
	}
	if e.Surface != nil {
		fmt.Fprintf(&b, " surface=%d local=(%.2f,%.2f)", e.Surface.ID, e.SX, e.SY)
	}
	return b.String()
}
