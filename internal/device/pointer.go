package device

import "github.com/bnema/waycursor/internal/signal"

// PointerEvents are the signals of a pointer device.
type PointerEvents struct {
	Motion         signal.Signal[MotionEvent]
	MotionAbsolute signal.Signal[MotionAbsoluteEvent]
	Button         signal.Signal[ButtonEvent]
	Axis           signal.Signal[AxisEvent]
	Frame          signal.Signal[FrameEvent]
	Gesture        signal.Signal[GestureEvent]
}

// MotionEvent is relative motion in layout pixels.
type MotionEvent struct {
	TimeMsec  uint32
	DX, DY    float64
	UnaccelDX float64
	UnaccelDY float64
}

// MotionAbsoluteEvent carries a position normalized to [0, 1] on both axes.
type MotionAbsoluteEvent struct {
	TimeMsec uint32
	X, Y     float64
}

// ButtonEvent is a press or release of a linux input button code.
type ButtonEvent struct {
	TimeMsec uint32
	Button   uint32
	State    ButtonState
}

// AxisSource says what produced a scroll event.
type AxisSource uint8

const (
	AxisSourceWheel AxisSource = iota
	AxisSourceFinger
	AxisSourceContinuous
	AxisSourceWheelTilt
)

// Orientation of a scroll axis.
type Orientation uint8

const (
	OrientationVertical Orientation = iota
	OrientationHorizontal
)

func (o Orientation) String() string {
	if o == OrientationHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// AxisEvent is one scroll step.
type AxisEvent struct {
	TimeMsec      uint32
	Source        AxisSource
	Orientation   Orientation
	Delta         float64
	DeltaDiscrete int32
}

// GestureKind identifies a touchpad gesture.
type GestureKind uint8

const (
	GestureHold GestureKind = iota
	GesturePinch
	GestureSwipe
)

func (k GestureKind) String() string {
	switch k {
	case GestureHold:
		return "hold"
	case GesturePinch:
		return "pinch"
	default:
		return "swipe"
	}
}

// GesturePhase is the stage of a gesture.
type GesturePhase uint8

const (
	GestureBegin GesturePhase = iota
	GestureUpdate
	GestureEnd
)

func (p GesturePhase) String() string {
	switch p {
	case GestureBegin:
		return "begin"
	case GestureUpdate:
		return "update"
	default:
		return "end"
	}
}

// GestureEvent is passed through untouched; holds only use Fingers and
// Cancelled, swipes add DX/DY and pinches add Scale and Rotation.
type GestureEvent struct {
	TimeMsec  uint32
	Kind      GestureKind
	Phase     GesturePhase
	Fingers   uint32
	DX, DY    float64
	Scale     float64
	Rotation  float64
	Cancelled bool
}
