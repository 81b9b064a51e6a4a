package device

import (
	"fmt"

	"github.com/bnema/waycursor/internal/signal"
)

// TabletEvents are the signals of a tablet. Every event names the tool that
// produced it.
type TabletEvents struct {
	Axis      signal.Signal[TabletAxisEvent]
	Tip       signal.Signal[TabletTipEvent]
	Proximity signal.Signal[TabletProximityEvent]
	Button    signal.Signal[TabletButtonEvent]
}

// ToolType is the physical kind of a tablet tool.
type ToolType uint8

const (
	ToolPen ToolType = iota + 1
	ToolEraser
	ToolBrush
	ToolPencil
	ToolAirbrush
	ToolMouse
	ToolLens
	ToolTotem
)

var toolTypeNames = map[ToolType]string{
	ToolPen:      "pen",
	ToolEraser:   "eraser",
	ToolBrush:    "brush",
	ToolPencil:   "pencil",
	ToolAirbrush: "airbrush",
	ToolMouse:    "mouse",
	ToolLens:     "lens",
	ToolTotem:    "totem",
}

func (t ToolType) String() string {
	if name, ok := toolTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", uint8(t))
}

// ParseToolType maps a tool name such as "pen" to its type.
func ParseToolType(name string) (ToolType, bool) {
	for t, n := range toolTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Tool identifies one physical tool. Serial and ID are zero when the
// hardware does not report them, in which case all tools of a type share
// state.
type Tool struct {
	Type   ToolType
	Serial uint64
	ID     uint64
}

// ToolKey indexes per-tool state.
type ToolKey = Tool

func (t Tool) String() string {
	if t.Serial == 0 {
		return t.Type.String()
	}
	return fmt.Sprintf("%s#%x", t.Type, t.Serial)
}

// AxisMask flags which fields of a TabletAxisEvent carry new values.
type AxisMask uint32

const (
	AxisX AxisMask = 1 << iota
	AxisY
	AxisDistance
	AxisPressure
	AxisTiltX
	AxisTiltY
	AxisRotation
	AxisSlider
	AxisWheel
)

// Has reports whether every bit of other is set.
func (m AxisMask) Has(other AxisMask) bool {
	return m&other == other
}

// Any reports whether at least one bit of other is set.
func (m AxisMask) Any(other AxisMask) bool {
	return m&other != 0
}

// TabletAxisEvent reports new axis values. X and Y are normalized;
// DX and DY are the relative motion in layout pixels.
type TabletAxisEvent struct {
	TimeMsec   uint32
	Tool       Tool
	Updated    AxisMask
	X, Y       float64
	DX, DY     float64
	Pressure   float64
	Distance   float64
	TiltX      float64
	TiltY      float64
	Rotation   float64
	Slider     float64
	WheelDelta float64
}

// TipState is whether the tool touches the tablet surface.
type TipState uint8

const (
	TipUp TipState = iota
	TipDown
)

func (s TipState) String() string {
	if s == TipDown {
		return "down"
	}
	return "up"
}

// TabletTipEvent reports contact changes.
type TabletTipEvent struct {
	TimeMsec uint32
	Tool     Tool
	X, Y     float64
	State    TipState
}

// ProximityState is whether the tool is within sensing range.
type ProximityState uint8

const (
	ProximityOut ProximityState = iota
	ProximityIn
)

func (s ProximityState) String() string {
	if s == ProximityIn {
		return "in"
	}
	return "out"
}

// TabletProximityEvent reports a tool entering or leaving sensing range.
type TabletProximityEvent struct {
	TimeMsec uint32
	Tool     Tool
	X, Y     float64
	State    ProximityState
}

// TabletButtonEvent is a press or release of a button on the tool.
type TabletButtonEvent struct {
	TimeMsec uint32
	Tool     Tool
	Button   uint32
	State    ButtonState
}
