package seat

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/waycursor/internal/clock"
	"github.com/bnema/waycursor/internal/cursor"
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/scene"
)

// ToolMode is how a tablet tool moves the cursor.
type ToolMode int

const (
	// ToolModeAbsolute maps the tool position on the tablet onto the layout.
	ToolModeAbsolute ToolMode = iota
	// ToolModeRelative moves the cursor by the tool's deltas, like a mouse.
	ToolModeRelative
)

func (m ToolMode) String() string {
	if m == ToolModeRelative {
		return "relative"
	}
	return "absolute"
}

// ParseToolMode parses "absolute" or "relative".
func ParseToolMode(s string) (ToolMode, error) {
	switch strings.ToLower(s) {
	case "absolute":
		return ToolModeAbsolute, nil
	case "relative":
		return ToolModeRelative, nil
	default:
		return 0, fmt.Errorf("invalid tool mode %q", s)
	}
}

// TouchHandoff selects which contact the seat tracks as its touch point.
type TouchHandoff int

const (
	// HandoffTouchDown tracks the contact that most recently went down.
	HandoffTouchDown TouchHandoff = iota
	// HandoffAnyActivity also moves tracking to a contact that moves.
	HandoffAnyActivity
)

// ParseTouchHandoff parses "touch_down" or "any_activity".
func ParseTouchHandoff(s string) (TouchHandoff, error) {
	switch s {
	case "", "touch_down":
		return HandoffTouchDown, nil
	case "any_activity":
		return HandoffAnyActivity, nil
	default:
		return 0, fmt.Errorf("invalid touch handoff %q", s)
	}
}

// InputConfig is the per-device configuration.
type InputConfig struct {
	// MapToOutput restricts an absolute device to the named output.
	MapToOutput string
	// MapFromRegion selects the part of the device mapped to its target.
	MapFromRegion *geometry.CalibrationRegion
	// ToolModes overrides the positioning mode per tool type.
	ToolModes map[device.ToolType]ToolMode
}

// Focus answers questions about keyboard state the seat does not own.
type Focus interface {
	// KeyboardFocus returns the surface with keyboard focus, or nil.
	KeyboardFocus() *scene.Surface
	// FloatingModifierHeld reports whether the window-move modifier is down.
	FloatingModifierHeld() bool
}

// IdleNotifier is told about user activity, for instance to postpone
// screen blanking.
type IdleNotifier interface {
	NotifyActivity(source cursor.ActivitySource)
}

// Options configure a seat. Layout, Scene and Policy are required.
type Options struct {
	Name   string
	Layout *geometry.Layout
	Scene  scene.HitTester
	Policy dispatch.Policy

	Focus Focus
	Clock clock.Clock
	Idle  IdleNotifier
	// NewTimer creates timers running on the event loop. Without it the
	// cursor never auto-hides.
	NewTimer func(fire func()) cursor.Timer

	HideTimeout    time.Duration
	AllowConstrain bool
	TouchHandoff   TouchHandoff
	// MaxTouchPoints caps concurrent contacts per touch device; 0 means 10.
	MaxTouchPoints int
	DefaultCursor  string

	// InputConfig returns the configuration for a device, or nil.
	InputConfig func(dev *device.Device) *InputConfig
}

type noFocus struct{}

func (noFocus) KeyboardFocus() *scene.Surface { return nil }
func (noFocus) FloatingModifierHeld() bool    { return false }
