package evdev

import (
	"strings"

	goevdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/waycursor/internal/device"
)

// Capabilities maps event types to the codes a device reports, like
// InputDevice.CapabilitiesFlat.
type Capabilities map[int][]int

func (c Capabilities) has(evType, code int) bool {
	for _, v := range c[evType] {
		if v == code {
			return true
		}
	}
	return false
}

func (c Capabilities) hasRange(evType, lo, hi int) bool {
	for _, v := range c[evType] {
		if v >= lo && v <= hi {
			return true
		}
	}
	return false
}

// Classify decides which seat device class a kernel device belongs to.
// Touchpads count as pointers; they are translated to relative motion.
func Classify(name string, caps Capabilities) (device.Class, bool) {
	absXY := caps.has(goevdev.EV_ABS, goevdev.ABS_X) && caps.has(goevdev.EV_ABS, goevdev.ABS_Y)
	mtXY := caps.has(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_X) && caps.has(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_Y)
	relXY := caps.has(goevdev.EV_REL, goevdev.REL_X) && caps.has(goevdev.EV_REL, goevdev.REL_Y)
	finger := caps.has(goevdev.EV_KEY, goevdev.BTN_TOOL_FINGER)

	switch {
	case absXY && (caps.has(goevdev.EV_KEY, goevdev.BTN_TOOL_PEN) || caps.has(goevdev.EV_KEY, goevdev.BTN_STYLUS)):
		return device.ClassTabletTool, true
	case (mtXY || absXY) && finger:
		return device.ClassPointer, true
	case mtXY || (absXY && caps.has(goevdev.EV_KEY, goevdev.BTN_TOUCH)):
		return device.ClassTouch, true
	case relXY && caps.hasRange(goevdev.EV_KEY, goevdev.BTN_MOUSE, goevdev.BTN_TASK):
		return device.ClassPointer, true
	case absXY && caps.has(goevdev.EV_KEY, goevdev.BTN_LEFT):
		// Absolute pointers, as emulated by virtual machines.
		return device.ClassPointer, true
	case caps.hasRange(goevdev.EV_KEY, goevdev.KEY_Q, goevdev.KEY_P) && !isSpecialKeyboard(name):
		return device.ClassKeyboard, true
	}
	return 0, false
}

// isSpecialKeyboard filters power and lid buttons that advertise a few keys.
func isSpecialKeyboard(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range []string{"power", "video", "sleep", "button"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// isTouchpad reports whether an absolute pointer reports finger tools.
func isTouchpad(caps Capabilities) bool {
	return caps.has(goevdev.EV_KEY, goevdev.BTN_TOOL_FINGER)
}

// isAbsolutePointer reports whether a pointer positions itself absolutely.
func isAbsolutePointer(caps Capabilities) bool {
	return !isTouchpad(caps) && caps.has(goevdev.EV_ABS, goevdev.ABS_X)
}
