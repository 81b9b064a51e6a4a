package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"
)

// ErrUnknownButton is returned when a button name cannot be resolved.
var ErrUnknownButton = errors.New("unknown mouse button")

// Scroll directions bound as buttons live just above the last kernel key
// code so they can never collide with a real button.
const (
	ScrollUp uint32 = evdev.KEY_MAX + 1 + iota
	ScrollDown
	ScrollLeft
	ScrollRight
)

// Common button codes.
const (
	BtnLeft   uint32 = evdev.BTN_LEFT
	BtnRight  uint32 = evdev.BTN_RIGHT
	BtnMiddle uint32 = evdev.BTN_MIDDLE
	BtnSide   uint32 = evdev.BTN_SIDE
	BtnExtra  uint32 = evdev.BTN_EXTRA

	BtnStylus  uint32 = evdev.BTN_STYLUS
	BtnStylus2 uint32 = evdev.BTN_STYLUS2
)

// x11Buttons maps the X11 style button1..button9 names.
var x11Buttons = [9]uint32{
	BtnLeft, BtnMiddle, BtnRight,
	ScrollUp, ScrollDown, ScrollLeft, ScrollRight,
	BtnSide, BtnExtra,
}

var scrollNames = map[uint32]string{
	ScrollUp:    "SCROLL_UP",
	ScrollDown:  "SCROLL_DOWN",
	ScrollLeft:  "SCROLL_LEFT",
	ScrollRight: "SCROLL_RIGHT",
}

// Mouse buttons whose codes carry several names in the kernel headers get
// their usual name here.
var mouseButtonNames = map[uint32]string{
	BtnLeft:           "BTN_LEFT",
	BtnRight:          "BTN_RIGHT",
	BtnMiddle:         "BTN_MIDDLE",
	BtnSide:           "BTN_SIDE",
	BtnExtra:          "BTN_EXTRA",
	evdev.BTN_FORWARD: "BTN_FORWARD",
	evdev.BTN_BACK:    "BTN_BACK",
	evdev.BTN_TASK:    "BTN_TASK",
}

// ParseButton resolves a mouse button given as "button1".."button9", as a
// BTN_* event code name, or as a decimal event code.
func ParseButton(name string) (uint32, error) {
	if len(name) >= len("button") && strings.EqualFold(name[:len("button")], "button") {
		rest := name[len("button"):]
		if len(rest) != 1 || rest[0] < '1' || rest[0] > '9' {
			return 0, fmt.Errorf("%w %q: only buttons 1-9 are supported, use the event code name for others", ErrUnknownButton, name)
		}
		return x11Buttons[rest[0]-'1'], nil
	}

	if strings.HasPrefix(name, "BTN_") {
		code, ok := buttonCodeByName(name)
		if !ok {
			return 0, fmt.Errorf("%w: unknown event %s", ErrUnknownButton, name)
		}
		return code, nil
	}

	code, err := strconv.Atoi(name)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("%w %q: button event code must be a positive integer", ErrUnknownButton, name)
	}
	eventName := keyCodeName(code)
	if !strings.HasPrefix(eventName, "BTN_") {
		if eventName == "" {
			eventName = "(null)"
		}
		return 0, fmt.Errorf("%w: event code %d (%s) is not a button", ErrUnknownButton, code, eventName)
	}
	return uint32(code), nil
}

// ButtonName returns the event code name of button, or an empty string
// when it has none.
func ButtonName(button uint32) string {
	if name, ok := scrollNames[button]; ok {
		return name
	}
	if name, ok := mouseButtonNames[button]; ok {
		return name
	}
	return keyCodeName(int(button))
}

// keyCodeName looks a code up in the evdev tables. Codes with aliases are
// stored as "A/B"; the first alias is the canonical one.
func keyCodeName(code int) string {
	if name, ok := mouseButtonNames[uint32(code)]; ok {
		return name
	}
	name, ok := evdev.BTN[code]
	if !ok {
		name, ok = evdev.KEY[code]
	}
	if !ok {
		return ""
	}
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	return name
}

func buttonCodeByName(name string) (uint32, bool) {
	for code, n := range mouseButtonNames {
		if n == name {
			return code, true
		}
	}
	for code, names := range evdev.BTN {
		for _, alias := range strings.Split(names, "/") {
			if alias == name {
				return uint32(code), true
			}
		}
	}
	return 0, false
}
