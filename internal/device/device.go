// Package device describes physical input devices and the typed event
// streams they expose.
//
// A backend creates a Device, announces it to the seat and then emits events
// on the signals matching the device's class. Removing the device is a call
// to Destroy, which every consumer observes through the Destroy signal.
package device

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bnema/waycursor/internal/signal"
)

// Class is the kind of events a device produces.
type Class int

const (
	ClassPointer Class = iota
	ClassTouch
	ClassTabletTool
	ClassKeyboard
)

func (c Class) String() string {
	switch c {
	case ClassPointer:
		return "pointer"
	case ClassTouch:
		return "touch"
	case ClassTabletTool:
		return "tablet_tool"
	case ClassKeyboard:
		return "keyboard"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Device is one physical input device.
type Device struct {
	Name    string
	Path    string
	Vendor  uint16
	Product uint16
	Class   Class

	// Physical size of absolute devices, 0 when unknown.
	WidthMM  float64
	HeightMM float64

	Pointer PointerEvents
	Touch   TouchEvents
	Tablet  TabletEvents

	// Destroy fires once, when the device goes away.
	Destroy signal.Signal[*Device]

	destroyed bool
}

// New creates a device of the given class.
func New(name string, class Class) *Device {
	return &Device{Name: name, Class: class}
}

// Identifier returns the "vendor:product:name" string used to match
// per-device configuration. Whitespace in the name becomes underscores.
func (d *Device) Identifier() string {
	name := strings.TrimSpace(d.Name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, name)
	return fmt.Sprintf("%d:%d:%s", d.Vendor, d.Product, name)
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Class)
}

// Remove marks the device as gone and notifies its Destroy listeners.
// Only the first call has an effect.
func (d *Device) Remove() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.Destroy.Emit(d)
}

// Removed reports whether Remove was called.
func (d *Device) Removed() bool {
	return d.destroyed
}

// ButtonState is the state of a pointer or tool button.
type ButtonState uint8

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

func (s ButtonState) String() string {
	if s == ButtonPressed {
		return "pressed"
	}
	return "released"
}

// FrameEvent closes a group of events that belong to one hardware scan.
type FrameEvent struct {
	TimeMsec uint32
}
