// Package emulation arbitrates which touch contact or tablet tool, if any,
// currently drives the pointer's button state.
package emulation

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/logger"
)

// SourceKind is the device class standing in for the pointer.
type SourceKind int

const (
	SourceTouch SourceKind = iota + 1
	SourceTabletTool
)

// Source identifies one emulation source: a touch contact of a touch
// device, or a tool on a tablet.
type Source struct {
	Kind    SourceKind
	Device  *device.Device
	TouchID int32
	Tool    device.Tool
}

// TouchSource returns the source for contact id of dev.
func TouchSource(dev *device.Device, id int32) Source {
	return Source{Kind: SourceTouch, Device: dev, TouchID: id}
}

// ToolSource returns the source for tool on dev.
func ToolSource(dev *device.Device, tool device.Tool) Source {
	return Source{Kind: SourceTabletTool, Device: dev, Tool: tool}
}

func (s Source) String() string {
	name := "<nil>"
	if s.Device != nil {
		name = s.Device.Name
	}
	if s.Kind == SourceTouch {
		return fmt.Sprintf("touch %d on %s", s.TouchID, name)
	}
	return fmt.Sprintf("tool %s on %s", s.Tool, name)
}

// Reason is why a source emulates the pointer. A tablet tool can hold the
// tip and its buttons at the same time.
type Reason uint8

const (
	ReasonTouch Reason = 1 << iota
	ReasonTip
	ReasonToolButton
)

// Multiplexer admits at most one source at a time. A source stays active
// while it holds at least one reason.
type Multiplexer struct {
	active  Source
	reasons Reason
	log     *log.Logger
}

// NewMultiplexer creates an idle multiplexer.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{log: logger.With("emulation")}
}

// Start makes src the emulation source for reason. It fails when another
// source is active; the active source keeps control.
func (m *Multiplexer) Start(src Source, reason Reason) bool {
	if m.reasons != 0 && m.active != src {
		m.log.Debug("rejecting emulation start while another source is active",
			"source", src, "active", m.active)
		return false
	}
	m.active = src
	m.reasons |= reason
	return true
}

// Stop drops reason from src. It reports whether src held it.
func (m *Multiplexer) Stop(src Source, reason Reason) bool {
	if !m.Holds(src, reason) {
		return false
	}
	m.reasons &^= reason
	if m.reasons == 0 {
		m.active = Source{}
	}
	return true
}

// Release drops every reason held by sources of dev, for instance when the
// device is removed.
func (m *Multiplexer) Release(dev *device.Device) {
	if m.reasons != 0 && m.active.Device == dev {
		m.reasons = 0
		m.active = Source{}
	}
}

// Holds reports whether src is active for reason.
func (m *Multiplexer) Holds(src Source, reason Reason) bool {
	return m.reasons&reason != 0 && m.active == src
}

// IsActive reports whether src is the active source.
func (m *Multiplexer) IsActive(src Source) bool {
	return m.reasons != 0 && m.active == src
}

// Active returns the active source.
func (m *Multiplexer) Active() (Source, bool) {
	return m.active, m.reasons != 0
}
