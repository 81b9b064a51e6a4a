// Package seat turns the events of pointers, touch panels and tablets into
// one cursor and one normalized event stream.
//
// A Seat owns the logical cursor, the pointer constraint engine and the
// emulation multiplexer. Each announced device gets an adapter that
// subscribes to the device's signals; removing the device closes those
// subscriptions before anything else happens. All methods must be called
// from the event loop goroutine.
package seat

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/bnema/waycursor/internal/clock"
	"github.com/bnema/waycursor/internal/constraint"
	"github.com/bnema/waycursor/internal/cursor"
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/emulation"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/bnema/waycursor/internal/signal"
)

var (
	// ErrUnsupportedDevice is returned for device classes the seat does
	// not handle.
	ErrUnsupportedDevice = errors.New("unsupported input device")
	// ErrDeviceExists is returned when a device is announced twice.
	ErrDeviceExists = errors.New("device already added")
)

const defaultMaxTouchPoints = 10

// Capabilities lists the device classes a seat currently offers.
type Capabilities struct {
	Pointer bool
	Touch   bool
}

// RelativeMotionEvent is raw relative motion, before constraints apply.
type RelativeMotionEvent struct {
	TimeMsec  uint32
	Device    *device.Device
	DX, DY    float64
	UnaccelDX float64
	UnaccelDY float64
}

// CursorRequest is a client's request for a cursor image: either a named
// shape or a surface with a hotspot.
type CursorRequest struct {
	Shape    string
	Surface  *scene.Surface
	HotspotX int32
	HotspotY int32
}

// Seat is a set of input devices driving one cursor.
type Seat struct {
	name   string
	opts   Options
	layout *geometry.Layout
	scene  scene.HitTester
	focus  Focus
	log    *log.Logger

	funnel      *dispatch.Funnel
	cursor      *cursor.Cursor
	constraints *constraint.Engine
	emulation   *emulation.Multiplexer

	devices map[*device.Device]Adapter
	caps    Capabilities

	// Most recently tracked touch contact, in layout coordinates.
	touchID    int32
	touchX     float64
	touchY     float64
	touchValid bool

	// RelativeMotion carries unconstrained relative motion.
	RelativeMotion signal.Signal[RelativeMotionEvent]
	// CapabilitiesChanged fires when the device classes change.
	CapabilitiesChanged signal.Signal[Capabilities]
}

// New creates a seat and its cursor.
func New(opts Options) *Seat {
	if opts.Name == "" {
		opts.Name = "seat0"
	}
	if opts.Clock == nil {
		opts.Clock = clock.Monotonic{}
	}
	if opts.Focus == nil {
		opts.Focus = noFocus{}
	}
	if opts.MaxTouchPoints <= 0 {
		opts.MaxTouchPoints = defaultMaxTouchPoints
	}
	if opts.DefaultCursor == "" {
		opts.DefaultCursor = "default"
	}

	s := &Seat{
		name:    opts.Name,
		opts:    opts,
		layout:  opts.Layout,
		scene:   opts.Scene,
		focus:   opts.Focus,
		log:     logger.With(opts.Name),
		funnel:  dispatch.NewFunnel(opts.Policy, opts.Clock),
		devices: make(map[*device.Device]Adapter),
	}
	s.cursor = cursor.New(opts.Layout, s.funnel, cursor.Options{
		HideTimeout: opts.HideTimeout,
		NewTimer:    opts.NewTimer,
	})
	s.constraints = constraint.NewEngine(s.cursor, s.funnel, opts.Focus, opts.AllowConstrain)
	s.emulation = emulation.NewMultiplexer()
	return s
}

// Name returns the seat name.
func (s *Seat) Name() string { return s.name }

// Cursor returns the seat's logical cursor.
func (s *Seat) Cursor() *cursor.Cursor { return s.cursor }

// Constraints returns the pointer constraint engine.
func (s *Seat) Constraints() *constraint.Engine { return s.constraints }

// Emulation returns the pointer emulation multiplexer.
func (s *Seat) Emulation() *emulation.Multiplexer { return s.emulation }

// Capabilities returns the device classes currently available.
func (s *Seat) Capabilities() Capabilities { return s.caps }

// TrackedTouch returns the seat's current touch point.
func (s *Seat) TrackedTouch() (id int32, x, y float64, ok bool) {
	return s.touchID, s.touchX, s.touchY, s.touchValid
}

// AddDevice creates the adapter for dev. A device that fails to be added
// stays inert until it is announced again.
func (s *Seat) AddDevice(dev *device.Device) (Adapter, error) {
	if _, exists := s.devices[dev]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDeviceExists, dev.Name)
	}
	if dev.Removed() {
		return nil, fmt.Errorf("%w: %s was already removed", ErrUnsupportedDevice, dev.Name)
	}

	var a Adapter
	switch dev.Class {
	case device.ClassPointer:
		a = newPointerAdapter(s, dev)
	case device.ClassTouch:
		a = newTouchAdapter(s, dev)
	case device.ClassTabletTool:
		a = newTabletAdapter(s, dev)
	default:
		return nil, fmt.Errorf("%w: %s is a %s device", ErrUnsupportedDevice, dev.Name, dev.Class)
	}

	s.devices[dev] = a
	s.log.Info("Device added", "name", dev.Name, "kind", a.Kind(), "identifier", dev.Identifier())
	s.updateCapabilities()
	return a, nil
}

// RemoveDevice detaches the adapter of dev. Devices call it on their own
// when they are removed.
func (s *Seat) RemoveDevice(dev *device.Device) {
	a, ok := s.devices[dev]
	if !ok {
		return
	}
	a.close()
	delete(s.devices, dev)

	s.releaseEmulation(dev)
	s.funnel.Forget(dev)
	s.log.Info("Device removed", "name", dev.Name, "kind", a.Kind())
	s.updateCapabilities()
}

// releaseEmulation sends the emulated releases still owed by a source of
// dev and frees the multiplexer.
func (s *Seat) releaseEmulation(dev *device.Device) {
	src, active := s.emulation.Active()
	if !active || src.Device != dev {
		return
	}
	if s.emulation.Holds(src, emulation.ReasonTouch) || s.emulation.Holds(src, emulation.ReasonTip) {
		s.button(dev, 0, device.BtnLeft, device.ButtonReleased, true)
	}
	if s.emulation.Holds(src, emulation.ReasonToolButton) {
		s.button(dev, 0, device.BtnRight, device.ButtonReleased, true)
	}
	s.frame(dev, 0, true)
	s.emulation.Release(dev)
}

// Adapter returns the adapter of dev.
func (s *Seat) Adapter(dev *device.Device) (Adapter, bool) {
	a, ok := s.devices[dev]
	return a, ok
}

// Adapters returns every adapter, ordered by device name.
func (s *Seat) Adapters() []Adapter {
	out := make([]Adapter, 0, len(s.devices))
	for _, a := range s.devices {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Device().Name < out[j].Device().Name
	})
	return out
}

func (s *Seat) updateCapabilities() {
	var caps Capabilities
	for _, a := range s.devices {
		switch a.Kind() {
		case KindPointer, KindTablet:
			caps.Pointer = true
		case KindTouch:
			caps.Touch = true
		}
	}

	prev := s.caps
	if caps == prev {
		return
	}

	if !caps.Pointer {
		s.cursor.SetImage("")
		s.cursor.SetPointerCapability(false)
	} else {
		s.cursor.SetPointerCapability(true)
		if !prev.Pointer {
			s.cursor.SetImage(s.opts.DefaultCursor)
		}
	}
	s.caps = caps
	s.CapabilitiesChanged.Emit(caps)
}

// AddConstraint registers a pointer constraint from a client.
func (s *Seat) AddConstraint(c *constraint.Constraint) error {
	return s.constraints.Add(c)
}

// KeyboardFocusChanged must be called when keyboard focus moves; it
// activates the constraint of the new surface.
func (s *Seat) KeyboardFocusChanged(surface *scene.Surface) {
	s.constraints.KeyboardFocusChanged(surface)
}

// OutputsChanged re-clamps the cursor and rebases after the layout changed.
// Nothing happens while no output is enabled.
func (s *Seat) OutputsChanged() {
	if !s.layout.HasActiveOutputs() {
		return
	}
	x, y := s.cursor.Position()
	s.cursor.Warp(x, y)
	s.funnel.Rebase()
}

// PointerFocus returns the surface the pointer is over, or nil while the
// cursor is hidden.
func (s *Seat) PointerFocus() *scene.Surface {
	if s.cursor.Hidden() {
		return nil
	}
	return s.hitAtCursor().Surface
}

// RequestSetCursor applies a client's cursor image. Only the client owning
// the surface under the pointer may change it, and only while the policy
// allows it.
func (s *Seat) RequestSetCursor(client scene.ClientID, req CursorRequest) bool {
	if !s.funnel.AllowsSetCursor() {
		return false
	}
	focused := s.PointerFocus()
	if focused == nil || focused.Client != client {
		s.log.Debug("denying request to set cursor from unfocused client", "client", client)
		return false
	}
	if req.Shape != "" {
		s.cursor.SetImage(req.Shape)
	} else {
		s.cursor.SetImageSurface(req.Surface, req.HotspotX, req.HotspotY, client)
	}
	return true
}

// Close removes every device and stops the cursor's timer.
func (s *Seat) Close() {
	for dev := range s.devices {
		s.RemoveDevice(dev)
	}
	s.constraints.Close()
	s.cursor.Close()
}

func (s *Seat) inputConfig(dev *device.Device) *InputConfig {
	if s.opts.InputConfig == nil {
		return nil
	}
	return s.opts.InputConfig(dev)
}

// mappingBox is the layout area an absolute device spans.
func (s *Seat) mappingBox(dev *device.Device) geometry.Box {
	if ic := s.inputConfig(dev); ic != nil && ic.MapToOutput != "" {
		if out, ok := s.layout.Get(ic.MapToOutput); ok && out.Enabled && !out.Box.Empty() {
			return out.Box
		}
		s.log.Debug("mapped output not available, using the whole layout", "device", dev.Name, "output", ic.MapToOutput)
	}
	return s.layout.Extents()
}

// toLayout maps normalized device coordinates into layout space, honoring
// the device's calibration region.
func (s *Seat) toLayout(dev *device.Device, x, y float64) (float64, float64) {
	if ic := s.inputConfig(dev); ic != nil && ic.MapFromRegion != nil {
		x, y = ic.MapFromRegion.Apply(x, y, dev.WidthMM, dev.HeightMM)
	}
	return geometry.NormalizedToBox(s.mappingBox(dev), x, y)
}

func (s *Seat) hitAtCursor() scene.Hit {
	x, y := s.cursor.Position()
	return s.scene.NodeAt(x, y)
}

// activity resets idle state for user input from source.
func (s *Seat) activity(source cursor.ActivitySource) {
	if s.opts.Idle != nil {
		s.opts.Idle.NotifyActivity(source)
	}
	s.cursor.NotifyActivity(source)
}

// pointerMotion moves the cursor by a delta. Constraints only apply to real
// pointers; touch and tablet emulation pass emulated=true.
func (s *Seat) pointerMotion(dev *device.Device, timeMsec uint32, dx, dy, udx, udy float64, emulated bool) {
	if !geometry.IsFinite(dx) || !geometry.IsFinite(dy) {
		s.log.Debug("dropping non-finite motion", "device", dev.Name, "dx", dx, "dy", dy)
		return
	}

	s.RelativeMotion.Emit(RelativeMotionEvent{
		TimeMsec: timeMsec, Device: dev,
		DX: dx, DY: dy, UnaccelDX: udx, UnaccelDY: udy,
	})

	if !emulated && s.constraints.Active() != nil {
		var ok bool
		dx, dy, ok = s.constraints.Clip(s.hitAtCursor(), dx, dy)
		if !ok {
			return
		}
	}

	s.cursor.MoveBy(dx, dy)
	s.sendMotion(dev, timeMsec, dx, dy, udx, udy, emulated)
}

func (s *Seat) sendMotion(dev *device.Device, timeMsec uint32, dx, dy, udx, udy float64, emulated bool) {
	x, y := s.cursor.Position()
	hit := s.scene.NodeAt(x, y)
	s.funnel.Send(dispatch.Event{
		Kind:      dispatch.Motion,
		TimeMsec:  timeMsec,
		Device:    dev,
		Emulated:  emulated,
		X:         x,
		Y:         y,
		DX:        dx,
		DY:        dy,
		UnaccelDX: udx,
		UnaccelDY: udy,
		Surface:   hit.Surface,
		SX:        hit.SX,
		SY:        hit.SY,
	})
}

// button sends a pointer button event. A zero timestamp is replaced by the
// current time.
func (s *Seat) button(dev *device.Device, timeMsec uint32, button uint32, state device.ButtonState, emulated bool) {
	x, y := s.cursor.Position()
	s.funnel.Send(dispatch.Event{
		Kind:     dispatch.Button,
		TimeMsec: timeMsec,
		Device:   dev,
		Emulated: emulated,
		X:        x,
		Y:        y,
		Button:   button,
		State:    state,
	})
}

func (s *Seat) frame(dev *device.Device, timeMsec uint32, emulated bool) {
	s.funnel.Send(dispatch.Event{
		Kind:     dispatch.Frame,
		TimeMsec: timeMsec,
		Device:   dev,
		Emulated: emulated,
	})
}
