package replay

import (
	"fmt"
	"time"

	"github.com/bnema/waycursor/internal/constraint"
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/bnema/waycursor/internal/seat"
)

// plan holds the objects built from a scenario, ready to run.
type plan struct {
	outputs     []*geometry.Output
	surfaces    []*scene.Surface
	byID        map[uint32]*scene.Surface
	devices     []*device.Device
	inputs      map[*device.Device]*seat.InputConfig
	constraints []*constraint.Constraint
	focus       *scene.Surface

	hideTimeout    time.Duration
	allowConstrain bool
	handoff        seat.TouchHandoff
	maxTouchPoints int

	steps []step
}

type step struct {
	at  uint32
	run func(r *runner)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
}

func rects(in []Rect) geometry.Region {
	boxes := make([]geometry.Box, len(in))
	for i, r := range in {
		boxes[i] = geometry.Box{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return geometry.NewRegion(boxes...)
}

func compile(s *Scenario) (*plan, error) {
	p := &plan{
		byID:           make(map[uint32]*scene.Surface),
		inputs:         make(map[*device.Device]*seat.InputConfig),
		allowConstrain: true,
		maxTouchPoints: s.Seat.MaxTouchPoints,
	}

	if s.Seat.HideCursorTimeout < 0 {
		return nil, invalid("hide_cursor_timeout must not be negative")
	}
	p.hideTimeout = time.Duration(s.Seat.HideCursorTimeout) * time.Millisecond
	if s.Seat.AllowConstrain != nil {
		p.allowConstrain = *s.Seat.AllowConstrain
	}
	if s.Seat.TouchHandoff != "" {
		h, err := seat.ParseTouchHandoff(s.Seat.TouchHandoff)
		if err != nil {
			return nil, invalid("%v", err)
		}
		p.handoff = h
	}

	if len(s.Outputs) == 0 {
		p.outputs = append(p.outputs, &geometry.Output{
			Name: "HEADLESS-1", Box: geometry.Box{Width: 1920, Height: 1080}, Enabled: true,
		})
	}
	for i, o := range s.Outputs {
		if o.Name == "" {
			return nil, invalid("output %d has no name", i)
		}
		p.outputs = append(p.outputs, &geometry.Output{
			Name:    o.Name,
			Box:     geometry.Box{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height},
			Enabled: !o.Disabled,
		})
	}

	for _, sf := range s.Surfaces {
		if sf.ID == 0 {
			return nil, invalid("surface ids start at 1")
		}
		if _, dup := p.byID[sf.ID]; dup {
			return nil, invalid("duplicate surface %d", sf.ID)
		}
		surface := &scene.Surface{
			ID:            sf.ID,
			Client:        scene.ClientID(sf.Client),
			Box:           geometry.Box{X: sf.X, Y: sf.Y, Width: sf.Width, Height: sf.Height},
			InputRegion:   rects(sf.InputRegion),
			AcceptsTablet: sf.AcceptsTablet,
			AcceptsTouch:  sf.AcceptsTouch,
		}
		p.surfaces = append(p.surfaces, surface)
		p.byID[sf.ID] = surface
	}

	if s.Seat.Focus != 0 {
		surface, ok := p.byID[s.Seat.Focus]
		if !ok {
			return nil, invalid("focus names unknown surface %d", s.Seat.Focus)
		}
		p.focus = surface
	}

	devices := make(map[string]*device.Device)
	for _, d := range s.Devices {
		if _, dup := devices[d.Name]; dup || d.Name == "" {
			return nil, invalid("device names must be unique and non-empty, got %q", d.Name)
		}
		class, ok := parseClass(d.Class)
		if !ok || class == device.ClassKeyboard {
			return nil, invalid("device %q: unsupported class %q", d.Name, d.Class)
		}
		dev := device.New(d.Name, class)
		dev.Vendor = d.Vendor
		dev.Product = d.Product
		dev.WidthMM = d.WidthMM
		dev.HeightMM = d.HeightMM
		ic, err := inputConfig(d)
		if err != nil {
			return nil, err
		}
		if ic != nil {
			p.inputs[dev] = ic
		}
		devices[d.Name] = dev
		p.devices = append(p.devices, dev)
	}

	for i, c := range s.Constraints {
		surface, ok := p.byID[c.Surface]
		if !ok {
			return nil, invalid("constraint %d names unknown surface %d", i, c.Surface)
		}
		var kind constraint.Kind
		switch c.Kind {
		case "confine", "":
			kind = constraint.Confined
		case "lock":
			kind = constraint.Locked
		default:
			return nil, invalid("constraint %d: kind must be confine or lock", i)
		}
		p.constraints = append(p.constraints, constraint.New(kind, surface, rects(c.Region)))
	}

	var last uint32
	for i, ev := range s.Events {
		if ev.At < last {
			return nil, invalid("event %d at %dms goes back in time", i, ev.At)
		}
		last = ev.At
		run, err := compileEvent(p, devices, ev)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
		p.steps = append(p.steps, step{at: ev.At, run: run})
	}
	return p, nil
}

func parseClass(name string) (device.Class, bool) {
	for _, c := range []device.Class{device.ClassPointer, device.ClassTouch, device.ClassTabletTool, device.ClassKeyboard} {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

func inputConfig(d Device) (*seat.InputConfig, error) {
	if d.MapToOutput == "" && d.MapFromRegion == nil && len(d.ToolModes) == 0 {
		return nil, nil
	}
	ic := &seat.InputConfig{MapToOutput: d.MapToOutput}
	if r := d.MapFromRegion; r != nil {
		ic.MapFromRegion = &geometry.CalibrationRegion{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2, MM: r.MM}
	}
	for name, mode := range d.ToolModes {
		typ, ok := device.ParseToolType(name)
		if !ok {
			return nil, invalid("device %q: unknown tool %q", d.Name, name)
		}
		m, err := seat.ParseToolMode(mode)
		if err != nil {
			return nil, invalid("device %q: %v", d.Name, err)
		}
		if ic.ToolModes == nil {
			ic.ToolModes = make(map[device.ToolType]seat.ToolMode)
		}
		ic.ToolModes[typ] = m
	}
	return ic, nil
}
