package replay

import (
	"fmt"
	"io"
	"time"

	"github.com/bnema/waycursor/internal/clock"
	"github.com/bnema/waycursor/internal/cursor"
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/bnema/waycursor/internal/seat"
)

// Result is what a replay produced.
type Result struct {
	Name   string
	Events []dispatch.Event
	// Rebases holds the timestamps of every rebase request.
	Rebases     []uint32
	FocusClears int

	X, Y           float64
	Hidden         bool
	PressedButtons uint32
}

// Print writes one line per event followed by the final cursor state.
func (r *Result) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n", r.Name); err != nil {
		return err
	}
	for _, ev := range r.Events {
		if _, err := fmt.Fprintln(w, ev.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "# cursor (%.2f,%.2f) hidden=%t pressed=%d rebases=%d\n",
		r.X, r.Y, r.Hidden, r.PressedButtons, len(r.Rebases))
	return err
}

type focus struct {
	surface  *scene.Surface
	modifier bool
}

func (f *focus) KeyboardFocus() *scene.Surface { return f.surface }
func (f *focus) FloatingModifierHeld() bool    { return f.modifier }

type runner struct {
	plan   *plan
	seat   *seat.Seat
	graph  *scene.Graph
	clock  *clock.Manual
	focus  *focus
	timers []*virtualTimer
}

// virtualTimer fires when the replay clock passes its deadline.
type virtualTimer struct {
	r        *runner
	fire     func()
	deadline uint32
	armed    bool
	removed  bool
}

func (t *virtualTimer) Update(d time.Duration) {
	if d <= 0 || t.removed {
		t.armed = false
		return
	}
	t.deadline = t.r.clock.NowMsec() + uint32(d/time.Millisecond)
	t.armed = true
}

func (t *virtualTimer) Remove() {
	t.removed = true
	t.armed = false
}

// advance moves the clock to msec, firing due timers in deadline order.
func (r *runner) advance(msec uint32) {
	for {
		var next *virtualTimer
		for _, t := range r.timers {
			if t.armed && t.deadline <= msec && (next == nil || t.deadline < next.deadline) {
				next = t
			}
		}
		if next == nil {
			break
		}
		if next.deadline > r.clock.NowMsec() {
			r.clock.Set(next.deadline)
		}
		next.armed = false
		next.fire()
	}
	if msec > r.clock.NowMsec() {
		r.clock.Set(msec)
	}
}

func (r *runner) setFocus(id uint32) {
	r.focus.surface = r.plan.byID[id]
	r.seat.KeyboardFocusChanged(r.focus.surface)
}

func (r *runner) destroySurface(s *scene.Surface) {
	if r.focus.surface == s {
		r.setFocus(0)
	}
	r.graph.RemoveSurface(s)
	s.Destroy()
}

// Run replays a scenario against a fresh seat.
func Run(s *Scenario) (*Result, error) {
	p, err := compile(s)
	if err != nil {
		return nil, err
	}
	log := logger.With("replay")

	recorder := dispatch.NewRecorder()
	r := &runner{
		plan:  p,
		graph: scene.NewGraph(),
		clock: &clock.Manual{},
		focus: &focus{surface: p.focus},
	}
	for _, surface := range p.surfaces {
		r.graph.AddSurface(surface)
	}

	r.seat = seat.New(seat.Options{
		Layout:         geometry.NewLayout(p.outputs...),
		Scene:          r.graph,
		Policy:         recorder,
		Focus:          r.focus,
		Clock:          r.clock,
		HideTimeout:    p.hideTimeout,
		AllowConstrain: p.allowConstrain,
		TouchHandoff:   p.handoff,
		MaxTouchPoints: p.maxTouchPoints,
		NewTimer: func(fire func()) cursor.Timer {
			t := &virtualTimer{r: r, fire: fire}
			r.timers = append(r.timers, t)
			return t
		},
		InputConfig: func(dev *device.Device) *seat.InputConfig {
			return p.inputs[dev]
		},
	})
	defer r.seat.Close()

	for _, dev := range p.devices {
		if _, err := r.seat.AddDevice(dev); err != nil {
			return nil, fmt.Errorf("failed to add device %q: %w", dev.Name, err)
		}
	}
	for _, c := range p.constraints {
		if err := r.seat.AddConstraint(c); err != nil {
			return nil, fmt.Errorf("%w: constraint on surface %d: %v", ErrInvalidScenario, c.Surface.ID, err)
		}
	}

	log.Debug("Replaying scenario", "name", s.Name, "steps", len(p.steps))
	for _, st := range p.steps {
		r.advance(st.at)
		st.run(r)
	}
	if s.Duration > 0 {
		r.advance(s.Duration)
	}

	x, y := r.seat.Cursor().Position()
	return &Result{
		Name:           s.Name,
		Events:         recorder.Events(),
		Rebases:        recorder.Rebases(),
		FocusClears:    recorder.FocusClears(),
		X:              x,
		Y:              y,
		Hidden:         r.seat.Cursor().Hidden(),
		PressedButtons: r.seat.Cursor().PressedButtons(),
	}, nil
}
