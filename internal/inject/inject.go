// Package inject plays the pointer events of a scenario through a virtual
// uinput mouse, so a running seat can be exercised end to end.
package inject

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ThomasT75/uinput"

	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/replay"
)

// DefaultUinputPath is the kernel's virtual input device.
const DefaultUinputPath = "/dev/uinput"

// ErrNoPointer is returned when a scenario has no pointer device to play.
var ErrNoPointer = errors.New("scenario has no pointer device")

// Mouse is the part of a uinput mouse the player drives.
type Mouse interface {
	Move(x, y int32) error
	Wheel(horizontal bool, delta int32) error
	LeftPress() error
	LeftRelease() error
	RightPress() error
	RightRelease() error
	MiddlePress() error
	MiddleRelease() error
	Close() error
}

// CreateMouse creates a virtual relative mouse.
func CreateMouse(path, name string) (Mouse, error) {
	if path == "" {
		path = DefaultUinputPath
	}
	m, err := uinput.CreateMouse(path, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual mouse: %w", err)
	}
	return m, nil
}

// Step is one uinput write at a scenario time.
type Step struct {
	At    uint32
	Desc  string
	apply func(Mouse) error
}

// Plan converts the pointer events of the named device into steps. An
// empty name picks the first pointer device. Events uinput cannot express
// are skipped.
func Plan(s *replay.Scenario, deviceName string) ([]Step, error) {
	name, err := pickDevice(s, deviceName)
	if err != nil {
		return nil, err
	}

	log := logger.With("inject")
	var steps []Step
	// Sub-pixel motion carries over to the next step.
	var restX, restY float64
	for _, ev := range s.Events {
		if ev.Device != name {
			continue
		}
		switch ev.Type {
		case "motion":
			dx, dy := ev.DX+restX, ev.DY+restY
			ix, iy := math.Trunc(dx), math.Trunc(dy)
			restX, restY = dx-ix, dy-iy
			if ix == 0 && iy == 0 {
				continue
			}
			x, y := int32(ix), int32(iy)
			steps = append(steps, Step{
				At:    ev.At,
				Desc:  fmt.Sprintf("move %d,%d", x, y),
				apply: func(m Mouse) error { return m.Move(x, y) },
			})
		case "button":
			step, err := buttonStep(ev)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step)
		case "axis":
			if ev.Discrete == 0 {
				log.Debug("Skipping axis event without discrete steps", "at", ev.At)
				continue
			}
			horizontal := ev.Orientation == "horizontal"
			delta := ev.Discrete
			if !horizontal {
				// uinput counts wheel clicks away from the user as positive.
				delta = -delta
			}
			steps = append(steps, Step{
				At:    ev.At,
				Desc:  fmt.Sprintf("wheel %s %d", orientationName(horizontal), delta),
				apply: func(m Mouse) error { return m.Wheel(horizontal, delta) },
			})
		case "frame":
		default:
			log.Debug("Skipping event uinput cannot express", "type", ev.Type, "at", ev.At)
		}
	}
	return steps, nil
}

func orientationName(horizontal bool) string {
	if horizontal {
		return "horizontal"
	}
	return "vertical"
}

func pickDevice(s *replay.Scenario, name string) (string, error) {
	for _, d := range s.Devices {
		if d.Class != "pointer" {
			continue
		}
		if name == "" || d.Name == name {
			return d.Name, nil
		}
	}
	if name != "" {
		return "", fmt.Errorf("%w: %q", ErrNoPointer, name)
	}
	return "", ErrNoPointer
}

func buttonStep(ev replay.Event) (Step, error) {
	button, err := device.ParseButton(ev.Button)
	if err != nil {
		return Step{}, err
	}
	pressed := ev.State == "pressed"

	var press, release func(Mouse) error
	switch button {
	case device.BtnLeft:
		press, release = Mouse.LeftPress, Mouse.LeftRelease
	case device.BtnRight:
		press, release = Mouse.RightPress, Mouse.RightRelease
	case device.BtnMiddle:
		press, release = Mouse.MiddlePress, Mouse.MiddleRelease
	default:
		return Step{}, fmt.Errorf("button %s cannot be injected", device.ButtonName(button))
	}

	apply := release
	if pressed {
		apply = press
	}
	return Step{
		At:    ev.At,
		Desc:  fmt.Sprintf("%s %s", device.ButtonName(button), ev.State),
		apply: apply,
	}, nil
}

// Player writes steps to a mouse in real time.
type Player struct {
	mouse Mouse
	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPlayer creates a player writing to m.
func NewPlayer(m Mouse) *Player {
	return &Player{mouse: m, sleep: sleepContext}
}

// Play writes every step at its offset from the first one. It stops early
// when ctx ends.
func (p *Player) Play(ctx context.Context, steps []Step) error {
	log := logger.With("inject")
	var last uint32
	for i, step := range steps {
		if i > 0 && step.At > last {
			if err := p.sleep(ctx, time.Duration(step.At-last)*time.Millisecond); err != nil {
				return err
			}
		}
		last = step.At

		log.Debug(step.Desc, "at", step.At)
		if err := step.apply(p.mouse); err != nil {
			return fmt.Errorf("failed to inject %s: %w", step.Desc, err)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
