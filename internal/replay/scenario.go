// Package replay drives a seat from a scripted scenario and records what the
// interaction policy would have received. Scenarios are TOML files listing
// outputs, surfaces, devices and timed device events.
package replay

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalidScenario wraps every problem found while loading a scenario.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is the decoded form of a scenario file.
type Scenario struct {
	Name        string       `toml:"name"`
	Seat        SeatSettings `toml:"seat"`
	Outputs     []Output     `toml:"outputs"`
	Surfaces    []Surface    `toml:"surfaces"`
	Devices     []Device     `toml:"devices"`
	Constraints []Constraint `toml:"constraints"`
	Events      []Event      `toml:"events"`
	// Duration keeps idle timers running until this time, in ms.
	Duration uint32 `toml:"duration"`
}

type SeatSettings struct {
	HideCursorTimeout int    `toml:"hide_cursor_timeout"`
	AllowConstrain    *bool  `toml:"allow_constrain"`
	TouchHandoff      string `toml:"touch_handoff"`
	MaxTouchPoints    int    `toml:"max_touch_points"`
	// Focus is the surface holding keyboard focus at the start.
	Focus uint32 `toml:"focus"`
}

type Output struct {
	Name     string `toml:"name"`
	X        int    `toml:"x"`
	Y        int    `toml:"y"`
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Disabled bool   `toml:"disabled"`
}

type Rect struct {
	X      int `toml:"x"`
	Y      int `toml:"y"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Surface is listed bottom to top.
type Surface struct {
	ID            uint32 `toml:"id"`
	Client        uint32 `toml:"client"`
	X             int    `toml:"x"`
	Y             int    `toml:"y"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	AcceptsTablet bool   `toml:"accepts_tablet"`
	AcceptsTouch  bool   `toml:"accepts_touch"`
	InputRegion   []Rect `toml:"input_region"`
}

type Region struct {
	X1 float64 `toml:"x1"`
	Y1 float64 `toml:"y1"`
	X2 float64 `toml:"x2"`
	Y2 float64 `toml:"y2"`
	MM bool    `toml:"mm"`
}

type Device struct {
	Name          string            `toml:"name"`
	Class         string            `toml:"class"`
	Vendor        uint16            `toml:"vendor"`
	Product       uint16            `toml:"product"`
	WidthMM       float64           `toml:"width_mm"`
	HeightMM      float64           `toml:"height_mm"`
	MapToOutput   string            `toml:"map_to_output"`
	MapFromRegion *Region           `toml:"map_from_region"`
	ToolModes     map[string]string `toml:"tool_modes"`
}

type Constraint struct {
	Surface uint32 `toml:"surface"`
	// Kind is "confine" or "lock".
	Kind   string `toml:"kind"`
	Region []Rect `toml:"region"`
}

// Event is one scripted step. Which fields matter depends on Type.
type Event struct {
	At     uint32 `toml:"at"`
	Device string `toml:"device"`
	Type   string `toml:"type"`

	ID     int32   `toml:"id"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	DX     float64 `toml:"dx"`
	DY     float64 `toml:"dy"`
	Button string  `toml:"button"`
	State  string  `toml:"state"`

	Orientation string  `toml:"orientation"`
	Delta       float64 `toml:"delta"`
	Discrete    int32   `toml:"discrete"`

	Gesture string  `toml:"gesture"`
	Phase   string  `toml:"phase"`
	Fingers uint32  `toml:"fingers"`
	Scale   float64 `toml:"scale"`

	Tool     string   `toml:"tool"`
	Serial   uint64   `toml:"serial"`
	Axes     []string `toml:"axes"`
	Pressure float64  `toml:"pressure"`
	Distance float64  `toml:"distance"`
	TiltX    float64  `toml:"tilt_x"`
	TiltY    float64  `toml:"tilt_y"`

	Surface uint32 `toml:"surface"`
}

// Parse decodes a scenario and rejects unknown keys.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidScenario, strings.Join(keys, ", "))
	}
	if _, err := compile(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
