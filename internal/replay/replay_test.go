package replay

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/dispatch"
)

func run(t *testing.T, file string) *Result {
	t.Helper()
	s, err := Load(filepath.Join("testdata", file))
	require.NoError(t, err)
	res, err := Run(s)
	require.NoError(t, err)
	return res
}

func kinds(events []dispatch.Event) []dispatch.Kind {
	out := make([]dispatch.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestTouchTap(t *testing.T) {
	res := run(t, "touch_tap.toml")

	assert.Equal(t, "touch tap", res.Name)
	assert.Equal(t, []dispatch.Kind{
		dispatch.Motion, dispatch.Button, dispatch.Frame,
		dispatch.Button, dispatch.Frame,
	}, kinds(res.Events))

	for _, ev := range res.Events {
		assert.True(t, ev.Emulated, "%s should be emulated", ev.Kind)
	}
	assert.Equal(t, 960.0, res.Events[0].X)
	assert.Equal(t, 540.0, res.Events[0].Y)
	assert.Equal(t, device.ButtonReleased, res.Events[3].State)
	assert.Equal(t, uint32(50), res.Events[3].TimeMsec)

	assert.True(t, res.Hidden)
	assert.Equal(t, 1, res.FocusClears)
	assert.Zero(t, res.PressedButtons)
}

func TestConfinedPointer(t *testing.T) {
	res := run(t, "confine.toml")

	motions := make([]dispatch.Event, 0)
	for _, ev := range res.Events {
		if ev.Kind == dispatch.Motion {
			motions = append(motions, ev)
		}
	}
	require.Len(t, motions, 1)
	assert.InDelta(t, 200, res.X, 0.01)
	assert.Equal(t, 150.0, res.Y)
	assert.Less(t, res.X, 200.0)
	require.NotNil(t, motions[0].Surface)
	assert.Equal(t, uint32(1), motions[0].Surface.ID)
	assert.NotEmpty(t, res.Rebases)
}

func TestTabletStroke(t *testing.T) {
	res := run(t, "tablet_stroke.toml")

	require.Equal(t, []dispatch.Kind{
		dispatch.TabletProximity, dispatch.TabletMotion,
		dispatch.TabletTip,
		dispatch.TabletMotion, dispatch.TabletAxis,
		dispatch.TabletTip,
		dispatch.TabletProximity, dispatch.Motion,
	}, kinds(res.Events))

	// The pen left the canvas with the tip down; the grab keeps it there.
	grabbed := res.Events[3]
	require.NotNil(t, grabbed.Surface)
	assert.Equal(t, uint32(1), grabbed.Surface.ID)
	assert.Equal(t, 1920.0, grabbed.SX)
	assert.Equal(t, 0.6, res.Events[4].Axes.Pressure)
	assert.Equal(t, device.TipUp, res.Events[5].Tip)
	assert.Equal(t, uint32(1), res.Events[5].Surface.ID)

	assert.Equal(t, device.ProximityOut, res.Events[6].Proximity)
	assert.True(t, res.Events[7].Emulated)
	assert.InDelta(t, 2560, res.X, 0.01)
	assert.InDelta(t, 1440, res.Y, 0.01)
}

func TestIdleHide(t *testing.T) {
	const base = `
[seat]
hide_cursor_timeout = 1000

[[devices]]
name = "mouse"
class = "pointer"

[[events]]
at = 10
device = "mouse"
type = "motion"
dx = 5
`

	tests := []struct {
		name       string
		duration   uint32
		extra      string
		wantHidden bool
	}{
		{name: "hides after the timeout", duration: 1010, wantHidden: true},
		{name: "still visible before the timeout", duration: 1009, wantHidden: false},
		{
			name:     "never hides with a button held",
			duration: 5000,
			extra: `
[[events]]
at = 20
device = "mouse"
type = "button"
button = "button1"
state = "pressed"`,
			wantHidden: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := fmt.Sprintf("duration = %d\n", tt.duration) + base + tt.extra
			s, err := Parse([]byte(data))
			require.NoError(t, err)
			res, err := Run(s)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHidden, res.Hidden)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	pointer := "[[devices]]\nname = \"mouse\"\nclass = \"pointer\"\n"

	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "broken toml", data: "name = ", want: "invalid scenario"},
		{name: "unknown key", data: "colour = \"blue\"", want: "unknown keys colour"},
		{name: "keyboard device", data: "[[devices]]\nname = \"kbd\"\nclass = \"keyboard\"", want: "unsupported class"},
		{name: "duplicate device", data: pointer + pointer, want: "must be unique"},
		{name: "unknown device", data: "[[events]]\ndevice = \"ghost\"\ntype = \"motion\"", want: "unknown device"},
		{name: "unknown type", data: pointer + "[[events]]\ndevice = \"mouse\"\ntype = \"teleport\"", want: "unknown event type"},
		{name: "wrong device class", data: pointer + "[[events]]\ndevice = \"mouse\"\ntype = \"touch_down\"", want: "need a touch device"},
		{name: "bad button", data: pointer + "[[events]]\ndevice = \"mouse\"\ntype = \"button\"\nbutton = \"button0\"\nstate = \"pressed\"", want: "only buttons 1-9"},
		{name: "bad state", data: pointer + "[[events]]\ndevice = \"mouse\"\ntype = \"button\"\nbutton = \"BTN_LEFT\"\nstate = \"held\"", want: "pressed or released"},
		{
			name: "time goes backwards",
			data: pointer + "[[events]]\nat = 5\ndevice = \"mouse\"\ntype = \"frame\"\n[[events]]\nat = 4\ndevice = \"mouse\"\ntype = \"frame\"",
			want: "goes back in time",
		},
		{name: "bad handoff", data: "[seat]\ntouch_handoff = \"never\"", want: "invalid touch handoff"},
		{name: "unknown focus", data: "[seat]\nfocus = 4", want: "unknown surface 4"},
		{name: "bad tool mode", data: "[[devices]]\nname = \"pen\"\nclass = \"tablet_tool\"\ntool_modes = { pen = \"sideways\" }", want: "device \"pen\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScenario)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDeviceRemovedDuringReplay(t *testing.T) {
	s, err := Parse([]byte(`
[[devices]]
name = "mouse"
class = "pointer"

[[events]]
at = 1
device = "mouse"
type = "motion"
dx = 10

[[events]]
at = 2
device = "mouse"
type = "remove"

[[events]]
at = 3
device = "mouse"
type = "motion"
dx = 10
`))
	require.NoError(t, err)
	res, err := Run(s)
	require.NoError(t, err)

	require.Len(t, res.Events, 1)
	assert.Equal(t, 10.0, res.X)
}

func TestPrint(t *testing.T) {
	res := run(t, "touch_tap.toml")

	var buf bytes.Buffer
	require.NoError(t, res.Print(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(res.Events)+2)
	assert.Equal(t, "# touch tap", lines[0])
	assert.Contains(t, lines[1], "motion")
	assert.Contains(t, lines[1], "emulated")
	assert.Contains(t, lines[len(lines)-1], "hidden=true")
}
