package cursor

import (
	"math"
	"testing"
	"time"

	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	fire    func()
	armed   time.Duration
	updates int
	removed bool
}

func (t *fakeTimer) Update(d time.Duration) {
	t.armed = d
	t.updates++
}

func (t *fakeTimer) Remove() { t.removed = true }

type fakeRebaser struct {
	rebases     int
	focusClears int
}

func (r *fakeRebaser) Rebase()            { r.rebases++ }
func (r *fakeRebaser) ClearPointerFocus() { r.focusClears++ }

func newTestCursor(timeout time.Duration) (*Cursor, *fakeTimer, *fakeRebaser) {
	layout := geometry.NewLayout(
		&geometry.Output{Name: "A", Box: geometry.Box{Width: 1920, Height: 1080}, Enabled: true},
		&geometry.Output{Name: "B", Box: geometry.Box{X: 1920, Width: 1280, Height: 1024}, Enabled: true},
	)
	timer := &fakeTimer{}
	rebaser := &fakeRebaser{}
	c := New(layout, rebaser, Options{
		HideTimeout: timeout,
		NewTimer: func(fire func()) Timer {
			timer.fire = fire
			return timer
		},
	})
	return c, timer, rebaser
}

func TestWarpClampsToLayout(t *testing.T) {
	c, _, _ := newTestCursor(0)

	tests := []struct {
		name         string
		x, y         float64
		wantX, wantY float64
	}{
		{name: "inside", x: 100, y: 200, wantX: 100, wantY: 200},
		{name: "second output", x: 2500, y: 1000, wantX: 2500, wantY: 1000},
		{name: "right of everything", x: 1e7, y: 10, wantX: 3200, wantY: 10},
		{name: "bottom of first output", x: 1000, y: 1050, wantX: 1000, wantY: 1050},
		{name: "below second output", x: 3000, y: 5000, wantX: 3000, wantY: 1024},
		{name: "far negative", x: -1e12, y: -1e12, wantX: 0, wantY: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Warp(tt.x, tt.y)
			x, y := c.Position()
			assert.InDelta(t, tt.wantX, x, 0.01)
			assert.InDelta(t, tt.wantY, y, 0.01)
			assert.True(t, c.Layout().Contains(x, y))
		})
	}
}

func TestWarpIgnoresNonFinite(t *testing.T) {
	c, _, _ := newTestCursor(0)
	c.Warp(10, 10)
	c.Warp(math.NaN(), 5)
	c.MoveBy(math.Inf(1), 0)

	x, y := c.Position()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 10.0, y)
}

func TestMoveBy(t *testing.T) {
	c, _, _ := newTestCursor(0)
	c.Warp(1900, 500)
	c.MoveBy(50, -600)

	x, y := c.Position()
	assert.InDelta(t, 1950, x, 0.01)
	assert.InDelta(t, 0, y, 0.01)
}

func TestButtonCountNeverNegative(t *testing.T) {
	c, _, _ := newTestCursor(0)

	sequence := []bool{true, false, false, true, true, false, false, false, true}
	presses, matched := 0, 0
	for _, press := range sequence {
		if press {
			c.PressButton()
			presses++
			continue
		}
		if c.ReleaseButton() {
			matched++
		}
		assert.Equal(t, uint32(presses-matched), c.PressedButtons())
	}
	assert.Equal(t, uint32(1), c.PressedButtons())
}

func TestHideRefusedWhilePressed(t *testing.T) {
	c, _, rebaser := newTestCursor(time.Second)
	c.Warp(10, 10)

	c.PressButton()
	assert.False(t, c.Hide())
	assert.False(t, c.Hidden())
	x, y := c.Position()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 10.0, y)
	assert.Equal(t, 0, rebaser.focusClears)

	c.ReleaseButton()
	assert.True(t, c.Hide())
	assert.True(t, c.Hidden())
	assert.Equal(t, 1, rebaser.focusClears)
}

func TestUnhideRearmsTimer(t *testing.T) {
	c, timer, rebaser := newTestCursor(3 * time.Second)

	c.Unhide()
	assert.Equal(t, 3*time.Second, timer.armed, "unhide re-arms even when visible")
	assert.Equal(t, 0, rebaser.rebases)

	c.Hide()
	timer.armed = 0
	c.Unhide()
	assert.False(t, c.Hidden())
	assert.Equal(t, 3*time.Second, timer.armed)
	assert.Equal(t, 1, rebaser.rebases)
}

func TestIdleTimerFiresHide(t *testing.T) {
	c, timer, _ := newTestCursor(time.Second)
	require.NotNil(t, timer.fire)

	c.NotifyActivity(ActivityPointer)
	timer.fire()
	assert.True(t, c.Hidden())

	c.NotifyActivity(ActivityTouch)
	assert.True(t, c.Hidden(), "touch activity must not reveal the cursor")
	assert.Equal(t, time.Second, timer.armed)

	c.NotifyActivity(ActivityTabletTool)
	assert.False(t, c.Hidden())
}

func TestTimeoutZeroWhilePressed(t *testing.T) {
	c, timer, _ := newTestCursor(time.Second)
	c.PressButton()
	c.NotifyActivity(ActivityPointer)
	assert.Equal(t, time.Duration(0), timer.armed)
	assert.Equal(t, time.Duration(0), c.ArmedTimeout())

	c.ReleaseButton()
	c.NotifyActivity(ActivityPointer)
	assert.Equal(t, time.Second, timer.armed)

	c.Close()
	assert.True(t, timer.removed)
}

func TestSetImage(t *testing.T) {
	c, _, _ := newTestCursor(0)

	c.SetImage("default")
	assert.Nil(t, c.Image(), "no pointer capability, no image")

	c.SetPointerCapability(true)
	c.SetImage("default")
	require.NotNil(t, c.Image())
	serial := c.ImageSerial()

	c.SetImage("default")
	assert.Equal(t, serial, c.ImageSerial(), "same shape twice is a no-op")

	c.SetImage("text")
	assert.Equal(t, serial+1, c.ImageSerial())
	assert.Equal(t, "text", c.Image().Name)

	c.Hide()
	c.SetImage("")
	assert.Nil(t, c.Image())
	assert.True(t, c.Hidden(), "clearing the image does not touch hidden")

	surface := &scene.Surface{ID: 4, Client: 2}
	c.SetImageSurface(surface, 3, 5, 2)
	require.NotNil(t, c.Image())
	assert.Same(t, surface, c.Image().Surface)
	assert.Equal(t, int32(5), c.Image().HotspotY)

	// A named shape after a surface always takes effect.
	c.SetImage("text")
	assert.Nil(t, c.Image().Surface)
}

func TestWarpToBox(t *testing.T) {
	c, _, rebaser := newTestCursor(0)
	box := geometry.Box{X: 100, Y: 100, Width: 200, Height: 100}

	c.Warp(150, 150)
	c.Hide()
	c.WarpToBox(box, false)
	x, y := c.Position()
	assert.Equal(t, 150.0, x)
	assert.Equal(t, 150.0, y)
	assert.True(t, c.Hidden())

	c.WarpToBox(box, true)
	x, y = c.Position()
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 150.0, y)
	assert.False(t, c.Hidden())
	assert.Equal(t, 1, rebaser.rebases)

	c.Warp(0, 0)
	c.WarpToCenter(geometry.Box{X: 1920, Width: 1280, Height: 1024})
	x, y = c.Position()
	assert.Equal(t, 2560.0, x)
	assert.Equal(t, 512.0, y)
}
