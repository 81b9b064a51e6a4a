package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/waycursor/internal/backend/evdev"
	"github.com/bnema/waycursor/internal/device"
)

func selectorWith(candidates []evdev.Candidate, err error) *DeviceSelector {
	s := NewDeviceSelector("/dev/input")
	s.list = func(string) ([]evdev.Candidate, error) { return candidates, err }
	return s
}

func TestSelectDevices(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		_, err := selectorWith(nil, nil).SelectDevices(nil)
		assert.ErrorIs(t, err, ErrNoCandidates)
	})

	t.Run("list error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := selectorWith(nil, boom).SelectDevices(nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("single candidate is auto-selected by stable path", func(t *testing.T) {
		got, err := selectorWith([]evdev.Candidate{{
			Path:    "/dev/input/event5",
			Name:    "Touchscreen",
			Class:   device.ClassTouch,
			Symlink: "/dev/input/by-id/usb-touch-event",
		}}, nil).SelectDevices(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/dev/input/by-id/usb-touch-event"}, got)
	})
}

func TestOptions(t *testing.T) {
	candidates := []evdev.Candidate{
		{Path: "/dev/input/event3", Name: "Mouse", Class: device.ClassPointer},
		{Path: "/dev/input/event9", Name: "Pen", Class: device.ClassTabletTool, Symlink: "/dev/input/by-id/pen"},
	}
	options := Options(candidates, []string{"/dev/input/event9"})
	require.Len(t, options, 2)
	assert.Equal(t, "/dev/input/event3", options[0].Value)
	assert.Equal(t, "/dev/input/by-id/pen", options[1].Value)
	assert.Contains(t, options[1].Key, "Pen [tablet_tool]")
}
