package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/waycursor/internal/backend/evdev"
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/dispatch"
)

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "devices", "setup", "replay", "inject", "config", "version"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestFilterKinds(t *testing.T) {
	events := []dispatch.Event{
		{Kind: dispatch.Motion},
		{Kind: dispatch.Frame},
		{Kind: dispatch.Button},
		{Kind: dispatch.Frame},
	}
	got := filterKinds(events, map[string]bool{"motion": true, "button": true})
	require.Len(t, got, 2)
	assert.Equal(t, dispatch.Motion, got[0].Kind)
	assert.Equal(t, dispatch.Button, got[1].Kind)
}

func TestDevicesTable(t *testing.T) {
	candidates := []evdev.Candidate{
		{Path: "/dev/input/event3", Name: "Logitech Mouse", Vendor: 0x46d, Product: 0xc077, Class: device.ClassPointer},
		{Path: "/dev/input/event9", Name: "Wacom Pen", Class: device.ClassTabletTool, Symlink: "/dev/input/by-id/wacom"},
	}
	out := devicesTable(candidates, []string{"/dev/input/by-id/wacom"}).String()
	assert.Contains(t, out, "/dev/input/event3")
	assert.Contains(t, out, "tablet_tool")
	assert.Contains(t, out, candidates[0].Identifier())
}
