package evdev

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/eventloop"
)

func TestListCurrentDevices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"event2", "event10", "mouse0", "js0"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "by-id"), 0o700))

	got := NewDeviceMonitor(dir).ListCurrentDevices()
	assert.Equal(t, []string{filepath.Join(dir, "event10"), filepath.Join(dir, "event2")}, got)
}

func TestDeviceMonitorHotplug(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan DeviceChange, 8)
	require.NoError(t, NewDeviceMonitor(dir).Start(ctx, func(c DeviceChange) { changes <- c }))

	node := filepath.Join(dir, "event7")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mouse1"), nil, 0o600))
	require.NoError(t, os.WriteFile(node, nil, 0o600))
	require.NoError(t, os.Remove(node))

	want := []DeviceChange{
		{Type: DeviceAdded, Path: node, Device: "event7"},
		{Type: DeviceRemoved, Path: node, Device: "event7"},
	}
	for _, w := range want {
		select {
		case got := <-changes:
			assert.Equal(t, w, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", w.Type)
		}
	}
}

func TestBackendWithoutDevices(t *testing.T) {
	b := New(eventloop.New(), nil, Options{InputDir: t.TempDir()})
	err := b.Run(context.Background())
	require.ErrorIs(t, err, ErrNoDevices)
	assert.Empty(t, b.Devices())
}

func TestBackendPathFilter(t *testing.T) {
	b := New(eventloop.New(), nil, Options{Paths: []string{"/dev/input/event3"}})
	assert.True(t, b.wanted("/dev/input/event3"))
	assert.False(t, b.wanted("/dev/input/event4"))
	assert.Equal(t, "/dev/input", b.opts.InputDir)

	all := New(eventloop.New(), nil, Options{})
	assert.True(t, all.wanted("/dev/input/event4"))
}

func TestCheckAccessEmptyDir(t *testing.T) {
	report, err := CheckAccess(t.TempDir())
	require.ErrorIs(t, err, ErrNoAccess)
	assert.False(t, report.OK())
}

func TestFindSymlink(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "event7")
	require.NoError(t, os.WriteFile(node, nil, 0o600))

	byID := filepath.Join(dir, "by-id")
	require.NoError(t, os.Mkdir(byID, 0o755))
	require.NoError(t, os.Symlink("../event7", filepath.Join(byID, "usb-Wacom_Pen-event-mouse")))

	assert.Equal(t, filepath.Join(byID, "usb-Wacom_Pen-event-mouse"), FindSymlink(dir, node))
	assert.Empty(t, FindSymlink(dir, filepath.Join(dir, "event8")))

	c := Candidate{Path: node, Name: "Wacom Pen", Class: device.ClassTabletTool}
	assert.Equal(t, "Wacom Pen [tablet_tool] ("+node+")", c.Describe())
}
