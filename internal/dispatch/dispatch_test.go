package dispatch

import (
	"testing"

	"github.com/bnema/waycursor/internal/clock"
	"github.com/bnema/waycursor/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunnelOrderAndTimestamps(t *testing.T) {
	rec := NewRecorder()
	clk := &clock.Manual{Msec: 500}
	f := NewFunnel(rec, clk)

	mouse := device.New("mouse", device.ClassPointer)
	pen := device.New("pen", device.ClassTabletTool)

	f.Send(Event{Kind: Motion, Device: mouse, TimeMsec: 10})
	f.Send(Event{Kind: TabletTip, Device: pen, TimeMsec: 11})
	f.Send(Event{Kind: Button, Device: mouse})
	f.Send(Event{Kind: Motion, Device: mouse, TimeMsec: 12})

	events := rec.Events()
	require.Len(t, events, 4)

	tests := []struct {
		kind Kind
		dev  *device.Device
		seq  uint64
		time uint32
	}{
		{Motion, mouse, 1, 10},
		{TabletTip, pen, 1, 11},
		{Button, mouse, 2, 500},
		{Motion, mouse, 3, 12},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.kind, events[i].Kind, "event %d", i)
		assert.Same(t, tt.dev, events[i].Device, "event %d", i)
		assert.Equal(t, tt.seq, events[i].Seq, "event %d", i)
		assert.Equal(t, tt.time, events[i].TimeMsec, "event %d", i)
	}

	f.Forget(mouse)
	f.Send(Event{Kind: Motion, Device: mouse, TimeMsec: 13})
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(1), last.Seq)
}

func TestFunnelPolicyExtensions(t *testing.T) {
	rec := NewRecorder()
	clk := &clock.Manual{Msec: 42}
	f := NewFunnel(rec, clk)

	f.Rebase()
	assert.Equal(t, []uint32{42}, rec.Rebases())

	f.ClearPointerFocus()
	assert.Equal(t, 1, rec.FocusClears())

	assert.True(t, f.AllowsSetCursor())
	rec.DenySetCursor = true
	assert.False(t, f.AllowsSetCursor())
}

type plainPolicy struct{ events int }

func (p *plainPolicy) HandleEvent(Event) { p.events++ }
func (p *plainPolicy) Rebase(uint32)     {}

func TestTee(t *testing.T) {
	rec := NewRecorder()
	plain := &plainPolicy{}
	tee := Tee{rec, plain}

	f := NewFunnel(tee, &clock.Manual{})
	f.Send(Event{Kind: Frame, TimeMsec: 1})
	f.ClearPointerFocus()

	assert.Equal(t, 1, plain.events)
	assert.Equal(t, []Kind{Frame}, rec.Kinds())
	assert.Equal(t, 1, rec.FocusClears())
	assert.True(t, f.AllowsSetCursor())

	rec.DenySetCursor = true
	assert.False(t, f.AllowsSetCursor())

	// A policy without the optional interfaces has no say.
	assert.True(t, NewFunnel(plain, &clock.Manual{}).AllowsSetCursor())
}

func TestEventString(t *testing.T) {
	dev := device.New("touchscreen", device.ClassTouch)
	ev := Event{Kind: TouchDown, TimeMsec: 7, Device: dev, TouchID: 3, X: 960, Y: 540}
	assert.Contains(t, ev.String(), "touch_down")
	assert.Contains(t, ev.String(), "id=3 pos=(960.00,540.00)")

	btn := Event{Kind: Button, Button: device.BtnLeft, State: device.ButtonReleased, Emulated: true}
	assert.Contains(t, btn.String(), "BTN_LEFT released emulated")
	assert.Equal(t, "kind(99)", Kind(99).String())
}
