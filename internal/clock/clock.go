// Package clock supplies the millisecond timestamps carried by input events.
package clock

import (
	"golang.org/x/sys/unix"
)

// Clock returns the current time in milliseconds on a monotonic timeline.
// The value wraps around like the 32-bit timestamps of kernel input events.
type Clock interface {
	NowMsec() uint32
}

// Monotonic reads CLOCK_MONOTONIC, the clock evdev timestamps are taken from
// when the device is switched to it.
type Monotonic struct{}

// NowMsec implements Clock.
func (Monotonic) NowMsec() uint32 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint32(int64(ts.Sec)*1000 + int64(ts.Nsec)/1_000_000)
}

// Manual is a clock that only moves when told to. Replays and tests use it to
// get reproducible timestamps.
type Manual struct {
	Msec uint32
}

// NowMsec implements Clock.
func (m *Manual) NowMsec() uint32 {
	return m.Msec
}

// Set moves the clock to msec.
func (m *Manual) Set(msec uint32) {
	m.Msec = msec
}

// Advance moves the clock forward by delta milliseconds.
func (m *Manual) Advance(delta uint32) {
	m.Msec += delta
}
