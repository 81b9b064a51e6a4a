package evdev

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// AbsInfo is the kernel's struct input_absinfo.
type AbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Normalize maps v from the axis range onto [0, 1).
func (a AbsInfo) Normalize(v int32) float64 {
	span := float64(a.Maximum) - float64(a.Minimum) + 1
	if span <= 0 {
		return 0
	}
	return (float64(v) - float64(a.Minimum)) / span
}

// SizeMM returns the physical length of the axis, or 0 when the device does
// not report a resolution.
func (a AbsInfo) SizeMM() float64 {
	if a.Resolution <= 0 {
		return 0
	}
	return (float64(a.Maximum) - float64(a.Minimum)) / float64(a.Resolution)
}

// ioctl numbers from linux/input.h
const (
	iocRead  = 2
	iocWrite = 1

	eviocgabsBase = iocRead<<30 | int(unsafe.Sizeof(AbsInfo{}))<<16 | 'E'<<8 | 0x40
	eviocsclockid = iocWrite<<30 | 4<<16 | 'E'<<8 | 0xa0
)

// readAbsInfo queries the range of one absolute axis.
func readAbsInfo(f *os.File, axis uint16) (AbsInfo, error) {
	var info AbsInfo
	req := uintptr(eviocgabsBase + int(axis))
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req, uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return AbsInfo{}, fmt.Errorf("EVIOCGABS(%d): %w", axis, errno)
	}
	return info, nil
}

// readAbsInfos queries every axis in axes and skips the ones that fail.
func readAbsInfos(f *os.File, axes []int) map[uint16]AbsInfo {
	out := make(map[uint16]AbsInfo, len(axes))
	for _, axis := range axes {
		info, err := readAbsInfo(f, uint16(axis))
		if err != nil {
			continue
		}
		out[uint16(axis)] = info
	}
	return out
}

// useMonotonicClock switches the device's event timestamps to
// CLOCK_MONOTONIC so they line up with the seat clock.
func useMonotonicClock(f *os.File) error {
	if err := unix.IoctlSetPointerInt(int(f.Fd()), eviocsclockid, unix.CLOCK_MONOTONIC); err != nil {
		return fmt.Errorf("EVIOCSCLOCKID: %w", err)
	}
	return nil
}
