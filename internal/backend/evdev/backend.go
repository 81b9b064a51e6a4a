// Package evdev feeds Linux evdev devices into a seat.
//
// Each device node is read on its own goroutine. Reads are grouped into
// SYN_REPORT batches and handed to the event loop, where a Translator turns
// them into device signals. Nothing here touches seat state off the loop.
package evdev

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	goevdev "github.com/gvalkov/golang-evdev"
	"github.com/sourcegraph/conc"

	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/eventloop"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/seat"
)

// ErrNoDevices is returned by Run when no usable device could be opened and
// hotplug is disabled.
var ErrNoDevices = errors.New("no usable input devices")

// DefaultInputDir is where the kernel exposes evdev nodes.
const DefaultInputDir = "/dev/input"

// Options configures the backend.
type Options struct {
	// InputDir is scanned for event nodes when Paths is empty.
	InputDir string
	// Paths restricts the backend to these nodes.
	Paths []string
	// Hotplug watches InputDir for new nodes.
	Hotplug bool
	// Grab takes exclusive access so other readers stop seeing events.
	Grab bool
}

// Backend owns the open device nodes of one seat.
type Backend struct {
	opts Options
	loop *eventloop.Loop
	seat *seat.Seat
	log  *log.Logger

	mu     sync.Mutex
	open   map[string]*openDevice
	closed bool

	readers conc.WaitGroup
}

type openDevice struct {
	path       string
	input      *goevdev.InputDevice
	dev        *device.Device
	translator Translator
	once       sync.Once
}

// New creates a backend delivering into s through loop.
func New(loop *eventloop.Loop, s *seat.Seat, opts Options) *Backend {
	if opts.InputDir == "" {
		opts.InputDir = DefaultInputDir
	}
	return &Backend{
		opts: opts,
		loop: loop,
		seat: s,
		log:  logger.With("evdev"),
		open: make(map[string]*openDevice),
	}
}

// Run opens the configured devices and reads them until ctx is cancelled.
func (b *Backend) Run(ctx context.Context) error {
	monitor := NewDeviceMonitor(b.opts.InputDir)

	paths := b.opts.Paths
	if len(paths) == 0 {
		paths = monitor.ListCurrentDevices()
	}

	opened := 0
	for _, path := range paths {
		if err := b.openPath(path); err != nil {
			b.log.Debug("Skipping device", "path", path, "err", err)
			continue
		}
		opened++
	}

	if opened == 0 && !b.opts.Hotplug {
		return fmt.Errorf("%w in %s", ErrNoDevices, b.opts.InputDir)
	}

	if b.opts.Hotplug {
		err := monitor.Start(ctx, func(change DeviceChange) {
			switch change.Type {
			case DeviceAdded:
				if !b.wanted(change.Path) {
					return
				}
				if err := b.openWithRetry(ctx, change.Path); err != nil {
					b.log.Debug("Skipping hotplugged device", "path", change.Path, "err", err)
				}
			case DeviceRemoved:
				b.closePath(change.Path)
			}
		})
		if err != nil {
			b.log.Warn("Hotplug disabled", "err", err)
		}
	}

	b.log.Info("Backend running", "devices", opened, "hotplug", b.opts.Hotplug)
	<-ctx.Done()

	b.mu.Lock()
	b.closed = true
	devices := make([]*openDevice, 0, len(b.open))
	for _, od := range b.open {
		devices = append(devices, od)
	}
	b.mu.Unlock()

	for _, od := range devices {
		b.release(od)
	}
	b.readers.Wait()
	return nil
}

func (b *Backend) wanted(path string) bool {
	if len(b.opts.Paths) == 0 {
		return true
	}
	for _, p := range b.opts.Paths {
		if p == path {
			return true
		}
		// Configured paths are usually by-id links to the event node.
		if target, err := filepath.EvalSymlinks(p); err == nil && target == path {
			return true
		}
	}
	return false
}

// openWithRetry waits for udev to fix up permissions on fresh nodes.
func (b *Backend) openWithRetry(ctx context.Context, path string) error {
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		if err = b.openPath(path); err == nil || !errors.Is(err, os.ErrPermission) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return err
}

func (b *Backend) openPath(path string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("backend stopped")
	}
	if _, ok := b.open[path]; ok {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	input, err := goevdev.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	caps := Capabilities(input.CapabilitiesFlat)
	class, ok := Classify(input.Name, caps)
	if !ok || class == device.ClassKeyboard {
		input.File.Close()
		return fmt.Errorf("%s: not a pointer, touch or tablet device", input.Name)
	}

	abs := readAbsInfos(input.File, caps[goevdev.EV_ABS])
	if err := useMonotonicClock(input.File); err != nil {
		b.log.Debug("Keeping realtime timestamps", "device", input.Name, "err", err)
	}

	dev := device.New(input.Name, class)
	dev.Path = path
	dev.Vendor = input.Vendor
	dev.Product = input.Product
	xAxis, yAxis := uint16(goevdev.ABS_X), uint16(goevdev.ABS_Y)
	if class == device.ClassTouch && caps.has(goevdev.EV_ABS, goevdev.ABS_MT_POSITION_X) {
		xAxis, yAxis = goevdev.ABS_MT_POSITION_X, goevdev.ABS_MT_POSITION_Y
	}
	dev.WidthMM = abs[xAxis].SizeMM()
	dev.HeightMM = abs[yAxis].SizeMM()

	if b.opts.Grab {
		if err := input.Grab(); err != nil {
			input.File.Close()
			return fmt.Errorf("failed to grab %s: %w", path, err)
		}
	}

	od := &openDevice{
		path:       path,
		input:      input,
		dev:        dev,
		translator: NewTranslator(dev, caps, abs),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		input.File.Close()
		return errors.New("backend stopped")
	}
	b.open[path] = od
	b.mu.Unlock()

	b.loop.Post(func() {
		if _, err := b.seat.AddDevice(dev); err != nil {
			b.log.Warn("Seat refused device", "device", dev.Name, "err", err)
			b.closePath(path)
		}
	})
	b.readers.Go(func() { b.read(od) })

	b.log.Info("Opened device", "path", path, "name", dev.Name, "class", class)
	return nil
}

// closePath stops reading a node, for example after it was unplugged.
func (b *Backend) closePath(path string) {
	b.mu.Lock()
	od, ok := b.open[path]
	b.mu.Unlock()
	if ok {
		b.release(od)
	}
}

func (b *Backend) release(od *openDevice) {
	od.once.Do(func() {
		if b.opts.Grab {
			_ = od.input.Release()
		}
		od.input.File.Close()
	})
}

func (b *Backend) read(od *openDevice) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorf("Reader panic on %s: %v", od.path, r)
		}
	}()
	defer b.forget(od)

	var batch []goevdev.InputEvent
	dropping := false

	for {
		events, err := od.input.Read()
		if err != nil {
			b.log.Debug("Device read ended", "path", od.path, "err", err)
			return
		}

		for _, ev := range events {
			if ev.Type != goevdev.EV_SYN {
				if !dropping {
					batch = append(batch, ev)
				}
				continue
			}
			switch ev.Code {
			case goevdev.SYN_DROPPED:
				batch = nil
				dropping = true
				if tt, ok := od.translator.(*touchTranslator); ok {
					t := timeMsec(ev.Time)
					b.loop.Post(func() { tt.Cancel(t) })
				}
			case goevdev.SYN_REPORT:
				if dropping {
					dropping = false
					continue
				}
				batch = append(batch, ev)
				ready := batch
				batch = nil
				b.loop.Post(func() {
					if !od.dev.Removed() {
						od.translator.Translate(ready)
					}
				})
			}
		}
	}
}

// forget removes a node whose reader has ended and tells the seat.
func (b *Backend) forget(od *openDevice) {
	b.release(od)

	b.mu.Lock()
	if b.open[od.path] == od {
		delete(b.open, od.path)
	}
	b.mu.Unlock()

	b.loop.Post(od.dev.Remove)
}

// Devices returns the nodes currently open.
func (b *Backend) Devices() []*device.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*device.Device, 0, len(b.open))
	for _, od := range b.open {
		out = append(out, od.dev)
	}
	return out
}
