package evdev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bnema/waycursor/internal/logger"
)

// DeviceChange is a node appearing in or vanishing from the input directory.
type DeviceChange struct {
	Type   DeviceChangeType
	Path   string
	Device string // node name, e.g. "event3"
}

// DeviceChangeType tells additions from removals.
type DeviceChangeType int

const (
	DeviceAdded DeviceChangeType = iota
	DeviceRemoved
)

func (t DeviceChangeType) String() string {
	if t == DeviceRemoved {
		return "removed"
	}
	return "added"
}

// DeviceMonitor watches an input directory for event nodes with inotify.
type DeviceMonitor struct {
	inputDir string
	watcher  *fsnotify.Watcher
}

// NewDeviceMonitor creates a monitor for inputDir.
func NewDeviceMonitor(inputDir string) *DeviceMonitor {
	return &DeviceMonitor{inputDir: inputDir}
}

func isEventNode(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "event")
}

// Start begins watching. callback runs on the monitor's goroutine until ctx
// is cancelled.
func (dm *DeviceMonitor) Start(ctx context.Context, callback func(DeviceChange)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dm.inputDir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dm.inputDir, err)
	}
	dm.watcher = watcher

	go dm.run(ctx, callback)

	logger.Debug("Device monitor started", "dir", dm.inputDir)
	return nil
}

func (dm *DeviceMonitor) run(ctx context.Context, callback func(DeviceChange)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Device monitor panic: %v", r)
		}
	}()
	defer dm.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-dm.watcher.Events:
			if !ok {
				return
			}
			if !isEventNode(event.Name) {
				continue
			}
			switch {
			case event.Op&fsnotify.Create != 0:
				logger.Debugf("Device added: %s", event.Name)
				callback(DeviceChange{Type: DeviceAdded, Path: event.Name, Device: filepath.Base(event.Name)})
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debugf("Device removed: %s", event.Name)
				callback(DeviceChange{Type: DeviceRemoved, Path: event.Name, Device: filepath.Base(event.Name)})
			}
		case err, ok := <-dm.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("Device monitor error: %v", err)
		}
	}
}

// ListCurrentDevices returns the event nodes present right now, sorted.
func (dm *DeviceMonitor) ListCurrentDevices() []string {
	var devices []string

	entries, err := os.ReadDir(dm.inputDir)
	if err != nil {
		logger.Warnf("Failed to read input directory: %v", err)
		return devices
	}
	for _, entry := range entries {
		if !entry.IsDir() && isEventNode(entry.Name()) {
			devices = append(devices, filepath.Join(dm.inputDir, entry.Name()))
		}
	}
	sort.Strings(devices)
	return devices
}
