package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/bnema/waycursor/internal/backend/evdev"
	"github.com/bnema/waycursor/internal/logger"
)

// ErrNoCandidates is returned when no pointer, touch or tablet node exists.
var ErrNoCandidates = errors.New("no pointer, touch or tablet devices found")

// DeviceSelector provides interactive device selection using huh
type DeviceSelector struct {
	inputDir string
	// list is replaced in tests.
	list func(inputDir string) ([]evdev.Candidate, error)
}

// NewDeviceSelector creates a selector scanning inputDir
func NewDeviceSelector(inputDir string) *DeviceSelector {
	return &DeviceSelector{inputDir: inputDir, list: evdev.ListCandidates}
}

// SelectDevices asks which nodes the seat should drive and returns their
// stable paths. A single candidate is selected without asking.
func (s *DeviceSelector) SelectDevices(current []string) ([]string, error) {
	candidates, err := s.list(s.inputDir)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	if len(candidates) == 1 {
		logger.Infof("Auto-selected device: %s", candidates[0].Describe())
		return []string{stablePath(candidates[0])}, nil
	}

	selected := append([]string(nil), current...)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select Input Devices").
				Description("Choose the devices waycursor should drive the cursor with").
				Options(Options(candidates, current)...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("device selection cancelled: %w", err)
	}
	return selected, nil
}

// Options builds the select options, preselecting paths in current.
func Options(candidates []evdev.Candidate, current []string) []huh.Option[string] {
	chosen := make(map[string]bool, len(current))
	for _, p := range current {
		chosen[p] = true
	}

	options := make([]huh.Option[string], len(candidates))
	for i, c := range candidates {
		path := stablePath(c)
		options[i] = huh.NewOption(c.Describe(), path).Selected(chosen[path] || chosen[c.Path])
	}
	return options
}

// stablePath prefers the by-id or by-path link over the event node.
func stablePath(c evdev.Candidate) string {
	if c.Symlink != "" {
		return c.Symlink
	}
	return c.Path
}
