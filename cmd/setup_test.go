package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/waycursor/internal/backend/evdev"
)

func TestAccessSteps(t *testing.T) {
	tests := []struct {
		name        string
		report      evdev.AccessReport
		wantOK      []bool
		wantActions int
		wantRelogin bool
	}{
		{
			name: "root with uinput",
			report: evdev.AccessReport{
				Root:           true,
				Readable:       []string{"/dev/input/event0"},
				UinputWritable: true,
			},
			wantOK: []bool{true, true, true},
		},
		{
			name: "input group without uinput",
			report: evdev.AccessReport{
				InInputGroup: true,
				Readable:     []string{"/dev/input/event0"},
				Denied:       []string{"/dev/input/event1"},
			},
			wantOK:      []bool{true, true, false},
			wantActions: 1,
		},
		{
			name:        "unprivileged user",
			report:      evdev.AccessReport{Denied: []string{"/dev/input/event0"}},
			wantOK:      []bool{false, false, false},
			wantActions: 2,
			wantRelogin: true,
		},
		{
			name:        "privileged but nothing readable",
			report:      evdev.AccessReport{DACOverride: true, UinputWritable: true},
			wantOK:      []bool{true, false, true},
			wantActions: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, actions, relogin := accessSteps(tt.report)
			var ok []bool
			for _, s := range steps {
				ok = append(ok, s.ok)
			}
			assert.Equal(t, tt.wantOK, ok)
			assert.Len(t, actions, tt.wantActions)
			assert.Equal(t, tt.wantRelogin, relogin)
		})
	}
}
