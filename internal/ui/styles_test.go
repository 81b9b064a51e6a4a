package ui

import (
	"strings"
	"testing"
)

func TestFormatControl(t *testing.T) {
	tests := []struct {
		name string
		key  string
		desc string
	}{
		{name: "basic control", key: "q", desc: "Quit"},
		{name: "longer key", key: "Space", desc: "Pause events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatControl(tt.key, tt.desc)
			if !strings.Contains(got, tt.key) {
				t.Errorf("FormatControl() missing key %q", tt.key)
			}
			if !strings.Contains(got, tt.desc) {
				t.Errorf("FormatControl() missing description %q", tt.desc)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	if got := FormatStatus(true, "Reading"); !strings.Contains(got, "●") || !strings.Contains(got, "Reading") {
		t.Errorf("active status rendered as %q", got)
	}
	if got := FormatStatus(false, "Idle"); !strings.Contains(got, "○") {
		t.Errorf("inactive status rendered as %q", got)
	}
}

func TestSetupFormatting(t *testing.T) {
	if got := FormatSetupResult(true, "Input group", ""); !strings.Contains(got, IconSuccess) {
		t.Errorf("success result missing icon: %q", got)
	}
	if got := FormatSetupResult(false, "Device access", "permission denied"); !strings.Contains(got, "permission denied") {
		t.Errorf("failure result missing message: %q", got)
	}
	if got := FormatSummaryStatus(true, true); !strings.Contains(got, "relogin") {
		t.Errorf("summary should ask for relogin: %q", got)
	}
	if got := FormatActionItem(2, "Log out"); !strings.Contains(got, "2. Log out") {
		t.Errorf("unexpected action item %q", got)
	}
}

func TestCreateSeparator(t *testing.T) {
	if got := CreateSeparator(5, "="); !strings.Contains(got, "=====") {
		t.Errorf("CreateSeparator(5, \"=\") = %q", got)
	}
	if got := CreateSeparator(0, ""); strings.Count(got, "─") != 50 {
		t.Errorf("default separator should be 50 wide, got %q", got)
	}
}
