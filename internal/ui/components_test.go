package ui

import (
	"strings"
	"testing"
)

func TestStatusBar(t *testing.T) {
	t.Run("creates new status bar", func(t *testing.T) {
		sb := NewStatusBar("waycursor seat0")
		if sb.Title != "waycursor seat0" {
			t.Errorf("Expected title 'waycursor seat0', got %q", sb.Title)
		}
		if !sb.ShowSpinner {
			t.Error("Expected ShowSpinner to be true by default")
		}
	})

	t.Run("renders status bar", func(t *testing.T) {
		sb := NewStatusBar("waycursor")
		sb.Width = 80
		sb.Status = "Running"
		sb.Active = true

		view := sb.View()
		if !strings.Contains(view, "waycursor") {
			t.Error("Status bar should contain title")
		}
		if !strings.Contains(view, "Running") {
			t.Error("Status bar should contain status")
		}
	})
}

func TestInfoPanel(t *testing.T) {
	tests := []struct {
		name     string
		panel    InfoPanel
		mustHave []string
	}{
		{
			name:     "with title",
			panel:    InfoPanel{Title: "Cursor", Content: []string{"Line 1", "Line 2"}, Width: 50},
			mustHave: []string{"Cursor", "Line 1", "Line 2"},
		},
		{
			name:     "without title",
			panel:    InfoPanel{Content: []string{"Only content"}, Width: 50},
			mustHave: []string{"Only content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := tt.panel.View()
			for _, s := range tt.mustHave {
				if !strings.Contains(view, s) {
					t.Errorf("InfoPanel view missing %q", s)
				}
			}
		})
	}
}

func TestDeviceList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		list := &DeviceList{Title: "Devices", Width: 60}
		if !strings.Contains(list.View(), "No devices") {
			t.Error("empty list should say so")
		}
	})

	t.Run("marks the active device", func(t *testing.T) {
		list := &DeviceList{
			Title: "Devices",
			Width: 60,
			Devices: []DeviceEntry{
				{Name: "Mouse", Class: "pointer"},
				{Name: "Pen", Class: "tablet_tool", Active: true},
			},
		}
		view := list.View()
		for _, s := range []string{"Mouse", "pointer", "Pen", "tablet_tool", "●", "○"} {
			if !strings.Contains(view, s) {
				t.Errorf("device list missing %q", s)
			}
		}
	})
}

func TestMessage(t *testing.T) {
	tests := []struct {
		msgType MessageType
		prefix  string
	}{
		{MessageInfo, "ℹ"},
		{MessageSuccess, "✓"},
		{MessageWarning, "⚠"},
		{MessageError, "✗"},
	}

	for _, tt := range tests {
		msg := Message{Type: tt.msgType, Content: "hello"}
		view := msg.View()
		if !strings.Contains(view, tt.prefix) || !strings.Contains(view, "hello") {
			t.Errorf("message %d rendered as %q", tt.msgType, view)
		}
	}
}
