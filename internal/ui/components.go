package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar represents a reusable status bar component
type StatusBar struct {
	Width       int
	Title       string
	Status      string
	Active      bool
	ShowSpinner bool
	spinner     spinner.Model
}

// NewStatusBar creates a new status bar
func NewStatusBar(title string) *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerDot,
		FPS:    time.Second / 10,
	}
	s.Style = SpinnerStyle

	return &StatusBar{
		Title:       title,
		ShowSpinner: true,
		spinner:     s,
	}
}

// Init implements tea.Model
func (s *StatusBar) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update implements tea.Model
func (s *StatusBar) Update(msg tea.Msg) (*StatusBar, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.WindowSizeMsg:
		s.Width = msg.Width
	}
	return s, nil
}

// View renders the status bar
func (s *StatusBar) View() string {
	title := TitleStyle.Render(s.Title)

	status := s.Status
	if s.ShowSpinner {
		status = s.spinner.View() + " " + s.Status
	}
	statusFormatted := FormatStatus(s.Active, status)

	gap := s.Width - lipgloss.Width(title) - lipgloss.Width(statusFormatted) - 4
	if gap < 1 {
		gap = 1
	}
	return BoxStyle.Width(s.Width).Render(title + strings.Repeat(" ", gap) + statusFormatted)
}

// InfoPanel represents a panel with information
type InfoPanel struct {
	Title   string
	Content []string
	Width   int
}

// View renders the info panel
func (p *InfoPanel) View() string {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString(SubheaderStyle.Render(p.Title))
		b.WriteString("\n")
	}
	for _, line := range p.Content {
		b.WriteString(TextStyle.Render(line))
		b.WriteString("\n")
	}
	return BoxStyle.Width(p.Width).Render(strings.TrimRight(b.String(), "\n"))
}

// DeviceEntry is one line of a DeviceList.
type DeviceEntry struct {
	Name  string
	Class string
	// Active marks the device currently driving pointer emulation.
	Active bool
}

// DeviceList shows the devices attached to the seat.
type DeviceList struct {
	Title   string
	Devices []DeviceEntry
	Width   int
}

// View renders the device list
func (d *DeviceList) View() string {
	var b strings.Builder
	b.WriteString(SubheaderStyle.Render(d.Title))
	b.WriteString("\n")

	if len(d.Devices) == 0 {
		b.WriteString(MutedStyle.Render("No devices"))
	}
	for i, dev := range d.Devices {
		indicator := InactiveIndicator
		style := ListItemStyle
		if dev.Active {
			indicator = ActiveIndicator
			style = style.Foreground(ColorActive)
		}
		fmt.Fprintf(&b, "%s %s (%s)", indicator, style.Render(dev.Name), SubtleStyle.Render(dev.Class))
		if i < len(d.Devices)-1 {
			b.WriteString("\n")
		}
	}
	return BoxStyle.Width(d.Width).Render(b.String())
}

// ControlsHelp displays keyboard controls
type ControlsHelp struct {
	Controls []Control
	Width    int
}

// Control represents a keyboard control
type Control struct {
	Key  string
	Desc string
}

// View renders the controls help
func (c *ControlsHelp) View() string {
	parts := make([]string, len(c.Controls))
	for i, ctrl := range c.Controls {
		parts[i] = FormatControl(ctrl.Key, ctrl.Desc)
	}
	return SubtleStyle.Width(c.Width).Render(strings.Join(parts, "  "))
}

// MessageType represents the type of message
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// Message displays a styled message
type Message struct {
	Type    MessageType
	Content string
}

// View renders the message
func (m *Message) View() string {
	var style lipgloss.Style
	var prefix string

	switch m.Type {
	case MessageSuccess:
		style = SuccessStyle
		prefix = "✓ "
	case MessageWarning:
		style = WarningStyle
		prefix = "⚠ "
	case MessageError:
		style = ErrorStyle
		prefix = "✗ "
	default:
		style = InfoStyle
		prefix = "ℹ "
	}
	return style.Render(prefix + m.Content)
}
