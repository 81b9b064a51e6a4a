package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/seat"
)

// maxEventLines is the number of recent events kept on screen.
const maxEventLines = 16

// EventMsg carries one dispatched event. It is rendered on the event loop
// goroutine so the model never touches seat state.
type EventMsg struct {
	Kind     dispatch.Kind
	Emulated bool
	Line     string
}

// StateMsg is a periodic snapshot of the seat.
type StateMsg Snapshot

// FocusClearedMsg reports that the cursor hid and dropped pointer focus.
type FocusClearedMsg struct{}

// Snapshot is the seat state shown by the monitor.
type Snapshot struct {
	X, Y       float64
	Hidden     bool
	Pressed    uint32
	Emulation  string
	Constraint string
	Devices    []DeviceEntry
}

// SnapshotOf reads the seat. It must run on the event loop goroutine.
func SnapshotOf(s *seat.Seat) Snapshot {
	c := s.Cursor()
	x, y := c.Position()
	snap := Snapshot{
		X:       x,
		Y:       y,
		Hidden:  c.Hidden(),
		Pressed: c.PressedButtons(),
	}

	active, emulating := s.Emulation().Active()
	if emulating {
		snap.Emulation = active.String()
	}
	if con := s.Constraints().Active(); con != nil {
		snap.Constraint = fmt.Sprintf("%s on surface %d", con.Kind, con.Surface.ID)
	}
	for _, a := range s.Adapters() {
		dev := a.Device()
		snap.Devices = append(snap.Devices, DeviceEntry{
			Name:   dev.Name,
			Class:  dev.Class.String(),
			Active: emulating && active.Device == dev,
		})
	}
	return snap
}

// Forwarder is a dispatch.Policy that hands events to a tea.Program. Policies
// must not block, so messages go through a bounded queue and are dropped
// when the UI falls behind.
type Forwarder struct {
	queue   chan tea.Msg
	dropped uint64
}

// NewForwarder creates a forwarder with room for size pending messages.
func NewForwarder(size int) *Forwarder {
	if size <= 0 {
		size = 256
	}
	return &Forwarder{queue: make(chan tea.Msg, size)}
}

// HandleEvent implements dispatch.Policy.
func (f *Forwarder) HandleEvent(ev dispatch.Event) {
	f.push(EventMsg{Kind: ev.Kind, Emulated: ev.Emulated, Line: ev.String()})
}

// Rebase implements dispatch.Policy.
func (f *Forwarder) Rebase(uint32) {}

// ClearPointerFocus implements dispatch.FocusClearer.
func (f *Forwarder) ClearPointerFocus() {
	f.push(FocusClearedMsg{})
}

// Push queues an arbitrary message, such as a StateMsg.
func (f *Forwarder) Push(msg tea.Msg) {
	f.push(msg)
}

func (f *Forwarder) push(msg tea.Msg) {
	select {
	case f.queue <- msg:
	default:
		f.dropped++
	}
}

// Dropped returns how many messages were discarded. Only valid on the
// goroutine that calls HandleEvent.
func (f *Forwarder) Dropped() uint64 {
	return f.dropped
}

// Run delivers queued messages to send until ctx is done.
func (f *Forwarder) Run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-f.queue:
			send(msg)
		}
	}
}

// MonitorModel is the Bubble Tea model of the live input monitor
type MonitorModel struct {
	statusBar *StatusBar
	devices   *DeviceList
	controls  *ControlsHelp
	events    []EventMsg
	state     Snapshot
	synced    bool
	notice    *Message
	paused    bool
	width     int
	height    int
	quitting  bool
}

// NewMonitorModel creates the monitor for the named seat
func NewMonitorModel(seatName string) *MonitorModel {
	statusBar := NewStatusBar("waycursor " + seatName)
	statusBar.Status = "Waiting for input"

	return &MonitorModel{
		statusBar: statusBar,
		devices:   &DeviceList{Title: "Devices"},
		controls: &ControlsHelp{
			Controls: []Control{
				{Key: "q", Desc: "Quit"},
				{Key: "c", Desc: "Clear events"},
				{Key: "p", Desc: "Pause"},
			},
		},
	}
}

// Init implements tea.Model
func (m *MonitorModel) Init() tea.Cmd {
	return m.statusBar.Init()
}

// Update implements tea.Model
func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.events = nil
		case "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.devices.Width = msg.Width
		m.controls.Width = msg.Width

	case EventMsg:
		if !m.paused {
			m.AddEvent(msg)
		}
		m.statusBar.Active = true

	case StateMsg:
		if m.synced {
			m.noticeDevices(m.state.Devices, msg.Devices)
		}
		m.synced = true
		m.state = Snapshot(msg)
		m.devices.Devices = m.state.Devices
		m.statusBar.Status = m.status()

	case FocusClearedMsg:
		m.notice = &Message{Type: MessageInfo, Content: "Cursor hidden, pointer focus cleared"}
		m.state.Hidden = true
		m.statusBar.Status = m.status()
	}

	var cmd tea.Cmd
	m.statusBar, cmd = m.statusBar.Update(msg)
	return m, cmd
}

// AddEvent appends an event, keeping only the most recent ones
func (m *MonitorModel) AddEvent(ev EventMsg) {
	m.events = append(m.events, ev)
	if len(m.events) > maxEventLines {
		m.events = m.events[len(m.events)-maxEventLines:]
	}
}

// noticeDevices reports the devices that came or went between two snapshots.
func (m *MonitorModel) noticeDevices(before, after []DeviceEntry) {
	names := func(list []DeviceEntry) map[string]bool {
		set := make(map[string]bool, len(list))
		for _, d := range list {
			set[d.Name] = true
		}
		return set
	}
	was, is := names(before), names(after)
	for _, d := range after {
		if !was[d.Name] {
			m.notice = &Message{Type: MessageSuccess, Content: "Device added: " + d.Name}
		}
	}
	for _, d := range before {
		if !is[d.Name] {
			m.notice = &Message{Type: MessageWarning, Content: "Device removed: " + d.Name}
		}
	}
}

// Notice returns the latest device or focus notice.
func (m *MonitorModel) Notice() (Message, bool) {
	if m.notice == nil {
		return Message{}, false
	}
	return *m.notice, true
}

// Events returns the events currently on screen.
func (m *MonitorModel) Events() []EventMsg {
	return m.events
}

func (m *MonitorModel) status() string {
	if m.state.Hidden {
		return fmt.Sprintf("(%.0f, %.0f) hidden", m.state.X, m.state.Y)
	}
	return fmt.Sprintf("(%.0f, %.0f)", m.state.X, m.state.Y)
}

// View implements tea.Model
func (m *MonitorModel) View() string {
	if m.quitting {
		return ""
	}

	info := &InfoPanel{Title: "Cursor", Width: m.width}
	info.Content = append(info.Content,
		fmt.Sprintf("Position:   %.2f, %.2f", m.state.X, m.state.Y),
		fmt.Sprintf("Visible:    %t", !m.state.Hidden),
		fmt.Sprintf("Buttons:    %d", m.state.Pressed),
	)
	if m.state.Emulation != "" {
		info.Content = append(info.Content, "Emulation:  "+m.state.Emulation)
	}
	if m.state.Constraint != "" {
		info.Content = append(info.Content, "Constraint: "+m.state.Constraint)
	}

	var b strings.Builder
	b.WriteString(SubheaderStyle.Render("Events"))
	if m.paused {
		b.WriteString(" " + WarningStyle.Render("(paused)"))
	}
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(MutedStyle.Render("No events yet"))
	}
	for i, ev := range m.events {
		style := TextStyle
		if ev.Emulated {
			style = EmulatedStyle
		}
		b.WriteString(style.Render(ev.Line))
		if i < len(m.events)-1 {
			b.WriteString("\n")
		}
	}

	devices := m.devices.View()
	if m.notice != nil {
		devices = lipgloss.JoinVertical(lipgloss.Left, devices, m.notice.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		info.View(),
		devices,
		BoxStyle.Width(m.width).Render(b.String()),
		m.controls.View(),
	)
}
