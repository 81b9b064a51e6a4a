package dispatch

import (
	"github.com/bnema/waycursor/internal/clock"
	"github.com/bnema/waycursor/internal/device"
)

// Funnel stamps events and hands them to the policy.
type Funnel struct {
	policy Policy
	clock  clock.Clock
	seq    map[*device.Device]uint64
}

// NewFunnel creates a funnel delivering to policy. Events without a
// timestamp get one from clk.
func NewFunnel(policy Policy, clk clock.Clock) *Funnel {
	return &Funnel{
		policy: policy,
		clock:  clk,
		seq:    make(map[*device.Device]uint64),
	}
}

// Send delivers ev to the policy.
func (f *Funnel) Send(ev Event) {
	if ev.TimeMsec == 0 {
		ev.TimeMsec = f.clock.NowMsec()
	}
	if ev.Device != nil {
		f.seq[ev.Device]++
		ev.Seq = f.seq[ev.Device]
	}
	f.policy.HandleEvent(ev)
}

// Rebase asks the policy to re-evaluate the node under the cursor.
func (f *Funnel) Rebase() {
	f.policy.Rebase(f.clock.NowMsec())
}

// Forget drops the sequence counter of a removed device.
func (f *Funnel) Forget(dev *device.Device) {
	delete(f.seq, dev)
}

// Now returns the funnel's notion of the current time.
func (f *Funnel) Now() uint32 {
	return f.clock.NowMsec()
}

// ClearPointerFocus forwards to the policy when it tracks focus.
func (f *Funnel) ClearPointerFocus() {
	if fc, ok := f.policy.(FocusClearer); ok {
		fc.ClearPointerFocus()
	}
}

// AllowsSetCursor asks the policy whether client cursor images are accepted
// right now. Policies without an opinion allow them.
func (f *Funnel) AllowsSetCursor() bool {
	if filter, ok := f.policy.(CursorRequestFilter); ok {
		return filter.AllowsSetCursor()
	}
	return true
}
