package dispatch

// Policy decides what normalized input does: focus changes, window moves,
// delivery to clients. Implementations must not block.
type Policy interface {
	HandleEvent(ev Event)
	// Rebase re-evaluates what lies under the cursor after it may have
	// changed without motion, for instance when an output was enabled.
	Rebase(timeMsec uint32)
}

// FocusClearer is implemented by policies that track pointer focus. The
// cursor calls it when it hides.
type FocusClearer interface {
	ClearPointerFocus()
}

// CursorRequestFilter is implemented by policies that can veto client cursor
// image requests, for instance during an interactive move.
type CursorRequestFilter interface {
	AllowsSetCursor() bool
}

// Tee forwards everything to several policies in order.
type Tee []Policy

// HandleEvent implements Policy.
func (t Tee) HandleEvent(ev Event) {
	for _, p := range t {
		p.HandleEvent(ev)
	}
}

// Rebase implements Policy.
func (t Tee) Rebase(timeMsec uint32) {
	for _, p := range t {
		p.Rebase(timeMsec)
	}
}

// ClearPointerFocus implements FocusClearer for every member that does.
func (t Tee) ClearPointerFocus() {
	for _, p := range t {
		if fc, ok := p.(FocusClearer); ok {
			fc.ClearPointerFocus()
		}
	}
}

// AllowsSetCursor implements CursorRequestFilter; every member must agree.
func (t Tee) AllowsSetCursor() bool {
	for _, p := range t {
		if f, ok := p.(CursorRequestFilter); ok && !f.AllowsSetCursor() {
			return false
		}
	}
	return true
}
