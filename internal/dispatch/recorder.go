package dispatch

// Recorder is a Policy that keeps everything it receives. Replays print
// from it and tests assert on it.
type Recorder struct {
	events      []Event
	rebases     []uint32
	focusClears int

	// DenySetCursor makes AllowsSetCursor refuse client cursor requests.
	DenySetCursor bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// HandleEvent implements Policy.
func (r *Recorder) HandleEvent(ev Event) {
	r.events = append(r.events, ev)
}

// Rebase implements Policy.
func (r *Recorder) Rebase(timeMsec uint32) {
	r.rebases = append(r.rebases, timeMsec)
}

// ClearPointerFocus implements FocusClearer.
func (r *Recorder) ClearPointerFocus() {
	r.focusClears++
}

// AllowsSetCursor implements CursorRequestFilter.
func (r *Recorder) AllowsSetCursor() bool {
	return !r.DenySetCursor
}

// Events returns the recorded events in delivery order.
func (r *Recorder) Events() []Event {
	return r.events
}

// Kinds returns the kind of every recorded event.
func (r *Recorder) Kinds() []Kind {
	kinds := make([]Kind, len(r.events))
	for i, ev := range r.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// Filter returns the recorded events of one kind.
func (r *Recorder) Filter(kind Kind) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Rebases returns the timestamps of every Rebase call.
func (r *Recorder) Rebases() []uint32 {
	return r.rebases
}

// FocusClears returns how often pointer focus was cleared.
func (r *Recorder) FocusClears() int {
	return r.focusClears
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.events = nil
	r.rebases = nil
	r.focusClears = 0
}
