package dispatch

import (
	"github.com/charmbracelet/log"

	"github.com/bnema/waycursor/internal/logger"
)

// LogPolicy writes every event to the log. It is the policy of the headless
// runtime, which has no windows to act on.
type LogPolicy struct {
	log *log.Logger
	// verbose logs motion and frame events at info level instead of debug.
	verbose bool
}

// NewLogPolicy creates a logging policy.
func NewLogPolicy(verbose bool) *LogPolicy {
	return &LogPolicy{log: logger.With("policy"), verbose: verbose}
}

// HandleEvent implements Policy.
func (p *LogPolicy) HandleEvent(ev Event) {
	switch ev.Kind {
	case Motion, TouchMotion, TabletMotion, TabletAxis, Frame, TouchFrame:
		if !p.verbose {
			p.log.Debug(ev.Kind.String(), "event", ev.String())
			return
		}
	}
	p.log.Info(ev.Kind.String(), "event", ev.String())
}

// Rebase implements Policy.
func (p *LogPolicy) Rebase(timeMsec uint32) {
	p.log.Debug("rebase", "time", timeMsec)
}

// ClearPointerFocus implements FocusClearer.
func (p *LogPolicy) ClearPointerFocus() {
	p.log.Debug("pointer focus cleared")
}
