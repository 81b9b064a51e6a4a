package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc"
)

// ProgramConfig holds configuration for running a UI program
type ProgramConfig struct {
	// AltScreen takes over the whole terminal.
	AltScreen bool
	// LogFile receives the rendered output instead of the terminal.
	LogFile string
	// KillTimeout bounds how long a program may take to quit after the
	// context ends.
	KillTimeout time.Duration
}

// DefaultProgramConfig returns default configuration
func DefaultProgramConfig() ProgramConfig {
	return ProgramConfig{
		AltScreen:   true,
		KillTimeout: 2 * time.Second,
	}
}

// ProgramRunner manages the lifecycle of a Bubble Tea program fed by a
// Forwarder
type ProgramRunner struct {
	config  ProgramConfig
	program *tea.Program
	done    chan struct{}
}

// NewProgramRunner creates a new program runner
func NewProgramRunner(config ProgramConfig) *ProgramRunner {
	if config.KillTimeout <= 0 {
		config.KillTimeout = 2 * time.Second
	}
	return &ProgramRunner{
		config: config,
		done:   make(chan struct{}),
	}
}

// Run shows model until the user quits or ctx ends. Messages queued on fwd
// are delivered to the program while it runs.
func (r *ProgramRunner) Run(ctx context.Context, model tea.Model, fwd *Forwarder) error {
	defer close(r.done)

	var opts []tea.ProgramOption
	if r.config.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if r.config.LogFile != "" {
		f, err := os.OpenFile(r.config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(model, opts...)

	pumpCtx, stopPump := context.WithCancel(ctx)
	var wg conc.WaitGroup
	if fwd != nil {
		wg.Go(func() { fwd.Run(pumpCtx, r.program.Send) })
	}
	defer func() {
		stopPump()
		wg.Wait()
	}()

	errCh := make(chan error, 1)
	go func() {
		_, err := r.program.Run()
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		r.program.Quit()
		select {
		case <-errCh:
		case <-time.After(r.config.KillTimeout):
			r.program.Kill()
			<-errCh
		}
		return nil
	}
}

// Quit sends a quit message to the program
func (r *ProgramRunner) Quit() {
	if r.program != nil {
		r.program.Quit()
	}
}

// Done returns a channel that's closed when the program exits
func (r *ProgramRunner) Done() <-chan struct{} {
	return r.done
}
