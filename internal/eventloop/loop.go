// Package eventloop runs every state change of the input core on a single
// goroutine.
//
// Producers on other goroutines (device readers, hotplug watchers, timers)
// never touch core state directly. They hand closures to Post and the loop
// runs them one at a time, to completion, in the order they were posted.
package eventloop

import (
	"context"
	"sync"
	"time"
)

// Loop is a run-to-completion callback queue.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
}

// New creates an idle loop. Callbacks only run once Run or Dispatch is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Post queues fn. It is safe to call from any goroutine. It reports false
// once the loop has stopped, in which case fn will never run.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Dispatch runs the callbacks queued so far and returns how many ran.
// Callbacks posted while dispatching run on the next call. It must not be
// called concurrently with Run.
func (l *Loop) Dispatch() int {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Run dispatches callbacks until ctx is cancelled. Queued callbacks that have
// not run when ctx ends are dropped and later Posts are refused.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Dispatch()

		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			l.pending = nil
			l.mu.Unlock()
			return nil
		case <-l.wake:
		}
	}
}

// Timer is a one-shot timer whose callback runs on the loop.
// Its methods must be called from the loop goroutine.
type Timer struct {
	loop    *Loop
	fn      func()
	t       *time.Timer
	gen     uint64
	removed bool
}

// AddTimer creates a disarmed timer that calls fn on the loop when it fires.
func (l *Loop) AddTimer(fn func()) *Timer {
	return &Timer{loop: l, fn: fn}
}

// Update arms the timer to fire after d, replacing any pending expiry.
// A zero or negative d disarms it.
func (t *Timer) Update(d time.Duration) {
	t.gen++
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
	if d <= 0 || t.removed {
		return
	}

	gen := t.gen
	t.t = time.AfterFunc(d, func() {
		t.loop.Post(func() {
			// A later Update or Remove supersedes this expiry.
			if t.gen != gen || t.removed {
				return
			}
			t.t = nil
			t.fn()
		})
	})
}

// Armed reports whether an expiry is pending.
func (t *Timer) Armed() bool {
	return t.t != nil
}

// Remove disarms the timer for good.
func (t *Timer) Remove() {
	t.removed = true
	t.Update(0)
}
