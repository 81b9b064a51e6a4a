// Package signal provides typed publish/subscribe hooks with scoped
// subscription ownership.
//
// Signals are not safe for concurrent use. They are emitted and subscribed to
// from the event loop goroutine only.
package signal

// Signal delivers values of type T to every subscribed listener in
// subscription order.
type Signal[T any] struct {
	listeners []*listener[T]
}

type listener[T any] struct {
	fn      func(T)
	removed bool
}

// Subscribe adds fn as a listener and returns the handle that removes it.
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	l := &listener[T]{fn: fn}
	s.listeners = append(s.listeners, l)
	return &Subscription{cancel: func() { s.remove(l) }}
}

// Emit calls every listener with v. Listeners removed while Emit runs are
// not called afterwards, and listeners added while Emit runs are only called
// by the next Emit.
func (s *Signal[T]) Emit(v T) {
	snapshot := make([]*listener[T], len(s.listeners))
	copy(snapshot, s.listeners)
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		l.fn(v)
	}
}

// Len returns the number of live listeners.
func (s *Signal[T]) Len() int {
	return len(s.listeners)
}

func (s *Signal[T]) remove(l *listener[T]) {
	l.removed = true
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Subscription is a handle on one listener.
type Subscription struct {
	cancel func()
}

// Close removes the listener. Closing twice is a no-op.
func (s *Subscription) Close() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Group owns a set of subscriptions that end together.
type Group struct {
	subs []*Subscription
}

// Add takes ownership of sub.
func (g *Group) Add(sub *Subscription) {
	g.subs = append(g.subs, sub)
}

// Len returns the number of subscriptions the group still owns.
func (g *Group) Len() int {
	return len(g.subs)
}

// Close removes every owned listener.
func (g *Group) Close() {
	for _, sub := range g.subs {
		sub.Close()
	}
	g.subs = nil
}

// Connect subscribes fn to s and hands the subscription to g.
func Connect[T any](g *Group, s *Signal[T], fn func(T)) {
	g.Add(s.Subscribe(fn))
}
