package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalEmitOrder(t *testing.T) {
	var s Signal[int]
	var got []string

	s.Subscribe(func(v int) { got = append(got, "first") })
	s.Subscribe(func(v int) { got = append(got, "second") })
	s.Emit(1)

	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, 2, s.Len())
}

func TestSignalRemoveDuringEmit(t *testing.T) {
	var s Signal[int]
	calls := 0

	var second *Subscription
	s.Subscribe(func(int) {
		calls++
		second.Close()
	})
	second = s.Subscribe(func(int) {
		t.Fatal("listener closed during emit must not run")
	})

	s.Emit(0)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Len())
}

func TestSignalAddDuringEmit(t *testing.T) {
	var s Signal[int]
	late := 0

	s.Subscribe(func(int) {
		s.Subscribe(func(int) { late++ })
	})

	s.Emit(0)
	assert.Equal(t, 0, late)
	s.Emit(0)
	assert.Equal(t, 1, late)
}

func TestGroupClose(t *testing.T) {
	var a Signal[string]
	var b Signal[float64]
	var g Group

	hits := 0
	Connect(&g, &a, func(string) { hits++ })
	Connect(&g, &b, func(float64) { hits++ })
	assert.Equal(t, 2, g.Len())

	a.Emit("x")
	g.Close()
	a.Emit("y")
	b.Emit(1)

	assert.Equal(t, 1, hits)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, g.Len())

	// Closing again is harmless.
	g.Close()
}

func TestSubscriptionCloseTwice(t *testing.T) {
	var s Signal[int]
	sub := s.Subscribe(func(int) {})
	sub.Close()
	sub.Close()
	assert.Equal(t, 0, s.Len())

	var nilSub *Subscription
	assert.NotPanics(t, nilSub.Close)
}
