package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchOrder(t *testing.T) {
	l := New()
	var got []int
	for i := 0; i < 5; i++ {
		l.Post(func() { got = append(got, i) })
	}

	assert.Equal(t, 5, l.Dispatch())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, l.Dispatch())
}

func TestPostDuringDispatchRunsNextRound(t *testing.T) {
	l := New()
	ran := false
	l.Post(func() {
		l.Post(func() { ran = true })
	})

	l.Dispatch()
	assert.False(t, ran)
	l.Dispatch()
	assert.True(t, ran)
}

func TestRunProcessesPostsFromOtherGoroutines(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var wg sync.WaitGroup
	counter := 0
	results := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() {
				counter++
				results <- counter
			})
		}()
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		select {
		case <-results:
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not run posted callbacks")
		}
	}

	cancel()
	require.NoError(t, <-done)
	assert.False(t, l.Post(func() {}))
}

func TestTimer(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{}, 4)
	var timer *Timer
	l.Post(func() {
		timer = l.AddTimer(func() { fired <- struct{}{} })
		timer.Update(10 * time.Millisecond)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	t.Run("disarmed timer stays quiet", func(t *testing.T) {
		l.Post(func() {
			timer.Update(10 * time.Millisecond)
			timer.Update(0)
		})
		select {
		case <-fired:
			t.Fatal("disarmed timer fired")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("removed timer cannot be re-armed", func(t *testing.T) {
		armed := make(chan bool, 1)
		l.Post(func() {
			timer.Remove()
			timer.Update(time.Millisecond)
			armed <- timer.Armed()
		})
		assert.False(t, <-armed)
	})
}
