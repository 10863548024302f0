package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_After(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	fired := make(chan struct{})
	s.After(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("one-shot task did not fire")
	}
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_Every(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var n atomic.Int32
	s.Every(5*time.Millisecond, func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.Pending())
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var n atomic.Int32
	id := s.After(50*time.Millisecond, func() { n.Add(1) })
	s.Cancel(id)
	s.Cancel(9999)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, n.Load())
	assert.Zero(t, s.Pending())
}

func TestScheduler_OrdersByDueTime(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	order := make(chan int, 2)
	s.After(60*time.Millisecond, func() { order <- 2 })
	s.After(10*time.Millisecond, func() { order <- 1 })

	assert.Equal(t, 1, <-order)
	assert.Equal(t, 2, <-order)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler()
	s.Stop()
	s.Stop()
}
