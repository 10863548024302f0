// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type task struct {
	id       int64
	due      time.Time
	interval time.Duration
	fn       func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler runs one-shot and periodic callbacks off a single heap-ordered queue.
// Callbacks run on their own goroutine so a slow one never delays the others.
type Scheduler struct {
	mu     sync.Mutex
	queue  taskQueue
	nextID int64
	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		nextID: 1,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	heap.Init(&s.queue)
	go s.run()
	return s
}

// After schedules fn once after delay.
func (s *Scheduler) After(delay time.Duration, fn func()) int64 {
	return s.add(delay, 0, fn)
}

// Every schedules fn every interval, first after one interval.
func (s *Scheduler) Every(interval time.Duration, fn func()) int64 {
	return s.add(interval, interval, fn)
}

func (s *Scheduler) add(delay, interval time.Duration, fn func()) int64 {
	s.mu.Lock()
	t := &task{
		id:       s.nextID,
		due:      time.Now().Add(delay),
		interval: interval,
		fn:       fn,
	}
	s.nextID++
	heap.Push(&s.queue, t)
	s.mu.Unlock()

	s.poke()
	return t.id
}

// Cancel removes a pending task. Unknown ids are ignored.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.queue {
		if t.id == id {
			heap.Remove(&s.queue, i)
			return
		}
	}
}

// Pending reports how many tasks are queued.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Stop halts the scheduler. Callbacks already started keep running.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait := s.fireDue(time.Now())
		timer.Reset(wait)

		select {
		case <-s.stop:
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// fireDue launches every task that is due and returns how long to sleep.
func (s *Scheduler) fireDue(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.queue.Len() > 0 {
		t := s.queue[0]
		if t.due.After(now) {
			return t.due.Sub(now)
		}
		heap.Pop(&s.queue)
		go t.fn()

		if t.interval > 0 {
			t.due = now.Add(t.interval)
			heap.Push(&s.queue, t)
		}
	}
	return time.Hour
}
