package console

import (
	"sync"
	"time"
)

// Scheduler serializes console work on a single task queue. Delayed tasks get
// a cancellation handle, and once the scheduler is closed every pending or
// late-arriving task becomes a no-op instead of acting on torn-down state.
type Scheduler struct {
	tasks chan func()
	quit  chan struct{}

	mu     sync.Mutex
	closed bool
	timers map[*time.Timer]struct{}

	wg sync.WaitGroup
}

// NewScheduler starts the queue's run loop.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		tasks:  make(chan func()),
		quit:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		select {
		case task := <-s.tasks:
			task()
		case <-s.quit:
			return
		}
	}
}

// Do runs fn on the queue and waits for it to finish. After Close it is a no-op.
func (s *Scheduler) Do(fn func()) {
	done := make(chan struct{})
	select {
	case s.tasks <- func() {
		fn()
		close(done)
	}:
		<-done
	case <-s.quit:
	}
}

// Post enqueues fn without waiting. After Close it is a no-op.
func (s *Scheduler) Post(fn func()) {
	go func() {
		select {
		case s.tasks <- fn:
		case <-s.quit:
		}
	}()
}

// After schedules fn to run on the queue once the delay elapses. The returned
// handle cancels the task if it has not fired yet.
func (s *Scheduler) After(delay time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.forget(timer)
		s.Post(fn)
	})
	s.timers[timer] = struct{}{}

	return func() {
		timer.Stop()
		s.forget(timer)
	}
}

func (s *Scheduler) forget(timer *time.Timer) {
	s.mu.Lock()
	delete(s.timers, timer)
	s.mu.Unlock()
}

// Close stops the run loop and cancels all pending delayed tasks.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = nil
	s.mu.Unlock()

	close(s.quit)
	s.wg.Wait()
}
