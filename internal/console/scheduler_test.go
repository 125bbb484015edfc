package console

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSchedulerDoRunsInOrder(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		s.Do(func() { order = append(order, i) })
	}

	if len(order) != 3 || order[0] != 1 || order[2] != 3 {
		t.Fatalf("expected ordered execution, got %v", order)
	}
}

func TestSchedulerAfterFires(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Bool
	s.After(10*time.Millisecond, func() { fired.Store(true) })

	waitFor(t, time.Second, fired.Load)
}

func TestSchedulerAfterCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Bool
	cancel := s.After(30*time.Millisecond, func() { fired.Store(true) })
	cancel()

	time.Sleep(80 * time.Millisecond)
	if fired.Load() {
		t.Fatal("cancelled task must not fire")
	}
}

func TestSchedulerCloseDropsPendingWork(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Bool
	s.After(30*time.Millisecond, func() { fired.Store(true) })
	s.Close()

	time.Sleep(80 * time.Millisecond)
	if fired.Load() {
		t.Fatal("pending task must not fire after Close")
	}

	// Late enqueues are no-ops rather than panics.
	s.Do(func() { fired.Store(true) })
	s.Post(func() { fired.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Fatal("tasks enqueued after Close must be dropped")
	}
}
