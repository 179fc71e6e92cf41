// Package sampler provides the frame and memory samplers plus the timer
// abstraction they are scheduled through.
package sampler

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a pending callback. Calling it after the callback ran, or
// more than once, is harmless.
type Cancel func()

// Scheduler is the host timing surface the samplers depend on: a next-frame
// callback and a delayed callback. Both fire exactly once.
type Scheduler interface {
	NextFrame(fn func()) Cancel
	After(d time.Duration, fn func()) Cancel
}

// TimerScheduler implements Scheduler on stdlib timers. NextFrame fires after
// the configured frame interval.
type TimerScheduler struct {
	frameInterval time.Duration
}

// NewTimerScheduler creates a scheduler whose NextFrame period is interval.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TimerScheduler{frameInterval: interval}
}

// NextFrame schedules fn after one frame interval.
func (s *TimerScheduler) NextFrame(fn func()) Cancel {
	t := time.AfterFunc(s.frameInterval, fn)
	return func() { t.Stop() }
}

// After schedules fn after d.
func (s *TimerScheduler) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a Scheduler driven by explicit Advance calls, for
// deterministic tests. Callbacks run on the goroutine calling Advance.
type ManualScheduler struct {
	mu            sync.Mutex
	now           time.Time
	frameInterval time.Duration
	nextID        int
	pending       []*manualTask
}

type manualTask struct {
	id       int
	due      time.Time
	fn       func()
	canceled bool
}

// NewManualScheduler creates a manual scheduler starting at start.
func NewManualScheduler(start time.Time, frameInterval time.Duration) *ManualScheduler {
	if frameInterval <= 0 {
		frameInterval = 16 * time.Millisecond
	}
	return &ManualScheduler{now: start, frameInterval: frameInterval}
}

// Now returns the scheduler's current virtual time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// NextFrame schedules fn one frame interval from virtual now.
func (s *ManualScheduler) NextFrame(fn func()) Cancel {
	return s.After(s.frameInterval, fn)
}

// After schedules fn at virtual now + d.
func (s *ManualScheduler) After(d time.Duration, fn func()) Cancel {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	task := &manualTask{id: s.nextID, due: s.now.Add(d), fn: fn}
	s.pending = append(s.pending, task)
	return func() {
		s.mu.Lock()
		task.canceled = true
		s.mu.Unlock()
	}
}

// Advance moves virtual time forward by d, running due callbacks in due
// order. Callbacks may schedule further callbacks; those run too if they
// fall within the advanced span.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	deadline := s.now.Add(d)

	for {
		task := s.popDue(deadline)
		if task == nil {
			break
		}
		if task.due.After(s.now) {
			s.now = task.due
		}
		s.mu.Unlock()
		task.fn()
		s.mu.Lock()
	}

	s.now = deadline
	s.mu.Unlock()
}

// popDue removes and returns the earliest non-canceled task due by deadline.
// Caller holds the lock.
func (s *ManualScheduler) popDue(deadline time.Time) *manualTask {
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].due.Before(s.pending[j].due)
	})
	for i, task := range s.pending {
		if task.canceled {
			continue
		}
		if task.due.After(deadline) {
			break
		}
		s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
		return task
	}
	// Drop canceled tasks that are due anyway.
	kept := s.pending[:0]
	for _, task := range s.pending {
		if !(task.canceled && !task.due.After(deadline)) {
			kept = append(kept, task)
		}
	}
	s.pending = kept
	return nil
}
