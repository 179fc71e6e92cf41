package sampler

import (
	"math"
	"testing"
	"time"
)

func TestManualSchedulerRunsDueTasksInOrder(t *testing.T) {
	s := NewManualScheduler(time.Unix(0, 0), 16*time.Millisecond)

	var order []string
	s.After(30*time.Millisecond, func() { order = append(order, "b") })
	s.After(10*time.Millisecond, func() { order = append(order, "a") })
	s.After(90*time.Millisecond, func() { order = append(order, "late") })

	s.Advance(50 * time.Millisecond)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}

	s.Advance(50 * time.Millisecond)
	if len(order) != 3 || order[2] != "late" {
		t.Errorf("order = %v, want [a b late]", order)
	}
}

func TestManualSchedulerCancel(t *testing.T) {
	s := NewManualScheduler(time.Unix(0, 0), 16*time.Millisecond)

	var ran bool
	cancel := s.After(10*time.Millisecond, func() { ran = true })
	cancel()
	s.Advance(time.Second)

	if ran {
		t.Error("canceled task still ran")
	}
}

func TestManualSchedulerRescheduleWithinAdvance(t *testing.T) {
	s := NewManualScheduler(time.Unix(0, 0), 16*time.Millisecond)

	var ticks int
	var loop func()
	loop = func() {
		ticks++
		s.NextFrame(loop)
	}
	s.NextFrame(loop)

	// 100ms at a 16ms frame interval fits 6 callbacks.
	s.Advance(100 * time.Millisecond)

	if ticks != 6 {
		t.Errorf("ticks = %d, want 6", ticks)
	}
}

func TestManualSchedulerNow(t *testing.T) {
	start := time.Unix(100, 0)
	s := NewManualScheduler(start, 16*time.Millisecond)

	s.Advance(250 * time.Millisecond)
	if got := s.Now().Sub(start); got != 250*time.Millisecond {
		t.Errorf("Now advanced by %v, want 250ms", got)
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{10, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	d := Summarize(values)

	if math.Abs(d.Mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", d.Mean)
	}
	if d.P10 != 1 {
		t.Errorf("p10 = %v, want 1", d.P10)
	}
	if d.P50 != 5 {
		t.Errorf("p50 = %v, want 5", d.P50)
	}
	if d.P90 != 9 {
		t.Errorf("p90 = %v, want 9", d.P90)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	d := Summarize(nil)
	if d.Mean != 0 || d.P10 != 0 || d.P50 != 0 || d.P90 != 0 {
		t.Error("empty set should summarize to zeros")
	}
}
