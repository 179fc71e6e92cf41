// Package events provides the typed event bus for threshold-crossing
// notifications emitted by the profiler.
package events

import "time"

// Type identifies profiler events.
type Type uint8

const (
	TypeScreenEnter Type = iota
	TypeScreenExit
	TypeSlowRender
	TypeMemorySpike
	TypeFrameDrop
	TypeMainThreadJank

	numTypes
)

// String returns the wire name of the event type.
func (t Type) String() string {
	switch t {
	case TypeScreenEnter:
		return "screen_enter"
	case TypeScreenExit:
		return "screen_exit"
	case TypeSlowRender:
		return "slow_render"
	case TypeMemorySpike:
		return "memory_spike"
	case TypeFrameDrop:
		return "frame_drop"
	case TypeMainThreadJank:
		return "main_thread_jank"
	}
	return "unknown"
}

// Event represents a single profiler event.
type Event struct {
	Type Type
	Time time.Time

	// Screen carries the screen name for enter/exit events and the screen
	// an event was attributed to otherwise (may be empty).
	Screen string

	// Optional fields depending on event type
	Component   string  // slow render: component name
	DurationMs  float64 // slow render: render duration
	ThresholdMs float64 // slow render: the threshold that was crossed
	TimeOnMs    float64 // screen exit: finalized time on screen
	MemoryDelta int64   // screen exit / memory spike: bytes
	Memory      uint64  // memory spike: current usage in bytes
	MemLimit    uint64  // memory spike: configured spike threshold in bytes
	FPS         float64 // frame drop: instantaneous fps
	Dropped     int     // frame drop: frames dropped since last callback
	BlockMs     float64 // main thread jank: blocked duration
}

// NewScreenEnterEvent creates a screen enter event.
func NewScreenEnterEvent(now time.Time, screen string) Event {
	return Event{
		Type:   TypeScreenEnter,
		Time:   now,
		Screen: screen,
	}
}

// NewScreenExitEvent creates a screen exit event with finalized metrics.
func NewScreenExitEvent(now time.Time, screen string, timeOnMs float64, memoryDelta int64) Event {
	return Event{
		Type:        TypeScreenExit,
		Time:        now,
		Screen:      screen,
		TimeOnMs:    timeOnMs,
		MemoryDelta: memoryDelta,
	}
}

// NewSlowRenderEvent creates a slow render event. thresholdMs is whichever
// configured threshold the duration crossed.
func NewSlowRenderEvent(now time.Time, screen, component string, durationMs, thresholdMs float64) Event {
	return Event{
		Type:        TypeSlowRender,
		Time:        now,
		Screen:      screen,
		Component:   component,
		DurationMs:  durationMs,
		ThresholdMs: thresholdMs,
	}
}

// NewMemorySpikeEvent creates a memory spike event.
func NewMemorySpikeEvent(now time.Time, screen string, delta int64, current, threshold uint64) Event {
	return Event{
		Type:        TypeMemorySpike,
		Time:        now,
		Screen:      screen,
		MemoryDelta: delta,
		Memory:      current,
		MemLimit:    threshold,
	}
}

// NewFrameDropEvent creates a frame drop event.
func NewFrameDropEvent(now time.Time, screen string, fps float64, dropped int) Event {
	return Event{
		Type:    TypeFrameDrop,
		Time:    now,
		Screen:  screen,
		FPS:     fps,
		Dropped: dropped,
	}
}

// NewMainThreadJankEvent creates a main thread jank event.
func NewMainThreadJankEvent(now time.Time, screen string, blockMs float64) Event {
	return Event{
		Type:    TypeMainThreadJank,
		Time:    now,
		Screen:  screen,
		BlockMs: blockMs,
	}
}
