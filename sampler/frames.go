package sampler

import (
	"math"
	"sync"
	"time"

	"github.com/eapache/queue"
)

// ideal 60Hz frame interval used for dropped-frame detection. Detection is
// wall-clock based, an intentional approximation of a vsync signal.
const idealFrame = time.Second / 60

// FPSStats summarizes the bounded FPS history.
type FPSStats struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// FrameCallbacks receive frame loop findings. They are invoked outside the
// sampler's lock, on the scheduler's goroutine.
type FrameCallbacks struct {
	// OnDrop fires when a callback delta spans more than one 60Hz frame
	// interval. fps is the instantaneous rate implied by the delta.
	OnDrop func(now time.Time, fps float64, dropped int)
	// OnJank fires when a callback delta exceeds the jank block threshold.
	OnJank func(now time.Time, blockMs float64)
}

// FrameSampler maintains a bounded FIFO of per-second FPS readings and runs
// a self-rescheduling timing loop that detects dropped frames.
type FrameSampler struct {
	mu sync.Mutex

	history     *queue.Queue
	historySize int
	current     float64
	minFPS      float64
	maxFPS      float64
	haveMinMax  bool

	targetFPS float64
	clampMax  float64
	jankMs    float64

	sched Scheduler
	now   func() time.Time
	cb    FrameCallbacks

	running          bool
	cancel           Cancel
	lastTick         time.Time
	secondStart      time.Time
	framesThisSecond int
}

// FrameSamplerOptions configure a FrameSampler. Zero values fall back to
// 60-entry history, 60 target fps, 120 clamp, 500ms jank threshold.
type FrameSamplerOptions struct {
	HistorySize int
	TargetFPS   float64
	ClampMax    float64
	JankBlockMs float64
	Now         func() time.Time
	Callbacks   FrameCallbacks
}

// NewFrameSampler creates a sampler driven by sched.
func NewFrameSampler(sched Scheduler, opts FrameSamplerOptions) *FrameSampler {
	if opts.HistorySize < 1 {
		opts.HistorySize = 60
	}
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 60
	}
	if opts.ClampMax <= 0 {
		opts.ClampMax = 120
	}
	if opts.JankBlockMs <= 0 {
		opts.JankBlockMs = 500
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &FrameSampler{
		history:     queue.New(),
		historySize: opts.HistorySize,
		targetFPS:   opts.TargetFPS,
		clampMax:    opts.ClampMax,
		jankMs:      opts.JankBlockMs,
		sched:       sched,
		now:         opts.Now,
		cb:          opts.Callbacks,
	}
}

// RecordFPS clamps value to [0, clampMax] and pushes it into the history,
// evicting the oldest reading beyond capacity.
func (f *FrameSampler) RecordFPS(value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordLocked(value)
}

func (f *FrameSampler) recordLocked(value float64) {
	if value < 0 {
		value = 0
	}
	if value > f.clampMax {
		value = f.clampMax
	}

	f.history.Add(value)
	for f.history.Length() > f.historySize {
		f.history.Remove()
	}

	f.current = value
	if !f.haveMinMax {
		f.minFPS = value
		f.maxFPS = value
		f.haveMinMax = true
	} else {
		if value < f.minFPS {
			f.minFPS = value
		}
		if value > f.maxFPS {
			f.maxFPS = value
		}
	}
}

// Stats returns current/min/max/average over the history.
func (f *FrameSampler) Stats() FPSStats {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.history.Length()
	stats := FPSStats{
		Current: f.current,
		Min:     f.minFPS,
		Max:     f.maxFPS,
		Count:   n,
	}
	if n == 0 {
		return stats
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += f.history.Get(i).(float64)
	}
	stats.Average = sum / float64(n)
	return stats
}

// Values returns a copy of the history, oldest first.
func (f *FrameSampler) Values() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]float64, f.history.Length())
	for i := range out {
		out[i] = f.history.Get(i).(float64)
	}
	return out
}

// Score converts the current reading into a 0-100 score relative to the
// target frame rate.
func (f *FrameSampler) Score() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	score := int(math.Round(f.current / f.targetFPS * 100))
	if score > 100 {
		score = 100
	}
	return score
}

// Reset clears the history and min/max tracking. The loop keeps running if
// it was running.
func (f *FrameSampler) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.history = queue.New()
	f.current = 0
	f.minFPS = 0
	f.maxFPS = 0
	f.haveMinMax = false
	f.framesThisSecond = 0
	f.secondStart = f.now()
}

// Start begins the self-rescheduling timing loop. Idempotent.
func (f *FrameSampler) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return
	}
	f.running = true
	now := f.now()
	f.lastTick = now
	f.secondStart = now
	f.framesThisSecond = 0
	f.cancel = f.sched.NextFrame(f.tick)
}

// Stop cancels the loop's next scheduling step. Idempotent.
func (f *FrameSampler) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}
	f.running = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Running reports whether the loop is active.
func (f *FrameSampler) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// tick measures the wall-clock delta since the previous callback, records
// dropped frames and jank, and reschedules itself while running.
func (f *FrameSampler) tick() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}

	now := f.now()
	delta := now.Sub(f.lastTick)
	f.lastTick = now

	var (
		dropFPS  float64
		dropped  int
		jankMs   float64
		haveJank bool
	)

	if delta > 0 {
		intervals := int(delta / idealFrame)
		if intervals > 1 {
			dropped = intervals - 1
			dropFPS = float64(time.Second) / float64(delta)
		}

		deltaMs := float64(delta) / float64(time.Millisecond)
		if deltaMs > f.jankMs {
			jankMs = deltaMs
			haveJank = true
		}
	}

	// Per-second reading: count callbacks, flush once a second has elapsed.
	f.framesThisSecond++
	if elapsed := now.Sub(f.secondStart); elapsed >= time.Second {
		fps := float64(f.framesThisSecond) * float64(time.Second) / float64(elapsed)
		f.recordLocked(fps)
		f.framesThisSecond = 0
		f.secondStart = now
	}

	f.cancel = f.sched.NextFrame(f.tick)
	cb := f.cb
	f.mu.Unlock()

	if dropped > 0 && cb.OnDrop != nil {
		cb.OnDrop(now, dropFPS, dropped)
	}
	if haveJank && cb.OnJank != nil {
		cb.OnJank(now, jankMs)
	}
}
