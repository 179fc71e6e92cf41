package profiler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/pulse/config"
	"github.com/pthm-cable/pulse/events"
	"github.com/pthm-cable/pulse/sampler"
)

// Options configure a Profiler. Zero values fall back to the global config,
// a stdlib timer scheduler, and the Go runtime memory reader.
type Options struct {
	Config       *config.Config
	Scheduler    sampler.Scheduler
	MemoryReader sampler.Reader
	Now          func() time.Time

	// OnReport receives each flushed interval report. Optional.
	OnReport func(IntervalReport)
	// LogStats logs flushed reports via slog.
	LogStats bool
}

// Profiler is the session controller. It owns the screen tracker, the frame
// and memory samplers, and the event bus; consumers receive only copies of
// its state. All public operations are safe for concurrent use and none of
// them can fail.
type Profiler struct {
	mu sync.Mutex

	cfg    *config.Config
	bus    *events.Bus
	sched  sampler.Scheduler
	now    func() time.Time
	frames *sampler.FrameSampler
	memory *sampler.MemorySampler

	session    Session
	thresholds Thresholds
	screens    map[string]*ScreenMetrics
	visited    []string
	current    string
	global     GlobalMetrics
	custom     map[string]CustomValue

	window       windowCounters
	reportCancel sampler.Cancel
	onReport     func(IntervalReport)
	logStats     bool
}

// New creates a stopped profiler. Call Start to begin collecting.
func New(opts Options) *Profiler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = sampler.NewTimerScheduler(cfg.Derived.FrameInterval)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var reader sampler.Reader = opts.MemoryReader
	if reader == nil {
		reader = sampler.RuntimeReader{}
	}

	p := &Profiler{
		cfg:   cfg,
		bus:   events.NewBus(),
		sched: sched,
		now:   now,
		thresholds: Thresholds{
			SlowRenderMs:     cfg.Thresholds.SlowRenderMs,
			VerySlowRenderMs: cfg.Thresholds.VerySlowRenderMs,
			MemorySpikeBytes: cfg.Derived.MemorySpikeBytes,
		},
		screens:  make(map[string]*ScreenMetrics),
		custom:   make(map[string]CustomValue),
		onReport: opts.OnReport,
		logStats: opts.LogStats,
	}

	p.memory = sampler.NewMemorySampler(reader, p.thresholds.MemorySpikeBytes, now, p.handleSpike)
	p.frames = sampler.NewFrameSampler(sched, sampler.FrameSamplerOptions{
		HistorySize: cfg.Sampling.FPSHistory,
		TargetFPS:   cfg.Sampling.TargetFPS,
		ClampMax:    cfg.Sampling.FPSMax,
		JankBlockMs: cfg.Thresholds.JankBlockMs,
		Now:         now,
		Callbacks: sampler.FrameCallbacks{
			OnDrop: p.handleDrop,
			OnJank: p.handleJank,
		},
	})

	return p
}

// Start begins a session: records the start time, clears prior screen and
// global state, and starts the frame-sampling loop. Idempotent.
func (p *Profiler) Start() {
	p.mu.Lock()
	if p.session.Enabled {
		p.mu.Unlock()
		return
	}
	p.session = Session{ID: uuid.NewString(), StartTime: p.now(), Enabled: true}
	p.clearLocked()
	p.mu.Unlock()

	p.frames.Reset()
	p.frames.Start()
	p.memory.Reset()
	p.scheduleReport()
}

// Stop halts sampling and returns a deep snapshot of the session.
// Idempotent; stopping a stopped profiler just returns the snapshot.
func (p *Profiler) Stop() Snapshot {
	p.mu.Lock()
	if p.session.Enabled {
		p.session.Enabled = false
		if p.reportCancel != nil {
			p.reportCancel()
			p.reportCancel = nil
		}
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.frames.Stop()
	return snap
}

// IsEnabled reports whether a session is running.
func (p *Profiler) IsEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Enabled
}

// Session returns a copy of the current session record.
func (p *Profiler) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Configure updates classification thresholds. Collected data is untouched;
// the new thresholds apply to future events only. Zero fields are ignored.
func (p *Profiler) Configure(t Thresholds) {
	p.mu.Lock()
	if t.SlowRenderMs > 0 {
		p.thresholds.SlowRenderMs = t.SlowRenderMs
	}
	if t.VerySlowRenderMs > 0 {
		p.thresholds.VerySlowRenderMs = t.VerySlowRenderMs
	}
	spike := t.MemorySpikeBytes
	if spike > 0 {
		p.thresholds.MemorySpikeBytes = spike
	}
	p.mu.Unlock()

	if spike > 0 {
		p.memory.SetThreshold(spike)
	}
}

// Reset clears all screens, global metrics, FPS history, and custom data,
// replacing the session record. Sampling restarts if it was running.
func (p *Profiler) Reset() {
	p.mu.Lock()
	running := p.session.Enabled
	p.session = Session{ID: uuid.NewString(), StartTime: p.now(), Enabled: running}
	p.clearLocked()
	p.custom = make(map[string]CustomValue)
	p.mu.Unlock()

	p.frames.Reset()
	p.memory.Reset()
	if running {
		p.frames.Start()
	}
}

// clearLocked wipes screen/global/window state and starts a fresh reporting
// window. Caller holds the lock.
func (p *Profiler) clearLocked() {
	p.screens = make(map[string]*ScreenMetrics)
	p.visited = nil
	p.current = ""
	p.global = GlobalMetrics{}
	p.window = windowCounters{start: p.now()}
}

// RecordFPS feeds an external per-second FPS reading into the history.
// No-op while disabled.
func (p *Profiler) RecordFPS(value float64) {
	if !p.IsEnabled() {
		return
	}
	p.frames.RecordFPS(value)
}

// CheckMemory reads the platform capability and runs spike detection on the
// reading. Returns the reading (0 when the capability is unavailable).
func (p *Profiler) CheckMemory() uint64 {
	if !p.IsEnabled() {
		return 0
	}
	return p.memory.Sample()
}

// On subscribes fn to event type t and returns an unsubscribe function.
func (p *Profiler) On(t events.Type, fn events.Handler) func() {
	h := p.bus.On(t, fn)
	return func() { p.bus.Off(h) }
}

// Bus exposes the event bus for handle-based subscription management.
func (p *Profiler) Bus() *events.Bus {
	return p.bus
}

// SetCustomData stores a tag in the custom data bag.
func (p *Profiler) SetCustomData(key string, value CustomValue) {
	p.mu.Lock()
	p.custom[key] = value
	p.mu.Unlock()
}

// GetCustomData returns the tag for key, if set.
func (p *Profiler) GetCustomData(key string) (CustomValue, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.custom[key]
	return v, ok
}

// ClearCustomData removes the named keys, or the whole bag when called with
// no arguments.
func (p *Profiler) ClearCustomData(keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(keys) == 0 {
		p.custom = make(map[string]CustomValue)
		return
	}
	for _, k := range keys {
		delete(p.custom, k)
	}
}

// handleDrop attributes dropped frames to the active screen and emits a
// frame drop event. Invoked by the frame loop.
func (p *Profiler) handleDrop(now time.Time, fps float64, dropped int) {
	p.mu.Lock()
	if !p.session.Enabled {
		p.mu.Unlock()
		return
	}
	screen := p.current
	if s := p.screens[screen]; s != nil {
		s.DroppedFrames += dropped
	}
	p.window.droppedFrames += dropped
	p.mu.Unlock()

	p.bus.Emit(events.NewFrameDropEvent(now, screen, fps, dropped))
}

// handleJank accumulates main thread block time on the active screen and
// emits a jank event. Invoked by the frame loop.
func (p *Profiler) handleJank(now time.Time, blockMs float64) {
	p.mu.Lock()
	if !p.session.Enabled {
		p.mu.Unlock()
		return
	}
	screen := p.current
	if s := p.screens[screen]; s != nil {
		s.MainThreadBlockMs += blockMs
	}
	p.mu.Unlock()

	p.bus.Emit(events.NewMainThreadJankEvent(now, screen, blockMs))
}

// handleSpike records the spike against global memory tracking and emits a
// memory spike event. Invoked by the memory sampler.
func (p *Profiler) handleSpike(now time.Time, delta int64, current, threshold uint64) {
	p.mu.Lock()
	if !p.session.Enabled {
		p.mu.Unlock()
		return
	}
	screen := p.current
	p.window.memorySpikes++
	p.mu.Unlock()

	p.bus.Emit(events.NewMemorySpikeEvent(now, screen, delta, current, threshold))
}
