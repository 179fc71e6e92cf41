package profiler

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/pulse/sampler"
)

// windowCounters accumulate events for the current reporting interval and
// reset on every flush.
type windowCounters struct {
	start           time.Time
	durations       []float64
	renders         int
	mounts          int
	slowRenders     int
	verySlowRenders int
	interactions    int
	droppedFrames   int
	memorySpikes    int
}

// IntervalReport is one flushed reporting window, shaped for CSV output.
type IntervalReport struct {
	SessionID   string    `csv:"session_id"`
	WindowStart time.Time `csv:"-"`
	WindowEnd   time.Time `csv:"-"`
	WindowEndMs int64     `csv:"window_end_ms"`
	Screen      string    `csv:"screen"`

	Renders         int `csv:"renders"`
	Mounts          int `csv:"mounts"`
	SlowRenders     int `csv:"slow_renders"`
	VerySlowRenders int `csv:"very_slow_renders"`
	Interactions    int `csv:"interactions"`
	DroppedFrames   int `csv:"dropped_frames"`
	MemorySpikes    int `csv:"memory_spikes"`

	FPSCurrent float64 `csv:"fps_current"`
	FPSMean    float64 `csv:"fps_mean"`
	FPSP10     float64 `csv:"fps_p10"`
	FPSP50     float64 `csv:"fps_p50"`
	FPSP90     float64 `csv:"fps_p90"`

	RenderMeanMs float64 `csv:"render_mean_ms"`
	RenderP50Ms  float64 `csv:"render_p50_ms"`
	RenderP90Ms  float64 `csv:"render_p90_ms"`

	MemoryCurrentMB float64 `csv:"memory_current_mb"`
	MemoryPeakMB    float64 `csv:"memory_peak_mb"`

	HealthScore int `csv:"health_score"`
}

// LogStats logs the report using slog.
func (r IntervalReport) LogStats() {
	slog.Info("report",
		"session", r.SessionID,
		"screen", r.Screen,
		"renders", r.Renders,
		"mounts", r.Mounts,
		"slow_renders", r.SlowRenders,
		"very_slow_renders", r.VerySlowRenders,
		"interactions", r.Interactions,
		"dropped_frames", r.DroppedFrames,
		"memory_spikes", r.MemorySpikes,
		"fps_current", r.FPSCurrent,
		"fps_mean", r.FPSMean,
		"memory_current_mb", r.MemoryCurrentMB,
		"memory_peak_mb", r.MemoryPeakMB,
		"health_score", r.HealthScore,
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (r IntervalReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("session", r.SessionID),
		slog.String("screen", r.Screen),
		slog.Int("renders", r.Renders),
		slog.Int("mounts", r.Mounts),
		slog.Int("slow_renders", r.SlowRenders),
		slog.Int("very_slow_renders", r.VerySlowRenders),
		slog.Int("interactions", r.Interactions),
		slog.Int("dropped_frames", r.DroppedFrames),
		slog.Int("memory_spikes", r.MemorySpikes),
		slog.Float64("fps_current", r.FPSCurrent),
		slog.Float64("fps_mean", r.FPSMean),
		slog.Float64("memory_current_mb", r.MemoryCurrentMB),
		slog.Float64("memory_peak_mb", r.MemoryPeakMB),
		slog.Int("health_score", r.HealthScore),
	)
}

// scheduleReport arms the interval reporting task.
func (p *Profiler) scheduleReport() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.session.Enabled {
		return
	}
	p.window.start = p.now()
	p.reportCancel = p.sched.After(p.cfg.Derived.ReportInterval, p.reportTick)
}

// reportTick samples memory, flushes the window, and reschedules itself
// while the session runs.
func (p *Profiler) reportTick() {
	// Memory sampling first so the report carries a fresh reading. Spike
	// detection may emit through the bus here.
	p.memory.Sample()

	p.mu.Lock()
	if !p.session.Enabled {
		p.mu.Unlock()
		return
	}
	report := p.flushWindowLocked()
	onReport := p.onReport
	logStats := p.logStats
	p.reportCancel = p.sched.After(p.cfg.Derived.ReportInterval, p.reportTick)
	p.mu.Unlock()

	if logStats {
		report.LogStats()
	}
	if onReport != nil {
		onReport(report)
	}
}

// flushWindowLocked produces a report and resets the window counters.
// Caller holds the lock.
func (p *Profiler) flushWindowLocked() IntervalReport {
	now := p.now()
	fpsStats := p.frames.Stats()
	dist := sampler.Summarize(p.frames.Values())
	rdist := sampler.Summarize(p.window.durations)
	current := p.memory.Current()
	peak := p.memory.Peak()
	score, _ := p.healthLocked(fpsStats.Average, current)

	report := IntervalReport{
		SessionID:   p.session.ID,
		WindowStart: p.window.start,
		WindowEnd:   now,
		WindowEndMs: now.UnixMilli(),
		Screen:      p.current,

		Renders:         p.window.renders,
		Mounts:          p.window.mounts,
		SlowRenders:     p.window.slowRenders,
		VerySlowRenders: p.window.verySlowRenders,
		Interactions:    p.window.interactions,
		DroppedFrames:   p.window.droppedFrames,
		MemorySpikes:    p.window.memorySpikes,

		FPSCurrent: fpsStats.Current,
		FPSMean:    dist.Mean,
		FPSP10:     dist.P10,
		FPSP50:     dist.P50,
		FPSP90:     dist.P90,

		RenderMeanMs: rdist.Mean,
		RenderP50Ms:  rdist.P50,
		RenderP90Ms:  rdist.P90,

		MemoryCurrentMB: float64(current) / bytesPerMB,
		MemoryPeakMB:    float64(peak) / bytesPerMB,

		HealthScore: score,
	}

	p.window = windowCounters{start: now}
	return report
}
