package profiler

import (
	"fmt"
	"sort"
	"time"

	"github.com/pthm-cable/pulse/sampler"
)

// HealthStatus buckets a health score.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
)

func healthStatus(score int) HealthStatus {
	switch {
	case score >= 80:
		return HealthExcellent
	case score >= 60:
		return HealthGood
	case score >= 40:
		return HealthFair
	default:
		return HealthPoor
	}
}

// ScreenSummary is the derived health view of the active screen.
type ScreenSummary struct {
	Screen            string
	Score             int
	Issues            []string
	TimeOnScreenMs    float64
	AverageFPS        float64
	MemoryDelta       int64
	DroppedFrames     int
	MainThreadBlockMs float64
	InteractionCount  int
	Components        []ComponentMetrics
}

const bytesPerMB = 1024 * 1024

// CurrentScreenSummary scores the active screen. Returns false when no
// screen is active. The score starts at 100, each issue subtracts a fixed
// penalty, and the issues list follows deduction order.
func (p *Profiler) CurrentScreenSummary() (ScreenSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	screen := p.screens[p.current]
	if screen == nil {
		return ScreenSummary{}, false
	}

	fpsAvg := p.frames.Stats().Average
	memDelta := int64(p.memory.ReadCurrent()) - int64(screen.MountMemory)

	score := 100
	var issues []string

	components := sortedComponents(screen)
	for _, comp := range components {
		if comp.AverageRenderMs > p.thresholds.SlowRenderMs {
			score -= 10
			issues = append(issues, fmt.Sprintf("%s renders slowly (avg %.1fms)", comp.Name, comp.AverageRenderMs))
		}
	}

	switch {
	case fpsAvg == 0:
		// No readings yet.
	case fpsAvg < 50:
		score -= 20
		issues = append(issues, fmt.Sprintf("low frame rate (%.1f fps)", fpsAvg))
	case fpsAvg < 55:
		score -= 10
		issues = append(issues, fmt.Sprintf("frame rate below target (%.1f fps)", fpsAvg))
	}

	switch {
	case memDelta > 50*bytesPerMB:
		score -= 20
		issues = append(issues, fmt.Sprintf("high memory growth (+%dMB)", memDelta/bytesPerMB))
	case memDelta > 20*bytesPerMB:
		score -= 10
		issues = append(issues, fmt.Sprintf("memory growth (+%dMB)", memDelta/bytesPerMB))
	}

	if screen.DroppedFrames > 10 {
		score -= 15
		issues = append(issues, fmt.Sprintf("%d dropped frames", screen.DroppedFrames))
	}

	if screen.MainThreadBlockMs > 500 {
		score -= 15
		issues = append(issues, fmt.Sprintf("main thread blocked %.0fms", screen.MainThreadBlockMs))
	}

	if score < 0 {
		score = 0
	}

	return ScreenSummary{
		Screen:            screen.Name,
		Score:             score,
		Issues:            issues,
		TimeOnScreenMs:    screen.TimeOnScreenMs,
		AverageFPS:        fpsAvg,
		MemoryDelta:       memDelta,
		DroppedFrames:     screen.DroppedFrames,
		MainThreadBlockMs: screen.MainThreadBlockMs,
		InteractionCount:  screen.InteractionCount,
		Components:        components,
	}, true
}

// MemoryStats is the memory view exposed in profiler data.
type MemoryStats struct {
	CurrentBytes uint64
	PeakBytes    uint64
}

// ProfilerData is the full derived view: fps stats, memory, render counters,
// the active screen and its components, navigation history, and the overall
// health score.
type ProfilerData struct {
	SessionID       string
	SessionDuration time.Duration
	FPS             sampler.FPSStats
	FPSScore        int
	Memory          MemoryStats
	Global          GlobalMetrics
	CurrentScreen   string
	Components      []ComponentMetrics
	Navigation      []string
	HealthScore     int
	Health          HealthStatus
	Issues          []string
}

// GetProfilerData assembles the global health view. The penalty set is tuned
// independently of the per-screen summary.
func (p *Profiler) GetProfilerData() ProfilerData {
	p.mu.Lock()
	defer p.mu.Unlock()

	fpsStats := p.frames.Stats()
	current := p.memory.Current()
	peak := p.memory.Peak()
	if p.global.PeakMemory > peak {
		peak = p.global.PeakMemory
	}

	score, issues := p.healthLocked(fpsStats.Average, current)

	var components []ComponentMetrics
	if screen := p.screens[p.current]; screen != nil {
		components = sortedComponents(screen)
	}

	navigation := make([]string, len(p.visited))
	copy(navigation, p.visited)

	var duration time.Duration
	if !p.session.StartTime.IsZero() {
		duration = p.now().Sub(p.session.StartTime)
	}

	return ProfilerData{
		SessionID:       p.session.ID,
		SessionDuration: duration,
		FPS:             fpsStats,
		FPSScore:        p.frames.Score(),
		Memory:          MemoryStats{CurrentBytes: current, PeakBytes: peak},
		Global:          p.globalLocked(fpsStats.Average, duration),
		CurrentScreen:   p.current,
		Components:      components,
		Navigation:      navigation,
		HealthScore:     score,
		Health:          healthStatus(score),
		Issues:          issues,
	}
}

// healthLocked scores overall session health from average FPS and current
// memory usage. Caller holds the lock.
func (p *Profiler) healthLocked(avgFPS float64, current uint64) (int, []string) {
	score := 100
	var issues []string

	switch {
	case avgFPS == 0:
		// No readings yet.
	case avgFPS < 50:
		score -= 30
		issues = append(issues, fmt.Sprintf("low frame rate (%.1f fps)", avgFPS))
	case avgFPS < 55:
		score -= 15
		issues = append(issues, fmt.Sprintf("frame rate below target (%.1f fps)", avgFPS))
	}

	if p.global.SlowRenders > 10 {
		score -= 20
		issues = append(issues, fmt.Sprintf("%d slow renders", p.global.SlowRenders))
	}

	if p.global.VerySlowRenders > 0 {
		score -= 25
		issues = append(issues, fmt.Sprintf("%d very slow renders", p.global.VerySlowRenders))
	}

	switch {
	case current > 200*bytesPerMB:
		score -= 20
		issues = append(issues, fmt.Sprintf("high memory usage (%dMB)", current/bytesPerMB))
	case current > 100*bytesPerMB:
		score -= 10
		issues = append(issues, fmt.Sprintf("elevated memory usage (%dMB)", current/bytesPerMB))
	}

	if score < 0 {
		score = 0
	}
	return score, issues
}

// globalLocked returns the global metrics with derived fields filled in.
// Caller holds the lock.
func (p *Profiler) globalLocked(avgFPS float64, duration time.Duration) GlobalMetrics {
	g := p.global
	g.AverageFPS = avgFPS
	g.SessionDuration = duration
	g.CurrentMemory = p.memory.Current()
	if g.PeakMemory < p.memory.Peak() {
		g.PeakMemory = p.memory.Peak()
	}
	return g
}

// sortedComponents returns deep copies of a screen's components in name
// order for deterministic output.
func sortedComponents(screen *ScreenMetrics) []ComponentMetrics {
	out := make([]ComponentMetrics, 0, len(screen.Components))
	for _, comp := range screen.Components {
		out = append(out, *comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
