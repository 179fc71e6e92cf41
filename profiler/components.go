package profiler

import "github.com/pthm-cable/pulse/events"

// ComponentDidMount records a component mount on the active screen. Events
// with no active screen are discarded so no orphaned metrics accumulate.
func (p *Profiler) ComponentDidMount(name string, durationMs float64) {
	p.trackComponent(name, durationMs, true)
}

// ComponentDidRender records a component render on the active screen. Events
// with no active screen are discarded.
func (p *Profiler) ComponentDidRender(name string, durationMs float64) {
	p.trackComponent(name, durationMs, false)
}

func (p *Profiler) trackComponent(name string, durationMs float64, mount bool) {
	if name == "" {
		return
	}

	p.mu.Lock()
	if !p.session.Enabled {
		p.mu.Unlock()
		return
	}
	screen := p.screens[p.current]
	if screen == nil {
		p.mu.Unlock()
		return
	}

	comp := screen.Components[name]
	if comp == nil {
		comp = &ComponentMetrics{Name: name}
		screen.Components[name] = comp
	}
	comp.addRender(durationMs)
	if mount {
		mem := p.memory.ReadCurrent()
		comp.MountMs = durationMs
		comp.MemoryAtMount = mem
		comp.CurrentMemory = mem
	} else {
		comp.CurrentMemory = p.memory.Current()
	}

	if mount {
		p.global.TotalMounts++
		p.window.mounts++
	} else {
		p.global.TotalRenders++
		p.window.renders++
	}
	p.window.durations = append(p.window.durations, durationMs)
	p.global.TotalRenderMs += durationMs
	if total := p.global.TotalMounts + p.global.TotalRenders; total > 0 {
		p.global.AverageRenderMs = p.global.TotalRenderMs / float64(total)
	}

	ev, slow := p.classifyLocked(p.current, name, durationMs)
	p.mu.Unlock()

	if slow {
		p.bus.Emit(ev)
	}
}

// classifyLocked applies the mutually exclusive slow / very slow
// classification and returns the slow render event to emit, if any.
// Caller holds the lock.
func (p *Profiler) classifyLocked(screen, component string, durationMs float64) (events.Event, bool) {
	now := p.now()
	switch {
	case durationMs > p.thresholds.VerySlowRenderMs:
		p.global.VerySlowRenders++
		p.window.verySlowRenders++
		return events.NewSlowRenderEvent(now, screen, component, durationMs, p.thresholds.VerySlowRenderMs), true
	case durationMs > p.thresholds.SlowRenderMs:
		p.global.SlowRenders++
		p.window.slowRenders++
		return events.NewSlowRenderEvent(now, screen, component, durationMs, p.thresholds.SlowRenderMs), true
	}
	return events.Event{}, false
}
