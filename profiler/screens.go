package profiler

import (
	"time"

	"github.com/pthm-cable/pulse/events"
)

// EnterScreen makes name the active screen, implicitly exiting the previous
// one so no two screens are ever simultaneously current. Re-entering the
// already-active screen is a no-op. First visits create the record;
// subsequent visits accumulate into it.
func (p *Profiler) EnterScreen(name string) {
	if name == "" {
		return
	}

	p.mu.Lock()
	if !p.session.Enabled {
		p.mu.Unlock()
		return
	}
	if p.current == name {
		p.mu.Unlock()
		return
	}

	var emits []events.Event
	now := p.now()

	if p.current != "" {
		if ev, ok := p.exitLocked(p.current); ok {
			emits = append(emits, ev)
		}
	}

	screen := p.screens[name]
	if screen == nil {
		screen = newScreenMetrics(name)
		p.screens[name] = screen
	}
	screen.EnterTime = now
	// Fresh reading so the exit delta measures growth during the visit, not
	// the footprint accumulated before it.
	screen.MountMemory = p.memory.ReadCurrent()
	p.current = name
	p.appendVisitedLocked(name)

	emits = append(emits, events.NewScreenEnterEvent(now, name))
	p.mu.Unlock()

	for _, ev := range emits {
		p.bus.Emit(ev)
	}
}

// ExitScreen finalizes the visit to name: accumulates elapsed time, takes a
// memory snapshot for the exit delta, and emits a screen exit event. Exits
// of never-entered screens are ignored.
func (p *Profiler) ExitScreen(name string) {
	p.mu.Lock()
	if !p.session.Enabled || p.screens[name] == nil {
		p.mu.Unlock()
		return
	}

	ev, ok := p.exitLocked(name)
	if p.current == name {
		p.current = ""
	}
	p.mu.Unlock()

	if ok {
		p.bus.Emit(ev)
	}
}

// exitLocked finalizes a visit and returns the exit event to emit after the
// lock is released. A screen whose visit was already finalized (zero
// EnterTime) is left untouched. Caller holds the lock.
func (p *Profiler) exitLocked(name string) (events.Event, bool) {
	screen := p.screens[name]
	if screen == nil || screen.EnterTime.IsZero() {
		return events.Event{}, false
	}

	now := p.now()
	screen.TimeOnScreenMs += float64(now.Sub(screen.EnterTime).Microseconds()) / 1000
	screen.EnterTime = time.Time{}

	exitMemory := p.memory.ReadCurrent()
	screen.LastMemoryDelta = int64(exitMemory) - int64(screen.MountMemory)
	screen.AverageFPS = p.frames.Stats().Average

	return events.NewScreenExitEvent(now, name, screen.TimeOnScreenMs, screen.LastMemoryDelta), true
}

// CurrentScreen returns the active screen name, or "" when none is active.
func (p *Profiler) CurrentScreen() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// ScreensVisited returns the deduplicated visit order.
func (p *Profiler) ScreensVisited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.visited))
	copy(out, p.visited)
	return out
}

// TrackInteraction increments the active screen's interaction count.
// Discarded when no screen is active.
func (p *Profiler) TrackInteraction() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.session.Enabled {
		return
	}
	if s := p.screens[p.current]; s != nil {
		s.InteractionCount++
		p.window.interactions++
	}
}

func (p *Profiler) appendVisitedLocked(name string) {
	for _, v := range p.visited {
		if v == name {
			return
		}
	}
	p.visited = append(p.visited, name)
}
