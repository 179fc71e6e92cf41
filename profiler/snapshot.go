package profiler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/pulse/sampler"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a deep, point-in-time, read-only copy of accumulated metrics.
// It shares no state with the profiler and is safe to hand to consumers.
type Snapshot struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	TakenAt   time.Time `json:"taken_at"`
	Enabled   bool      `json:"enabled"`

	CurrentScreen string                    `json:"current_screen"`
	Visited       []string                  `json:"visited"`
	Screens       map[string]*ScreenMetrics `json:"screens"`
	Global        GlobalMetrics             `json:"global"`
	FPS           sampler.FPSStats          `json:"fps"`
	Custom        map[string]CustomValue    `json:"custom,omitempty"`
}

// GetSnapshot returns a deep copy of all screens plus global metrics.
func (p *Profiler) GetSnapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// snapshotLocked assembles the snapshot. Caller holds the lock.
func (p *Profiler) snapshotLocked() Snapshot {
	fpsStats := p.frames.Stats()

	var duration time.Duration
	if !p.session.StartTime.IsZero() {
		duration = p.now().Sub(p.session.StartTime)
	}

	screens := make(map[string]*ScreenMetrics, len(p.screens))
	for name, screen := range p.screens {
		screens[name] = screen.clone()
	}

	visited := make([]string, len(p.visited))
	copy(visited, p.visited)

	custom := make(map[string]CustomValue, len(p.custom))
	for k, v := range p.custom {
		custom[k] = v
	}

	return Snapshot{
		Version:       SnapshotVersion,
		SessionID:     p.session.ID,
		StartTime:     p.session.StartTime,
		TakenAt:       p.now(),
		Enabled:       p.session.Enabled,
		CurrentScreen: p.current,
		Visited:       visited,
		Screens:       screens,
		Global:        p.globalLocked(fpsStats.Average, duration),
		FPS:           fpsStats,
		Custom:        custom,
	}
}

// GetScreenMetrics returns a deep copy of the named screen's record.
func (p *Profiler) GetScreenMetrics(name string) (ScreenMetrics, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	screen := p.screens[name]
	if screen == nil {
		return ScreenMetrics{}, false
	}
	return *screen.clone(), true
}

// GetComponentMetrics returns a copy of the named component's record on the
// active screen.
func (p *Profiler) GetComponentMetrics(name string) (ComponentMetrics, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	screen := p.screens[p.current]
	if screen == nil {
		return ComponentMetrics{}, false
	}
	comp := screen.Components[name]
	if comp == nil {
		return ComponentMetrics{}, false
	}
	return *comp, true
}

// SaveSnapshot writes a snapshot to disk as indented JSON.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%s_%d.json", snapshot.SessionID, snapshot.TakenAt.UnixMilli())

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
