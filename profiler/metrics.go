// Package profiler implements the in-process performance telemetry engine:
// session lifecycle, per-screen and per-component aggregation, health
// scoring, and snapshot assembly.
package profiler

import (
	"encoding/json"
	"fmt"
	"time"
)

// ComponentMetrics accumulates render/mount timing for one component. A
// component record is owned by the screen that was active when the component
// was first tracked.
type ComponentMetrics struct {
	Name            string  `json:"name"`
	RenderCount     int     `json:"render_count"`
	TotalRenderMs   float64 `json:"total_render_ms"`
	AverageRenderMs float64 `json:"average_render_ms"`
	LastRenderMs    float64 `json:"last_render_ms"`
	MountMs         float64 `json:"mount_ms"`
	MemoryAtMount   uint64  `json:"memory_at_mount"`
	CurrentMemory   uint64  `json:"current_memory"`
}

// addRender folds one render or mount duration into the running totals.
// AverageRenderMs is recomputed on every call, never left stale.
func (c *ComponentMetrics) addRender(durationMs float64) {
	c.RenderCount++
	c.TotalRenderMs += durationMs
	c.AverageRenderMs = c.TotalRenderMs / float64(c.RenderCount)
	c.LastRenderMs = durationMs
}

// ScreenMetrics accumulates metrics for one screen name. Re-visits reuse the
// same record; TimeOnScreenMs accumulates across visits.
type ScreenMetrics struct {
	Name              string                       `json:"name"`
	EnterTime         time.Time                    `json:"enter_time"`
	TimeOnScreenMs    float64                      `json:"time_on_screen_ms"`
	InteractionCount  int                          `json:"interaction_count"`
	DroppedFrames     int                          `json:"dropped_frames"`
	MainThreadBlockMs float64                      `json:"main_thread_block_ms"`
	AverageFPS        float64                      `json:"average_fps"`
	MountMemory       uint64                       `json:"mount_memory"`
	LastMemoryDelta   int64                        `json:"last_memory_delta"`
	Components        map[string]*ComponentMetrics `json:"components"`
}

func newScreenMetrics(name string) *ScreenMetrics {
	return &ScreenMetrics{
		Name:       name,
		Components: make(map[string]*ComponentMetrics),
	}
}

// clone returns a deep copy safe to hand to consumers.
func (s *ScreenMetrics) clone() *ScreenMetrics {
	out := *s
	out.Components = make(map[string]*ComponentMetrics, len(s.Components))
	for name, comp := range s.Components {
		c := *comp
		out.Components[name] = &c
	}
	return &out
}

// GlobalMetrics is the session-wide aggregate, updated by every mount,
// render, and memory check.
type GlobalMetrics struct {
	TotalMounts     int           `json:"total_mounts"`
	TotalRenders    int           `json:"total_renders"`
	SlowRenders     int           `json:"slow_renders"`
	VerySlowRenders int           `json:"very_slow_renders"`
	TotalRenderMs   float64       `json:"total_render_ms"`
	AverageRenderMs float64       `json:"average_render_ms"`
	PeakMemory      uint64        `json:"peak_memory"`
	CurrentMemory   uint64        `json:"current_memory"`
	AverageFPS      float64       `json:"average_fps"`
	SessionDuration time.Duration `json:"session_duration"`
}

// Session identifies one profiling run.
type Session struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	Enabled   bool      `json:"enabled"`
}

// ValueKind tags a CustomValue.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// CustomValue is a small tagged scalar union for the user-settable custom
// data bag. The closed kind set keeps snapshotting well-defined.
type CustomValue struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// NullValue returns the null custom value.
func NullValue() CustomValue { return CustomValue{Kind: KindNull} }

// StringValue wraps s.
func StringValue(s string) CustomValue { return CustomValue{Kind: KindString, Str: s} }

// NumberValue wraps n.
func NumberValue(n float64) CustomValue { return CustomValue{Kind: KindNumber, Num: n} }

// BoolValue wraps b.
func BoolValue(b bool) CustomValue { return CustomValue{Kind: KindBool, Bool: b} }

// MarshalJSON emits the bare scalar.
func (v CustomValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any of the four scalar forms.
func (v *CustomValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = NullValue()
	case string:
		*v = StringValue(val)
	case float64:
		*v = NumberValue(val)
	case bool:
		*v = BoolValue(val)
	default:
		return fmt.Errorf("custom value must be a scalar, got %T", raw)
	}
	return nil
}

// Thresholds are the runtime-configurable classification limits. Zero fields
// passed to Configure leave the corresponding threshold unchanged.
type Thresholds struct {
	SlowRenderMs     float64
	VerySlowRenderMs float64
	MemorySpikeBytes uint64
}
