// Package export writes collected telemetry to disk: CSV streams for
// interval reports and bus events, plus YAML config and JSON snapshot dumps.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/pulse/config"
	"github.com/pthm-cable/pulse/events"
	"github.com/pthm-cable/pulse/profiler"
)

// EventCSV is the flattened CSV row for one bus event.
type EventCSV struct {
	TimeMs      int64   `csv:"time_ms"`
	Type        string  `csv:"type"`
	Screen      string  `csv:"screen"`
	Component   string  `csv:"component"`
	DurationMs  float64 `csv:"duration_ms"`
	ThresholdMs float64 `csv:"threshold_ms"`
	TimeOnMs    float64 `csv:"time_on_ms"`
	MemoryDelta int64   `csv:"memory_delta"`
	Memory      uint64  `csv:"memory"`
	MemLimit    uint64  `csv:"mem_limit"`
	FPS         float64 `csv:"fps"`
	Dropped     int     `csv:"dropped"`
	BlockMs     float64 `csv:"block_ms"`
}

func eventToCSV(ev events.Event) EventCSV {
	return EventCSV{
		TimeMs:      ev.Time.UnixMilli(),
		Type:        ev.Type.String(),
		Screen:      ev.Screen,
		Component:   ev.Component,
		DurationMs:  ev.DurationMs,
		ThresholdMs: ev.ThresholdMs,
		TimeOnMs:    ev.TimeOnMs,
		MemoryDelta: ev.MemoryDelta,
		Memory:      ev.Memory,
		MemLimit:    ev.MemLimit,
		FPS:         ev.FPS,
		Dropped:     ev.Dropped,
		BlockMs:     ev.BlockMs,
	}
}

// OutputManager handles structured telemetry output with CSV logging.
type OutputManager struct {
	dir        string
	reportFile *os.File
	eventFile  *os.File

	// Track if headers have been written
	reportHeaderWritten bool
	eventHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	reportPath := filepath.Join(dir, "reports.csv")
	f, err := os.Create(reportPath)
	if err != nil {
		return nil, fmt.Errorf("creating reports.csv: %w", err)
	}
	om.reportFile = f

	eventPath := filepath.Join(dir, "events.csv")
	f, err = os.Create(eventPath)
	if err != nil {
		om.reportFile.Close()
		return nil, fmt.Errorf("creating events.csv: %w", err)
	}
	om.eventFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteReport writes an interval report record to reports.csv.
func (om *OutputManager) WriteReport(report profiler.IntervalReport) error {
	if om == nil {
		return nil
	}

	records := []profiler.IntervalReport{report}

	if !om.reportHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.reportFile); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		om.reportHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.reportFile); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	return nil
}

// WriteEvent writes a bus event record to events.csv.
func (om *OutputManager) WriteEvent(ev events.Event) error {
	if om == nil {
		return nil
	}

	records := []EventCSV{eventToCSV(ev)}

	if !om.eventHeaderWritten {
		if err := gocsv.Marshal(records, om.eventFile); err != nil {
			return fmt.Errorf("writing event: %w", err)
		}
		om.eventHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.eventFile); err != nil {
			return fmt.Errorf("writing event: %w", err)
		}
	}

	return nil
}

// WriteSnapshot saves a session snapshot as JSON in the output directory.
func (om *OutputManager) WriteSnapshot(snap profiler.Snapshot) (string, error) {
	if om == nil {
		return "", nil
	}
	return profiler.SaveSnapshot(snap, om.dir)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.reportFile != nil {
		if err := om.reportFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.eventFile != nil {
		if err := om.eventFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
