// Package config provides configuration loading and access for the profiler.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all profiler configuration parameters.
type Config struct {
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Sampling   SamplingConfig   `yaml:"sampling"`
	Report     ReportConfig     `yaml:"report"`
	Output     OutputConfig     `yaml:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ThresholdsConfig holds event classification thresholds.
type ThresholdsConfig struct {
	SlowRenderMs     float64 `yaml:"slow_render_ms"`      // renders slower than this count as slow
	VerySlowRenderMs float64 `yaml:"very_slow_render_ms"` // renders slower than this count as very slow
	MemorySpikeMB    float64 `yaml:"memory_spike_mb"`     // increase between samples that counts as a spike
	JankBlockMs      float64 `yaml:"jank_block_ms"`       // frame delta that counts as a main thread stall
}

// SamplingConfig holds frame/FPS sampling parameters.
type SamplingConfig struct {
	TargetFPS       float64 `yaml:"target_fps"`
	FPSHistory      int     `yaml:"fps_history"`       // bounded FIFO capacity
	FPSMax          float64 `yaml:"fps_max"`           // readings are clamped to [0, fps_max]
	FrameIntervalMs float64 `yaml:"frame_interval_ms"` // scheduler next-frame period
}

// ReportConfig holds interval reporting settings.
type ReportConfig struct {
	IntervalSec float64 `yaml:"interval_sec"`
	LogStats    bool    `yaml:"log_stats"`
}

// OutputConfig holds file output settings.
type OutputConfig struct {
	Dir         string `yaml:"dir"`          // CSV output directory (empty = disabled)
	SnapshotDir string `yaml:"snapshot_dir"` // JSON snapshot directory (empty = disabled)
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	MemorySpikeBytes uint64
	FrameInterval    time.Duration
	ReportInterval   time.Duration
}

var global *Config

// Init loads the configuration and stores it as the global instance.
// If path is empty, only embedded defaults are used.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is Init that panics on error. For use at startup only.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config init: %v", err))
	}
}

// Cfg returns the global configuration, loading defaults on first use.
func Cfg() *Config {
	if global == nil {
		MustInit("")
	}
	return global
}

// Load reads the configuration, starting from embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Sampling.FPSHistory < 1 {
		c.Sampling.FPSHistory = 60
	}
	if c.Sampling.TargetFPS <= 0 {
		c.Sampling.TargetFPS = 60
	}
	if c.Sampling.FPSMax <= 0 {
		c.Sampling.FPSMax = 120
	}
	if c.Sampling.FrameIntervalMs <= 0 {
		c.Sampling.FrameIntervalMs = 16
	}
	if c.Report.IntervalSec <= 0 {
		c.Report.IntervalSec = 5
	}

	c.Derived.MemorySpikeBytes = uint64(c.Thresholds.MemorySpikeMB * 1024 * 1024)
	c.Derived.FrameInterval = time.Duration(c.Sampling.FrameIntervalMs * float64(time.Millisecond))
	c.Derived.ReportInterval = time.Duration(c.Report.IntervalSec * float64(time.Second))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
