package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/pulse/config"
	"github.com/pthm-cable/pulse/events"
	"github.com/pthm-cable/pulse/export"
	"github.com/pthm-cable/pulse/profiler"
	"github.com/pthm-cable/pulse/sampler"
)

// demoClock is the virtual clock driving the simulated session.
type demoClock struct{ t time.Time }

func (c *demoClock) Now() time.Time          { return c.t }
func (c *demoClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// demoReader fakes a platform memory capability with a slow leak and the
// occasional allocation burst.
type demoReader struct {
	usage uint64
	rng   *rand.Rand
}

func (r *demoReader) ReadUsage() (uint64, error) {
	r.usage += uint64(r.rng.Intn(512 * 1024))
	if r.rng.Intn(120) == 0 {
		r.usage += 60 * 1024 * 1024
	}
	return r.usage, nil
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output interval reports via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for session snapshot files")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	durationSec := flag.Int("duration", 60, "Simulated session length in seconds")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *outputDir == "" {
		*outputDir = cfg.Output.Dir
	}
	if *snapshotDir == "" {
		*snapshotDir = cfg.Output.SnapshotDir
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	om, err := export.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	clock := &demoClock{t: time.Now()}
	sched := sampler.NewManualScheduler(clock.t, cfg.Derived.FrameInterval)
	reader := &demoReader{usage: 40 * 1024 * 1024, rng: rng}

	p := profiler.New(profiler.Options{
		Config:       cfg,
		Scheduler:    sched,
		MemoryReader: reader,
		Now:          clock.Now,
		LogStats:     *logStats || cfg.Report.LogStats,
		OnReport: func(r profiler.IntervalReport) {
			if err := om.WriteReport(r); err != nil {
				slog.Error("failed to write report", "error", err)
			}
		},
	})

	for _, t := range []events.Type{
		events.TypeScreenEnter, events.TypeScreenExit, events.TypeSlowRender,
		events.TypeMemorySpike, events.TypeFrameDrop, events.TypeMainThreadJank,
	} {
		p.On(t, func(ev events.Event) {
			if err := om.WriteEvent(ev); err != nil {
				slog.Error("failed to write event", "error", err)
			}
		})
	}

	slog.Info("starting simulated session",
		"seed", rngSeed,
		"duration_sec", *durationSec,
		"output_dir", om.Dir(),
	)

	p.Start()
	p.SetCustomData("seed", profiler.NumberValue(float64(rngSeed)))
	runWorkload(p, clock, sched, rng, cfg, time.Duration(*durationSec)*time.Second)
	snap := p.Stop()

	if *snapshotDir != "" {
		path, err := profiler.SaveSnapshot(snap, *snapshotDir)
		if err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path)
		}
	}

	data := p.GetProfilerData()
	slog.Info("session finished",
		"session", data.SessionID,
		"screens", len(data.Navigation),
		"renders", data.Global.TotalRenders,
		"slow_renders", data.Global.SlowRenders,
		"very_slow_renders", data.Global.VerySlowRenders,
		"fps_average", data.FPS.Average,
		"health_score", data.HealthScore,
		"health", string(data.Health),
		"issues", data.Issues,
	)
}

// runWorkload drives a synthetic app session: screen navigation, component
// mounts and renders with occasional slow outliers, interactions, and
// per-second FPS readings. Virtual time advances one second per step.
func runWorkload(p *profiler.Profiler, clock *demoClock, sched *sampler.ManualScheduler, rng *rand.Rand, cfg *config.Config, total time.Duration) {
	screens := []string{"Home", "Feed", "Detail", "Settings"}
	components := map[string][]string{
		"Home":     {"Header", "QuickActions", "RecentList"},
		"Feed":     {"FeedList", "FeedItem", "PullIndicator"},
		"Detail":   {"Hero", "Description", "RelatedItems"},
		"Settings": {"ProfileCard", "ToggleGroup"},
	}

	p.EnterScreen(screens[0])

	for elapsed := time.Duration(0); elapsed < total; elapsed += time.Second {
		screen := p.CurrentScreen()

		if rng.Intn(8) == 0 {
			screen = screens[rng.Intn(len(screens))]
			p.EnterScreen(screen)
			for _, name := range components[screen] {
				p.ComponentDidMount(name, 4+rng.Float64()*12)
			}
		}

		for i := 0; i < 2+rng.Intn(6); i++ {
			names := components[screen]
			name := names[rng.Intn(len(names))]
			duration := 4 + rng.Float64()*10
			switch rng.Intn(30) {
			case 0:
				duration = 100 + rng.Float64()*80
			case 1, 2:
				duration = 17 + rng.Float64()*40
			}
			p.ComponentDidRender(name, duration)
		}

		for i := 0; i < rng.Intn(4); i++ {
			p.TrackInteraction()
		}

		p.RecordFPS(52 + rng.Float64()*10)
		p.CheckMemory()

		advanceSecond(clock, sched, rng, cfg.Derived.FrameInterval)
	}
}

// advanceSecond moves virtual time forward one second in frame-sized steps
// so the frame loop observes normal pacing, with an occasional long stall to
// exercise drop and jank detection.
func advanceSecond(clock *demoClock, sched *sampler.ManualScheduler, rng *rand.Rand, frameInterval time.Duration) {
	remaining := time.Second

	if rng.Intn(10) == 0 {
		stall := time.Duration(520+rng.Intn(300)) * time.Millisecond
		clock.Advance(stall)
		sched.Advance(stall)
		remaining -= stall
	}

	for remaining > 0 {
		step := frameInterval
		if step > remaining {
			step = remaining
		}
		clock.Advance(step)
		sched.Advance(step)
		remaining -= step
	}
}
