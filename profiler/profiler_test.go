package profiler

import (
	"testing"
	"time"

	"github.com/pthm-cable/pulse/config"
	"github.com/pthm-cable/pulse/events"
	"github.com/pthm-cable/pulse/sampler"
)

type fakeReader struct {
	usage uint64
	err   error
}

func (r *fakeReader) ReadUsage() (uint64, error) { return r.usage, r.err }

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func newTestProfiler(t *testing.T) (*Profiler, *testClock, *sampler.ManualScheduler, *fakeReader) {
	t.Helper()
	cfg := testConfig(t)
	clock := &testClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	sched := sampler.NewManualScheduler(clock.t, cfg.Derived.FrameInterval)
	reader := &fakeReader{usage: 10 * bytesPerMB}
	p := New(Options{
		Config:       cfg,
		Scheduler:    sched,
		MemoryReader: reader,
		Now:          clock.Now,
	})
	return p, clock, sched, reader
}

func TestMountAndRenderAccumulate(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Home")

	p.ComponentDidMount("List", 12)
	p.ComponentDidRender("List", 25)

	comp, ok := p.GetComponentMetrics("List")
	if !ok {
		t.Fatal("expected List metrics")
	}
	if comp.RenderCount != 2 {
		t.Errorf("RenderCount = %d, want 2", comp.RenderCount)
	}
	if comp.AverageRenderMs != 18.5 {
		t.Errorf("AverageRenderMs = %v, want 18.5", comp.AverageRenderMs)
	}
	if comp.MountMs != 12 {
		t.Errorf("MountMs = %v, want 12", comp.MountMs)
	}
	if comp.LastRenderMs != 25 {
		t.Errorf("LastRenderMs = %v, want 25", comp.LastRenderMs)
	}

	snap := p.GetSnapshot()
	if snap.Global.TotalMounts != 1 || snap.Global.TotalRenders != 1 {
		t.Errorf("mounts/renders = %d/%d, want 1/1", snap.Global.TotalMounts, snap.Global.TotalRenders)
	}
	if snap.Global.SlowRenders != 1 {
		t.Errorf("SlowRenders = %d, want 1", snap.Global.SlowRenders)
	}
	if snap.Global.AverageRenderMs != 18.5 {
		t.Errorf("global AverageRenderMs = %v, want 18.5", snap.Global.AverageRenderMs)
	}
}

func TestClassification(t *testing.T) {
	cases := []struct {
		name       string
		durationMs float64
		slow       int
		verySlow   int
		emits      bool
		threshold  float64
	}{
		{"fast", 10, 0, 0, false, 0},
		{"at slow threshold", 16, 0, 0, false, 0},
		{"slow", 20, 1, 0, true, 16},
		{"at very slow threshold", 100, 1, 0, true, 16},
		{"very slow", 101, 0, 1, true, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, _, _, _ := newTestProfiler(t)
			p.Start()
			p.EnterScreen("Home")

			var got []events.Event
			p.On(events.TypeSlowRender, func(ev events.Event) {
				got = append(got, ev)
			})

			p.ComponentDidRender("Chart", tc.durationMs)

			snap := p.GetSnapshot()
			if snap.Global.SlowRenders != tc.slow {
				t.Errorf("SlowRenders = %d, want %d", snap.Global.SlowRenders, tc.slow)
			}
			if snap.Global.VerySlowRenders != tc.verySlow {
				t.Errorf("VerySlowRenders = %d, want %d", snap.Global.VerySlowRenders, tc.verySlow)
			}
			if tc.emits {
				if len(got) != 1 {
					t.Fatalf("events = %d, want 1", len(got))
				}
				if got[0].ThresholdMs != tc.threshold {
					t.Errorf("ThresholdMs = %v, want %v", got[0].ThresholdMs, tc.threshold)
				}
				if got[0].Component != "Chart" || got[0].Screen != "Home" {
					t.Errorf("event attribution = %s/%s", got[0].Screen, got[0].Component)
				}
			} else if len(got) != 0 {
				t.Errorf("events = %d, want 0", len(got))
			}
		})
	}
}

func TestEnterScreenImplicitExit(t *testing.T) {
	p, clock, _, _ := newTestProfiler(t)
	p.Start()

	var exits []events.Event
	p.On(events.TypeScreenExit, func(ev events.Event) { exits = append(exits, ev) })

	p.EnterScreen("Home")
	clock.Advance(100 * time.Millisecond)
	p.EnterScreen("Settings")

	if got := p.CurrentScreen(); got != "Settings" {
		t.Errorf("CurrentScreen = %q, want Settings", got)
	}
	home, ok := p.GetScreenMetrics("Home")
	if !ok {
		t.Fatal("expected Home metrics")
	}
	if home.TimeOnScreenMs != 100 {
		t.Errorf("TimeOnScreenMs = %v, want 100", home.TimeOnScreenMs)
	}
	if len(exits) != 1 || exits[0].Screen != "Home" {
		t.Fatalf("exit events = %v", exits)
	}
	if exits[0].TimeOnMs != 100 {
		t.Errorf("exit TimeOnMs = %v, want 100", exits[0].TimeOnMs)
	}

	visited := p.ScreensVisited()
	if len(visited) != 2 || visited[0] != "Home" || visited[1] != "Settings" {
		t.Errorf("visited = %v", visited)
	}
}

func TestReenterActiveScreenIsNoop(t *testing.T) {
	p, clock, _, _ := newTestProfiler(t)
	p.Start()

	var entries int
	p.On(events.TypeScreenEnter, func(events.Event) { entries++ })

	p.EnterScreen("Home")
	clock.Advance(50 * time.Millisecond)
	p.EnterScreen("Home")

	if entries != 1 {
		t.Errorf("enter events = %d, want 1", entries)
	}
	home, _ := p.GetScreenMetrics("Home")
	if home.TimeOnScreenMs != 0 {
		t.Errorf("TimeOnScreenMs = %v, want 0 while still active", home.TimeOnScreenMs)
	}
}

func TestRevisitAccumulates(t *testing.T) {
	p, clock, _, _ := newTestProfiler(t)
	p.Start()

	p.EnterScreen("Home")
	clock.Advance(100 * time.Millisecond)
	p.EnterScreen("Settings")
	clock.Advance(20 * time.Millisecond)
	p.EnterScreen("Home")
	clock.Advance(40 * time.Millisecond)
	p.ExitScreen("Home")

	home, _ := p.GetScreenMetrics("Home")
	if home.TimeOnScreenMs != 140 {
		t.Errorf("TimeOnScreenMs = %v, want 140", home.TimeOnScreenMs)
	}
	if got := p.CurrentScreen(); got != "" {
		t.Errorf("CurrentScreen = %q, want empty", got)
	}
	visited := p.ScreensVisited()
	if len(visited) != 2 {
		t.Errorf("visited = %v, want deduplicated pair", visited)
	}
}

func TestExitUnknownScreenIgnored(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()

	var exits int
	p.On(events.TypeScreenExit, func(events.Event) { exits++ })

	p.ExitScreen("Nope")
	if exits != 0 {
		t.Errorf("exit events = %d, want 0", exits)
	}
}

func TestComponentWithoutScreenDiscarded(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()

	p.ComponentDidRender("Orphan", 30)

	snap := p.GetSnapshot()
	if snap.Global.TotalRenders != 0 {
		t.Errorf("TotalRenders = %d, want 0", snap.Global.TotalRenders)
	}
	if len(snap.Screens) != 0 {
		t.Errorf("screens = %d, want 0", len(snap.Screens))
	}
}

func TestDisabledProfilerDiscards(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)

	p.EnterScreen("Home")
	p.ComponentDidRender("List", 25)
	p.TrackInteraction()
	p.RecordFPS(58)

	if p.IsEnabled() {
		t.Fatal("profiler should start disabled")
	}
	snap := p.GetSnapshot()
	if len(snap.Screens) != 0 || snap.Global.TotalRenders != 0 {
		t.Error("disabled profiler accumulated state")
	}
	if snap.FPS.Count != 0 {
		t.Errorf("FPS count = %d, want 0", snap.FPS.Count)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)

	p.Start()
	first := p.Session()
	p.Start()
	if got := p.Session(); got.ID != first.ID {
		t.Errorf("second Start replaced session %q with %q", first.ID, got.ID)
	}

	snap := p.Stop()
	if snap.Enabled {
		t.Error("snapshot from Stop should be disabled")
	}
	if snap.SessionID != first.ID {
		t.Errorf("snapshot session = %q, want %q", snap.SessionID, first.ID)
	}
	again := p.Stop()
	if again.SessionID != first.ID {
		t.Error("second Stop changed the snapshot")
	}
}

func TestConfigureThresholds(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Home")

	p.Configure(Thresholds{SlowRenderMs: 30})
	p.ComponentDidRender("List", 20)

	snap := p.GetSnapshot()
	if snap.Global.SlowRenders != 0 {
		t.Errorf("SlowRenders = %d, want 0 with 30ms threshold", snap.Global.SlowRenders)
	}

	p.ComponentDidRender("List", 35)
	snap = p.GetSnapshot()
	if snap.Global.SlowRenders != 1 {
		t.Errorf("SlowRenders = %d, want 1", snap.Global.SlowRenders)
	}
}

func TestResetClearsState(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()
	before := p.Session()
	p.EnterScreen("Home")
	p.ComponentDidRender("List", 25)
	p.SetCustomData("build", StringValue("abc123"))

	p.Reset()

	if !p.IsEnabled() {
		t.Error("Reset should keep a running session enabled")
	}
	if got := p.Session(); got.ID == before.ID {
		t.Error("Reset should mint a new session id")
	}
	snap := p.GetSnapshot()
	if len(snap.Screens) != 0 || len(snap.Visited) != 0 || snap.CurrentScreen != "" {
		t.Error("Reset left screen state behind")
	}
	if snap.Global != (GlobalMetrics{}) {
		t.Errorf("Reset left global metrics: %+v", snap.Global)
	}
	if len(snap.Custom) != 0 {
		t.Error("Reset left custom data behind")
	}

	data := p.GetProfilerData()
	if data.Global.TotalRenders != 0 {
		t.Errorf("TotalRenders = %d, want 0", data.Global.TotalRenders)
	}
	if data.CurrentScreen != "" {
		t.Errorf("CurrentScreen = %q, want empty sentinel", data.CurrentScreen)
	}
	if len(data.Components) != 0 {
		t.Errorf("Components = %v, want none", data.Components)
	}
}

func TestCustomData(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)

	p.SetCustomData("build", StringValue("abc123"))
	p.SetCustomData("cohort", NumberValue(7))
	p.SetCustomData("beta", BoolValue(true))
	p.SetCustomData("none", NullValue())

	if v, ok := p.GetCustomData("cohort"); !ok || v.Num != 7 {
		t.Errorf("cohort = %+v ok=%v", v, ok)
	}

	p.ClearCustomData("build", "missing")
	if _, ok := p.GetCustomData("build"); ok {
		t.Error("build should be cleared")
	}
	if _, ok := p.GetCustomData("beta"); !ok {
		t.Error("beta should survive selective clear")
	}

	p.ClearCustomData()
	if _, ok := p.GetCustomData("beta"); ok {
		t.Error("clear-all should remove everything")
	}
}

func TestSnapshotDeepCopy(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Home")
	p.ComponentDidRender("List", 25)

	snap := p.GetSnapshot()
	snap.Screens["Home"].Components["List"].RenderCount = 999
	snap.Screens["Injected"] = newScreenMetrics("Injected")
	snap.Visited = append(snap.Visited, "Injected")

	comp, _ := p.GetComponentMetrics("List")
	if comp.RenderCount != 1 {
		t.Errorf("mutating a snapshot leaked into live state: RenderCount = %d", comp.RenderCount)
	}
	if _, ok := p.GetScreenMetrics("Injected"); ok {
		t.Error("snapshot map shares storage with the profiler")
	}
}

func TestMemorySpikeAttribution(t *testing.T) {
	p, _, _, reader := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Feed")

	var spikes []events.Event
	p.On(events.TypeMemorySpike, func(ev events.Event) { spikes = append(spikes, ev) })

	p.CheckMemory()
	reader.usage = 65 * bytesPerMB
	p.CheckMemory()

	if len(spikes) != 1 {
		t.Fatalf("spike events = %d, want 1", len(spikes))
	}
	if spikes[0].Screen != "Feed" {
		t.Errorf("spike screen = %q, want Feed", spikes[0].Screen)
	}
	if spikes[0].MemoryDelta != 55*bytesPerMB {
		t.Errorf("spike delta = %d, want 55MB", spikes[0].MemoryDelta)
	}

	snap := p.GetSnapshot()
	if snap.Global.PeakMemory != 65*bytesPerMB {
		t.Errorf("PeakMemory = %d, want 65MB", snap.Global.PeakMemory)
	}
}

func TestMemoryCurrentTracksDecrease(t *testing.T) {
	p, _, _, reader := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Feed")

	p.CheckMemory()
	reader.usage = 65 * bytesPerMB
	p.CheckMemory()
	reader.usage = 20 * bytesPerMB
	p.CheckMemory()

	data := p.GetProfilerData()
	if data.Memory.CurrentBytes != 20*bytesPerMB {
		t.Errorf("CurrentBytes = %d, want 20MB", data.Memory.CurrentBytes)
	}
	if data.Global.CurrentMemory != 20*bytesPerMB {
		t.Errorf("Global.CurrentMemory = %d, want 20MB", data.Global.CurrentMemory)
	}
	if data.Memory.PeakBytes != 65*bytesPerMB {
		t.Errorf("PeakBytes = %d, want 65MB (peak stays high-water)", data.Memory.PeakBytes)
	}
}

func TestExitAfterImplicitExitIgnored(t *testing.T) {
	p, clock, _, _ := newTestProfiler(t)
	p.Start()

	var exits int
	p.On(events.TypeScreenExit, func(events.Event) { exits++ })

	p.EnterScreen("Home")
	clock.Advance(100 * time.Millisecond)
	p.EnterScreen("Settings")
	clock.Advance(40 * time.Millisecond)
	p.ExitScreen("Home")

	home, _ := p.GetScreenMetrics("Home")
	if home.TimeOnScreenMs != 100 {
		t.Errorf("TimeOnScreenMs = %v, want 100 (no double finalization)", home.TimeOnScreenMs)
	}
	if exits != 1 {
		t.Errorf("Home exit events = %d, want 1", exits)
	}
	if got := p.CurrentScreen(); got != "Settings" {
		t.Errorf("CurrentScreen = %q, want Settings", got)
	}
}

func TestScreenExitMemoryDeltaFlatUsage(t *testing.T) {
	p, clock, _, reader := newTestProfiler(t)
	reader.usage = 40 * bytesPerMB
	p.Start()

	var exit events.Event
	p.On(events.TypeScreenExit, func(ev events.Event) { exit = ev })

	// No CheckMemory call before entry: the entry reading must still be
	// fresh, not the sampler's cached zero.
	p.EnterScreen("Home")
	clock.Advance(50 * time.Millisecond)
	p.ExitScreen("Home")

	if exit.MemoryDelta != 0 {
		t.Errorf("exit MemoryDelta = %d, want 0 for flat usage", exit.MemoryDelta)
	}
	home, _ := p.GetScreenMetrics("Home")
	if home.MountMemory != 40*bytesPerMB {
		t.Errorf("MountMemory = %d, want 40MB", home.MountMemory)
	}
}

func TestComponentMountMemoryFresh(t *testing.T) {
	p, _, _, reader := newTestProfiler(t)
	reader.usage = 40 * bytesPerMB
	p.Start()
	p.EnterScreen("Home")

	p.ComponentDidMount("List", 12)

	comp, _ := p.GetComponentMetrics("List")
	if comp.MemoryAtMount != 40*bytesPerMB {
		t.Errorf("MemoryAtMount = %d, want 40MB", comp.MemoryAtMount)
	}
	if comp.CurrentMemory != 40*bytesPerMB {
		t.Errorf("CurrentMemory = %d, want 40MB", comp.CurrentMemory)
	}
}

func TestUnsubscribe(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()

	var count int
	off := p.On(events.TypeScreenEnter, func(events.Event) { count++ })

	p.EnterScreen("A")
	off()
	p.EnterScreen("B")

	if count != 1 {
		t.Errorf("handler ran %d times after unsubscribe, want 1", count)
	}
}

func TestIntervalReport(t *testing.T) {
	cfg := testConfig(t)
	clock := &testClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	sched := sampler.NewManualScheduler(clock.t, cfg.Derived.FrameInterval)
	reader := &fakeReader{usage: 10 * bytesPerMB}

	var reports []IntervalReport
	p := New(Options{
		Config:       cfg,
		Scheduler:    sched,
		MemoryReader: reader,
		Now:          clock.Now,
		OnReport:     func(r IntervalReport) { reports = append(reports, r) },
	})

	p.Start()
	p.EnterScreen("Home")
	p.ComponentDidMount("List", 12)
	p.ComponentDidRender("List", 25)
	p.TrackInteraction()
	p.RecordFPS(58)

	sched.Advance(cfg.Derived.ReportInterval)

	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	r := reports[0]
	if r.Screen != "Home" {
		t.Errorf("Screen = %q, want Home", r.Screen)
	}
	if r.Mounts != 1 || r.Renders != 1 || r.SlowRenders != 1 || r.Interactions != 1 {
		t.Errorf("window counters = %+v", r)
	}
	if r.FPSCurrent != 58 {
		t.Errorf("FPSCurrent = %v, want 58", r.FPSCurrent)
	}
	if r.MemoryCurrentMB != 10 {
		t.Errorf("MemoryCurrentMB = %v, want 10", r.MemoryCurrentMB)
	}
	if r.RenderMeanMs != 18.5 {
		t.Errorf("RenderMeanMs = %v, want 18.5", r.RenderMeanMs)
	}

	// Next window starts empty.
	sched.Advance(cfg.Derived.ReportInterval)
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	if reports[1].Renders != 0 || reports[1].Mounts != 0 {
		t.Errorf("second window not flushed: %+v", reports[1])
	}

	// Stop cancels the loop.
	p.Stop()
	sched.Advance(cfg.Derived.ReportInterval)
	if len(reports) != 2 {
		t.Errorf("reports after Stop = %d, want 2", len(reports))
	}
}

func TestReportWindowStartSurvivesReset(t *testing.T) {
	cfg := testConfig(t)
	clock := &testClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	sched := sampler.NewManualScheduler(clock.t, cfg.Derived.FrameInterval)

	var reports []IntervalReport
	p := New(Options{
		Config:       cfg,
		Scheduler:    sched,
		MemoryReader: &fakeReader{usage: 10 * bytesPerMB},
		Now:          clock.Now,
		OnReport:     func(r IntervalReport) { reports = append(reports, r) },
	})

	p.Start()
	p.Reset()
	sched.Advance(cfg.Derived.ReportInterval)

	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	if reports[0].WindowStart.IsZero() {
		t.Error("report after Reset carries a zero WindowStart")
	}
	if !reports[0].WindowStart.Equal(clock.t) {
		t.Errorf("WindowStart = %v, want %v", reports[0].WindowStart, clock.t)
	}
}

func TestHealthStatusBuckets(t *testing.T) {
	cases := []struct {
		score int
		want  HealthStatus
	}{
		{100, HealthExcellent},
		{80, HealthExcellent},
		{79, HealthGood},
		{60, HealthGood},
		{59, HealthFair},
		{40, HealthFair},
		{39, HealthPoor},
		{0, HealthPoor},
	}
	for _, tc := range cases {
		if got := healthStatus(tc.score); got != tc.want {
			t.Errorf("healthStatus(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestProfilerDataHealth(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Home")

	data := p.GetProfilerData()
	if data.HealthScore != 100 || data.Health != HealthExcellent {
		t.Fatalf("clean session: score=%d health=%s", data.HealthScore, data.Health)
	}

	// Eleven slow renders and one very slow render.
	for i := 0; i < 11; i++ {
		p.ComponentDidRender("List", 20)
	}
	p.ComponentDidRender("List", 150)
	for i := 0; i < 30; i++ {
		p.RecordFPS(45)
	}

	data = p.GetProfilerData()
	// 100 - 30 (fps) - 20 (slow) - 25 (very slow) = 25.
	if data.HealthScore != 25 {
		t.Errorf("HealthScore = %d, want 25", data.HealthScore)
	}
	if data.Health != HealthPoor {
		t.Errorf("Health = %s, want poor", data.Health)
	}
	if len(data.Issues) != 3 {
		t.Errorf("issues = %v", data.Issues)
	}
}

func TestHealthScoreMonotonic(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Home")

	prev := p.GetProfilerData().HealthScore

	// Stack penalty conditions one at a time; the score must never rise.
	steps := []func(){
		func() {
			for i := 0; i < 30; i++ {
				p.RecordFPS(45)
			}
		},
		func() {
			for i := 0; i < 11; i++ {
				p.ComponentDidRender("List", 20)
			}
		},
		func() { p.ComponentDidRender("List", 150) },
	}
	for i, step := range steps {
		step()
		score := p.GetProfilerData().HealthScore
		if score > prev {
			t.Fatalf("step %d raised score from %d to %d", i, prev, score)
		}
		if score < 0 {
			t.Fatalf("score went below floor: %d", score)
		}
		prev = score
	}
}

func TestCurrentScreenSummary(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()

	if _, ok := p.CurrentScreenSummary(); ok {
		t.Fatal("summary with no active screen should report false")
	}

	p.EnterScreen("Checkout")
	p.ComponentDidRender("Cart", 40)
	p.ComponentDidRender("Cart", 40)
	for i := 0; i < 30; i++ {
		p.RecordFPS(52)
	}

	sum, ok := p.CurrentScreenSummary()
	if !ok {
		t.Fatal("expected a summary")
	}
	// 100 - 10 (slow component) - 10 (fps below target) = 80.
	if sum.Score != 80 {
		t.Errorf("Score = %d, want 80", sum.Score)
	}
	if len(sum.Issues) != 2 {
		t.Fatalf("issues = %v", sum.Issues)
	}
	if sum.Issues[0] != "Cart renders slowly (avg 40.0ms)" {
		t.Errorf("first issue = %q", sum.Issues[0])
	}
	if sum.Screen != "Checkout" {
		t.Errorf("Screen = %q", sum.Screen)
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	p, _, _, _ := newTestProfiler(t)
	p.Start()
	p.EnterScreen("Home")
	p.ComponentDidRender("List", 25)
	p.SetCustomData("build", StringValue("abc123"))

	snap := p.GetSnapshot()
	path, err := SaveSnapshot(snap, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Version != SnapshotVersion {
		t.Errorf("Version = %d, want %d", loaded.Version, SnapshotVersion)
	}
	if loaded.SessionID != snap.SessionID {
		t.Errorf("SessionID = %q, want %q", loaded.SessionID, snap.SessionID)
	}
	comp := loaded.Screens["Home"].Components["List"]
	if comp == nil || comp.RenderCount != 1 || comp.LastRenderMs != 25 {
		t.Errorf("loaded component = %+v", comp)
	}
	if v, ok := loaded.Custom["build"]; !ok || v.Kind != KindString || v.Str != "abc123" {
		t.Errorf("loaded custom = %+v ok=%v", v, ok)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot("/nonexistent/snapshot.json"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
