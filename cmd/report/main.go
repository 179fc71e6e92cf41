// Package main prints a human-readable health report from a saved session
// snapshot.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/pthm-cable/pulse/profiler"
)

func main() {
	// CLI flags
	snapshotPath := flag.String("snapshot", "", "Path to a snapshot JSON file")
	topN := flag.Int("top", 5, "Number of slowest components to list per screen")
	flag.Parse()

	if *snapshotPath == "" {
		log.Fatal("--snapshot is required")
	}

	snap, err := profiler.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}
	if snap.Version != profiler.SnapshotVersion {
		log.Fatalf("unsupported snapshot version %d (want %d)", snap.Version, profiler.SnapshotVersion)
	}

	fmt.Printf("Session %s\n", snap.SessionID)
	fmt.Printf("  started:  %s\n", snap.StartTime.Format(time.RFC3339))
	fmt.Printf("  captured: %s\n", snap.TakenAt.Format(time.RFC3339))
	fmt.Printf("  duration: %s\n", snap.Global.SessionDuration.Round(time.Second))
	fmt.Println()

	fmt.Printf("Totals: %d mounts, %d renders (%d slow, %d very slow), avg %.1fms\n",
		snap.Global.TotalMounts, snap.Global.TotalRenders,
		snap.Global.SlowRenders, snap.Global.VerySlowRenders,
		snap.Global.AverageRenderMs)
	fmt.Printf("FPS: avg %.1f (min %.1f, max %.1f, %d readings)\n",
		snap.FPS.Average, snap.FPS.Min, snap.FPS.Max, snap.FPS.Count)
	if snap.Global.PeakMemory > 0 {
		fmt.Printf("Memory: %.1fMB current, %.1fMB peak\n",
			float64(snap.Global.CurrentMemory)/(1024*1024),
			float64(snap.Global.PeakMemory)/(1024*1024))
	}
	fmt.Println()

	fmt.Printf("Navigation: %v\n", snap.Visited)
	fmt.Println()

	// Screens in visit order, then any stragglers alphabetically.
	printed := make(map[string]bool)
	for _, name := range snap.Visited {
		if screen := snap.Screens[name]; screen != nil {
			printScreen(screen, *topN)
			printed[name] = true
		}
	}
	var rest []string
	for name := range snap.Screens {
		if !printed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		printScreen(snap.Screens[name], *topN)
	}
}

func printScreen(screen *profiler.ScreenMetrics, topN int) {
	fmt.Printf("Screen %s\n", screen.Name)
	fmt.Printf("  time on screen: %.0fms, interactions: %d\n", screen.TimeOnScreenMs, screen.InteractionCount)
	if screen.DroppedFrames > 0 || screen.MainThreadBlockMs > 0 {
		fmt.Printf("  dropped frames: %d, main thread blocked: %.0fms\n",
			screen.DroppedFrames, screen.MainThreadBlockMs)
	}
	if screen.LastMemoryDelta != 0 {
		fmt.Printf("  memory delta: %+.1fMB\n", float64(screen.LastMemoryDelta)/(1024*1024))
	}

	comps := make([]*profiler.ComponentMetrics, 0, len(screen.Components))
	for _, c := range screen.Components {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool {
		return comps[i].AverageRenderMs > comps[j].AverageRenderMs
	})
	if len(comps) > topN {
		comps = comps[:topN]
	}
	for _, c := range comps {
		fmt.Printf("  %-24s %3d renders, avg %6.1fms, last %6.1fms\n",
			c.Name, c.RenderCount, c.AverageRenderMs, c.LastRenderMs)
	}
	fmt.Println()
}
