package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/pulse/config"
	"github.com/pthm-cable/pulse/events"
	"github.com/pthm-cable/pulse/profiler"
)

func TestNilManagerIsNoop(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	require.Nil(t, om)

	require.NoError(t, om.WriteReport(profiler.IntervalReport{}))
	require.NoError(t, om.WriteEvent(events.Event{}))
	require.NoError(t, om.WriteConfig(nil))
	require.NoError(t, om.Close())
	require.Equal(t, "", om.Dir())
}

func TestWriteReportHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	require.NoError(t, err)
	defer om.Close()

	report := profiler.IntervalReport{
		SessionID:   "s1",
		Screen:      "Home",
		Renders:     3,
		SlowRenders: 1,
		FPSCurrent:  58,
	}
	require.NoError(t, om.WriteReport(report))
	report.Screen = "Settings"
	require.NoError(t, om.WriteReport(report))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "reports.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "one header plus two records")
	require.Contains(t, lines[0], "session_id")
	require.Contains(t, lines[1], "Home")
	require.Contains(t, lines[2], "Settings")
	require.Equal(t, 1, strings.Count(string(data), "session_id"))
}

func TestWriteEvent(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	require.NoError(t, err)
	defer om.Close()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ev := events.NewSlowRenderEvent(now, "Home", "List", 25, 16)
	require.NoError(t, om.WriteEvent(ev))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "events.csv"))
	require.NoError(t, err)
	require.Contains(t, string(data), "slow_render")
	require.Contains(t, string(data), "List")
}

func TestWriteConfigAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	require.NoError(t, err)
	defer om.Close()

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, om.WriteConfig(cfg))
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	snap := profiler.Snapshot{Version: profiler.SnapshotVersion, SessionID: "s1"}
	path, err := om.WriteSnapshot(snap)
	require.NoError(t, err)

	loaded, err := profiler.LoadSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, "s1", loaded.SessionID)
}
