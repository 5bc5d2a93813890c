package logsink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLog_AppendFormatsTimestampPrefix(t *testing.T) {
	dir := t.TempDir()
	a := &ActionLog{Path: filepath.Join(dir, "actions.txt")}
	now := time.Date(2026, 8, 4, 6, 0, 5, 0, time.UTC)

	require.NoError(t, a.Append(now, "opened faucet roses"))
	require.NoError(t, a.Append(now.Add(10*time.Minute), "closed faucet roses water 3.500 median flow 21.000"))

	content, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	lines := string(content)
	assert.Contains(t, lines, "2026-08-04 06:00:05 opened faucet roses\n")
	assert.Contains(t, lines, "2026-08-04 06:10:05 closed faucet roses water 3.500 median flow 21.000\n")
}

func TestStatusFile_WriteIfChangedOnlyRewritesOnDiff(t *testing.T) {
	dir := t.TempDir()
	s := &StatusFile{Path: filepath.Join(dir, "status.txt")}

	changed, err := s.WriteIfChanged(map[string]bool{"roses": true, "lawn": true})
	require.NoError(t, err)
	assert.True(t, changed)

	content, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Equal(t, "lawn\nroses\n", string(content)) // sorted, stable order

	changed, err = s.WriteIfChanged(map[string]bool{"lawn": true, "roses": true})
	require.NoError(t, err)
	assert.False(t, changed, "same set in a different map iteration order must not count as a change")

	changed, err = s.WriteIfChanged(map[string]bool{})
	require.NoError(t, err)
	assert.True(t, changed)
	content, err = os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Equal(t, "", string(content))
}

func TestKeepAlive_TouchOverwrites(t *testing.T) {
	dir := t.TempDir()
	k := &KeepAlive{Path: filepath.Join(dir, "keepalive.txt")}
	now := time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC)

	require.NoError(t, k.Touch(now))
	first, err := os.ReadFile(k.Path)
	require.NoError(t, err)

	require.NoError(t, k.Touch(now.Add(time.Minute)))
	second, err := os.ReadFile(k.Path)
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(second))
}

func TestWaterLogDir_AppendCounterWritesFullAndRollingLogs(t *testing.T) {
	dir := t.TempDir()
	w := &WaterLogDir{Dir: filepath.Join(dir, "water"), RollingDepth: 2}
	now := time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC)

	require.NoError(t, w.AppendCounter(now, "node1", "c1", 1.0, 2.0))
	require.NoError(t, w.AppendCounter(now.Add(time.Second), "node1", "c1", 1.5, 2.0))
	require.NoError(t, w.AppendCounter(now.Add(2*time.Second), "node1", "c1", 2.0, 2.0))

	full, err := os.ReadFile(filepath.Join(w.Dir, "water-log-node1-c1.txt"))
	require.NoError(t, err)
	assert.Equal(t, 3, countLines(string(full)))

	rolling, err := os.ReadFile(filepath.Join(w.Dir, "water-log-node1-c1-short.txt"))
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(string(rolling)), "rolling log is bounded to RollingDepth")
}

func TestWaterLogDir_AppendFaucetAndWriteCurrent(t *testing.T) {
	dir := t.TempDir()
	w := &WaterLogDir{Dir: filepath.Join(dir, "water")}
	now := time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC)

	require.NoError(t, w.AppendFaucet(now, "node1", "roses", 1.0, 2.0))
	faucetLog, err := os.ReadFile(filepath.Join(w.Dir, "water-log-faucet-roses-node1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(faucetLog), "1.000\t2.000")

	require.NoError(t, w.WriteCurrent(now, "node1", map[string]struct{ Count, Flow float64 }{
		"c1": {Count: 5, Flow: 1},
	}))
	current, err := os.ReadFile(filepath.Join(w.Dir, "current_water_node1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(current), "c1\t5.000\t1.000")
}

func TestWaterLogDir_SummaryFaucetAppendsOneLinePerSession(t *testing.T) {
	dir := t.TempDir()
	w := &WaterLogDir{Dir: filepath.Join(dir, "water")}
	openTime := time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC)

	require.NoError(t, w.SummaryFaucet("roses", openTime, 10, true, 21.0, 3.5))
	content, err := os.ReadFile(filepath.Join(w.Dir, "summary_faucet_roses.txt"))
	require.NoError(t, err)
	assert.Equal(t, "2026-08-04T06:00:00Z\t10.000\ttrue\t21.000\t3.500\n", string(content))
}

func TestDailyReport_NotDueBeforeNextSchedule(t *testing.T) {
	morning := time.Date(2026, 8, 4, 7, 0, 0, 0, time.UTC)
	d, err := NewDailyReport(morning)
	require.NoError(t, err)
	assert.False(t, d.Due(morning))
	assert.True(t, d.Due(time.Date(2026, 8, 4, 8, 0, 0, 0, time.UTC)))
}

func TestDailyReport_BuildResetsBaselinesAndEvents(t *testing.T) {
	start := time.Date(2026, 8, 4, 8, 0, 0, 0, time.UTC)
	d, err := NewDailyReport(start)
	require.NoError(t, err)

	d.RecordEvent("opened faucet roses")
	d.RecordEvent("closed faucet roses water 3.500 median flow 21.000")

	body := d.Build(start, map[string]float64{"c1": 12.0})
	assert.Contains(t, body, "counter c1 total daily water: 12.000")
	assert.Contains(t, body, "opened faucet roses")
	assert.Contains(t, body, "closed faucet roses water 3.500 median flow 21.000")

	// A second day's report measures only the delta since the first.
	nextDue := d.nextDue
	body2 := d.Build(nextDue, map[string]float64{"c1": 20.0})
	assert.Contains(t, body2, "counter c1 total daily water: 8.000")
	assert.NotContains(t, body2, "opened faucet roses", "events must be cleared after Build")
	assert.False(t, d.Due(nextDue), "Build must advance nextDue past now")
}

func countLines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
