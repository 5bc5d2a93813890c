package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amnona/irrigator/internal/devio"
	"github.com/amnona/irrigator/internal/model"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func nodeWithFaucet(name string) *model.Node {
	n := model.NewNode("node1")
	f := model.NewFaucet(name, "node1", 1, "drip", true, devio.NewFakeRelay())
	f.DefaultDurationMin = 15
	n.Faucets[name] = f
	return n
}

func writeCommandFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "commands.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestTransientIngest_OpenAppendsManualSingleTimer implements spec
// §8 scenario 3's first half: an `open` command creates a manual
// Single timer for the faucet's default duration.
func TestTransientIngest_OpenAppendsManualSingleTimer(t *testing.T) {
	node := nodeWithFaucet("roses")
	dir := t.TempDir()
	path := writeCommandFile(t, dir, "open\troses\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}

	eff, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.False(t, eff.Quit)
	require.Len(t, node.Timers, 1)
	assert.True(t, node.Timers[0].IsManual())
	assert.Equal(t, "roses", node.Timers[0].FaucetName())
}

// TestTransientIngest_CloseRemovesManualTimers implements spec §8
// scenario 3's second half.
func TestTransientIngest_CloseRemovesManualTimers(t *testing.T) {
	node := nodeWithFaucet("roses")
	node.Faucets["roses"].Open(time.Now(), false)
	node.Timers = append(node.Timers, model.NewSingleTimer("roses", 15, time.Now(), true))

	dir := t.TempDir()
	path := writeCommandFile(t, dir, "close\troses\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}

	eff, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.Len(t, eff.LogLines, 1)
	assert.Contains(t, eff.LogLines[0], "manually closed faucet roses")
	assert.Empty(t, node.Timers)
	assert.False(t, node.Faucets["roses"].IsOpen)
}

func TestTransientIngest_CloseAllRemovesOnlyManualTimers(t *testing.T) {
	node := nodeWithFaucet("roses")
	node.Faucets["lawn"] = model.NewFaucet("lawn", "node1", 2, "spray", true, devio.NewFakeRelay())
	node.Faucets["roses"].Open(time.Now(), false)
	node.Faucets["lawn"].Open(time.Now(), false)
	node.Timers = append(node.Timers,
		model.NewSingleTimer("roses", 15, time.Now(), true),
		model.NewWeeklyTimer("lawn", 10, 3, 6, 0),
	)

	dir := t.TempDir()
	path := writeCommandFile(t, dir, "closeall\tignored\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}

	_, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.False(t, node.Faucets["roses"].IsOpen)
	assert.False(t, node.Faucets["lawn"].IsOpen)
	require.Len(t, node.Timers, 1) // the Weekly timer is never removed
	assert.True(t, node.Timers[0].IsWeekly())
}

func TestTransientIngest_DisableOnlyAffectsOwnNode(t *testing.T) {
	node := nodeWithFaucet("roses")
	node.ComputerName = "node1"

	dir := t.TempDir()
	path := writeCommandFile(t, dir, "disable\tother-node\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}
	eff, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.False(t, node.Disabled)
	assert.Nil(t, eff.Disabled)

	path2 := writeCommandFile(t, dir, "disable\tnode1\n")
	ing2 := &TransientIngest{Path: path2, Log: discardLogger()}
	eff2, err := ing2.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.True(t, node.Disabled)
	require.NotNil(t, eff2.Disabled)
	assert.True(t, *eff2.Disabled)
}

func TestTransientIngest_QuitClosesAllAndSetsQuit(t *testing.T) {
	node := nodeWithFaucet("roses")
	node.Faucets["roses"].Open(time.Now(), false)

	dir := t.TempDir()
	path := writeCommandFile(t, dir, "quit\tnow\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}
	eff, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.True(t, eff.Quit)
	assert.False(t, node.Faucets["roses"].IsOpen)
}

func TestTransientIngest_OnlyAppliesOnMtimeChange(t *testing.T) {
	node := nodeWithFaucet("roses")
	dir := t.TempDir()
	path := writeCommandFile(t, dir, "open\troses\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}

	_, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	require.Len(t, node.Timers, 1)

	// Re-applying without a file change must not duplicate the timer.
	_, err = ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.Len(t, node.Timers, 1)
}

func TestTransientIngest_MissingFileForgetsMtime(t *testing.T) {
	node := nodeWithFaucet("roses")
	dir := t.TempDir()
	path := writeCommandFile(t, dir, "open\troses\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}
	_, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	eff, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.False(t, eff.Quit)

	// Recreating the file (even at the same path) is treated as new.
	writeCommandFile(t, dir, "closeall\tx\n")
	_, err = ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.Empty(t, node.Timers)
}

func TestTransientIngest_MalformedLineSkipped(t *testing.T) {
	node := nodeWithFaucet("roses")
	dir := t.TempDir()
	path := writeCommandFile(t, dir, "not-a-valid-line\n"+"open\troses\n")
	ing := &TransientIngest{Path: path, Log: discardLogger()}
	_, err := ing.ApplyIfChanged(node, time.Now())
	require.NoError(t, err)
	assert.Len(t, node.Timers, 1)
}
