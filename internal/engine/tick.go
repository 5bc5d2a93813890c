package engine

import (
	"time"

	"github.com/amnona/irrigator/internal/model"
	"github.com/amnona/irrigator/internal/statuslight"
)

const (
	// periodicIOTicks gates step 7 (water logs, keep-alive) per spec
	// §4.H step 7: "every 60 ticks".
	periodicIOTicks = 60
	// leakCheckTicks gates step 8 per spec §4.H step 8: "every 300
	// ticks".
	leakCheckTicks = 300
	// fertilizeMinTimeToClose is the spec §4.H step 2 threshold: a
	// pump only opens for a faucet with at least this much time left
	// before its window closes.
	fertilizeMinTimeToClose = 10 * time.Minute
	// zeroWaterMinOpenSeconds and zeroWaterMaxLiters gate the spec
	// §4.I zero-water-on-close notification.
	zeroWaterMinOpenSeconds = 120
	zeroWaterMaxLiters      = 10.0
)

// Tick runs one iteration of the 11-step cycle spec §4.H describes and
// reports whether the engine should terminate (the `quit` command).
// No error returned here is fatal: every recoverable failure is
// logged and swallowed before Tick returns, per spec §7.
func (e *Engine) Tick(now time.Time) (quit bool, err error) {
	node := e.Node
	e.tick++

	// Poll every local counter's flow each tick so AddFlowCount below
	// always has a fresh reading; the 45s throttle lives inside
	// Counter.Poll itself (spec §4.C).
	for name, c := range node.Counters {
		if perr := c.Poll(now); perr != nil {
			e.Log.WithField("counter", name).WithError(perr).Warn("engine: counter poll failed")
		}
	}

	// Step 1: compute desired-open set.
	desired, numOpenByCounter := e.computeDesired(now)

	// Step 2: fertilizer pump decision.
	e.reconcilePumps(now, desired)

	// Step 3: status file diff.
	if changed, serr := e.StatusFile.WriteIfChanged(desired); serr != nil {
		e.Log.WithError(serr).Warn("engine: writing status file failed")
	} else if changed {
		e.Log.WithField("count", len(desired)).Debug("engine: status file updated")
	}

	// Step 4: alone accounting.
	applyAloneAccounting(node, numOpenByCounter)

	e.updateStatusLight(desired)

	// Step 5: reconcile.
	e.reconcileFaucets(now, desired)

	// Step 6: delete ripe timers.
	e.deleteRipeTimers(now)

	// Step 7: periodic I/O.
	if e.tick%periodicIOTicks == 0 {
		e.periodicIO(now, numOpenByCounter)
	}

	// Step 8: leak detection.
	if e.tick%leakCheckTicks == 0 {
		e.checkLeaks(now, numOpenByCounter)
	}

	// Step 9: daily report.
	e.maybeDailyReport(now)

	// Step 10: hot-reload.
	e.reload(now)

	qEff, cerr := e.Transient.ApplyIfChanged(node, now)
	if cerr != nil {
		e.Log.WithError(cerr).Warn("engine: applying transient commands failed")
	}
	e.applyEffects(now, qEff)
	if qEff.Quit {
		return true, nil
	}

	if oerr := e.Overrides.ApplyIfChanged(node); oerr != nil {
		e.Log.WithError(oerr).Warn("engine: applying state overrides failed")
	}

	return false, nil
}

// computeDesired implements spec §4.H step 1: union every timer whose
// ShouldBeOpen holds (skipping Weekly timers while the node is in
// manual mode) and groups faucet names by counter for the
// alone-accounting and fertilizer steps that follow.
func (e *Engine) computeDesired(now time.Time) (map[string]bool, map[string][]string) {
	node := e.Node
	desired := make(map[string]bool)
	numOpenByCounter := make(map[string][]string)
	correction := node.DurationCorrection

	for _, t := range node.Timers {
		if t.IsWeekly() && node.IsManual() {
			continue
		}
		if !t.ShouldBeOpen(now, correction) {
			continue
		}
		name := t.FaucetName()
		desired[name] = true
		if f, ok := node.Faucets[name]; ok && f.Counter != nil {
			numOpenByCounter[f.Counter.Name] = append(numOpenByCounter[f.Counter.Name], name)
		}
	}
	return desired, numOpenByCounter
}

// updateStatusLight reflects the desired-open set onto the optional
// three-color indicator: yellow while any faucet is supposed to be
// watering, green otherwise. A flashing red anomaly signal (see
// checkLeaks) always takes visual precedence, since StartFlashing
// drives the same Red channel independently of Set.
func (e *Engine) updateStatusLight(desired map[string]bool) {
	if e.Light == nil {
		return
	}
	color := statuslight.Green
	if len(desired) > 0 {
		color = statuslight.Yellow
	}
	if err := e.Light.Set(color); err != nil {
		e.Log.WithError(err).Warn("engine: updating status light failed")
	}
}

// applyAloneAccounting implements spec §4.H step 4.
func applyAloneAccounting(node *model.Node, numOpenByCounter map[string][]string) {
	for _, f := range node.Faucets {
		f.AllAlone = true
	}
	for _, names := range numOpenByCounter {
		if len(names) <= 1 {
			continue
		}
		for _, name := range names {
			if f, ok := node.Faucets[name]; ok {
				f.AllAlone = false
				f.AllAlone_AllTime = false
			}
		}
	}
}

// deleteRipeTimers implements spec §4.H step 6.
func (e *Engine) deleteRipeTimers(now time.Time) {
	node := e.Node
	kept := node.Timers[:0]
	removed := 0
	for _, t := range node.Timers {
		if t.ShouldRemove(now) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	node.Timers = kept
	if removed > 0 {
		e.Log.WithField("count", removed).Debug("engine: removed expired timers")
	}
}
