package engine

import (
	"fmt"
	"time"
)

// reconcilePumps implements spec §4.H step 2: for every pump, decide
// whether any currently-open-desired faucet wants fertilization
// (fertilize == yes and at least fertilizeMinTimeToClose remains
// before its window ends), unless a qualifying timer is within that
// threshold — which forces the pump closed regardless of other
// timers still wanting it open — or the pump is listed in
// disable_fertilization.
func (e *Engine) reconcilePumps(now time.Time, desired map[string]bool) {
	node := e.Node
	correction := node.DurationCorrection

	for pumpName, pump := range node.Pumps {
		wantOpen := false
		forceClose := false

		if !node.DisabledPumps[pumpName] {
			for _, t := range node.Timers {
				if t.IsWeekly() && node.IsManual() {
					continue
				}
				if !t.ShouldBeOpen(now, correction) {
					continue
				}
				f, ok := node.Faucets[t.FaucetName()]
				if !ok || f.FertilizationPump != pumpName || !f.Fertilize {
					continue
				}
				if t.TimeToClose(now, correction) < fertilizeMinTimeToClose {
					forceClose = true
				} else {
					wantOpen = true
				}
			}
		}
		if forceClose {
			wantOpen = false
		}

		var logLine string
		var err error
		if wantOpen && !pump.IsOpen {
			_, logLine, err = pump.Open(now, false)
		} else if !wantOpen && pump.IsOpen {
			_, logLine, err = pump.Close(now, false)
		}
		if err != nil {
			e.Log.WithField("pump", pumpName).WithError(err).Warn("engine: pump actuation failed")
		}
		if logLine != "" {
			e.appendAction(now, logLine)
			if e.Daily != nil {
				e.Daily.RecordEvent(fmt.Sprintf("%s %s", now.Format(time.RFC3339), logLine))
			}
		}
	}
}
