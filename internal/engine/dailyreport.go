package engine

import "time"

// maybeDailyReport implements spec §4.H step 9: once per calendar day
// after 08:00 local, emit one notification with every local counter's
// water total since the previous report plus the buffered pump/faucet
// events, then reset baselines.
func (e *Engine) maybeDailyReport(now time.Time) {
	if e.Daily == nil || !e.Daily.Due(now) {
		return
	}
	counts := make(map[string]float64, len(e.Node.Counters))
	for name, c := range e.Node.Counters {
		counts[name] = c.Count
	}
	body := e.Daily.Build(now, counts)
	e.notify("daily irrigation report", body)
}
