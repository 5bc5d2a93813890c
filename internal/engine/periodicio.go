package engine

import "time"

// periodicIO implements spec §4.H step 7: append water-log lines for
// every local counter, plus the per-faucet log for any counter with
// exactly one desired-open faucet, rewrite the current-water snapshot,
// and touch the keep-alive file.
func (e *Engine) periodicIO(now time.Time, numOpenByCounter map[string][]string) {
	node := e.Node

	current := make(map[string]struct{ Count, Flow float64 }, len(node.Counters))
	for name, c := range node.Counters {
		if err := e.Water.AppendCounter(now, node.ComputerName, name, c.Count, c.Flow); err != nil {
			e.Log.WithField("counter", name).WithError(err).Warn("engine: writing counter water log failed")
		}
		current[name] = struct{ Count, Flow float64 }{c.Count, c.Flow}

		if names := numOpenByCounter[name]; len(names) == 1 {
			if err := e.Water.AppendFaucet(now, node.ComputerName, names[0], c.Count, c.Flow); err != nil {
				e.Log.WithField("faucet", names[0]).WithError(err).Warn("engine: writing faucet water log failed")
			}
		}
	}
	if err := e.Water.WriteCurrent(now, node.ComputerName, current); err != nil {
		e.Log.WithError(err).Warn("engine: writing current water snapshot failed")
	}

	if err := e.KeepAlive.Touch(now); err != nil {
		e.Log.WithError(err).Warn("engine: touching keep-alive file failed")
	}
}
