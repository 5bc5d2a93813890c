package engine

import (
	"fmt"
	"time"
)

// leakRingLen is the bounded ring buffer length spec §4.H step 8
// requires: four successive counter readings spaced leakCheckTicks
// apart.
const leakRingLen = 4

// checkLeaks implements spec §4.H step 8. For every local counter
// that either has no desired-open faucets, or has some but
// monitor_leaks is enabled, append its current count to a length-4
// ring; if the last three successive deltas are all strictly positive
// (a monotonic rise with no dead window), emit a "leak detected"
// notification.
func (e *Engine) checkLeaks(now time.Time, numOpenByCounter map[string][]string) {
	node := e.Node
	for name, c := range node.Counters {
		hasDesiredOpen := len(numOpenByCounter[name]) > 0
		if !node.MonitorLeaks && hasDesiredOpen {
			continue
		}

		ring := append(e.leakRings[name], c.Count)
		if len(ring) > leakRingLen {
			ring = ring[len(ring)-leakRingLen:]
		}
		e.leakRings[name] = ring

		if len(ring) < leakRingLen {
			continue
		}
		if ring[1] > ring[0] && ring[2] > ring[1] && ring[3] > ring[2] {
			interval := float64(leakCheckTicks) // seconds, one tick == 1s
			flows := make([]float64, 0, 3)
			for i := 1; i < len(ring); i++ {
				flows = append(flows, (ring[i]-ring[i-1])*60/interval)
			}
			if e.Light != nil {
				e.Light.StartFlashing()
			}
			e.notify("leak detected", fmt.Sprintf(
				"node: %s\ncounter name: %s\nwindow reads: %.3f %.3f %.3f %.3f\nderived flows (L/min): %.3f %.3f %.3f",
				node.ComputerName, name, ring[0], ring[1], ring[2], ring[3], flows[0], flows[1], flows[2]))
		} else if e.Light != nil {
			e.Light.StopFlashing()
		}
	}
}
