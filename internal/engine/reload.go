package engine

import (
	"time"

	"github.com/amnona/irrigator/internal/config"
)

// reload implements spec §4.H step 10: stat every config file and
// hot-reload what changed, applying the faucet/pump/timer cascade
// §4.F requires. Before faucets are rebuilt every faucet on the node
// is closed first — spec §4.F's explicit "deliberate... safe-by-
// default" note — since a relay index or counter mapping might be
// about to change out from under an open valve.
func (e *Engine) reload(now time.Time) {
	if e.Loader == nil {
		return
	}
	changed, err := e.Loader.Reload(e.Node, func() {
		for name, f := range e.Node.Faucets {
			if _, logLine, _, _, cerr := f.Close(now, true); cerr != nil {
				e.Log.WithField("faucet", name).WithError(cerr).Warn("engine: close-before-reload actuation failed")
			} else if logLine != "" {
				e.appendAction(now, logLine)
			}
		}
	})
	if err != nil {
		e.Log.WithError(err).Warn("engine: config reload encountered errors")
	}
	logReloadChanges(e, changed)
}

func logReloadChanges(e *Engine, c config.Changed) {
	if !c.Any() {
		return
	}
	e.Log.WithField("faucets", c.Faucets).
		WithField("counters", c.Counters).
		WithField("pumps", c.Pumps).
		WithField("timers", c.Timers).
		WithField("node_ini", c.NodeIni).
		Info("engine: config reloaded")
}
