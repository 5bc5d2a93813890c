package engine

import (
	"time"

	"github.com/amnona/irrigator/internal/commands"
	"github.com/amnona/irrigator/internal/config"
)

// applyEffects appends any action-log lines a transient command
// produced and persists node.Disabled to the node ini if a
// disable/enable command toggled it, per spec §4.G.1.
func (e *Engine) applyEffects(now time.Time, eff commands.Effects) {
	for _, line := range eff.LogLines {
		e.appendAction(now, line)
	}
	if eff.Disabled != nil && e.NodeIniPath != "" {
		if err := config.SaveNodeDisabled(e.NodeIniPath, *eff.Disabled); err != nil {
			e.Log.WithError(err).Warn("engine: persisting disabled flag to node ini failed")
		}
	}
}
