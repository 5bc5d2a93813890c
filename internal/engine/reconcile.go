package engine

import (
	"fmt"
	"time"

	"github.com/amnona/irrigator/internal/model"
)

// reconcileFaucets implements spec §4.H step 5: close faucets no
// longer desired, sample flow for faucets that are open/desired/alone,
// and open faucets newly desired (unless blocked by a disabled node
// or disabled line).
func (e *Engine) reconcileFaucets(now time.Time, desired map[string]bool) {
	node := e.Node
	for name, f := range node.Faucets {
		switch {
		case f.IsOpen && !desired[name]:
			ok, logLine, totalWater, medianFlow, err := f.Close(now, true)
			if err != nil {
				e.Log.WithField("faucet", name).WithError(err).Warn("engine: close actuation failed")
			}
			_ = ok
			if logLine != "" {
				e.appendAction(now, logLine)
			}
			openDuration := now.Sub(f.OpenTime)
			if serr := e.Water.SummaryFaucet(name, f.OpenTime, openDuration.Minutes(), f.AllAlone_AllTime, medianFlow, totalWater); serr != nil {
				e.Log.WithField("faucet", name).WithError(serr).Warn("engine: writing faucet summary failed")
			}
			e.checkFlowAnomalies(f, name, openDuration, totalWater, medianFlow)

		case f.IsOpen && desired[name] && f.AllAlone && f.Counter != nil:
			f.AddFlowCount()

		case !f.IsOpen && desired[name]:
			blocked := node.Disabled || node.DisabledFaucets[name]
			if blocked {
				if !f.SkipLogged {
					e.Log.WithField("faucet", name).Info("engine: faucet blocked by disable override, staying closed")
					f.SkipLogged = true
				}
				continue
			}
			f.SkipLogged = false
			// Open resets the alone flags; keep this tick's step-4
			// result so a faucet sharing its counter from the first
			// tick is never recorded as alone.
			alone := f.AllAlone
			ok, logLine, err := f.Open(now, true)
			f.AllAlone = alone
			f.AllAlone_AllTime = alone
			if err != nil {
				e.Log.WithField("faucet", name).WithError(err).Warn("engine: open actuation failed")
			}
			_ = ok
			if logLine != "" {
				e.appendAction(now, logLine)
			}
		}
	}
}

func (e *Engine) appendAction(now time.Time, line string) {
	if err := e.ActionLog.Append(now, line); err != nil {
		e.Log.WithError(err).Warn("engine: writing action log failed")
	}
}

// checkFlowAnomalies implements the faucet-close notification rules
// of spec §4.I: zero-water-on-close, high-flow, and low-flow. Only
// faucets with NormalFlow > 0 participate in the flow checks.
func (e *Engine) checkFlowAnomalies(f *model.Faucet, name string, openDuration time.Duration, totalWater, medianFlow float64) {
	if !e.Node.MonitorLeaks && totalWater >= 0 && totalWater <= zeroWaterMaxLiters && openDuration.Seconds() > zeroWaterMinOpenSeconds {
		e.notify(fmt.Sprintf("zero water for faucet %s", name),
			fmt.Sprintf("faucet %s was open for %.0f seconds but recorded only %.3f liters", name, openDuration.Seconds(), totalWater))
	}

	if f.NormalFlow <= 0 || medianFlow < 0 {
		return
	}
	switch {
	case medianFlow > f.NormalFlow*1.15 || medianFlow > f.NormalFlow+4:
		e.notify(fmt.Sprintf("high flow for faucet %s", name),
			fmt.Sprintf("faucet %s median flow %.3f exceeds normal flow %.3f", name, medianFlow, f.NormalFlow))
	case medianFlow < f.NormalFlow*0.8 || medianFlow < f.NormalFlow-4:
		e.notify(fmt.Sprintf("low flow for faucet %s", name),
			fmt.Sprintf("faucet %s median flow %.3f is below normal flow %.3f", name, medianFlow, f.NormalFlow))
	}
}

func (e *Engine) notify(subject, body string) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.Send(subject, body); err != nil {
		e.Log.WithError(err).Warn("engine: notification send failed")
	}
}
