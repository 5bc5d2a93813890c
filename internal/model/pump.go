package model

import (
	"fmt"
	"time"

	"github.com/amnona/irrigator/internal/devio"
)

// Pump is a fertilizer dosing valve, sharing the Faucet's open/close
// interface (spec §3) but tracked separately because pump policy
// (spec §4.H step 2) is driven by the faucets that reference it
// rather than by its own timers. PreCloseTimeMin is loaded from the
// pump list's pre_close_time column and stored; the engine's pump
// policy does not read it.
type Pump struct {
	valve

	PreCloseTimeMin float64
}

// NewPump builds a closed Pump.
func NewPump(name, computer string, relayIdx int, local bool, relay devio.RelayDriver, preCloseTimeMin float64) *Pump {
	return &Pump{
		valve: valve{
			Name:         name,
			ComputerName: computer,
			RelayIdx:     relayIdx,
			Local:        local,
			Relay:        relay,
		},
		PreCloseTimeMin: preCloseTimeMin,
	}
}

// Open opens the pump if not already open; mirrors Faucet.Open minus
// the flow-sample/counter bookkeeping a dosing pump has no use for.
func (p *Pump) Open(now time.Time, force bool) (bool, string, error) {
	if p.IsOpen && !force {
		return false, "", nil
	}
	p.IsOpen = true
	p.OpenTime = now
	ok, err := p.actuate(true)
	return ok, fmt.Sprintf("%s pump %s", p.openVerb(), p.Name), err
}

// Close closes the pump if currently open.
func (p *Pump) Close(now time.Time, force bool) (bool, string, error) {
	if !p.IsOpen && !force {
		return false, "", nil
	}
	p.IsOpen = false
	ok, err := p.actuate(false)
	return ok, fmt.Sprintf("%s pump %s", p.closeVerb(), p.Name), err
}
