package model

import (
	"fmt"
	"time"

	"github.com/amnona/irrigator/internal/devio"
)

// valve holds the actuation bookkeeping shared by Faucet and Pump:
// a relay channel, whether it is owned by this node, and open/closed
// state with a timestamp. Grounded on driver/simpledriver.go's
// per-GPIO open/close-with-state-tracking pattern
// (gpio.State/gpio.Up/gpio.Down), generalized from one hard-coded
// pump sequence to any relay-backed valve. This is composition, not
// the class inheritance spec §9 explicitly steers away from: Faucet
// and Pump each embed a valve value, and the relay backend itself is
// injected via the devio.RelayDriver capability.
type valve struct {
	Name         string
	ComputerName string
	RelayIdx     int
	Local        bool
	// ReadOnly valves track state but never actuate hardware. The
	// config loader never sets it; Faucet.PumpControl does not affect it.
	ReadOnly bool
	Relay    devio.RelayDriver

	IsOpen   bool
	OpenTime time.Time
}

// ForceOff actuates the relay off unconditionally, regardless of the
// in-memory IsOpen state, and marks the valve closed. This backs the
// closeall/disable/quit safety sweep (original_source's
// closeall_numato.py): a crash mid-tick can leave a relay physically
// on while this process believes it is already closed, so the sweep
// must not skip valves it thinks are already off.
func (v *valve) ForceOff() (bool, error) {
	v.IsOpen = false
	return v.actuate(false)
}

// actuate sets the relay if this valve is local and not read-only.
// It returns whether the relay accepted the change; remote or
// read-only valves always report false, matching spec §4.D's "return
// the actuator's success (false for remote-owned faucets)".
func (v *valve) actuate(on bool) (bool, error) {
	if !v.Local || v.ReadOnly {
		return false, nil
	}
	if err := v.Relay.Set(v.RelayIdx, on); err != nil {
		return false, fmt.Errorf("valve %s: actuate: %w", v.Name, err)
	}
	return true, nil
}

// openVerb/closeVerb pick the action-log phrasing spec §4.D/§4.J
// requires ("opened faucet X" vs "remotely opened faucet X").
func (v *valve) openVerb() string {
	if v.Local {
		return "opened"
	}
	return "remotely opened"
}

func (v *valve) closeVerb() string {
	if v.Local {
		return "closed"
	}
	return "remotely closed"
}
