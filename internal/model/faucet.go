package model

import (
	"fmt"
	"time"

	"github.com/amnona/irrigator/internal/calc"
	"github.com/amnona/irrigator/internal/devio"
)

// Faucet is a solenoid valve controlled by one relay channel on one
// node, optionally metered by a Counter, per spec §3. Grounded on
// driver/simpledriver.go's pump/valve state machine
// (handleStartGpio/handleReverseGpio/handleCleanGpio), generalized
// from the teacher's single hard-coded sequence to per-faucet state
// plus the flow-sampling bookkeeping spec §4.D adds.
type Faucet struct {
	valve

	FaucetType  string
	Counter     *Counter
	DefaultDurationMin float64
	// NormalFlow is L/h; -1 skips flow-anomaly checks, per spec §3.
	NormalFlow float64

	FertilizationPump string
	Fertilize         bool
	PumpControl       bool
	PumpSensor        string

	StartWater float64
	// FlowSamples holds the counter's flow reading captured once per
	// tick while this faucet was alone on its counter (all_alone),
	// cleared on open.
	FlowSamples []float64

	AllAlone        bool
	AllAlone_AllTime bool

	// SkipLogged tracks whether we have already logged a "blocked,
	// staying closed" skip for the current desired-but-blocked
	// transition, so the engine logs it once per transition (spec
	// §4.H step 5) rather than every tick.
	SkipLogged bool
}

// NewFaucet builds a closed Faucet with no flow history.
func NewFaucet(name, computer string, relayIdx int, faucetType string, local bool, relay devio.RelayDriver) *Faucet {
	return &Faucet{
		valve: valve{
			Name:         name,
			ComputerName: computer,
			RelayIdx:     relayIdx,
			Local:        local,
			Relay:        relay,
		},
		FaucetType: faucetType,
		NormalFlow: -1,
		StartWater: -1,
	}
}

// Open implements spec §4.D. A no-op, returning false, if already
// open and force is false. On an actual open it resets the
// all-alone/flow-sample bookkeeping, seeds StartWater from the
// counter (-1 if none), and actuates the relay if local and not
// read-only.
func (f *Faucet) Open(now time.Time, force bool) (bool, string, error) {
	if f.IsOpen && !force {
		return false, "", nil
	}
	f.IsOpen = true
	f.OpenTime = now
	f.AllAlone = true
	f.AllAlone_AllTime = true
	f.FlowSamples = nil
	f.SkipLogged = false
	if f.Counter != nil {
		f.StartWater = f.Counter.Count
	} else {
		f.StartWater = -1
	}
	ok, err := f.actuate(true)
	logLine := fmt.Sprintf("%s faucet %s", f.openVerb(), f.Name)
	return ok, logLine, err
}

// Close implements spec §4.D. Returns whether the relay accepted the
// close (always false for remote/read-only faucets), the action-log
// line to append (empty if this was a no-op), TotalWater, MedianFlow,
// and any actuation error. The log line uses the "not alone" phrasing
// for a local faucet that was not alone for its whole open interval.
func (f *Faucet) Close(now time.Time, force bool) (ok bool, logLine string, totalWater, medianFlow float64, err error) {
	if !f.IsOpen && !force {
		return false, "", 0, 0, nil
	}
	medianFlow = calc.Median(f.FlowSamples)
	totalWater = f.TotalWater(now)

	f.IsOpen = false
	ok, err = f.actuate(false)

	verb := f.closeVerb()
	if f.Local && !f.AllAlone_AllTime {
		logLine = fmt.Sprintf("%s faucet %s not alone water %.3f median flow %.3f", verb, f.Name, totalWater, medianFlow)
	} else {
		logLine = fmt.Sprintf("%s faucet %s water %.3f median flow %.3f", verb, f.Name, totalWater, medianFlow)
	}
	f.FlowSamples = nil
	return ok, logLine, totalWater, medianFlow, err
}

// CloseManual marks the action-log phrasing used when a faucet is
// closed by an explicit `close`/`closeall` command rather than the
// engine's own reconciliation, per spec §4.J's "manually closed ...".
func (f *Faucet) CloseManual(now time.Time) (ok bool, logLine string, totalWater, medianFlow float64, err error) {
	if !f.IsOpen {
		return false, "", 0, 0, nil
	}
	medianFlow = calc.Median(f.FlowSamples)
	totalWater = f.TotalWater(now)
	f.IsOpen = false
	ok, err = f.actuate(false)
	logLine = fmt.Sprintf("manually closed faucet %s water %.3f median flow %.3f", f.Name, totalWater, medianFlow)
	f.FlowSamples = nil
	return ok, logLine, totalWater, medianFlow, err
}

// AddFlowCount appends the counter's current flow reading to
// FlowSamples, once per tick, only while the faucet is open, alone on
// its counter, and a counter is actually present, per spec §4.D.
func (f *Faucet) AddFlowCount() {
	if !f.IsOpen || !f.AllAlone || f.Counter == nil {
		return
	}
	f.FlowSamples = append(f.FlowSamples, f.Counter.Flow)
}

// MedianFlow returns the median of FlowSamples, or -1 if none were
// collected, per spec §4.D.
func (f *Faucet) MedianFlow() float64 {
	return calc.Median(f.FlowSamples)
}

// TotalWater implements spec §4.D's three-way estimate: the exact
// counter delta if the faucet was alone for its entire open interval
// and has a counter; else the median-flow-times-duration estimate;
// else -1 if neither is available.
func (f *Faucet) TotalWater(now time.Time) float64 {
	if f.AllAlone_AllTime && f.Counter != nil {
		return f.Counter.Count - f.StartWater
	}
	median := f.MedianFlow()
	if median >= 0 {
		minutesOpen := now.Sub(f.OpenTime).Minutes()
		return median * minutesOpen
	}
	return -1
}

// MinutesOpen reports how long the faucet has been continuously open.
func (f *Faucet) MinutesOpen(now time.Time) float64 {
	if !f.IsOpen {
		return 0
	}
	return now.Sub(f.OpenTime).Minutes()
}
