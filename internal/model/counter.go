package model

import (
	"fmt"
	"time"

	"github.com/amnona/irrigator/internal/devio"
)

// MinFlowInterval is the minimum elapsed time between two flow
// recomputations, per spec §4.C.
const MinFlowInterval = 45 * time.Second

// CounterKind names the backend a Counter is wired to.
type CounterKind string

const (
	CounterArduino CounterKind = "arduino"
	CounterNumato  CounterKind = "numato"
	CounterPiGPIO  CounterKind = "pi-gpio"
	CounterFake    CounterKind = "fake"
)

// Counter tracks a pulse-based flow meter's cumulative count (liters)
// and derived flow (L/min), per spec §3/§4.C.
type Counter struct {
	Name          string
	ComputerName  string
	Kind          CounterKind
	IOPin         int
	Channel       int
	CountsPerLiter float64

	Count         float64
	LastWaterRead float64
	LastWaterTime time.Time
	Flow          float64 // L/min; -1 if unknown

	Device devio.PulseCounter
}

// NewCounter returns a Counter with Flow seeded to -1 (unknown) per
// spec §3.
func NewCounter(name, computer string, kind CounterKind, countsPerLiter float64, dev devio.PulseCounter) *Counter {
	return &Counter{
		Name:           name,
		ComputerName:   computer,
		Kind:           kind,
		CountsPerLiter: countsPerLiter,
		Device:         dev,
		Flow:           -1,
	}
}

// Poll reads the underlying device, converts raw pulses to liters,
// and — only once more than MinFlowInterval has elapsed since the
// last flow computation — updates Flow. The very first reading seeds
// LastWaterRead/LastWaterTime without producing a spurious flow
// value, per spec §4.C.
//
// On a transient device error, Count/Flow are left unchanged (the
// prior value is reported to callers), but LastWaterRead/LastWaterTime
// are reseeded to now: this is the implementer's documented choice
// for the open question in spec §9 — suppress the next flow
// computation rather than synthesize one across an outage of unknown
// length (see DESIGN.md).
func (c *Counter) Poll(now time.Time) error {
	raw, err := c.Device.ReadCount()
	if err != nil {
		c.LastWaterRead = c.Count
		c.LastWaterTime = now
		return fmt.Errorf("counter %s: %w", c.Name, err)
	}
	litres := raw / c.CountsPerLiter
	c.Count = litres

	if c.LastWaterTime.IsZero() {
		c.LastWaterRead = litres
		c.LastWaterTime = now
		return nil
	}

	elapsed := now.Sub(c.LastWaterTime)
	if elapsed > MinFlowInterval {
		c.Flow = (litres - c.LastWaterRead) * 60 / elapsed.Seconds()
		c.LastWaterRead = litres
		c.LastWaterTime = now
	}
	return nil
}

// Clear resets the underlying device's cumulative count and this
// Counter's bookkeeping.
func (c *Counter) Clear() error {
	if err := c.Device.ClearCount(); err != nil {
		return fmt.Errorf("counter %s: clear: %w", c.Name, err)
	}
	c.Count = 0
	c.LastWaterRead = 0
	c.LastWaterTime = time.Time{}
	c.Flow = -1
	return nil
}
