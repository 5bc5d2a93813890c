// Package statuslight drives an optional three-color status
// indicator (green/yellow/red relay channels) so a node's health is
// visible without reading its logs. Adapted from driver/trafficLight.go,
// which did the same thing for a single GPIO-backed traffic light:
// the up/down/flashing/mutually-exclusive-color shape survives, but
// the three package-level *lights globals and the raw gpio.GPIO
// dependency are gone in favor of an Indicator value driven by
// devio.RelayDriver, so it can sit on the same Numato relay board a
// node's faucets use.
package statuslight

import (
	"fmt"
	"sync"
	"time"

	"github.com/amnona/irrigator/internal/devio"
)

// Color identifies one of the three channels an Indicator drives.
type Color int

const (
	Green Color = iota
	Yellow
	Red
)

func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	default:
		return "unknown"
	}
}

const flashInterval = 3 * time.Second

// Indicator is a three-channel relay-backed light: Idle (green),
// Watering (yellow), and Anomaly (red) map onto relay channels
// GreenRelay/YellowRelay/RedRelay on Relay. At most one solid color is
// lit at a time; Red can additionally flash independently of the
// solid color, mirroring trafficLight.go's Flashing behavior.
type Indicator struct {
	Relay                                devio.RelayDriver
	GreenRelay, YellowRelay, RedRelay int

	mu        sync.Mutex
	solid     Color
	flashStop chan struct{}
}

func (ind *Indicator) channel(c Color) int {
	switch c {
	case Green:
		return ind.GreenRelay
	case Yellow:
		return ind.YellowRelay
	default:
		return ind.RedRelay
	}
}

// Set lights exactly one solid color, turning the other two off. A
// nil Relay makes Set a no-op, so an Indicator is safe to leave
// unconfigured on nodes with no physical light installed.
func (ind *Indicator) Set(c Color) error {
	if ind.Relay == nil {
		return nil
	}
	ind.mu.Lock()
	defer ind.mu.Unlock()
	for _, other := range []Color{Green, Yellow, Red} {
		if other == c {
			continue
		}
		if other == Red && ind.flashStop != nil {
			// A running StartFlashing owns the Red channel.
			continue
		}
		if err := ind.Relay.Set(ind.channel(other), false); err != nil {
			return fmt.Errorf("statuslight: turning off %s: %w", other, err)
		}
	}
	if err := ind.Relay.Set(ind.channel(c), true); err != nil {
		return fmt.Errorf("statuslight: turning on %s: %w", c, err)
	}
	ind.solid = c
	return nil
}

// StartFlashing blinks Red on a flashInterval cadence until
// StopFlashing is called, used by the engine to surface a leak or
// flow anomaly that a log line alone would be easy to miss.
func (ind *Indicator) StartFlashing() {
	if ind.Relay == nil {
		return
	}
	ind.mu.Lock()
	if ind.flashStop != nil {
		ind.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	ind.flashStop = stop
	ind.mu.Unlock()

	go func() {
		on := false
		for {
			select {
			case <-stop:
				ind.Relay.Set(ind.channel(Red), false)
				return
			case <-time.After(flashInterval):
				on = !on
				ind.Relay.Set(ind.channel(Red), on)
			}
		}
	}()
}

// StopFlashing halts a running StartFlashing goroutine, if any, and
// restores whatever solid color was last set.
func (ind *Indicator) StopFlashing() {
	ind.mu.Lock()
	stop := ind.flashStop
	ind.flashStop = nil
	ind.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	ind.Set(ind.solid)
}
