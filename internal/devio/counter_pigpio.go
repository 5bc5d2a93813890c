package devio

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpiod"
)

// PiGPIOCounter edge-counts pulses on a board GPIO pin, optionally
// driving a second "voltage" pin high to power the sensor, per spec
// §4.B.2. Grounded directly on the teacher's gpio.GPIO
// request/read/release pattern (gpio/gpioHandler.go), generalized
// from a single output line to an input line with edge detection plus
// an optional powered voltage line.
type PiGPIOCounter struct {
	mu         sync.Mutex
	chip       string
	pin        int
	voltagePin int // -1 if unused
	line       *gpiod.Line
	voltLine   *gpiod.Line
	count      float64
	lastLevel  int
}

// NewPiGPIOCounter returns a PiGPIOCounter for chip/pin. voltagePin,
// if >= 0, is driven high for the lifetime of the counter to power an
// externally-fed sensor.
func NewPiGPIOCounter(chip string, pin, voltagePin int) *PiGPIOCounter {
	return &PiGPIOCounter{chip: chip, pin: pin, voltagePin: voltagePin, lastLevel: -1}
}

func (p *PiGPIOCounter) ensureLines() error {
	if p.line == nil {
		line, err := gpiod.RequestLine(p.chip, p.pin, gpiod.AsInput)
		if err != nil {
			return fmt.Errorf("devio: requesting gpio line %d on %s: %w: %v", p.pin, p.chip, ErrUnavailable, err)
		}
		p.line = line
	}
	if p.voltagePin >= 0 && p.voltLine == nil {
		vline, err := gpiod.RequestLine(p.chip, p.voltagePin, gpiod.AsOutput(1))
		if err != nil {
			return fmt.Errorf("devio: driving voltage line %d on %s: %w: %v", p.voltagePin, p.chip, ErrUnavailable, err)
		}
		p.voltLine = vline
	}
	return nil
}

func (p *PiGPIOCounter) invalidate() {
	if p.line != nil {
		_ = p.line.Close()
		p.line = nil
	}
	if p.voltLine != nil {
		_ = p.voltLine.Close()
		p.voltLine = nil
	}
}

func (p *PiGPIOCounter) ReadCount() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLines(); err != nil {
		return p.count, err
	}
	value, err := p.line.Value()
	if err != nil {
		p.invalidate()
		return p.count, fmt.Errorf("devio: reading gpio line %d: %w: %v", p.pin, ErrUnavailable, err)
	}
	if p.lastLevel == 0 && value == 1 {
		p.count++
	}
	p.lastLevel = value
	return p.count, nil
}

func (p *PiGPIOCounter) ClearCount() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = 0
	p.lastLevel = -1
	return nil
}

// Close releases the held GPIO lines.
func (p *PiGPIOCounter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidate()
	return nil
}
