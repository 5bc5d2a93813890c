package devio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// NumatoGPIOCounter polls pulse counts over the same Numato USB relay
// board's GPIO command set ("gpio set/read <pin>"), per spec §6. Used
// when the counter hardware is wired to a Numato board's GPIO header
// rather than a dedicated Arduino.
type NumatoGPIOCounter struct {
	mu       sync.Mutex
	path     string
	pin      int
	port     io.ReadWriteCloser
	opener   func(path string) (io.ReadWriteCloser, error)
	count    float64
	lastEdge int
}

// NewNumatoGPIOCounter returns a NumatoGPIOCounter for the given
// board path and GPIO pin. Pass "" for path to auto-discover.
func NewNumatoGPIOCounter(path string, pin int) *NumatoGPIOCounter {
	return &NumatoGPIOCounter{path: path, pin: pin, opener: openNumatoPort, lastEdge: -1}
}

func (n *NumatoGPIOCounter) ensurePort() (io.ReadWriteCloser, error) {
	if n.port != nil {
		return n.port, nil
	}
	path := n.path
	if path == "" {
		discovered, err := DiscoverNumatoRelay()
		if err != nil {
			return nil, err
		}
		path = discovered
	}
	p, err := n.opener(path)
	if err != nil {
		return nil, fmt.Errorf("devio: opening numato gpio counter at %s: %w: %v", path, ErrUnavailable, err)
	}
	n.port = p
	return p, nil
}

func (n *NumatoGPIOCounter) invalidate() {
	if n.port != nil {
		_ = n.port.Close()
		n.port = nil
	}
}

func (n *NumatoGPIOCounter) readPin() (int, error) {
	port, err := n.ensurePort()
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintf(port, "gpio read %d\n\r", n.pin); err != nil {
		n.invalidate()
		return 0, fmt.Errorf("devio: writing to numato gpio: %w: %v", ErrUnavailable, err)
	}
	reply, err := bufio.NewReader(port).ReadString('\n')
	if err != nil {
		n.invalidate()
		return 0, fmt.Errorf("devio: reading from numato gpio: %w: %v", ErrUnavailable, err)
	}
	reply = strings.TrimSpace(reply)
	val, convErr := strconv.Atoi(reply)
	if convErr != nil {
		return 0, fmt.Errorf("devio: parsing numato gpio reply %q: %w", reply, convErr)
	}
	return val, nil
}

// ReadCount polls the pin and increments the cumulative count once
// per rising edge observed (low then high between successive polls).
func (n *NumatoGPIOCounter) ReadCount() (float64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	val, err := n.readPin()
	if err != nil {
		// Transient failure: keep the last known count per §4.B.
		return n.count, err
	}
	if n.lastEdge == 0 && val == 1 {
		n.count++
	}
	n.lastEdge = val
	return n.count, nil
}

func (n *NumatoGPIOCounter) ClearCount() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count = 0
	n.lastEdge = -1
	return nil
}
