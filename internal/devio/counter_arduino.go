package devio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/serial"
)

const arduinoBaud = 9600

// ArduinoCounter speaks the minimal ASCII pulse-counter protocol from
// spec §6: "r<pin>\n" reads a decimal count, "c<pin>\n" clears it. On
// open failure it returns the last known count and retries discovery
// on the next call, per §4.B's Arduino backend error contract.
type ArduinoCounter struct {
	mu       sync.Mutex
	path     string
	pin      int
	port     io.ReadWriteCloser
	opener   func(path string) (io.ReadWriteCloser, error)
	lastGood float64
}

// NewArduinoCounter returns an ArduinoCounter for the given pin. Pass
// "" for path to auto-discover via /dev/serial/by-id.
func NewArduinoCounter(path string, pin int) *ArduinoCounter {
	return &ArduinoCounter{path: path, pin: pin, opener: openArduinoPort}
}

func openArduinoPort(path string) (io.ReadWriteCloser, error) {
	return serial.Open(&serial.Config{
		Address:  path,
		BaudRate: arduinoBaud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  time.Second,
	})
}

func (a *ArduinoCounter) ensurePort() (io.ReadWriteCloser, error) {
	if a.port != nil {
		return a.port, nil
	}
	path := a.path
	if path == "" {
		discovered, err := DiscoverArduino()
		if err != nil {
			return nil, err
		}
		path = discovered
	}
	p, err := a.opener(path)
	if err != nil {
		return nil, fmt.Errorf("devio: opening arduino counter at %s: %w: %v", path, ErrUnavailable, err)
	}
	a.port = p
	return p, nil
}

func (a *ArduinoCounter) invalidate() {
	if a.port != nil {
		_ = a.port.Close()
		a.port = nil
	}
}

func (a *ArduinoCounter) command(cmd byte) (string, error) {
	port, err := a.ensurePort()
	if err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(port, "%c%d\n", cmd, a.pin); err != nil {
		a.invalidate()
		return "", fmt.Errorf("devio: writing to arduino counter: %w: %v", ErrUnavailable, err)
	}
	reply, err := bufio.NewReader(port).ReadString('\n')
	if err != nil {
		a.invalidate()
		return "", fmt.Errorf("devio: reading from arduino counter: %w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(reply), nil
}

func (a *ArduinoCounter) ReadCount() (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	reply, err := a.command('r')
	if err != nil {
		// Transient failure: return the last known count per §4.B.
		return a.lastGood, err
	}
	count, parseErr := strconv.ParseFloat(reply, 64)
	if parseErr != nil {
		return a.lastGood, fmt.Errorf("devio: parsing arduino count reply %q: %w", reply, parseErr)
	}
	a.lastGood = count
	return count, nil
}

func (a *ArduinoCounter) ClearCount() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.command('c'); err != nil {
		return err
	}
	a.lastGood = 0
	return nil
}
