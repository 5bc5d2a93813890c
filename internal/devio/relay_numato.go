package devio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/serial"
)

// numatoBaud and the 8N1 framing match spec §6's wire protocol.
const numatoBaud = 19200

// relayIDChar maps a 0-15 relay index to the single ASCII character
// Numato's protocol addresses it by: '0'..'9' then 'A'..'F'.
func relayIDChar(relayID int) (byte, error) {
	switch {
	case relayID >= 0 && relayID <= 9:
		return byte('0' + relayID), nil
	case relayID >= 10 && relayID <= 15:
		return byte('A' + (relayID - 10)), nil
	default:
		return 0, fmt.Errorf("devio: relay id %d out of range 0-15", relayID)
	}
}

// NumatoRelay drives a Numato 16-channel USB relay board over a
// line-oriented serial protocol, per spec §6. It reopens the port
// lazily on first use and on any I/O failure, mirroring the Arduino
// pulse counter's "rediscover next call" error contract from §4.B.
type NumatoRelay struct {
	mu     sync.Mutex
	path   string
	port   io.ReadWriteCloser
	opener func(path string) (io.ReadWriteCloser, error)
	last   map[int]bool
}

// NewNumatoRelay returns a NumatoRelay that will discover and open its
// port lazily. Pass an explicit path ("" to auto-discover via
// /dev/serial/by-id) for systems with a single known relay board.
func NewNumatoRelay(path string) *NumatoRelay {
	return &NumatoRelay{
		path:   path,
		opener: openNumatoPort,
		last:   make(map[int]bool),
	}
}

func openNumatoPort(path string) (io.ReadWriteCloser, error) {
	return serial.Open(&serial.Config{
		Address:  path,
		BaudRate: numatoBaud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  time.Second,
	})
}

func (r *NumatoRelay) ensurePort() (io.ReadWriteCloser, error) {
	if r.port != nil {
		return r.port, nil
	}
	path := r.path
	if path == "" {
		discovered, err := DiscoverNumatoRelay()
		if err != nil {
			return nil, err
		}
		path = discovered
	}
	p, err := r.opener(path)
	if err != nil {
		return nil, fmt.Errorf("devio: opening numato relay at %s: %w: %v", path, ErrUnavailable, err)
	}
	r.port = p
	return p, nil
}

func (r *NumatoRelay) invalidate() {
	if r.port != nil {
		_ = r.port.Close()
		r.port = nil
	}
}

func (r *NumatoRelay) writeLine(line string) (string, error) {
	port, err := r.ensurePort()
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(port, line+"\n\r"); err != nil {
		r.invalidate()
		return "", fmt.Errorf("devio: writing to numato relay: %w: %v", ErrUnavailable, err)
	}
	reply, err := bufio.NewReader(port).ReadString('\n')
	if err != nil {
		r.invalidate()
		return "", fmt.Errorf("devio: reading from numato relay: %w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(reply), nil
}

func (r *NumatoRelay) Set(relayID int, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idc, err := relayIDChar(relayID)
	if err != nil {
		return err
	}
	verb := "off"
	if on {
		verb = "on"
	}
	if _, err := r.writeLine(fmt.Sprintf("relay %s %c", verb, idc)); err != nil {
		// Transient I/O failure: last-known state is preserved,
		// caller is told actuation failed (best-effort per §4.D).
		return err
	}
	r.last[relayID] = on
	return nil
}

func (r *NumatoRelay) Read(relayID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idc, err := relayIDChar(relayID)
	if err != nil {
		return false, err
	}
	reply, err := r.writeLine(fmt.Sprintf("relay read %c", idc))
	if err != nil {
		// Return last-known value on transient failure, per §4.B
		// error contract.
		return r.last[relayID], err
	}
	on := strings.Contains(reply, "on") || strings.TrimSpace(reply) == "1"
	r.last[relayID] = on
	return on, nil
}
