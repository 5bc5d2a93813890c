package devio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const serialByIDDir = "/dev/serial/by-id"

// numatoIDFragment and arduinoIDFragment are the substrings used to
// pick the right entry out of /dev/serial/by-id, per spec §6 Device
// discovery.
const (
	numatoIDFragment  = "usb-Numato_Systems_Pvt._Ltd._Numato_Lab_16_Channel_USB_Relay"
	arduinoIDFragment = "usb-Arduino"
)

// discoverPort walks serialByIDDir and returns the first entry whose
// name contains fragment, resolved to its real device path. Returns
// an error wrapping ErrUnavailable if none is found or the directory
// cannot be read (e.g. not plugged in yet).
func discoverPort(fragment string) (string, error) {
	entries, err := os.ReadDir(serialByIDDir)
	if err != nil {
		return "", fmt.Errorf("devio: reading %s: %w: %v", serialByIDDir, ErrUnavailable, err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), fragment) {
			link := filepath.Join(serialByIDDir, e.Name())
			resolved, err := filepath.EvalSymlinks(link)
			if err != nil {
				return link, nil
			}
			return resolved, nil
		}
	}
	return "", fmt.Errorf("devio: no serial device matching %q: %w", fragment, ErrUnavailable)
}

// DiscoverNumatoRelay returns the device path of the first attached
// Numato 16-channel USB relay board.
func DiscoverNumatoRelay() (string, error) {
	return discoverPort(numatoIDFragment)
}

// DiscoverArduino returns the device path of the first attached
// Arduino-based pulse counter.
func DiscoverArduino() (string, error) {
	return discoverPort(arduinoIDFragment)
}
