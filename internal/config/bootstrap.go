package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bootstrap holds the handful of process-level knobs that are neither
// node state (computer-config.txt) nor hot-reloaded inventory
// (faucet/timer/counter/pump lists): serial port overrides for the
// relay and counter backends, and the device poll interval. Grounded
// on gpio/parser.go's GPIOList.Parse, which read a YAML file of named
// GPIO line definitions at startup; the YAML-at-startup shape
// survives, generalized from a list of GPIO lines to the small
// top-level device-tuning struct this system actually needs, and
// upgraded from the teacher's gopkg.in/yaml.v2 to yaml.v3.
// PollIntervalTicks is parsed but nothing reads it: the engine polls
// every counter on every tick.
type Bootstrap struct {
	RelaySerialPort   string `yaml:"relay_serial_port"`
	ArduinoSerialPort string `yaml:"arduino_serial_port"`
	PiGPIOChip        string `yaml:"pi_gpio_chip"`
	PollIntervalTicks int    `yaml:"poll_interval_ticks"`
}

// DefaultBootstrap returns the zero-configuration defaults: empty
// serial port paths mean "autodiscover" (per devio's discover.go),
// and gpiochip0 is the Raspberry Pi's usual default chip.
func DefaultBootstrap() Bootstrap {
	return Bootstrap{PiGPIOChip: "gpiochip0", PollIntervalTicks: 1}
}

// LoadBootstrap reads path as YAML into a Bootstrap seeded with
// DefaultBootstrap's values, so a partial file only overrides the
// keys it sets. A missing file is not an error: the defaults apply.
func LoadBootstrap(path string) (Bootstrap, error) {
	b := DefaultBootstrap()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return b, fmt.Errorf("config: reading bootstrap file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("config: parsing bootstrap file %s: %w", path, err)
	}
	return b, nil
}
