// Package config loads the tab-separated and INI configuration files
// spec §4.F describes (faucet/timer/counter/pump lists, node ini) and
// hot-reloads them on mtime change. Grounded on
// original_source/icomputer/icomputer.py's read_faucets/read_timers/
// read_counters/read_pumps/read_config_file, restructured around
// Go's encoding/csv and gopkg.in/ini.v1 instead of Python's
// csv.DictReader/configparser.
package config

import "strconv"

// FaucetRow is one parsed row of data/faucet-list.txt (and, sharing
// the same column shape per spec §4.F, data/pump-list.txt).
type FaucetRow struct {
	Name              string
	Idx               int
	ComputerName      string
	FaucetType        string
	Relay             int
	Counter           string
	DefaultDuration   float64
	NormalFlow        float64
	FertilizationPump string
	Fertilize         bool
	PumpControl       bool
	PumpSensor        string
	PreCloseTime      float64
}

// TimerRow is one parsed row of data/timer-list.txt.
type TimerRow struct {
	Faucet      string
	Type        string // "weekly" or "single"
	Duration    float64
	StartDay    int // sane 1..7, weekly only
	StartYear   int
	StartMonth  int
	StartDate   int
	StartHour   int
	StartMinute int
}

// CounterRow is one parsed row of data/counter-list.txt.
type CounterRow struct {
	Name           string
	ComputerName   string
	Type           string // arduino, numato, pi, fake
	Channel        int
	Voltage        int
	HasVoltage     bool
	CountsPerLiter float64
	FakeFlow       float64
}

// parseBool accepts the "yes"/"no" and "true"/"false" spellings the
// TSV files use interchangeably in the original source.
func parseBool(s string) bool {
	switch s {
	case "yes", "Yes", "YES", "true", "True", "TRUE", "1":
		return true
	default:
		return false
	}
}

func parseFloatDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
