package config

import "strconv"

// ReadFaucetList parses data/faucet-list.txt (or data/pump-list.txt,
// which shares the same column shape per spec §4.F) into FaucetRows,
// one per line in file order. Malformed rows are skipped, each with a
// returned warning message, rather than aborting the whole load, per
// spec §7's "config-parse error: log warning, skip row, continue".
func ReadFaucetList(path string) ([]FaucetRow, []string, error) {
	var rows []FaucetRow
	var warnings []string
	err := readTSV(path, func(row map[string]string) error {
		name := row["name"]
		if name == "" {
			warnings = append(warnings, "faucet row missing name, skipped")
			return nil
		}
		rows = append(rows, FaucetRow{
			Name:              name,
			Idx:               parseIntDefault(row["idx"], 0),
			ComputerName:      row["computer_name"],
			FaucetType:        row["faucet_type"],
			Relay:             parseIntDefault(row["relay"], 0),
			Counter:           row["counter"],
			DefaultDuration:   parseFloatDefault(row["default_duration"], 30),
			NormalFlow:        parseFloatDefault(row["normal_flow"], -1),
			FertilizationPump: row["fertilization_pump"],
			Fertilize:         parseBool(row["fertilize"]),
			PumpControl:       parseBool(row["pump_control"]),
			PumpSensor:        row["pump_sensor"],
			PreCloseTime:      parseFloatDefault(row["pre_close_time"], 0),
		})
		return nil
	})
	return rows, warnings, err
}

// ReadTimerList parses data/timer-list.txt into TimerRows.
func ReadTimerList(path string) ([]TimerRow, []string, error) {
	var rows []TimerRow
	var warnings []string
	err := readTSV(path, func(row map[string]string) error {
		faucet := row["faucet"]
		if faucet == "" {
			warnings = append(warnings, "timer row missing faucet, skipped")
			return nil
		}
		rows = append(rows, TimerRow{
			Faucet:      faucet,
			Type:        row["type"],
			Duration:    parseFloatDefault(row["duration"], 0),
			StartDay:    parseIntDefault(row["start_day"], 0),
			StartYear:   parseIntDefault(row["start_year"], 0),
			StartMonth:  parseIntDefault(row["start_month"], 0),
			StartDate:   parseIntDefault(row["start_date"], 0),
			StartHour:   parseIntDefault(row["start_hour"], 0),
			StartMinute: parseIntDefault(row["start_minute"], 0),
		})
		return nil
	})
	return rows, warnings, err
}

// ReadCounterList parses data/counter-list.txt into CounterRows.
func ReadCounterList(path string) ([]CounterRow, []string, error) {
	var rows []CounterRow
	var warnings []string
	err := readTSV(path, func(row map[string]string) error {
		name := row["name"]
		if name == "" {
			warnings = append(warnings, "counter row missing name, skipped")
			return nil
		}
		r := CounterRow{
			Name:           name,
			ComputerName:   row["computer"],
			Type:           row["type"],
			Channel:        parseIntDefault(row["channel"], 0),
			CountsPerLiter: parseFloatDefault(row["counts_per_liter"], 1.0),
			FakeFlow:       parseFloatDefault(row["fake_flow"], 0),
		}
		if v, ok := row["voltage"]; ok && v != "" && v != "none" {
			if iv, err := strconv.Atoi(v); err == nil {
				r.Voltage = iv
				r.HasVoltage = true
			}
		}
		rows = append(rows, r)
		return nil
	})
	return rows, warnings, err
}
