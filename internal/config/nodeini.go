package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// NodeConfig mirrors the single [IComputer] section of
// computer-config.txt, per spec §4.F. Grounded on
// original_source/icomputer/icomputer.py's read_config_file, which
// iterates config['IComputer'].items() and setattrs them onto the
// computer object; here the same keys become named fields, parsed
// with gopkg.in/ini.v1 instead of Python's configparser so unknown
// keys and section ordering round-trip on rewrite.
type NodeConfig struct {
	ComputerName      string
	FileCheckInterval int
	Disabled          bool
	ActionsLogFile    string
	CommandsFile      string
	StatusFile        string
}

const iniSection = "IComputer"

// LoadNodeConfig reads path's [IComputer] section into a NodeConfig,
// defaulting ComputerName to "local" and FileCheckInterval to 1
// second if absent, matching original_source's fallbacks.
func LoadNodeConfig(path string) (*NodeConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: loading node ini %s: %w", path, err)
	}
	sec := f.Section(iniSection)
	cfg := &NodeConfig{
		ComputerName:      sec.Key("computer_name").MustString("local"),
		FileCheckInterval: sec.Key("file_check_interval").MustInt(1),
		Disabled:          sec.Key("disabled").MustBool(false),
		ActionsLogFile:    sec.Key("actions_log_file").String(),
		CommandsFile:      sec.Key("commands_file").String(),
		StatusFile:        sec.Key("status_file").String(),
	}
	return cfg, nil
}

// SaveNodeDisabled rewrites only the disabled key of path's
// [IComputer] section, preserving every other key and its ordering —
// spec §4.F's "Written back by the engine when disabled is toggled."
// If path does not yet exist, a fresh file with just this section is
// created.
func SaveNodeDisabled(path string, disabled bool) error {
	f, err := ini.LooseLoad(path)
	if err != nil {
		return fmt.Errorf("config: loading node ini %s for rewrite: %w", path, err)
	}
	f.Section(iniSection).Key("disabled").SetValue(boolString(disabled))
	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("config: saving node ini %s: %w", path, err)
	}
	return nil
}

// iniEmpty returns a fresh, empty ini.File for EnsureNodeIni to
// populate.
func iniEmpty() *ini.File {
	return ini.Empty()
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
