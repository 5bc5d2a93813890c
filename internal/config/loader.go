package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amnona/irrigator/internal/calendar"
	"github.com/amnona/irrigator/internal/devio"
	"github.com/amnona/irrigator/internal/model"
)

// DeviceFactory builds the devio backends a Loader wires into the
// model objects it constructs. LocalRelay is shared by every local
// faucet/pump (one physical relay board, many channels); RemoteRelay
// and Counter are invoked per row.
type DeviceFactory struct {
	LocalRelay  devio.RelayDriver
	RemoteRelay func() devio.RelayDriver
	Counter     func(row CounterRow) (devio.PulseCounter, error)
}

func (d DeviceFactory) remoteRelay() devio.RelayDriver {
	if d.RemoteRelay != nil {
		return d.RemoteRelay()
	}
	return devio.NewFakeRelay()
}

// Loader hot-reloads the TSV/INI configuration files spec §4.F
// describes into a model.Node, polling mtimes once per tick rather
// than depending on inotify, per spec §9's explicit "keep as-is"
// design note.
type Loader struct {
	FaucetListPath  string
	TimerListPath   string
	CounterListPath string
	PumpListPath    string
	NodeIniPath     string

	LocalNode string
	Devices   DeviceFactory
	Log       *logrus.Logger

	mtimes map[string]time.Time
}

// NewLoader returns a Loader with its mtime cache initialized empty,
// so the very first Reload call always loads every file.
func NewLoader(localNode string, devices DeviceFactory, log *logrus.Logger) *Loader {
	return &Loader{
		LocalNode: localNode,
		Devices:   devices,
		Log:       log,
		mtimes:    make(map[string]time.Time),
	}
}

// statChanged reports whether path's mtime differs from the cached
// value (or no cached value exists). It does not update the cache: on
// a true result the new mtime is returned and stays pending until the
// caller calls commit. A read error is treated as "unreadable" (spec §7:
// warn, keep previous state) and reports false.
func (l *Loader) statChanged(path string) (bool, time.Time) {
	if path == "" {
		return false, time.Time{}
	}
	info, err := os.Stat(path)
	if err != nil {
		l.Log.WithField("file", path).WithError(err).Warn("config: stat failed, keeping previous state")
		return false, time.Time{}
	}
	prev, ok := l.mtimes[path]
	if ok && !info.ModTime().After(prev) {
		return false, time.Time{}
	}
	return true, info.ModTime()
}

func (l *Loader) commit(path string, mtime time.Time) {
	l.mtimes[path] = mtime
}

// Changed reports which config files changed since the previous
// Reload, per spec §4.F's "reload cascade": a faucet or pump change
// implies a timer reload too, because timers reference faucets by
// name.
type Changed struct {
	Faucets  bool
	Counters bool
	Pumps    bool
	Timers   bool
	NodeIni  bool
}

// Any reports whether any collection changed.
func (c Changed) Any() bool {
	return c.Faucets || c.Counters || c.Pumps || c.Timers || c.NodeIni
}

// Reload checks every configured file's mtime and rebuilds the
// corresponding part of node for anything that changed, applying the
// cascade spec §4.F requires. beforeFaucetReload, if non-nil, is
// invoked before faucets are rebuilt (the engine uses this to close
// every faucet first, per spec §4.F's "deliberate... safe-by-default"
// note).
func (l *Loader) Reload(node *model.Node, beforeFaucetReload func()) (Changed, error) {
	var changed Changed
	var firstErr error
	noteErr := func(err error) {
		if err != nil {
			l.Log.WithError(err).Warn("config: reload failed, keeping previous state")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	faucetsChanged, faucetMtime := l.statChanged(l.FaucetListPath)
	pumpsChanged, pumpMtime := l.statChanged(l.PumpListPath)
	countersChanged, counterMtime := l.statChanged(l.CounterListPath)
	timersChanged, timerMtime := l.statChanged(l.TimerListPath)
	iniChanged, iniMtime := l.statChanged(l.NodeIniPath)

	if countersChanged {
		if err := l.loadCounters(node); err != nil {
			noteErr(err)
		} else {
			l.commit(l.CounterListPath, counterMtime)
			changed.Counters = true
		}
	}

	if faucetsChanged || pumpsChanged {
		if beforeFaucetReload != nil {
			beforeFaucetReload()
		}
	}
	if pumpsChanged {
		if err := l.loadPumps(node); err != nil {
			noteErr(err)
		} else {
			l.commit(l.PumpListPath, pumpMtime)
			changed.Pumps = true
		}
	}
	if faucetsChanged {
		if err := l.loadFaucets(node); err != nil {
			noteErr(err)
		} else {
			l.commit(l.FaucetListPath, faucetMtime)
			changed.Faucets = true
		}
	}

	if timersChanged || changed.Faucets || changed.Pumps {
		if err := l.loadTimers(node); err != nil {
			noteErr(err)
		} else {
			if timersChanged {
				l.commit(l.TimerListPath, timerMtime)
			}
			changed.Timers = true
		}
	}

	if iniChanged {
		cfg, err := LoadNodeConfig(l.NodeIniPath)
		if err != nil {
			noteErr(err)
		} else {
			node.Disabled = cfg.Disabled
			l.commit(l.NodeIniPath, iniMtime)
			changed.NodeIni = true
		}
	}

	return changed, firstErr
}

func (l *Loader) loadCounters(node *model.Node) error {
	rows, warnings, err := ReadCounterList(l.CounterListPath)
	for _, w := range warnings {
		l.Log.Warn(w)
	}
	if err != nil {
		return err
	}
	counters := make(map[string]*model.Counter, len(rows))
	for _, row := range rows {
		if row.ComputerName != l.LocalNode {
			// Remote counters are not modeled locally: only the
			// owning node polls hardware for them, per
			// original_source's read_counters filtering by
			// computer_name.
			continue
		}
		var dev devio.PulseCounter
		if l.Devices.Counter != nil {
			dev, err = l.Devices.Counter(row)
			if err != nil {
				l.Log.WithField("counter", row.Name).WithError(err).Warn("config: building counter device failed")
				continue
			}
		} else {
			dev = devio.NewFakeCounter(row.FakeFlow)
		}
		counters[row.Name] = model.NewCounter(row.Name, row.ComputerName, model.CounterKind(row.Type), row.CountsPerLiter, dev)
	}
	node.Counters = counters
	return nil
}

func (l *Loader) resolveCounter(node *model.Node, name string) *model.Counter {
	if name == "" || name == "none" || name == "na" {
		return nil
	}
	c, ok := node.Counters[name]
	if !ok {
		// Any unrecognized sentinel ("na", typos, or a counter that
		// lives on another node) collapses to "no counter", per spec
		// §9's open-question resolution.
		return nil
	}
	return c
}

func (l *Loader) loadFaucets(node *model.Node) error {
	rows, warnings, err := ReadFaucetList(l.FaucetListPath)
	for _, w := range warnings {
		l.Log.Warn(w)
	}
	if err != nil {
		return err
	}
	faucets := make(map[string]*model.Faucet, len(rows))
	for _, row := range rows {
		if _, dup := faucets[row.Name]; dup {
			l.Log.WithField("faucet", row.Name).Warn("config: faucet already defined, skipping duplicate")
			continue
		}
		local := row.ComputerName == l.LocalNode
		var relay devio.RelayDriver
		if local {
			relay = l.Devices.LocalRelay
		} else {
			relay = l.Devices.remoteRelay()
		}
		f := model.NewFaucet(row.Name, row.ComputerName, row.Relay, row.FaucetType, local, relay)
		f.Counter = l.resolveCounter(node, row.Counter)
		f.DefaultDurationMin = row.DefaultDuration
		f.NormalFlow = row.NormalFlow
		f.FertilizationPump = row.FertilizationPump
		f.Fertilize = row.Fertilize
		f.PumpControl = row.PumpControl
		f.PumpSensor = row.PumpSensor
		faucets[row.Name] = f
	}
	node.Faucets = faucets
	return nil
}

func (l *Loader) loadPumps(node *model.Node) error {
	rows, warnings, err := ReadFaucetList(l.PumpListPath)
	for _, w := range warnings {
		l.Log.Warn(w)
	}
	if err != nil {
		return err
	}
	pumps := make(map[string]*model.Pump, len(rows))
	for _, row := range rows {
		if _, dup := pumps[row.Name]; dup {
			l.Log.WithField("pump", row.Name).Warn("config: pump already defined, skipping duplicate")
			continue
		}
		local := row.ComputerName == l.LocalNode
		var relay devio.RelayDriver
		if local {
			relay = l.Devices.LocalRelay
		} else {
			relay = l.Devices.remoteRelay()
		}
		pumps[row.Name] = model.NewPump(row.Name, row.ComputerName, row.Relay, local, relay, row.PreCloseTime)
	}
	node.Pumps = pumps
	return nil
}

func (l *Loader) loadTimers(node *model.Node) error {
	rows, warnings, err := ReadTimerList(l.TimerListPath)
	for _, w := range warnings {
		l.Log.Warn(w)
	}
	if err != nil {
		return err
	}
	timers := make([]model.Timer, 0, len(rows))
	for _, row := range rows {
		if _, ok := node.Faucets[row.Faucet]; !ok {
			l.Log.WithField("faucet", row.Faucet).Warn("config: timer references unknown faucet, skipping")
			continue
		}
		switch row.Type {
		case "weekly":
			timers = append(timers, model.NewWeeklyTimer(row.Faucet, row.Duration, calendar.SaneWeekday(row.StartDay), row.StartHour, row.StartMinute))
		case "single":
			start := time.Date(row.StartYear, time.Month(row.StartMonth), row.StartDate, row.StartHour, row.StartMinute, 0, 0, time.Local)
			timers = append(timers, model.NewSingleTimer(row.Faucet, row.Duration, start, false))
		default:
			l.Log.WithField("type", row.Type).Warn("config: unknown timer type, skipping")
		}
	}
	// Manual Single timers (created at runtime by the `open` command)
	// are not part of the on-disk timer list; preserve them across a
	// timer-file reload.
	for _, t := range node.Timers {
		if t.IsManual() {
			timers = append(timers, t)
		}
	}
	node.Timers = timers
	return nil
}

// EnsureNodeIni creates path with a minimal [IComputer] section if it
// does not already exist, so SaveNodeDisabled always has something
// to rewrite.
func EnsureNodeIni(path, computerName string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f := iniEmpty()
	sec, err := f.NewSection(iniSection)
	if err != nil {
		return fmt.Errorf("config: creating ini section: %w", err)
	}
	sec.Key("computer_name").SetValue(computerName)
	sec.Key("disabled").SetValue("false")
	return f.SaveTo(path)
}
