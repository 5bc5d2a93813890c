// Package commands ingests the two file-drop command surfaces spec
// §4.G describes: transient one-shot commands and the always-applied
// persistent state-override file. Grounded on
// original_source/icomputer/icomputer.py's read_manual_commands /
// read_comfig_commands verb switches, restructured from Python's
// if/elif chain into small per-verb Go functions.
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amnona/irrigator/internal/model"
)

// Effects communicates side effects command application produced
// that the engine must itself act on (logging, persistence, process
// exit) rather than commands mutating those directly.
type Effects struct {
	Quit     bool
	LogLines []string
	// Disabled is non-nil if a disable/enable command toggled this
	// node's Disabled flag this call, and must be persisted to the
	// node ini by the engine.
	Disabled *bool
}

// TransientIngest tracks actions/<node>_commands.txt per spec
// §4.G.1: polled for mtime changes; on change every line is applied
// once. The file itself is never truncated or consumed. If the file
// vanishes, the engine forgets its last-applied timestamp and skips
// until it reappears.
type TransientIngest struct {
	Path string
	Log  *logrus.Logger

	mtime time.Time
	seen  bool
}

// ApplyIfChanged re-reads Path and applies every line if its mtime
// changed since the last call.
func (t *TransientIngest) ApplyIfChanged(node *model.Node, now time.Time) (Effects, error) {
	var eff Effects
	if t.Path == "" {
		return eff, nil
	}
	info, err := os.Stat(t.Path)
	if err != nil {
		t.seen = false
		return eff, nil
	}
	if t.seen && !info.ModTime().After(t.mtime) {
		return eff, nil
	}
	t.mtime = info.ModTime()
	t.seen = true

	f, err := os.Open(t.Path)
	if err != nil {
		return eff, fmt.Errorf("commands: opening %s: %w", t.Path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, arg, ok := splitVerbArg(line)
		if !ok {
			t.Log.WithField("line", line).Warn("commands: malformed transient command, skipped")
			continue
		}
		applyTransientVerb(node, now, verb, arg, t.Log, &eff)
	}
	return eff, scanner.Err()
}

func splitVerbArg(line string) (verb, arg string, ok bool) {
	parts := strings.SplitN(line, "\t", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(parts[0])), strings.TrimSpace(parts[1]), true
}

func applyTransientVerb(node *model.Node, now time.Time, verb, arg string, log *logrus.Logger, eff *Effects) {
	switch verb {
	case "open":
		openFaucet(node, now, arg, log, eff)
	case "close":
		closeFaucet(node, now, arg, log, eff)
	case "closeall":
		closeAllManual(node, now, log, eff)
	case "disable":
		setDisabled(node, now, arg, true, log, eff)
	case "enable":
		setDisabled(node, now, arg, false, log, eff)
	case "mode":
		setMode(node, arg, log)
	case "quit":
		closeAllManual(node, now, log, eff)
		eff.Quit = true
	default:
		log.WithField("verb", verb).Warn("commands: unrecognized transient command, skipped")
	}
}

// openFaucet implements spec §4.G.1's `open <faucet>`: append a
// manual Single timer starting now for the faucet's default
// duration. The faucet itself is opened by the engine's next
// reconcile pass, not here.
func openFaucet(node *model.Node, now time.Time, name string, log *logrus.Logger, eff *Effects) {
	f, ok := node.Faucets[name]
	if !ok {
		log.WithField("faucet", name).Warn("commands: open: faucet not found")
		return
	}
	node.Timers = append(node.Timers, model.NewSingleTimer(name, f.DefaultDurationMin, now, true))
	log.WithField("faucet", name).Info("commands: manual open requested")
}

// closeFaucet implements `close <faucet>`: close the faucet directly
// and remove every manual Single timer pointing at it.
func closeFaucet(node *model.Node, now time.Time, name string, log *logrus.Logger, eff *Effects) {
	f, ok := node.Faucets[name]
	if !ok {
		log.WithField("faucet", name).Warn("commands: close: faucet not found")
		return
	}
	if _, logLine, _, _, err := f.CloseManual(now); err != nil {
		log.WithField("faucet", name).WithError(err).Warn("commands: close: actuation failed")
	} else if logLine != "" {
		eff.LogLines = append(eff.LogLines, logLine)
	}
	removeManualTimers(node, func(faucet string) bool { return faucet == name })
}

// closeAllManual implements `closeall`/`quit`: close every faucet on
// the node (remote ones change state only; their relays are not
// driven) and remove all manual Single timers, per spec §4.G.1, then
// sweeps every local faucet and pump relay off unconditionally —
// original_source's closeall_numato.py all-relay-off safety sweep —
// so a crash mid-tick that left a relay physically on while this
// process believed it already closed does not survive the command.
func closeAllManual(node *model.Node, now time.Time, log *logrus.Logger, eff *Effects) {
	for name, f := range node.Faucets {
		if _, logLine, _, _, err := f.CloseManual(now); err != nil {
			log.WithField("faucet", name).WithError(err).Warn("commands: closeall: actuation failed")
		} else if logLine != "" {
			eff.LogLines = append(eff.LogLines, logLine)
		}
	}
	removeManualTimers(node, func(string) bool { return true })
	for name, f := range node.Faucets {
		if _, err := f.ForceOff(); err != nil {
			log.WithField("faucet", name).WithError(err).Warn("commands: closeall: safety sweep failed")
		}
	}
	for name, p := range node.Pumps {
		if _, err := p.ForceOff(); err != nil {
			log.WithField("pump", name).WithError(err).Warn("commands: closeall: safety sweep failed")
		}
	}
}

func removeManualTimers(node *model.Node, match func(faucet string) bool) {
	kept := node.Timers[:0]
	for _, t := range node.Timers {
		if t.IsManual() && match(t.FaucetName()) {
			continue
		}
		kept = append(kept, t)
	}
	node.Timers = kept
}

// setDisabled implements `disable <node>`/`enable <node>`: only acts
// if arg matches this node's own name, per spec §4.G.1.
func setDisabled(node *model.Node, now time.Time, arg string, disabled bool, log *logrus.Logger, eff *Effects) {
	if arg != node.ComputerName {
		log.WithFields(logrus.Fields{"target": arg, "node": node.ComputerName}).Debug("commands: disable/enable for a different node, ignored")
		return
	}
	node.Disabled = disabled
	eff.Disabled = &disabled
	if disabled {
		closeAllManual(node, now, log, eff)
	}
}

func setMode(node *model.Node, arg string, log *logrus.Logger) {
	switch strings.ToLower(arg) {
	case "auto", "manual":
		node.Mode = strings.ToLower(arg)
	default:
		log.WithField("mode", arg).Warn("commands: unrecognized mode, ignored")
	}
}
