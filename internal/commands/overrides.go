package commands

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amnona/irrigator/internal/model"
)

// OverrideIngest tracks actions/irrigation-state-commands.txt per
// spec §4.G.2: a declarative file re-read on mtime change, where the
// engine first resets every state-override field to its default and
// then applies each line in order. Unlike TransientIngest, lines are
// never "commands" executed once — the whole file is the current
// policy.
type OverrideIngest struct {
	Path string
	Log  *logrus.Logger

	mtime time.Time
	seen  bool
}

// ApplyIfChanged re-reads Path and, if it changed since the last
// call, resets node's override fields to defaults and reapplies every
// line. If Path does not exist, an empty file is created per spec
// §4.G.2.
func (o *OverrideIngest) ApplyIfChanged(node *model.Node) error {
	if o.Path == "" {
		return nil
	}
	info, err := os.Stat(o.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := os.WriteFile(o.Path, nil, 0o644); werr != nil {
				return fmt.Errorf("commands: creating %s: %w", o.Path, werr)
			}
			return nil
		}
		o.Log.WithField("file", o.Path).WithError(err).Warn("commands: stat state-overrides failed")
		return nil
	}
	if o.seen && !info.ModTime().After(o.mtime) {
		return nil
	}
	o.mtime = info.ModTime()
	o.seen = true

	f, err := os.Open(o.Path)
	if err != nil {
		return fmt.Errorf("commands: opening %s: %w", o.Path, err)
	}
	defer f.Close()

	resetOverrides(node)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, arg, ok := splitVerbArg(line)
		if !ok {
			o.Log.WithField("line", line).Warn("commands: malformed state-override line, skipped")
			continue
		}
		applyOverrideVerb(node, verb, arg, o.Log)
	}
	return scanner.Err()
}

// resetOverrides restores every override field to its spec §3
// default before the file's lines are reapplied in order.
func resetOverrides(node *model.Node) {
	node.Disabled = false
	node.MonitorLeaks = false
	node.DurationCorrection = 1.0
	node.Mode = "auto"
	node.DisabledFaucets = make(map[string]bool)
	node.DisabledPumps = make(map[string]bool)
}

func applyOverrideVerb(node *model.Node, verb, arg string, log *logrus.Logger) {
	switch verb {
	case "disable_computer":
		if arg == node.ComputerName {
			node.Disabled = true
		}
	case "monitor_leaks":
		switch strings.ToLower(arg) {
		case "true":
			node.MonitorLeaks = true
		case "false":
			node.MonitorLeaks = false
		default:
			log.WithField("value", arg).Warn("commands: monitor_leaks expects True/False, ignored")
		}
	case "disable_line":
		node.DisabledFaucets[arg] = true
	case "disable_fertilization":
		node.DisabledPumps[arg] = true
	case "set_percent":
		applySetPercent(node, arg, log)
	case "mode":
		setMode(node, arg, log)
	default:
		log.WithField("verb", verb).Warn("commands: unrecognized state-override verb, skipped")
	}
}

// applySetPercent implements `set_percent N%` (0 < N <= 1000) per
// spec §4.G.2, applied uniformly to every timer — manual or weekly —
// per the spec §9 open-question recommendation (see DESIGN.md).
func applySetPercent(node *model.Node, arg string, log *logrus.Logger) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(arg), "%")
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || n <= 0 || n > 1000 {
		log.WithField("value", arg).Warn("commands: set_percent out of range (0,1000], ignored")
		return
	}
	node.DurationCorrection = n / 100
}
