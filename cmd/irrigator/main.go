// This package wires the irrigation control engine's collaborators
// together and runs the tick loop. Grounded on
// cmd/device-gpiod/main.go's flag/env bootstrap shape (verbose flag
// sourced from the environment, a single long-running Bootstrap call)
// generalized from one EdgeX device service into the full config +
// device + engine wiring spec §1 describes.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amnona/irrigator/internal/commands"
	"github.com/amnona/irrigator/internal/config"
	"github.com/amnona/irrigator/internal/devio"
	"github.com/amnona/irrigator/internal/engine"
	"github.com/amnona/irrigator/internal/logsink"
	"github.com/amnona/irrigator/internal/model"
	"github.com/amnona/irrigator/internal/netwatch"
	"github.com/amnona/irrigator/internal/notify"
	"github.com/amnona/irrigator/internal/obslog"
	"github.com/amnona/irrigator/internal/statuslight"
)

var (
	baseDir     = flag.String("base-dir", ".", "base directory containing data/, actions/, and water/")
	nodeIni     = flag.String("node-ini", "computer-config.txt", "path to the node's ini config file, relative to base-dir unless absolute")
	bootstrap   = flag.String("bootstrap", "bootstrap.yaml", "path to the serial-port/poll-interval bootstrap file, relative to base-dir unless absolute")
	verbose     = flag.Bool("verbose", false, "enable debug logging")
	fakeHW      = flag.Bool("fake-hardware", false, "use in-memory fake relay/counter backends instead of real serial/GPIO devices")
	rollingLogN = flag.Int("rolling-log-depth", 30, "depth of the per-counter rolling short water log")

	statusLightGreen  = flag.Int("status-light-green-relay", -1, "relay channel for the green status light, or -1 to disable the status light")
	statusLightYellow = flag.Int("status-light-yellow-relay", -1, "relay channel for the yellow status light")
	statusLightRed    = flag.Int("status-light-red-relay", -1, "relay channel for the red status light")
)

func main() {
	if v, err := strconv.ParseBool(os.Getenv("VERBOSE")); err == nil {
		*verbose = v
	}
	if v, err := strconv.ParseBool(os.Getenv("IRRIGATOR_FAKE_HARDWARE")); err == nil {
		*fakeHW = v
	}
	flag.Parse()

	log := obslog.New(logrus.InfoLevel, *verbose)

	if err := run(log); err != nil {
		log.WithError(err).Fatal("irrigator: fatal startup error")
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func run(log *logrus.Logger) error {
	iniPath := resolve(*baseDir, *nodeIni)
	nodeCfg, err := config.LoadNodeConfig(iniPath)
	if err != nil {
		return fmt.Errorf("loading node config: %w", err)
	}
	computerName := nodeCfg.ComputerName
	if computerName == "" {
		computerName = "local"
	}

	actionsDir := filepath.Join(*baseDir, "actions")
	waterDir := filepath.Join(*baseDir, "water")
	dataDir := filepath.Join(*baseDir, "data")
	for _, d := range []string{actionsDir, waterDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}

	actionsLogFile := resolve(*baseDir, nodeCfg.ActionsLogFile)
	if actionsLogFile == "" {
		actionsLogFile = filepath.Join(actionsDir, computerName+"_actions.txt")
	}
	statusFile := resolve(*baseDir, nodeCfg.StatusFile)
	if statusFile == "" {
		statusFile = filepath.Join(actionsDir, computerName+"_status.txt")
	}
	commandsFile := resolve(*baseDir, nodeCfg.CommandsFile)
	if commandsFile == "" {
		commandsFile = filepath.Join(actionsDir, computerName+"_commands.txt")
	}
	keepAliveFile := filepath.Join(actionsDir, computerName+"_keep_alive.txt")
	overridesFile := filepath.Join(actionsDir, "irrigation-state-commands.txt")

	boot, err := config.LoadBootstrap(resolve(*baseDir, *bootstrap))
	if err != nil {
		return fmt.Errorf("loading bootstrap file: %w", err)
	}

	node := model.NewNode(computerName)
	node.Disabled = nodeCfg.Disabled

	devices := buildDeviceFactory(*fakeHW, boot, log)

	loader := config.NewLoader(computerName, devices, log)
	loader.FaucetListPath = filepath.Join(dataDir, "faucet-list.txt")
	loader.TimerListPath = filepath.Join(dataDir, "timer-list.txt")
	loader.CounterListPath = filepath.Join(dataDir, "counter-list.txt")
	loader.PumpListPath = filepath.Join(dataDir, "pump-list.txt")
	loader.NodeIniPath = iniPath

	if err := config.EnsureNodeIni(iniPath, computerName); err != nil {
		return fmt.Errorf("ensuring node ini: %w", err)
	}

	now := time.Now()
	daily, err := logsink.NewDailyReport(now)
	if err != nil {
		return fmt.Errorf("building daily report schedule: %w", err)
	}

	e := engine.New(node, log)
	e.Loader = loader
	e.Transient = &commands.TransientIngest{Path: commandsFile, Log: log}
	e.Overrides = &commands.OverrideIngest{Path: overridesFile, Log: log}
	e.ActionLog = &logsink.ActionLog{Path: actionsLogFile}
	e.StatusFile = &logsink.StatusFile{Path: statusFile}
	e.KeepAlive = &logsink.KeepAlive{Path: keepAliveFile}
	e.Water = &logsink.WaterLogDir{Dir: waterDir, RollingDepth: *rollingLogN}
	e.Daily = daily
	watcher := netwatch.NewWatcher()
	stop := make(chan struct{})
	go watcher.Run(stop)

	e.NodeIniPath = iniPath
	e.Notifier = buildNotifier(log, watcher)
	if *statusLightGreen >= 0 && *statusLightYellow >= 0 && *statusLightRed >= 0 {
		e.Light = &statuslight.Indicator{
			Relay:       devices.LocalRelay,
			GreenRelay:  *statusLightGreen,
			YellowRelay: *statusLightYellow,
			RedRelay:    *statusLightRed,
		}
	}

	// Initial load before the loop starts ticking, mirroring
	// original_source/icomputer.py's __init__ doing the first read
	// of every config file before main_loop begins.
	if _, err := e.Loader.Reload(node, nil); err != nil {
		log.WithError(err).Warn("irrigator: initial config load encountered errors")
	}

	e.Notifier.Send("irrigator started", fmt.Sprintf("computer name is %s", computerName))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("irrigator: received shutdown signal")
		close(stop)
	}()

	e.Run(stop)
	return nil
}

// buildDeviceFactory wires the devio backends the Loader uses to
// construct Faucet/Pump relays and Counter devices. fake forces
// every backend to the in-memory kind, used for local development and
// the node's own test fixtures.
func buildDeviceFactory(fake bool, boot config.Bootstrap, log *logrus.Logger) config.DeviceFactory {
	if fake {
		return config.DeviceFactory{
			LocalRelay: devio.NewFakeRelay(),
			Counter: func(row config.CounterRow) (devio.PulseCounter, error) {
				return devio.NewFakeCounter(row.FakeFlow), nil
			},
		}
	}
	return config.DeviceFactory{
		LocalRelay: devio.NewNumatoRelay(boot.RelaySerialPort),
		Counter: func(row config.CounterRow) (devio.PulseCounter, error) {
			switch row.Type {
			case "arduino":
				return devio.NewArduinoCounter(boot.ArduinoSerialPort, row.Channel), nil
			case "numato":
				return devio.NewNumatoGPIOCounter(boot.ArduinoSerialPort, row.Channel), nil
			case "pi":
				voltage := -1
				if row.HasVoltage {
					voltage = row.Voltage
				}
				return devio.NewPiGPIOCounter(boot.PiGPIOChip, row.Channel, voltage), nil
			case "fake":
				return devio.NewFakeCounter(row.FakeFlow), nil
			default:
				log.WithField("type", row.Type).Warn("irrigator: unknown counter type, using fake backend")
				return devio.NewFakeCounter(0), nil
			}
		},
	}
}

// buildNotifier returns an SMTP-backed notifier alongside the logging
// default when SMTP credentials are present in the environment, or
// just the logging default otherwise — absence of credentials never
// fails the engine, per spec §6.
func buildNotifier(log *logrus.Logger, watcher *netwatch.Watcher) notify.Notifier {
	logNotifier := &notify.LogNotifier{Log: log}
	smtp := notify.NewSMTPNotifierFromEnv(os.LookupEnv)
	if smtp == nil {
		return logNotifier
	}
	smtp.Reachable = watcher.Up
	return &notify.MultiNotifier{Notifiers: []notify.Notifier{logNotifier, smtp}}
}
