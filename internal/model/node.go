package model

// Node is one process instance's in-memory world: its own identity
// and operating mode, plus the full faucet/timer/counter/pump
// inventory known to every node in the cooperative (spec §3,
// §9's "all-faucets-known-to-all-nodes" design note — remote
// entries are shadow records that never actuate hardware).
type Node struct {
	ComputerName string
	Disabled     bool
	// Mode is "auto" or "manual"; Weekly timers are skipped entirely
	// while in manual mode, per spec §3's desired-open-set definition.
	Mode string
	// DurationCorrection scales every timer's open duration, default
	// 1.0. The set_percent override only sets values in (0, 10] and
	// ignores anything outside that range.
	DurationCorrection float64
	MonitorLeaks       bool

	DisabledFaucets map[string]bool
	DisabledPumps   map[string]bool

	Faucets  map[string]*Faucet
	Counters map[string]*Counter
	Pumps    map[string]*Pump
	Timers   []Timer
}

// NewNode returns a Node with defaults matching spec §3: auto mode,
// duration correction 1.0, empty inventories.
func NewNode(computerName string) *Node {
	return &Node{
		ComputerName:        computerName,
		Mode:                "auto",
		DurationCorrection:  1.0,
		DisabledFaucets:     make(map[string]bool),
		DisabledPumps:       make(map[string]bool),
		Faucets:             make(map[string]*Faucet),
		Counters:            make(map[string]*Counter),
		Pumps:               make(map[string]*Pump),
	}
}

// IsManual reports whether the node is currently in manual mode.
func (n *Node) IsManual() bool { return n.Mode == "manual" }
