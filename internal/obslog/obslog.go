// Package obslog builds the single structured logger the engine and
// its collaborators share, replacing the ad-hoc log.Printf call sites
// the teacher driver used.
package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing to stderr with the given level.
// verbose, when true, lowers the threshold to Debug regardless of
// level.
func New(level logrus.Level, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)
	return l
}

// ForNode returns an entry tagged with the owning node name.
func ForNode(l *logrus.Logger, node string) *logrus.Entry {
	return l.WithField("node", node)
}

// ForFaucet returns an entry tagged with node and faucet name.
func ForFaucet(l *logrus.Logger, node, faucet string) *logrus.Entry {
	return l.WithFields(logrus.Fields{"node": node, "faucet": faucet})
}

// ForCounter returns an entry tagged with node and counter name.
func ForCounter(l *logrus.Logger, node, counter string) *logrus.Entry {
	return l.WithFields(logrus.Fields{"node": node, "counter": counter})
}
