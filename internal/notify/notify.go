// Package notify defines the abstract notification sink spec §4.I
// requires (startup, leak, zero-water, high/low-flow, daily report)
// and a default logging-backed implementation. The SMTP transport
// itself is an out-of-scope external collaborator per spec §1; a
// concrete SMTP Notifier can satisfy this same interface without the
// engine changing at all.
package notify

import "github.com/sirupsen/logrus"

// Notifier sends a subject/body notification. Grounded on
// driver/trafficLight.go's SetFlashOn/Flashing — the teacher's only
// "signal something to the outside world on an anomaly" pattern —
// generalized from a GPIO-driven light to an abstract message.
type Notifier interface {
	Send(subject, body string) error
}

// LogNotifier is the default Notifier: it logs every notification at
// Warn level instead of delivering it anywhere, so the engine always
// has a working sink even when no SMTP credentials are configured
// (spec §6: "absence disables notifications but does not fail the
// engine").
type LogNotifier struct {
	Log *logrus.Logger
}

func (n *LogNotifier) Send(subject, body string) error {
	n.Log.WithFields(logrus.Fields{"subject": subject}).Warn(body)
	return nil
}

// MultiNotifier fans a notification out to every wrapped Notifier,
// collecting (not stopping on) the first error so one broken
// transport never silences the others.
type MultiNotifier struct {
	Notifiers []Notifier
}

func (n *MultiNotifier) Send(subject, body string) error {
	var firstErr error
	for _, sub := range n.Notifiers {
		if err := sub.Send(subject, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
