// Package netwatch polls outbound connectivity so the engine can tell
// a dead network apart from a dead SMTP server before trying to send
// a notification. Adapted from driver/connectionCheck.go, which did
// the same 30-second HTTP-probe loop to flash a traffic light red;
// the probe cadence and recovery logic survive, but the
// unbuffered-channel handoff between two goroutines collapses into a
// single atomic flag any number of readers can poll without racing,
// and the hardcoded google.com probe becomes a configurable target.
package netwatch

import (
	"net/http"
	"sync/atomic"
	"time"
)

const (
	defaultProbeURL      = "http://clients3.google.com/generate_204"
	defaultProbeInterval = 30 * time.Second
	defaultTimeout       = 5 * time.Second
)

// Watcher tracks whether outbound HTTP reachability was present as of
// its most recent probe.
type Watcher struct {
	ProbeURL string
	Interval time.Duration
	Client   *http.Client

	up int32 // atomic; 1 = up, 0 = down. Starts at 1 so an un-started Watcher reads as reachable.
}

// NewWatcher returns a Watcher with the teacher's defaults (Google's
// generate_204 endpoint every 30s) that reports "up" until its first
// probe completes.
func NewWatcher() *Watcher {
	w := &Watcher{
		ProbeURL: defaultProbeURL,
		Interval: defaultProbeInterval,
		Client:   &http.Client{Timeout: defaultTimeout},
	}
	atomic.StoreInt32(&w.up, 1)
	return w
}

// Run probes ProbeURL every Interval until stop is closed, updating
// Up()'s return value as connectivity changes.
func (w *Watcher) Run(stop <-chan struct{}) {
	for {
		resp, err := w.Client.Get(w.ProbeURL)
		if resp != nil {
			resp.Body.Close()
		}
		if err != nil {
			atomic.StoreInt32(&w.up, 0)
		} else {
			atomic.StoreInt32(&w.up, 1)
		}
		select {
		case <-stop:
			return
		case <-time.After(w.Interval):
		}
	}
}

// Up reports the most recently observed connectivity state.
func (w *Watcher) Up() bool {
	return atomic.LoadInt32(&w.up) != 0
}
