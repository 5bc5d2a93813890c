package logsink

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DailyReport accumulates per-counter water totals and buffered
// pump/faucet events since the last report, and gates dispatch to
// once per calendar day after 08:00 local, per spec §4.H step 9.
//
// The once-a-day after-08:00 trigger is expressed as a
// github.com/robfig/cron/v3 schedule ("0 8 * * *") purely to compute
// the next eligible instant via Schedule.Next — it is never Start()ed
// as a background scheduler, which would violate spec §9's explicit
// preservation of the single-threaded time.Sleep(1s) tick loop. A
// plain date-comparison gate would be equally correct; the cron.Schedule
// is kept because it is the one place in this codebase that can
// honestly use the dependency without touching the tick cadence.
type DailyReport struct {
	schedule cron.Schedule
	nextDue  time.Time

	baselines map[string]float64
	events    []string
}

// NewDailyReport builds a DailyReport whose first eligible dispatch
// is computed from now.
func NewDailyReport(now time.Time) (*DailyReport, error) {
	sched, err := cron.ParseStandard("0 8 * * *")
	if err != nil {
		return nil, fmt.Errorf("logsink: parsing daily report schedule: %w", err)
	}
	return &DailyReport{
		schedule:  sched,
		nextDue:   sched.Next(now.Add(-time.Minute)),
		baselines: make(map[string]float64),
	}, nil
}

// RecordEvent buffers a pump/faucet transition line for inclusion in
// the next report, per spec §4.H step 9's "append the accumulated
// pump/faucet events since previous report".
func (d *DailyReport) RecordEvent(line string) {
	d.events = append(d.events, line)
}

// Due reports whether now has reached the next scheduled dispatch
// instant.
func (d *DailyReport) Due(now time.Time) bool {
	return !now.Before(d.nextDue)
}

// Build renders the report body for the given per-counter current
// counts, resets baselines to those counts, clears the buffered
// events, and advances the next-due instant. Spec §6 requires the
// body include "counter <name> total daily water: <liters>" per
// counter plus the buffered event lines.
func (d *DailyReport) Build(now time.Time, counts map[string]float64) string {
	var b strings.Builder
	for name, count := range counts {
		baseline := d.baselines[name]
		b.WriteString(fmt.Sprintf("counter %s total daily water: %.3f\n", name, count-baseline))
		d.baselines[name] = count
	}
	for _, e := range d.events {
		b.WriteString(e)
		b.WriteString("\n")
	}
	d.events = nil
	d.nextDue = d.schedule.Next(now)
	return b.String()
}
