package model

import (
	"time"

	"github.com/amnona/irrigator/internal/calendar"
)

// Timer is the shared interface both timer kinds satisfy. Grounded on
// original_source/icomputer/timers.py's Timer/WeeklyTimer/SingleTimer
// class hierarchy, restructured per spec §9 into a tagged variant
// (two concrete types behind one interface) instead of inheritance.
type Timer interface {
	// FaucetName is the faucet this timer opens/closes.
	FaucetName() string
	// ShouldBeOpen reports whether, at now, this timer wants its
	// faucet open. correction scales the configured duration.
	ShouldBeOpen(now time.Time, correction float64) bool
	// ShouldRemove reports whether this timer has expired and should
	// be deleted from the schedule.
	ShouldRemove(now time.Time) bool
	// TimeToClose returns the time remaining until the end of this
	// timer's current window, used by the fertilizer pump policy.
	TimeToClose(now time.Time, correction float64) time.Duration
	// IsManual reports whether this is a manual Single timer created
	// by an `open` command (and thus removable by close/closeall).
	IsManual() bool
	// IsWeekly reports whether this is a Weekly timer (never removed,
	// skipped entirely in manual node mode).
	IsWeekly() bool
}

// WeeklyTimer opens its faucet every week on the same sane day of
// week at the same time of day, for duration minutes.
type WeeklyTimer struct {
	Faucet      string
	DurationMin float64
	StartDay    calendar.SaneWeekday
	StartHour   int
	StartMinute int
	// Overnight is true iff start_time+duration crosses midnight,
	// computed once at construction per spec §3's invariant.
	Overnight bool
}

// NewWeeklyTimer builds a WeeklyTimer and derives Overnight from
// whether the nominal (uncorrected) window crosses midnight.
func NewWeeklyTimer(faucet string, durationMin float64, startDay calendar.SaneWeekday, hour, minute int) *WeeklyTimer {
	start := time.Date(2000, 1, 3, hour, minute, 0, 0, time.UTC) // arbitrary Monday
	end := start.Add(time.Duration(durationMin * float64(time.Minute)))
	return &WeeklyTimer{
		Faucet:      faucet,
		DurationMin: durationMin,
		StartDay:    startDay,
		StartHour:   hour,
		StartMinute: minute,
		Overnight:   end.Day() != start.Day(),
	}
}

func (w *WeeklyTimer) FaucetName() string { return w.Faucet }
func (w *WeeklyTimer) IsManual() bool     { return false }
func (w *WeeklyTimer) IsWeekly() bool     { return true }
func (w *WeeklyTimer) ShouldRemove(now time.Time) bool { return false }

// ShouldBeOpen implements spec §4.E. For non-overnight timers it is a
// simple day+time-in-range check. For overnight timers, the window
// may have started "yesterday" (sane day = StartDay) and still be
// open after local midnight, so both today's and yesterday's
// candidate start days are checked; this is the literal reading of
// the invariant in spec §8 scenario 2 (true at Saturday 23:45 *and*
// Sunday 00:15), which a single forward-looking "next occurrence of
// StartDay" check cannot satisfy for the post-midnight instant.
func (w *WeeklyTimer) ShouldBeOpen(now time.Time, correction float64) bool {
	duration := w.DurationMin * correction
	if !w.Overnight {
		if calendar.FromTime(now) != w.StartDay {
			return false
		}
		return calendar.TimeInRange(w.StartHour, w.StartMinute, duration, now)
	}
	for _, dayOffset := range [2]int{0, -1} {
		candidate := now.AddDate(0, 0, dayOffset)
		if calendar.FromTime(candidate) != w.StartDay {
			continue
		}
		start, end := calendar.WindowAt(candidate, w.StartHour, w.StartMinute, duration)
		if !now.Before(start) && now.Before(end) {
			return true
		}
	}
	return false
}

// TimeToClose mirrors original_source's WeeklyTimer.time_to_close:
// it always measures against today's nominal window end, regardless
// of overnight status, since it is only consulted by the fertilizer
// policy while the timer is already open.
func (w *WeeklyTimer) TimeToClose(now time.Time, correction float64) time.Duration {
	_, end := calendar.WindowAt(now, w.StartHour, w.StartMinute, w.DurationMin*correction)
	return end.Sub(now)
}

// SingleTimer is a one-shot timer: a manual `open` command, or an
// explicit scheduled one-time watering.
type SingleTimer struct {
	Faucet        string
	DurationMin   float64
	StartDatetime time.Time
	// EndDatetime is the fixed, uncorrected invariant from spec §3
	// ("Single.end_datetime = start_datetime + duration"); ShouldRemove
	// compares against this, while ShouldBeOpen/TimeToClose apply the
	// live duration_correction to a freshly computed window, per §4.E.
	EndDatetime time.Time
	Manual      bool
}

// NewSingleTimer builds a SingleTimer starting at start (now, if
// start is the zero value) for durationMin minutes.
func NewSingleTimer(faucet string, durationMin float64, start time.Time, manual bool) *SingleTimer {
	if start.IsZero() {
		start = time.Now()
	}
	return &SingleTimer{
		Faucet:        faucet,
		DurationMin:   durationMin,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Duration(durationMin * float64(time.Minute))),
		Manual:        manual,
	}
}

func (s *SingleTimer) FaucetName() string { return s.Faucet }
func (s *SingleTimer) IsManual() bool     { return s.Manual }
func (s *SingleTimer) IsWeekly() bool     { return false }

func (s *SingleTimer) ShouldBeOpen(now time.Time, correction float64) bool {
	end := s.StartDatetime.Add(time.Duration(s.DurationMin * correction * float64(time.Minute)))
	return !now.Before(s.StartDatetime) && !now.After(end)
}

func (s *SingleTimer) ShouldRemove(now time.Time) bool {
	return now.After(s.EndDatetime)
}

func (s *SingleTimer) TimeToClose(now time.Time, correction float64) time.Duration {
	end := s.StartDatetime.Add(time.Duration(s.DurationMin * correction * float64(time.Minute)))
	return end.Sub(now)
}
