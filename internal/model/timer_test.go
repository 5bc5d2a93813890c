package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amnona/irrigator/internal/calendar"
)

// weeklyOpenClose mirrors spec §8 scenario 1: a Tuesday 06:00, 10
// minute weekly timer should be open at 06:00:00 and closed by
// 06:10:00.
func TestWeeklyTimer_OpenClose(t *testing.T) {
	timer := NewWeeklyTimer("roses", 10, 3 /* Tuesday */, 6, 0)
	assert.False(t, timer.Overnight)

	open := time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC) // a Tuesday
	assert.True(t, timer.ShouldBeOpen(open, 1.0))

	closed := time.Date(2026, 8, 4, 6, 10, 0, 0, time.UTC)
	assert.False(t, timer.ShouldBeOpen(closed, 1.0))

	assert.Equal(t, calendar.FromTime(open), calendar.SaneWeekday(3))
}

// TestWeeklyTimer_Overnight mirrors spec §8 scenario 2: a Saturday
// 23:30, 60-minute timer crosses midnight and is open both at
// Saturday 23:45 and Sunday 00:15, but closed by Sunday 00:45.
func TestWeeklyTimer_Overnight(t *testing.T) {
	timer := NewWeeklyTimer("lawn", 60, 7 /* Saturday */, 23, 30)
	assert.True(t, timer.Overnight)

	// 2026-08-01 is a Saturday.
	before := time.Date(2026, 8, 1, 23, 45, 0, 0, time.UTC)
	assert.True(t, timer.ShouldBeOpen(before, 1.0))

	afterMidnight := time.Date(2026, 8, 2, 0, 15, 0, 0, time.UTC)
	assert.True(t, timer.ShouldBeOpen(afterMidnight, 1.0))

	pastWindow := time.Date(2026, 8, 2, 0, 45, 0, 0, time.UTC)
	assert.False(t, timer.ShouldBeOpen(pastWindow, 1.0))
}

// TestWeeklyTimer_WeekShiftInvariant implements spec §8 invariant 4:
// ShouldBeOpen at any instant is unchanged under shifting by exactly
// one week.
func TestWeeklyTimer_WeekShiftInvariant(t *testing.T) {
	timer := NewWeeklyTimer("roses", 10, 3, 6, 0)
	instant := time.Date(2026, 8, 4, 6, 5, 0, 0, time.UTC)
	shifted := instant.AddDate(0, 0, 7)
	assert.Equal(t, timer.ShouldBeOpen(instant, 1.0), timer.ShouldBeOpen(shifted, 1.0))
}

// TestWeeklyTimer_SetPercent implements spec §8 scenario 6: a 60
// minute weekly timer at 07:00, scaled by 50%, opens at 07:00 and
// closes by 07:30.
func TestWeeklyTimer_SetPercent(t *testing.T) {
	timer := NewWeeklyTimer("bed", 60, 3, 7, 0)
	open := time.Date(2026, 8, 4, 7, 20, 0, 0, time.UTC)
	closed := time.Date(2026, 8, 4, 7, 30, 0, 0, time.UTC)
	assert.True(t, timer.ShouldBeOpen(open, 0.5))
	assert.False(t, timer.ShouldBeOpen(closed, 0.5))
}

func TestWeeklyTimer_NeverRemoved(t *testing.T) {
	timer := NewWeeklyTimer("roses", 10, 3, 6, 0)
	assert.False(t, timer.ShouldRemove(time.Now()))
}

func TestSingleTimer_ShouldBeOpenAndRemove(t *testing.T) {
	start := time.Date(2026, 8, 4, 12, 0, 0, 0, time.UTC)
	timer := NewSingleTimer("roses", 30, start, true)

	assert.True(t, timer.ShouldBeOpen(start, 1.0))
	assert.True(t, timer.ShouldBeOpen(start.Add(29*time.Minute), 1.0))
	assert.False(t, timer.ShouldBeOpen(start.Add(31*time.Minute), 1.0))

	assert.False(t, timer.ShouldRemove(start.Add(29*time.Minute)))
	assert.True(t, timer.ShouldRemove(start.Add(31*time.Minute)))
	assert.True(t, timer.IsManual())
	assert.False(t, timer.IsWeekly())
}

// TestSingleTimer_DefaultsStartToNow covers the unspecified-start
// construction path used by the `open` command.
func TestSingleTimer_DefaultsStartToNow(t *testing.T) {
	before := time.Now()
	timer := NewSingleTimer("roses", 5, time.Time{}, true)
	after := time.Now()
	assert.False(t, timer.StartDatetime.Before(before))
	assert.False(t, timer.StartDatetime.After(after))
}

func TestSingleTimer_TimeToClose(t *testing.T) {
	start := time.Date(2026, 8, 4, 12, 0, 0, 0, time.UTC)
	timer := NewSingleTimer("roses", 30, start, false)
	remaining := timer.TimeToClose(start.Add(20*time.Minute), 1.0)
	assert.Equal(t, 10*time.Minute, remaining)
}
