// Package production computes per-line production snapshots, shift state,
// live graph series, and threshold alerts. All per-line caches live on an
// injected Tracker rather than package globals.
package production

import (
	"math"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
)

// defaultRatePerHour is the planned production rate used when a line has no
// explicit plan.
const defaultRatePerHour = 60

// CurrentShift resolves which of a line's three shift windows contains now:
// between A's start and B's start it is shift A, between B's and C's it is
// shift B, anything else (including overnight) is shift C.
func CurrentShift(line *config.Line, now time.Time) (config.ShiftWindow, bool) {
	sc := line.Shifts
	startA := sc.ShiftA.StartMinutes()
	startB := sc.ShiftB.StartMinutes()
	startC := sc.ShiftC.StartMinutes()
	if startA < 0 || startB < 0 || startC < 0 {
		return config.ShiftWindow{}, false
	}

	minutes := now.Hour()*60 + now.Minute()
	switch {
	case minutes >= startA && minutes < startB:
		return sc.ShiftA, true
	case minutes >= startB && minutes < startC:
		return sc.ShiftB, true
	default:
		return sc.ShiftC, true
	}
}

// ShiftBounds returns the shift's start and end as absolute times on the day
// of now, pushing the end to the next day for overnight shifts.
func ShiftBounds(shift config.ShiftWindow, now time.Time) (time.Time, time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := midnight.Add(time.Duration(shift.StartMinutes()) * time.Minute)
	end := midnight.Add(time.Duration(shift.EndMinutes()) * time.Minute)
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end
}

// PlannedCount returns the expected piece count at now for a shift, assuming
// the default hourly rate from the shift's start.
func PlannedCount(shift config.ShiftWindow, now time.Time) int {
	start := shift.StartMinutes()
	if start < 0 {
		return 0
	}

	minutes := float64(now.Hour()*60+now.Minute()) - float64(start)
	if minutes < 0 {
		// Overnight shift still in progress from the previous day.
		minutes += 24 * 60
	}
	return int(minutes / 60.0 * defaultRatePerHour)
}

// Efficiency returns actual/planned as a percentage rounded to two decimals,
// or 0 when nothing is planned.
func Efficiency(actual, planned int) float64 {
	if planned == 0 {
		return 0
	}
	return math.Round(float64(actual)/float64(planned)*100*100) / 100
}
