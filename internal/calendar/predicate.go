package calendar

import (
	"time"

	"attendance-bot/internal/domain"
)

// IsWorkingDay is false on holidays, otherwise follows the schedule's weekday flags.
// A nil schedule is permissive: every non-holiday counts as working.
func IsWorkingDay(d domain.Date, holidays []domain.Holiday, schedule *domain.WorkSchedule) bool {
	if MatchAny(d, holidays) {
		return false
	}
	if schedule == nil {
		return true
	}
	return schedule.Days.Has(d.Weekday())
}

// CountWorkingDays scans [start, end] inclusively; start after end yields 0.
func CountWorkingDays(start, end domain.Date, holidays []domain.Holiday, schedule *domain.WorkSchedule) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if IsWorkingDay(d, holidays, schedule) {
			n++
		}
	}
	return n
}

// CountWeekdays counts Monday–Friday dates in [start, end] without looking at holidays.
// Vacation balance consumption is measured this way.
func CountWeekdays(start, end domain.Date) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}
