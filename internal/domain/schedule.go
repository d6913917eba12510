package domain

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet holds one working flag per weekday, indexed by time.Weekday (Sunday = 0).
type WeekdaySet [7]bool

// Weekdays is the Monday–Friday pattern.
var Weekdays = WeekdaySet{false, true, true, true, true, true, false}

// AllDays treats every weekday as working.
var AllDays = WeekdaySet{true, true, true, true, true, true, true}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// WeekdaysFromNames converts the list-of-names form ("monday", "tue", ...) into a WeekdaySet.
func WeekdaysFromNames(names []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, name := range names {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return WeekdaySet{}, fmt.Errorf("unknown weekday %q", name)
		}
		set[wd] = true
	}
	return set, nil
}

func (s WeekdaySet) Has(wd time.Weekday) bool { return s[wd] }

// Names lists working weekdays starting from Monday.
func (s WeekdaySet) Names() []string {
	var names []string
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		if s[wd] {
			names = append(names, wd.String()[:3])
		}
	}
	return names
}

// WorkSchedule is either a company default or a person-specific override.
type WorkSchedule struct {
	Start            TimeOfDay
	End              TimeOfDay
	ToleranceMinutes int
	Days             WeekdaySet
}

func (s WorkSchedule) Validate() error {
	if s.Start >= s.End {
		return fmt.Errorf("%w: schedule start %s must be before end %s", ErrMalformedRange, s.Start, s.End)
	}
	if s.ToleranceMinutes < 0 {
		return fmt.Errorf("tolerance must not be negative, got %d", s.ToleranceMinutes)
	}
	return nil
}

func (s WorkSchedule) Tolerance() time.Duration {
	return time.Duration(s.ToleranceMinutes) * time.Minute
}
