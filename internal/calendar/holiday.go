// Package calendar decides whether a date is a working day.
package calendar

import "attendance-bot/internal/domain"

// Matches compares month and day for recurring holidays and the full date otherwise.
func Matches(d domain.Date, h domain.Holiday) bool {
	if h.Recurring {
		return d.Month == h.Date.Month && d.Day == h.Date.Day
	}
	return d == h.Date
}

// MatchAny reports whether at least one holiday falls on d.
func MatchAny(d domain.Date, holidays []domain.Holiday) bool {
	_, ok := Find(d, holidays)
	return ok
}

// Find returns the first holiday matching d in stored order.
func Find(d domain.Date, holidays []domain.Holiday) (domain.Holiday, bool) {
	for _, h := range holidays {
		if Matches(d, h) {
			return h, true
		}
	}
	return domain.Holiday{}, false
}

// NameFor returns the label of the first matching holiday, or "" when none matches.
func NameFor(d domain.Date, holidays []domain.Holiday) string {
	h, ok := Find(d, holidays)
	if !ok {
		return ""
	}
	if h.Name == "" {
		return "Holiday"
	}
	return h.Name
}
