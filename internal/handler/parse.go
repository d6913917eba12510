package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance-bot/internal/conflict"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"
)

var dateFormats = []string{
	"2006-01-02",
	"02.01.2006",
	"02-01-2006",
	"02.01",
	"02-01",
}

// parseDate accepts ISO and day-first dates. Without a year, today's year is used.
func parseDate(s string, today domain.Date) (domain.Date, error) {
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err != nil {
			continue
		}
		d := domain.DateOf(t, time.UTC)
		if !strings.Contains(format, "2006") {
			d = domain.NewDate(today.Year, d.Month, d.Day)
		}
		return d, nil
	}
	return domain.Date{}, fmt.Errorf("invalid date %q, use DD.MM.YYYY or YYYY-MM-DD", s)
}

// parseRange reads "from [to]" from the head of args and returns the remaining words.
func parseRange(args []string, today domain.Date) (domain.DateRange, []string, error) {
	if len(args) == 0 {
		return domain.DateRange{}, nil, errors.New("a date is required")
	}
	from, err := parseDate(args[0], today)
	if err != nil {
		return domain.DateRange{}, nil, err
	}
	r := domain.SingleDay(from)
	rest := args[1:]
	if len(rest) > 0 {
		if to, err := parseDate(rest[0], today); err == nil {
			r.To = to
			rest = rest[1:]
		}
	}
	if err := r.Validate(); err != nil {
		return domain.DateRange{}, nil, err
	}
	return r, rest, nil
}

func parseTime(s string) (domain.TimeOfDay, error) {
	s = strings.NewReplacer(".", ":", "-", ":").Replace(s)
	return domain.ParseTimeOfDay(s)
}

func parseWindow(from, to string) (domain.TimeRange, error) {
	f, err := parseTime(from)
	if err != nil {
		return domain.TimeRange{}, err
	}
	t, err := parseTime(to)
	if err != nil {
		return domain.TimeRange{}, err
	}
	w := domain.TimeRange{From: f, To: t}
	return w, w.Validate()
}

// parseMonth reads "YYYY-MM" or "MM.YYYY"; empty means the month of today.
func parseMonth(s string, today domain.Date) (domain.DateRange, error) {
	first := domain.NewDate(today.Year, today.Month, 1)
	if s != "" {
		var t time.Time
		var err error
		if t, err = time.Parse("2006-01", s); err != nil {
			if t, err = time.Parse("01.2006", s); err != nil {
				return domain.DateRange{}, fmt.Errorf("invalid month %q, use YYYY-MM", s)
			}
		}
		first = domain.NewDate(t.Year(), t.Month(), 1)
	}
	last := domain.NewDate(first.Year, first.Month+1, 1).AddDays(-1)
	return domain.DateRange{From: first, To: last}, nil
}

// errorText turns a service error into the reply shown to the user.
func errorText(err error) string {
	var ce *service.ConflictError
	var be *service.BalanceError
	switch {
	case errors.As(err, &ce):
		return "❌ Cannot save, conflicts found:\n• " + strings.Join(ce.Conflicts, "\n• ")
	case errors.As(err, &be):
		return "❌ " + be.Message
	case errors.Is(err, domain.ErrDataFetch):
		return "❌ " + conflict.MsgCouldNotValidate + ", please try again later"
	case errors.Is(err, domain.ErrMalformedRange):
		return "❌ Invalid range: " + err.Error()
	case errors.Is(err, repository.ErrDuplicateAttendance),
		errors.Is(err, repository.ErrNotPending),
		errors.Is(err, repository.ErrUserExists),
		errors.Is(err, service.ErrAlreadyClockedIn),
		errors.Is(err, service.ErrNotClockedIn),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrFutureDate):
		return "❌ " + capitalize(err.Error())
	default:
		return "❌ Something went wrong: " + err.Error()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func bulletList(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return title + "\n• " + strings.Join(items, "\n• ")
}
