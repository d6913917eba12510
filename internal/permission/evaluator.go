// Package permission decides whether an approved permission blocks a given day right now.
package permission

import (
	"fmt"
	"time"

	"attendance-bot/internal/domain"
)

type Status string

const (
	StatusNone     Status = "none"
	StatusBlocked  Status = "blocked"
	StatusActive   Status = "active"
	StatusUpcoming Status = "upcoming"
	StatusExpired  Status = "expired"
)

type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Evaluator compares permissions against instants observed in a fixed location.
type Evaluator struct {
	loc *time.Location
}

func NewEvaluator(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{loc: loc}
}

// IsActive reports whether p blocks targetDate as of now.
// Past hourly permissions never block; future ones always do.
func (e *Evaluator) IsActive(p domain.Permission, now time.Time, targetDate domain.Date) bool {
	switch e.Status(p, now, targetDate).Status {
	case StatusBlocked, StatusActive:
		return true
	case StatusUpcoming:
		// Upcoming on a later day blocks; upcoming later today does not.
		return targetDate.After(domain.DateOf(now, e.loc))
	default:
		return false
	}
}

func (e *Evaluator) Status(p domain.Permission, now time.Time, targetDate domain.Date) Result {
	if p.Day != targetDate {
		return Result{Status: StatusNone}
	}
	if p.FullDay() {
		return Result{Status: StatusBlocked, Message: fmt.Sprintf("Full-day permission on %s", p.Day)}
	}

	w := *p.Window
	today := domain.DateOf(now, e.loc)
	switch {
	case targetDate.Before(today):
		return Result{Status: StatusExpired, Message: fmt.Sprintf("Permission %s on %s has ended", w, p.Day)}
	case targetDate.After(today):
		return Result{Status: StatusUpcoming, Message: fmt.Sprintf("Permission %s scheduled on %s", w, p.Day)}
	}

	clock := domain.TimeOfDayOf(now, e.loc)
	switch {
	case clock < w.From:
		return Result{Status: StatusUpcoming, Message: fmt.Sprintf("Permission starts at %s", w.From)}
	case clock > w.To:
		return Result{Status: StatusExpired, Message: fmt.Sprintf("Permission ended at %s", w.To)}
	default:
		return Result{Status: StatusActive, Message: fmt.Sprintf("Permission active until %s", w.To)}
	}
}
