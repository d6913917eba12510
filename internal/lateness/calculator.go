// Package lateness measures check-ins against the effective work schedule.
package lateness

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"attendance-bot/internal/calendar"
	"attendance-bot/internal/domain"
)

type Result struct {
	IsLate      bool `json:"isLate"`
	LateMinutes int  `json:"lateMinutes"`
	// ExpectedStart is the reference start after any permission shift.
	ExpectedStart time.Time `json:"expectedStart,omitempty"`
	// ShiftedBy is the id of the permission that moved the reference start.
	ShiftedBy       string `json:"shiftedBy,omitempty"`
	ScheduleMissing bool   `json:"scheduleMissing,omitempty"`
	NonWorkingDay   bool   `json:"nonWorkingDay,omitempty"`
}

type Calculator struct {
	access domain.ReadAccess
	loc    *time.Location
	logger logrus.FieldLogger
}

func NewCalculator(access domain.ReadAccess, loc *time.Location, logger logrus.FieldLogger) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Calculator{access: access, loc: loc, logger: logger}
}

// Evaluate decides whether checkIn is late for personID.
func (c *Calculator) Evaluate(ctx context.Context, personID domain.PersonID, checkIn time.Time) (Result, error) {
	eff, err := calendar.ResolveFor(ctx, c.access, personID)
	if err != nil {
		return Result{}, err
	}
	if gap := eff.Gap(personID); gap != nil {
		c.logger.WithError(gap).WithField("person_id", personID).Warn("No work schedule configured, lateness not evaluated")
		return Result{ScheduleMissing: true}, nil
	}

	holidays, err := c.access.GetHolidays(ctx)
	if err != nil {
		return Result{}, &domain.DataFetchError{Source: "holidays", Err: err}
	}
	day := domain.DateOf(checkIn, c.loc)
	if !calendar.IsWorkingDay(day, holidays, eff.Schedule()) {
		return Result{NonWorkingDay: true}, nil
	}

	leaves, err := c.access.ListApprovedLeaveRequests(ctx, personID)
	if err != nil {
		return Result{}, &domain.DataFetchError{Source: "leave_requests", PersonID: personID, Err: err}
	}
	var permissions []domain.Permission
	for _, l := range leaves {
		if p, ok := l.(domain.Permission); ok && p.Status == domain.StatusApproved && p.Day == day {
			permissions = append(permissions, p)
		}
	}

	res := Assess(checkIn, eff.WorkSchedule, permissions, c.loc)
	c.logger.WithFields(logrus.Fields{
		"person_id":    personID,
		"check_in":     checkIn.In(c.loc).Format("2006-01-02 15:04:05"),
		"is_late":      res.IsLate,
		"late_minutes": res.LateMinutes,
		"shifted_by":   res.ShiftedBy,
	}).Debug("Check-in evaluated")
	return res, nil
}

// Assess is the pure lateness rule. Hourly permissions that ended at or before
// checkIn move the reference start forward; the latest such end wins.
// Late minutes are measured from the reference start, not from the tolerance deadline.
func Assess(checkIn time.Time, schedule domain.WorkSchedule, permissions []domain.Permission, loc *time.Location) Result {
	day := domain.DateOf(checkIn, loc)
	reference := schedule.Start
	var shiftedBy string
	for _, p := range permissions {
		if p.FullDay() || p.Day != day {
			continue
		}
		end := p.Window.To
		if day.At(end, loc).After(checkIn) {
			continue
		}
		if end > reference {
			reference = end
			shiftedBy = p.ID
		}
	}

	expected := day.At(reference, loc)
	res := Result{ExpectedStart: expected, ShiftedBy: shiftedBy}
	if checkIn.After(expected.Add(schedule.Tolerance())) {
		res.IsLate = true
		res.LateMinutes = int(checkIn.Sub(expected) / time.Minute)
	}
	return res
}
