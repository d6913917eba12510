// Package balance checks leave requests against yearly allowances.
package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/calendar"
	"attendance-bot/internal/domain"
)

// FullDayHours is what a permission without a window consumes.
var FullDayHours = decimal.NewFromInt(8)

var secondsPerHour = decimal.NewFromInt(3600)

type Remaining struct {
	VacationDays    decimal.Decimal `json:"vacationDaysRemaining"`
	PermissionHours decimal.Decimal `json:"permissionHoursRemaining"`
}

type Result struct {
	Exceeds bool `json:"exceeds"`
	// Configured is false when no balance record exists for the year.
	Configured bool            `json:"configured"`
	Requested  decimal.Decimal `json:"requested"`
	Remaining  decimal.Decimal `json:"remaining"`
	Message    string          `json:"message,omitempty"`
}

type Checker struct {
	access domain.ReadAccess
	logger logrus.FieldLogger
}

func NewChecker(access domain.ReadAccess, logger logrus.FieldLogger) *Checker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Checker{access: access, logger: logger}
}

// Remaining returns nil, nil when the person has no balance for year.
func (c *Checker) Remaining(ctx context.Context, personID domain.PersonID, year int) (*Remaining, error) {
	b, err := c.access.GetLeaveBalance(ctx, personID, year)
	if err != nil {
		return nil, &domain.DataFetchError{Source: "leave_balance", PersonID: personID, Err: err}
	}
	if b == nil {
		return nil, nil
	}
	return &Remaining{
		VacationDays:    b.VacationDaysRemaining(),
		PermissionHours: b.PermissionHoursRemaining(),
	}, nil
}

// WouldExceed reports whether amount is more than what is left for kind.
// Kinds without an allowance never exceed.
func WouldExceed(b domain.LeaveBalance, kind domain.Kind, amount decimal.Decimal) bool {
	switch kind {
	case domain.KindVacation:
		return amount.GreaterThan(b.VacationDaysRemaining())
	case domain.KindPermission:
		return amount.GreaterThan(b.PermissionHoursRemaining())
	default:
		return false
	}
}

// RequestedAmount is the allowance a request consumes: weekdays for vacation,
// hours for a permission.
func RequestedAmount(kind domain.Kind, r domain.DateRange, window *domain.TimeRange) decimal.Decimal {
	switch kind {
	case domain.KindVacation:
		return decimal.NewFromInt(int64(calendar.CountWeekdays(r.From, r.To)))
	case domain.KindPermission:
		if window == nil {
			return FullDayHours
		}
		return decimal.NewFromInt(int64(window.Duration() / time.Second)).Div(secondsPerHour).Round(2)
	default:
		return decimal.Zero
	}
}

// Consume books amount against b and returns the updated balance.
func Consume(b domain.LeaveBalance, kind domain.Kind, amount decimal.Decimal) domain.LeaveBalance {
	switch kind {
	case domain.KindVacation:
		b.VacationDaysUsed = b.VacationDaysUsed.Add(amount)
	case domain.KindPermission:
		b.PermissionHoursUsed = b.PermissionHoursUsed.Add(amount)
	}
	return b
}

func unit(kind domain.Kind) string {
	if kind == domain.KindPermission {
		return "hours"
	}
	return "days"
}

// Check compares amount against the person's balance for year.
// A missing balance is reported, never treated as zero.
func (c *Checker) Check(ctx context.Context, personID domain.PersonID, kind domain.Kind, amount decimal.Decimal, year int) (Result, error) {
	res := Result{Requested: amount}
	if kind != domain.KindVacation && kind != domain.KindPermission {
		res.Configured = true
		return res, nil
	}

	b, err := c.access.GetLeaveBalance(ctx, personID, year)
	if err != nil {
		return Result{}, &domain.DataFetchError{Source: "leave_balance", PersonID: personID, Err: err}
	}
	if b == nil {
		gap := fmt.Errorf("%w: no leave balance for %d", domain.ErrConfigurationMissing, year)
		c.logger.WithError(gap).WithFields(logrus.Fields{
			"person_id": personID,
			"year":      year,
		}).Warn("No leave balance configured")
		res.Message = fmt.Sprintf("No leave balance configured for %d, request not checked against an allowance", year)
		return res, nil
	}

	res.Configured = true
	if kind == domain.KindVacation {
		res.Remaining = b.VacationDaysRemaining()
	} else {
		res.Remaining = b.PermissionHoursRemaining()
	}
	res.Exceeds = WouldExceed(*b, kind, amount)
	if res.Exceeds {
		res.Message = fmt.Sprintf("Requested %s %s %s but only %s remaining", amount, unit(kind), kind, res.Remaining)
	}
	return res, nil
}
