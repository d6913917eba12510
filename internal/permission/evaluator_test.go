package permission

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-bot/internal/domain"
)

func hourly(day string, from, to string) domain.Permission {
	return domain.Permission{
		ID:     "p1",
		Day:    domain.MustParseDate(day),
		Window: &domain.TimeRange{From: domain.MustParseTimeOfDay(from), To: domain.MustParseTimeOfDay(to)},
		Status: domain.StatusApproved,
	}
}

func at(loc *time.Location, day, clock string) time.Time {
	return domain.MustParseDate(day).At(domain.MustParseTimeOfDay(clock), loc)
}

func TestExpiredPermissionUnblocksAttendance(t *testing.T) {
	loc := time.FixedZone("office", 2*3600)
	e := NewEvaluator(loc)
	p := hourly("2024-06-10", "14:00", "16:00")
	target := domain.MustParseDate("2024-06-10")

	assert.False(t, e.IsActive(p, at(loc, "2024-06-10", "17:00"), target))
	assert.True(t, e.IsActive(p, at(loc, "2024-06-10", "15:00"), target))
}

func TestStatus(t *testing.T) {
	loc := time.UTC
	e := NewEvaluator(loc)
	p := hourly("2024-06-10", "14:00", "16:00")
	fullDay := domain.Permission{ID: "p2", Day: domain.MustParseDate("2024-06-10"), Status: domain.StatusApproved}

	tests := []struct {
		name       string
		permission domain.Permission
		now        time.Time
		target     string
		want       Status
		active     bool
	}{
		{name: "other day", permission: p, now: at(loc, "2024-06-10", "15:00"), target: "2024-06-11", want: StatusNone},
		{name: "full day", permission: fullDay, now: at(loc, "2024-06-01", "08:00"), target: "2024-06-10", want: StatusBlocked, active: true},
		{name: "full day in the past still blocks its day", permission: fullDay, now: at(loc, "2024-06-20", "08:00"), target: "2024-06-10", want: StatusBlocked, active: true},
		{name: "past hourly", permission: p, now: at(loc, "2024-06-11", "09:00"), target: "2024-06-10", want: StatusExpired},
		{name: "future hourly", permission: p, now: at(loc, "2024-06-09", "15:00"), target: "2024-06-10", want: StatusUpcoming, active: true},
		{name: "today before window", permission: p, now: at(loc, "2024-06-10", "13:59"), target: "2024-06-10", want: StatusUpcoming},
		{name: "today window start inclusive", permission: p, now: at(loc, "2024-06-10", "14:00"), target: "2024-06-10", want: StatusActive, active: true},
		{name: "today window end inclusive", permission: p, now: at(loc, "2024-06-10", "16:00"), target: "2024-06-10", want: StatusActive, active: true},
		{name: "today after window", permission: p, now: at(loc, "2024-06-10", "16:00:01"), target: "2024-06-10", want: StatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := domain.MustParseDate(tt.target)
			res := e.Status(tt.permission, tt.now, target)
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, tt.active, e.IsActive(tt.permission, tt.now, target))
			if tt.want != StatusNone {
				assert.NotEmpty(t, res.Message)
			}
		})
	}
}

func TestEvaluatorUsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	e := NewEvaluator(loc)
	p := hourly("2024-06-10", "14:00", "16:00")

	// 10:30 UTC is 15:30 in the office zone.
	now := time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, StatusActive, e.Status(p, now, domain.MustParseDate("2024-06-10")).Status)
}

func TestStatusOnClockChangeDays(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	e := NewEvaluator(rome)

	tests := []struct {
		name string
		day  string
		now  time.Time
		want Status
	}{
		{name: "spring forward before window", day: "2024-03-31", now: time.Date(2024, 3, 31, 11, 30, 0, 0, time.UTC), want: StatusUpcoming},
		{name: "spring forward inside window", day: "2024-03-31", now: time.Date(2024, 3, 31, 12, 30, 0, 0, time.UTC), want: StatusActive},
		{name: "spring forward after window", day: "2024-03-31", now: time.Date(2024, 3, 31, 14, 30, 0, 0, time.UTC), want: StatusExpired},
		{name: "fall back inside window", day: "2024-10-27", now: time.Date(2024, 10, 27, 13, 30, 0, 0, time.UTC), want: StatusActive},
		{name: "fall back after window", day: "2024-10-27", now: time.Date(2024, 10, 27, 15, 30, 0, 0, time.UTC), want: StatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := hourly(tt.day, "14:00", "16:00")
			assert.Equal(t, tt.want, e.Status(p, tt.now, domain.MustParseDate(tt.day)).Status)
		})
	}
}
