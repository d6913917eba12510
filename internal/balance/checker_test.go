package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/domain/domaintest"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func span(from, to string) domain.DateRange {
	return domain.DateRange{From: domain.MustParseDate(from), To: domain.MustParseDate(to)}
}

func TestVacationExceedsBalance(t *testing.T) {
	fake := domaintest.New()
	fake.SetBalance("p1", 2024, domain.LeaveBalance{VacationDaysTotal: d(20), VacationDaysUsed: d(18)})
	checker := NewChecker(fake, nil)

	// Wednesday to Friday.
	amount := RequestedAmount(domain.KindVacation, span("2024-06-12", "2024-06-14"), nil)
	require.True(t, amount.Equal(d(3)))

	res, err := checker.Check(context.Background(), "p1", domain.KindVacation, amount, 2024)
	require.NoError(t, err)
	assert.True(t, res.Exceeds)
	assert.True(t, res.Remaining.Equal(d(2)), res.Remaining.String())
	assert.NotEmpty(t, res.Message)
}

func TestRequestedAmount(t *testing.T) {
	tests := []struct {
		name   string
		kind   domain.Kind
		r      domain.DateRange
		window *domain.TimeRange
		want   string
	}{
		{name: "vacation skips weekend", kind: domain.KindVacation, r: span("2024-06-14", "2024-06-17"), want: "2"},
		{name: "vacation ignores holidays", kind: domain.KindVacation, r: span("2024-12-23", "2024-12-27"), want: "5"},
		{name: "full-day permission", kind: domain.KindPermission, r: span("2024-06-14", "2024-06-14"), want: "8"},
		{
			name:   "hourly permission",
			kind:   domain.KindPermission,
			r:      span("2024-06-14", "2024-06-14"),
			window: &domain.TimeRange{From: domain.MustParseTimeOfDay("14:00"), To: domain.MustParseTimeOfDay("15:30")},
			want:   "1.5",
		},
		{name: "untracked kind", kind: domain.KindBusinessTrip, r: span("2024-06-14", "2024-06-20"), want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequestedAmount(tt.kind, tt.r, tt.window)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), got.String())
		})
	}
}

func TestWouldExceed(t *testing.T) {
	b := domain.LeaveBalance{
		VacationDaysTotal:    d(20),
		VacationDaysUsed:     d(18),
		PermissionHoursTotal: d(16),
		PermissionHoursUsed:  d(12),
	}
	assert.False(t, WouldExceed(b, domain.KindVacation, d(2)))
	assert.True(t, WouldExceed(b, domain.KindVacation, d(3)))
	assert.False(t, WouldExceed(b, domain.KindPermission, d(4)))
	assert.True(t, WouldExceed(b, domain.KindPermission, decimal.RequireFromString("4.5")))
	assert.False(t, WouldExceed(b, domain.KindSickLeave, d(100)))
}

func TestMissingBalanceWarnsInsteadOfBlocking(t *testing.T) {
	logger, hook := test.NewNullLogger()
	checker := NewChecker(domaintest.New(), logger)

	res, err := checker.Check(context.Background(), "p1", domain.KindVacation, d(5), 2024)
	require.NoError(t, err)
	assert.False(t, res.Exceeds)
	assert.False(t, res.Configured)
	assert.NotEmpty(t, res.Message)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	gap, ok := hook.LastEntry().Data[logrus.ErrorKey].(error)
	require.True(t, ok)
	assert.ErrorIs(t, gap, domain.ErrConfigurationMissing)

	rem, err := checker.Remaining(context.Background(), "p1", 2024)
	require.NoError(t, err)
	assert.Nil(t, rem)
}

func TestRemainingFloorsAtZero(t *testing.T) {
	fake := domaintest.New()
	fake.SetBalance("p1", 2024, domain.LeaveBalance{VacationDaysTotal: d(10), VacationDaysUsed: d(12), PermissionHoursTotal: d(8)})
	checker := NewChecker(fake, nil)

	rem, err := checker.Remaining(context.Background(), "p1", 2024)
	require.NoError(t, err)
	require.NotNil(t, rem)
	assert.True(t, rem.VacationDays.IsZero())
	assert.True(t, rem.PermissionHours.Equal(d(8)))
}

func TestBalanceFetchFailure(t *testing.T) {
	fake := domaintest.New()
	fake.Errors["balance"] = errors.New("down")
	checker := NewChecker(fake, nil)

	_, err := checker.Check(context.Background(), "p1", domain.KindPermission, d(2), 2024)
	assert.ErrorIs(t, err, domain.ErrDataFetch)
}

func TestConsume(t *testing.T) {
	b := Consume(domain.LeaveBalance{VacationDaysTotal: d(20)}, domain.KindVacation, d(3))
	assert.True(t, b.VacationDaysUsed.Equal(d(3)))
	b = Consume(b, domain.KindPermission, decimal.RequireFromString("1.5"))
	assert.True(t, b.PermissionHoursUsed.Equal(decimal.RequireFromString("1.5")))
}
