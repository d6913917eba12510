package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, time.Thursday, d.Weekday())
	assert.Equal(t, "2024-03-01", d.AddDays(1).String())

	_, err = ParseDate("29.02.2024")
	assert.Error(t, err)
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	instant := time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, MustParseDate("2024-03-01"), DateOf(instant, time.UTC))
	assert.Equal(t, MustParseDate("2024-03-02"), DateOf(instant, loc))
	assert.Equal(t, MustParseTimeOfDay("01:30"), TimeOfDayOf(instant, loc))
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: NewTimeOfDay(9, 0, 0)},
		{in: "09:10:01", want: NewTimeOfDay(9, 10, 1)},
		{in: "23:59", want: NewTimeOfDay(23, 59, 0)},
		{in: "24:00", wantErr: true},
		{in: "9", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "09:10:01", NewTimeOfDay(9, 10, 1).String())
	assert.Equal(t, "14:00", NewTimeOfDay(14, 0, 0).String())
}

func TestDateRange(t *testing.T) {
	r := DateRange{From: MustParseDate("2024-03-01"), To: MustParseDate("2024-03-05")}
	require.NoError(t, r.Validate())
	assert.Len(t, r.Days(), 5)
	assert.True(t, r.Contains(MustParseDate("2024-03-05")))
	assert.False(t, r.Contains(MustParseDate("2024-03-06")))

	overlap, ok := r.Intersect(DateRange{From: MustParseDate("2024-03-04"), To: MustParseDate("2024-03-10")})
	require.True(t, ok)
	assert.Equal(t, "2024-03-04 – 2024-03-05", overlap.String())

	_, ok = r.Intersect(SingleDay(MustParseDate("2024-04-01")))
	assert.False(t, ok)

	inverted := DateRange{From: r.To, To: r.From}
	assert.True(t, errors.Is(inverted.Validate(), ErrMalformedRange))
	assert.Empty(t, inverted.Days())
}

func TestTimeRangeValidate(t *testing.T) {
	ok := TimeRange{From: MustParseTimeOfDay("14:00"), To: MustParseTimeOfDay("16:00")}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, 2*time.Hour, ok.Duration())

	empty := TimeRange{From: MustParseTimeOfDay("14:00"), To: MustParseTimeOfDay("14:00")}
	assert.ErrorIs(t, empty.Validate(), ErrMalformedRange)
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Range  DateRange  `json:"range"`
		Window *TimeRange `json:"window"`
	}
	err := json.Unmarshal([]byte(`{"range":{"from":"2024-03-01","to":"2024-03-02"},"window":{"from":"14:00","to":"16:30"}}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, MustParseDate("2024-03-02"), payload.Range.To)
	assert.Equal(t, NewTimeOfDay(16, 30, 0), payload.Window.To)

	out, err := json.Marshal(payload.Range)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2024-03-01","to":"2024-03-02"}`, string(out))
}

func TestWeekdaysFromNames(t *testing.T) {
	set, err := WeekdaysFromNames([]string{"Monday", "wed", "FRI"})
	require.NoError(t, err)
	assert.True(t, set.Has(time.Monday))
	assert.False(t, set.Has(time.Tuesday))
	assert.Equal(t, []string{"Mon", "Wed", "Fri"}, set.Names())

	_, err = WeekdaysFromNames([]string{"funday"})
	assert.Error(t, err)
}

func TestSummarizeCountsDistinctDates(t *testing.T) {
	day := MustParseDate("2024-12-25")
	details := []ConflictDetail{
		{Date: day, Kind: ConflictHoliday, Severity: SeverityCritical},
		{Date: day, Kind: ConflictBusinessTrip, Severity: SeverityCritical},
		{Date: day.AddDays(1), Kind: ConflictBusinessTrip, Severity: SeverityCritical},
	}

	s := Summarize(details)
	assert.Equal(t, 2, s.TotalConflicts)
	assert.Equal(t, 1, s.Holidays)
	assert.Equal(t, 2, s.BusinessTrips)
}

func TestLeaveBalanceRemainingFloorsAtZero(t *testing.T) {
	b := LeaveBalance{
		VacationDaysTotal:    decimal.NewFromInt(20),
		VacationDaysUsed:     decimal.NewFromInt(22),
		PermissionHoursTotal: decimal.NewFromInt(16),
		PermissionHoursUsed:  decimal.RequireFromString("4.5"),
	}
	assert.True(t, b.VacationDaysRemaining().IsZero())
	assert.Equal(t, "11.5", b.PermissionHoursRemaining().String())
}

func TestAtKeepsWallClockOnClockChange(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	tests := []struct {
		day  string
		tod  string
		want time.Time
	}{
		{day: "2024-03-30", tod: "09:00", want: time.Date(2024, 3, 30, 8, 0, 0, 0, time.UTC)},
		{day: "2024-03-31", tod: "09:00", want: time.Date(2024, 3, 31, 7, 0, 0, 0, time.UTC)},
		{day: "2024-10-27", tod: "09:00", want: time.Date(2024, 10, 27, 8, 0, 0, 0, time.UTC)},
		{day: "2024-10-27", tod: "00:30:15", want: time.Date(2024, 10, 26, 22, 30, 15, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.day+" "+tt.tod, func(t *testing.T) {
			got := MustParseDate(tt.day).At(MustParseTimeOfDay(tt.tod), rome)
			assert.True(t, tt.want.Equal(got), "got %s", got.UTC())
			assert.Equal(t, MustParseTimeOfDay(tt.tod), TimeOfDayOf(got, rome))
			assert.Equal(t, MustParseDate(tt.day), DateOf(got, rome))
		})
	}
}
