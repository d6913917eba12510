package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"
)

var today = domain.MustParseDate("2024-06-10")

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-07-01", want: "2024-07-01"},
		{in: "01.07.2025", want: "2025-07-01"},
		{in: "01-07-2025", want: "2025-07-01"},
		{in: "15.08", want: "2024-08-15"},
		{in: "31.02.2024", wantErr: true},
		{in: "tomorrow", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in, today)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseRange(t *testing.T) {
	r, rest, err := parseRange([]string{"01.07.2024", "05.07.2024", "Oslo", "office"}, today)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01 – 2024-07-05", r.String())
	assert.Equal(t, []string{"Oslo", "office"}, rest)

	r, rest, err = parseRange([]string{"2024-07-01", "14:00", "16:00"}, today)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", r.String())
	assert.Equal(t, []string{"14:00", "16:00"}, rest)

	_, _, err = parseRange([]string{"05.07.2024", "01.07.2024"}, today)
	assert.ErrorIs(t, err, domain.ErrMalformedRange)

	_, _, err = parseRange(nil, today)
	assert.Error(t, err)
}

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("14.00", "16-30")
	require.NoError(t, err)
	assert.Equal(t, "14:00-16:30", w.String())

	_, err = parseWindow("16:00", "14:00")
	assert.ErrorIs(t, err, domain.ErrMalformedRange)
}

func TestParseMonth(t *testing.T) {
	r, err := parseMonth("", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01 – 2024-06-30", r.String())

	r, err = parseMonth("2024-02", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01 – 2024-02-29", r.String())

	r, err = parseMonth("12.2024", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-01 – 2024-12-31", r.String())

	_, err = parseMonth("june", today)
	assert.Error(t, err)
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "conflicts",
			err:  &service.ConflictError{Conflicts: []string{"2024-06-10: Sick leave 2024-06-10"}},
			want: "❌ Cannot save, conflicts found:\n• 2024-06-10: Sick leave 2024-06-10",
		},
		{
			name: "balance",
			err:  &service.BalanceError{Message: "Requested 3 days vacation but only 2 remaining"},
			want: "❌ Requested 3 days vacation but only 2 remaining",
		},
		{
			name: "fetch",
			err:  &domain.DataFetchError{Source: "holidays", Err: errors.New("down")},
			want: "❌ could not validate conflicts, please try again later",
		},
		{name: "known", err: service.ErrAlreadyClockedIn, want: "❌ You are already clocked in"},
		{name: "not pending", err: repository.ErrNotPending, want: "❌ Request is no longer pending"},
		{name: "unknown", err: errors.New("boom"), want: "❌ Something went wrong: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorText(tt.err))
		})
	}
}
