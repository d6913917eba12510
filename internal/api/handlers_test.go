package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/domain/domaintest"
	"attendance-bot/internal/service"
)

var date = domain.MustParseDate

func newTestServer(t *testing.T) (*domaintest.Fake, http.Handler) {
	t.Helper()
	fake := domaintest.New()
	fake.Company = &domain.WorkSchedule{
		Start:            domain.MustParseTimeOfDay("09:00"),
		End:              domain.MustParseTimeOfDay("18:00"),
		ToleranceMinutes: 10,
		Days:             domain.Weekdays,
	}

	logger, _ := test.NewNullLogger()
	now := func() time.Time { return time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC) }
	guard := service.NewGuardService(fake, time.UTC, time.Second, now, logger)
	return fake, NewRouter(NewHandler(guard, now, logger), []string{"http://localhost:5173"})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestEvaluateCheckIn(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/checkin/evaluate", map[string]any{
		"personId": "1",
		"checkIn":  "2024-06-10T09:25:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		IsLate      bool `json:"isLate"`
		LateMinutes int  `json:"lateMinutes"`
	}](t, rec)
	assert.True(t, res.IsLate)
	assert.Equal(t, 25, res.LateMinutes)

	rec = do(t, h, http.MethodPost, "/api/checkin/evaluate", map[string]any{"personId": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateCandidate(t *testing.T) {
	fake, h := newTestServer(t)
	fake.Sick["1"] = []domain.SickLeave{{ID: "s1", Start: date("2024-07-01"), End: date("2024-07-03")}}

	rec := do(t, h, http.MethodPost, "/api/candidates/validate", map[string]any{
		"persons": []map[string]string{{"id": "1", "label": "Ada"}},
		"kind":    "vacation",
		"from":    "2024-07-02",
		"to":      "2024-07-05",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decode[struct {
		IsValid   bool     `json:"isValid"`
		Conflicts []string `json:"conflicts"`
	}](t, rec)
	assert.False(t, v.IsValid)
	require.NotEmpty(t, v.Conflicts)
	assert.Contains(t, v.Conflicts[0], "2024-07-01 – 2024-07-03")

	rec = do(t, h, http.MethodPost, "/api/candidates/validate", map[string]any{
		"persons": []map[string]string{{"id": "1"}},
		"kind":    "vacation",
		"from":    "2024-08-05",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct {
		IsValid bool `json:"isValid"`
	}](t, rec).IsValid)
}

func TestValidateCandidateBadInput(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown kind", map[string]any{"persons": []map[string]string{{"id": "1"}}, "kind": "party", "from": "2024-07-01"}},
		{"bad date", map[string]any{"persons": []map[string]string{{"id": "1"}}, "kind": "vacation", "from": "01.07.2024"}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/candidates/validate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDisabledDates(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/candidates/disabled-dates", map[string]any{
		"persons": []map[string]string{{"id": "1"}},
		"kind":    "business_trip",
		"from":    "2024-06-14",
		"to":      "2024-06-17",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[struct {
		ConflictDates []string `json:"conflictDates"`
		Summary       struct {
			TotalConflicts int `json:"totalConflicts"`
			NonWorkingDays int `json:"nonWorkingDays"`
		} `json:"summary"`
	}](t, rec)
	assert.Equal(t, []string{"2024-06-15", "2024-06-16"}, report.ConflictDates)
	assert.Equal(t, 2, report.Summary.TotalConflicts)
	assert.Equal(t, 2, report.Summary.NonWorkingDays)
}

func TestDisabledDatesErrors(t *testing.T) {
	fake, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/candidates/disabled-dates", map[string]any{
		"persons": []map[string]string{{"id": "1"}},
		"kind":    "vacation",
		"from":    "2024-06-20",
		"to":      "2024-06-14",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/candidates/disabled-dates", map[string]any{
		"persons": []map[string]string{},
		"kind":    "vacation",
		"from":    "2024-06-14",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	fake.Errors["holidays"] = errors.New("connection refused")
	rec = do(t, h, http.MethodPost, "/api/candidates/disabled-dates", map[string]any{
		"persons": []map[string]string{{"id": "1"}},
		"kind":    "vacation",
		"from":    "2024-06-14",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "could not validate conflicts", resp.Error)
	assert.Empty(t, resp.Details)
}

func TestCheckBalance(t *testing.T) {
	fake, h := newTestServer(t)
	fake.SetBalance("1", 2024, domain.LeaveBalance{
		VacationDaysTotal: decimal.NewFromInt(20),
		VacationDaysUsed:  decimal.NewFromInt(18),
	})

	rec := do(t, h, http.MethodGet, "/api/balance/1?kind=vacation&amount=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		Exceeds    bool   `json:"exceeds"`
		Configured bool   `json:"configured"`
		Message    string `json:"message"`
	}](t, rec)
	assert.True(t, res.Exceeds)
	assert.True(t, res.Configured)
	assert.Equal(t, "Requested 3 days vacation but only 2 remaining", res.Message)

	rec = do(t, h, http.MethodGet, "/api/balance/1?kind=vacation&amount=3&year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[struct {
		Exceeds    bool   `json:"exceeds"`
		Configured bool   `json:"configured"`
		Message    string `json:"message"`
	}](t, rec)
	assert.False(t, res.Exceeds)
	assert.False(t, res.Configured)

	for _, path := range []string{
		"/api/balance/1?kind=sick_leave&amount=1",
		"/api/balance/1?kind=vacation&amount=lots",
		"/api/balance/1?kind=vacation&amount=-1",
		"/api/balance/1?kind=vacation&amount=1&year=next",
	} {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, path, nil).Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/candidates/validate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
