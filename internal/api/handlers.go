package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/balance"
	"attendance-bot/internal/conflict"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/lateness"
	"attendance-bot/internal/logging"
)

// Guard is the evaluation surface served by the API.
type Guard interface {
	EvaluateCheckIn(ctx context.Context, personID domain.PersonID, checkIn time.Time) (lateness.Result, error)
	ValidateCandidate(ctx context.Context, persons []domain.Person, c domain.Candidate) conflict.Verdict
	ComputeDisabledDates(ctx context.Context, persons []domain.Person, c domain.Candidate) (conflict.Report, error)
	CheckBalance(ctx context.Context, personID domain.PersonID, kind domain.Kind, amount decimal.Decimal, year int) (balance.Result, error)
}

type Handler struct {
	guard  Guard
	now    func() time.Time
	logger *logrus.Logger
}

// NewHandler builds the API handler. now supplies the default balance year and may be nil.
func NewHandler(guard Guard, now func() time.Time, logger *logrus.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{guard: guard, now: now, logger: logging.OrNew(logger)}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type CheckInRequest struct {
	PersonID domain.PersonID `json:"personId"`
	CheckIn  time.Time       `json:"checkIn"`
}

type CandidateRequest struct {
	Persons   []domain.Person   `json:"persons"`
	Kind      domain.Kind       `json:"kind"`
	From      domain.Date       `json:"from"`
	To        domain.Date       `json:"to"`
	Window    *domain.TimeRange `json:"window,omitempty"`
	ExcludeID string            `json:"excludeId,omitempty"`
}

func (req CandidateRequest) candidate() (domain.Candidate, error) {
	if _, ok := domain.ParseKind(string(req.Kind)); !ok {
		return domain.Candidate{}, errors.New("unknown kind " + strconv.Quote(string(req.Kind)))
	}
	to := req.To
	if to.IsZero() {
		to = req.From
	}
	return domain.Candidate{
		Kind:      req.Kind,
		Range:     domain.DateRange{From: req.From, To: to},
		Window:    req.Window,
		ExcludeID: req.ExcludeID,
	}, nil
}

// Health reports that the process is serving.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EvaluateCheckIn reports whether a check-in is late.
// POST /api/checkin/evaluate
func (h *Handler) EvaluateCheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PersonID == "" || req.CheckIn.IsZero() {
		writeError(w, http.StatusBadRequest, "personId and checkIn are required", nil)
		return
	}

	res, err := h.guard.EvaluateCheckIn(r.Context(), req.PersonID, req.CheckIn)
	if err != nil {
		h.writeEvalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ValidateCandidate runs the commit gate. Rejections are a normal 200 response.
// POST /api/candidates/validate
func (h *Handler) ValidateCandidate(w http.ResponseWriter, r *http.Request) {
	req, c, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.guard.ValidateCandidate(r.Context(), req.Persons, c))
}

// DisabledDates returns the advisory conflict report for a range.
// POST /api/candidates/disabled-dates
func (h *Handler) DisabledDates(w http.ResponseWriter, r *http.Request) {
	req, c, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}
	report, err := h.guard.ComputeDisabledDates(r.Context(), req.Persons, c)
	if err != nil {
		h.writeEvalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// CheckBalance compares an amount against the person's allowance.
// GET /api/balance/{personID}?kind=vacation&amount=3&year=2024
func (h *Handler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	personID := domain.PersonID(chi.URLParam(r, "personID"))
	q := r.URL.Query()

	kind, ok := domain.ParseKind(q.Get("kind"))
	if !ok || (kind != domain.KindVacation && kind != domain.KindPermission) {
		writeError(w, http.StatusBadRequest, "kind must be vacation or permission", nil)
		return
	}
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil || amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative number", err)
		return
	}
	year := h.now().Year()
	if s := q.Get("year"); s != "" {
		if year, err = strconv.Atoi(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}

	res, err := h.guard.CheckBalance(r.Context(), personID, kind, amount, year)
	if err != nil {
		h.writeEvalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) decodeCandidate(w http.ResponseWriter, r *http.Request) (CandidateRequest, domain.Candidate, bool) {
	var req CandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, domain.Candidate{}, false
	}
	c, err := req.candidate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid candidate", err)
		return req, domain.Candidate{}, false
	}
	return req, c, true
}

// writeEvalError maps evaluation failures: caller mistakes are 400, failed reads 503.
// Read failures never leak their cause to the client.
func (h *Handler) writeEvalError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsClientError(err), errors.Is(err, conflict.ErrNoPersons):
		writeError(w, http.StatusBadRequest, "Invalid candidate", err)
	case errors.Is(err, domain.ErrDataFetch), errors.Is(err, context.DeadlineExceeded):
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Evaluation failed")
		writeError(w, http.StatusServiceUnavailable, conflict.MsgCouldNotValidate, nil)
	default:
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Unexpected evaluation error")
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
