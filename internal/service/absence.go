package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/balance"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

// Submission is a stored request plus the non-blocking findings made while filing it.
type Submission struct {
	ID       uint
	Warnings []string
}

// Absences is everything filed by one user.
type Absences struct {
	Leaves     []models.LeaveRequest
	Trips      []models.BusinessTrip
	SickLeaves []models.SickLeave
}

type AbsenceService struct {
	repos  *repository.Repositories
	guard  *GuardService
	loc    *time.Location
	clock  Clock
	logger *logrus.Logger
}

func NewAbsenceService(repos *repository.Repositories, guard *GuardService, loc *time.Location, clock Clock, logger *logrus.Logger) *AbsenceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AbsenceService{
		repos:  repos,
		guard:  guard,
		loc:    loc,
		clock:  orNow(clock),
		logger: logging.OrNew(logger),
	}
}

func (s *AbsenceService) today() domain.Date {
	return domain.DateOf(s.clock(), s.loc)
}

func (s *AbsenceService) gate(ctx context.Context, persons []domain.Person, c domain.Candidate) ([]string, error) {
	v := s.guard.ValidateCandidate(ctx, persons, c)
	if !v.IsValid {
		return nil, &ConflictError{Conflicts: v.Conflicts}
	}
	return v.Warnings, nil
}

// checkBalance fails with a BalanceError when amount exceeds what is left.
// A missing balance only adds a warning.
func (s *AbsenceService) checkBalance(ctx context.Context, user *models.User, kind domain.Kind, amount decimal.Decimal, year int) ([]string, error) {
	res, err := s.guard.CheckBalance(ctx, user.PersonID(), kind, amount, year)
	if err != nil {
		return nil, err
	}
	if res.Exceeds {
		return nil, &BalanceError{Message: res.Message}
	}
	if !res.Configured && res.Message != "" {
		return []string{res.Message}, nil
	}
	return nil, nil
}

func (s *AbsenceService) fileLeave(ctx context.Context, user *models.User, kind domain.Kind, r domain.DateRange, window *domain.TimeRange, reason string) (*Submission, error) {
	if r.From.Before(s.today()) {
		return nil, ErrPastDate
	}
	warnings, err := s.gate(ctx, []domain.Person{user.Person()}, domain.Candidate{Kind: kind, Range: r, Window: window})
	if err != nil {
		return nil, err
	}

	amount := balance.RequestedAmount(kind, r, window)
	balanceWarnings, err := s.checkBalance(ctx, user, kind, amount, r.From.Year)
	if err != nil {
		return nil, err
	}

	req := models.NewLeaveRequest(user.ID, kind, r, window, amount, reason)
	if err := s.repos.Leaves.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"id":      req.ID,
		"user_id": user.ID,
		"kind":    kind,
		"range":   r.String(),
		"amount":  amount.String(),
	}).Info("Leave request filed")
	return &Submission{ID: req.ID, Warnings: append(warnings, balanceWarnings...)}, nil
}

func (s *AbsenceService) RequestVacation(ctx context.Context, user *models.User, r domain.DateRange, reason string) (*Submission, error) {
	return s.fileLeave(ctx, user, domain.KindVacation, r, nil, reason)
}

// RequestPermission files a permission for day; a nil window means the whole day.
func (s *AbsenceService) RequestPermission(ctx context.Context, user *models.User, day domain.Date, window *domain.TimeRange, reason string) (*Submission, error) {
	return s.fileLeave(ctx, user, domain.KindPermission, domain.SingleDay(day), window, reason)
}

// AddSickLeave records sick leave directly; there is no approval step.
func (s *AbsenceService) AddSickLeave(ctx context.Context, user *models.User, r domain.DateRange, note string) (*Submission, error) {
	warnings, err := s.gate(ctx, []domain.Person{user.Person()}, domain.Candidate{Kind: domain.KindSickLeave, Range: r})
	if err != nil {
		return nil, err
	}
	sick := &models.SickLeave{
		UserID:    user.ID,
		StartDate: models.DateColumn(r.From),
		EndDate:   models.DateColumn(r.To),
		Note:      note,
	}
	if err := s.repos.SickLeaves.Create(ctx, sick); err != nil {
		return nil, err
	}
	return &Submission{ID: sick.ID, Warnings: warnings}, nil
}

func (s *AbsenceService) RequestBusinessTrip(ctx context.Context, user *models.User, r domain.DateRange, destination string) (*Submission, error) {
	warnings, err := s.gate(ctx, []domain.Person{user.Person()}, domain.Candidate{Kind: domain.KindBusinessTrip, Range: r})
	if err != nil {
		return nil, err
	}
	trip := &models.BusinessTrip{
		UserID:      user.ID,
		StartDate:   models.DateColumn(r.From),
		EndDate:     models.DateColumn(r.To),
		Destination: destination,
		Status:      domain.StatusPending,
	}
	if err := s.repos.Trips.Create(ctx, trip); err != nil {
		return nil, err
	}
	return &Submission{ID: trip.ID, Warnings: warnings}, nil
}

// ApproveLeave re-validates the request against what was approved since it was filed.
func (s *AbsenceService) ApproveLeave(ctx context.Context, id uint, reviewer *models.User) (*models.LeaveRequest, error) {
	if !reviewer.IsAdmin() {
		return nil, ErrForbidden
	}
	req, err := s.repos.Leaves.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != domain.StatusPending {
		return nil, repository.ErrNotPending
	}

	c, err := req.Candidate()
	if err != nil {
		return nil, err
	}
	if _, err := s.gate(ctx, []domain.Person{req.User.Person()}, c); err != nil {
		return nil, err
	}
	year := c.Range.From.Year
	if _, err := s.checkBalance(ctx, &req.User, c.Kind, req.Amount, year); err != nil {
		return nil, err
	}

	if err := s.repos.Leaves.Approve(ctx, id, reviewer.ID, year); err != nil {
		return nil, err
	}
	req.Status = domain.StatusApproved
	req.ReviewedBy = &reviewer.ID
	return req, nil
}

func (s *AbsenceService) RejectLeave(ctx context.Context, id uint, reviewer *models.User) (*models.LeaveRequest, error) {
	if !reviewer.IsAdmin() {
		return nil, ErrForbidden
	}
	req, err := s.repos.Leaves.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if err := s.repos.Leaves.Reject(ctx, id, reviewer.ID); err != nil {
		return nil, err
	}
	req.Status = domain.StatusRejected
	return req, nil
}

func (s *AbsenceService) ApproveTrip(ctx context.Context, id uint, reviewer *models.User) (*models.BusinessTrip, error) {
	if !reviewer.IsAdmin() {
		return nil, ErrForbidden
	}
	trip, err := s.repos.Trips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrRequestNotFound
	}
	if trip.Status != domain.StatusPending {
		return nil, repository.ErrNotPending
	}
	if _, err := s.gate(ctx, []domain.Person{trip.User.Person()}, trip.Candidate()); err != nil {
		return nil, err
	}
	if err := s.repos.Trips.Approve(ctx, id, reviewer.ID); err != nil {
		return nil, err
	}
	trip.Status = domain.StatusApproved
	trip.ReviewedBy = &reviewer.ID
	return trip, nil
}

func (s *AbsenceService) RejectTrip(ctx context.Context, id uint, reviewer *models.User) (*models.BusinessTrip, error) {
	if !reviewer.IsAdmin() {
		return nil, ErrForbidden
	}
	trip, err := s.repos.Trips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrRequestNotFound
	}
	if err := s.repos.Trips.Reject(ctx, id, reviewer.ID); err != nil {
		return nil, err
	}
	trip.Status = domain.StatusRejected
	return trip, nil
}

func (s *AbsenceService) Pending(ctx context.Context) ([]models.LeaveRequest, []models.BusinessTrip, error) {
	leaves, err := s.repos.Leaves.GetPending(ctx)
	if err != nil {
		return nil, nil, err
	}
	trips, err := s.repos.Trips.GetPending(ctx)
	if err != nil {
		return nil, nil, err
	}
	return leaves, trips, nil
}

func (s *AbsenceService) ListAbsences(ctx context.Context, user *models.User) (*Absences, error) {
	var (
		out Absences
		err error
	)
	if out.Leaves, err = s.repos.Leaves.GetByUserID(ctx, user.ID); err != nil {
		return nil, err
	}
	if out.Trips, err = s.repos.Trips.GetByUserID(ctx, user.ID); err != nil {
		return nil, err
	}
	if out.SickLeaves, err = s.repos.SickLeaves.GetByUserID(ctx, user.ID); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetBalance sets the yearly totals and keeps what was already used.
func (s *AbsenceService) SetBalance(ctx context.Context, userID uint, year int, vacationDays, permissionHours decimal.Decimal) (*models.LeaveBalance, error) {
	if vacationDays.IsNegative() || permissionHours.IsNegative() {
		return nil, errors.New("allowance must not be negative")
	}
	b, err := s.repos.Balances.Get(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = &models.LeaveBalance{UserID: userID, Year: year}
	}
	b.VacationDaysTotal = vacationDays
	b.PermissionHoursTotal = permissionHours
	if err := s.repos.Balances.Upsert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *AbsenceService) Balance(ctx context.Context, user *models.User, year int) (*balance.Remaining, error) {
	return s.guard.Remaining(ctx, user.PersonID(), year)
}

func (s *AbsenceService) FormatAbsences(a *Absences) string {
	if len(a.Leaves) == 0 && len(a.Trips) == 0 && len(a.SickLeaves) == 0 {
		return "📭 No absences filed."
	}
	var lines []string
	for i := range a.Leaves {
		lines = append(lines, FormatLeave(&a.Leaves[i]))
	}
	for i := range a.Trips {
		lines = append(lines, FormatTrip(&a.Trips[i]))
	}
	for i := range a.SickLeaves {
		sl := a.SickLeaves[i].ToDomain()
		lines = append(lines, fmt.Sprintf("🤒 Sick leave %s", sl.Range()))
	}
	return strings.Join(lines, "\n")
}

func FormatLeave(l *models.LeaveRequest) string {
	line := fmt.Sprintf("%s #%d %s %s", statusEmoji(l.Status), l.ID, l.Kind(), l.Range())
	if l.TimeFrom != nil && l.TimeTo != nil {
		line += fmt.Sprintf(" %s-%s", *l.TimeFrom, *l.TimeTo)
	}
	if l.Reason != "" {
		line += fmt.Sprintf(" (%s)", l.Reason)
	}
	return line
}

func FormatTrip(t *models.BusinessTrip) string {
	line := fmt.Sprintf("%s #%d business trip %s", statusEmoji(t.Status), t.ID, t.Range())
	if t.Destination != "" {
		line += " to " + t.Destination
	}
	return line
}

func statusEmoji(st domain.Status) string {
	switch st {
	case domain.StatusApproved:
		return "✅"
	case domain.StatusRejected:
		return "❌"
	default:
		return "⏳"
	}
}
