package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/lateness"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

// ClockInResult is what a successful check-in reports back to the user.
type ClockInResult struct {
	Attendance *models.Attendance
	Lateness   lateness.Result
	Warnings   []string
}

type AttendanceService struct {
	repo   repository.AttendanceRepository
	guard  *GuardService
	loc    *time.Location
	clock  Clock
	logger *logrus.Logger
}

func NewAttendanceService(repo repository.AttendanceRepository, guard *GuardService, loc *time.Location, clock Clock, logger *logrus.Logger) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		repo:   repo,
		guard:  guard,
		loc:    loc,
		clock:  orNow(clock),
		logger: logging.OrNew(logger),
	}
}

func (s *AttendanceService) today() (time.Time, domain.Date) {
	now := s.clock()
	return now, domain.DateOf(now, s.loc)
}

// gate runs the commit check and turns a rejected verdict into a ConflictError.
func (s *AttendanceService) gate(ctx context.Context, user *models.User, c domain.Candidate) ([]string, error) {
	v := s.guard.ValidateCandidate(ctx, []domain.Person{user.Person()}, c)
	if !v.IsValid {
		return nil, &ConflictError{Conflicts: v.Conflicts}
	}
	return v.Warnings, nil
}

// ClockIn opens today's attendance entry at the current instant.
func (s *AttendanceService) ClockIn(ctx context.Context, user *models.User) (*ClockInResult, error) {
	now, today := s.today()
	log := s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"date":    today.String(),
	})

	active, err := s.repo.GetActiveByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAlreadyClockedIn
	}

	warnings, err := s.gate(ctx, user, domain.Candidate{Kind: domain.KindAttendance, Range: domain.SingleDay(today)})
	if err != nil {
		log.WithError(err).Info("Clock-in rejected")
		return nil, err
	}

	late, err := s.guard.EvaluateCheckIn(ctx, user.PersonID(), now)
	if err != nil {
		log.WithError(err).Error("Failed to evaluate lateness")
		return nil, err
	}

	a := &models.Attendance{
		UserID:      user.ID,
		Date:        models.DateColumn(today),
		Kind:        domain.KindAttendance,
		ClockInTime: &now,
		IsLate:      late.IsLate,
		LateMinutes: late.LateMinutes,
		Status:      models.StatusActive,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"is_late":      late.IsLate,
		"late_minutes": late.LateMinutes,
	}).Info("User clocked in")
	return &ClockInResult{Attendance: a, Lateness: late, Warnings: warnings}, nil
}

func (s *AttendanceService) ClockOut(ctx context.Context, user *models.User) (*models.Attendance, error) {
	now, _ := s.today()
	a, err := s.repo.CompleteSession(ctx, user.ID, now)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotClockedIn
	}
	return a, err
}

// AddManualAttendance records a past working day entered after the fact.
func (s *AttendanceService) AddManualAttendance(ctx context.Context, user *models.User, date domain.Date, window domain.TimeRange, notes string) (*models.Attendance, []string, error) {
	_, today := s.today()
	if date.After(today) {
		return nil, nil, ErrFutureDate
	}
	c := domain.Candidate{Kind: domain.KindManualAttendance, Range: domain.SingleDay(date), Window: &window}
	warnings, err := s.gate(ctx, user, c)
	if err != nil {
		return nil, nil, err
	}

	in, out := date.At(window.From, s.loc), date.At(window.To, s.loc)
	late, err := s.guard.EvaluateCheckIn(ctx, user.PersonID(), in)
	if err != nil {
		return nil, nil, err
	}
	a := &models.Attendance{
		UserID:       user.ID,
		Date:         models.DateColumn(date),
		Kind:         domain.KindManualAttendance,
		ClockInTime:  &in,
		ClockOutTime: &out,
		IsLate:       late.IsLate,
		LateMinutes:  late.LateMinutes,
		Status:       models.StatusCompleted,
		Notes:        notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, nil, err
	}
	return a, warnings, nil
}

// AddOvertime records extra hours. Overtime is its own slot, so it may share a day with attendance.
func (s *AttendanceService) AddOvertime(ctx context.Context, user *models.User, date domain.Date, window domain.TimeRange, notes string) (*models.Attendance, []string, error) {
	_, today := s.today()
	if date.After(today) {
		return nil, nil, ErrFutureDate
	}
	c := domain.Candidate{Kind: domain.KindOvertime, Range: domain.SingleDay(date), Window: &window}
	warnings, err := s.gate(ctx, user, c)
	if err != nil {
		return nil, nil, err
	}

	in, out := date.At(window.From, s.loc), date.At(window.To, s.loc)
	a := &models.Attendance{
		UserID:       user.ID,
		Date:         models.DateColumn(date),
		Kind:         domain.KindOvertime,
		ClockInTime:  &in,
		ClockOutTime: &out,
		Status:       models.StatusCompleted,
		Notes:        notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, nil, err
	}
	return a, warnings, nil
}

// Today returns today's attendance entry or nil.
func (s *AttendanceService) Today(ctx context.Context, user *models.User) (*models.Attendance, error) {
	_, today := s.today()
	a, err := s.repo.GetByUserAndDate(ctx, user.ID, today, domain.KindAttendance)
	if err != nil || a != nil {
		return a, err
	}
	return s.repo.GetByUserAndDate(ctx, user.ID, today, domain.KindManualAttendance)
}

// History returns the latest limit entries, newest first.
func (s *AttendanceService) History(ctx context.Context, user *models.User, limit int) ([]models.Attendance, error) {
	rows, err := s.repo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *AttendanceService) LateArrivals(ctx context.Context, date domain.Date) ([]models.Attendance, error) {
	return s.repo.GetLateByDate(ctx, date)
}

func (s *AttendanceService) FormatHistory(rows []models.Attendance) string {
	if len(rows) == 0 {
		return "📭 No attendance recorded yet."
	}
	var lines []string
	lines = append(lines, "📊 Recent attendance:")
	lines = append(lines, "")
	for i := range rows {
		a := &rows[i]
		line := fmt.Sprintf("📅 %s %s %s", a.Day(), kindLabel(a.Kind), a.FormatTime(s.loc))
		if a.ClockOutTime != nil {
			line += fmt.Sprintf(" (%s)", a.Duration())
		}
		if a.IsLate {
			line += fmt.Sprintf(" ⚠️ late %d min", a.LateMinutes)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatLateDigest renders the admin summary of late arrivals for date.
func (s *AttendanceService) FormatLateDigest(date domain.Date, rows []models.Attendance) string {
	if len(rows) == 0 {
		return fmt.Sprintf("✅ Nobody was late on %s.", date)
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("⏰ Late arrivals on %s:", date))
	lines = append(lines, "")
	for i := range rows {
		a := &rows[i]
		lines = append(lines, fmt.Sprintf("• %s: %d min (%s)", a.User.DisplayName(), a.LateMinutes, a.FormatTime(s.loc)))
	}
	return strings.Join(lines, "\n")
}

func kindLabel(k domain.Kind) string {
	switch k {
	case domain.KindManualAttendance:
		return "✍️"
	case domain.KindOvertime:
		return "🌙"
	default:
		return "🏢"
	}
}
