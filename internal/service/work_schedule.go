package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"attendance-bot/internal/calendar"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

type WorkScheduleService struct {
	repo   repository.WorkScheduleRepository
	access domain.ReadAccess
	logger *logrus.Logger
}

func NewWorkScheduleService(repo repository.WorkScheduleRepository, access domain.ReadAccess, logger *logrus.Logger) *WorkScheduleService {
	return &WorkScheduleService{repo: repo, access: access, logger: logging.OrNew(logger)}
}

func (s *WorkScheduleService) SetCompanySchedule(ctx context.Context, schedule domain.WorkSchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, models.WorkScheduleFromDomain(nil, schedule))
}

// SetUserSchedule replaces the company schedule for one user wholesale.
func (s *WorkScheduleService) SetUserSchedule(ctx context.Context, userID uint, schedule domain.WorkSchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, models.WorkScheduleFromDomain(&userID, schedule))
}

func (s *WorkScheduleService) ClearUserSchedule(ctx context.Context, userID uint) error {
	return s.repo.DeleteByUserID(ctx, userID)
}

func (s *WorkScheduleService) EffectiveSchedule(ctx context.Context, personID domain.PersonID) (calendar.EffectiveSchedule, error) {
	return calendar.ResolveFor(ctx, s.access, personID)
}

func (s *WorkScheduleService) FormatSchedule(eff calendar.EffectiveSchedule) string {
	if eff.Missing {
		return "📭 No work schedule configured. Every day counts as a working day."
	}

	var lines []string
	title := "🏢 Company schedule"
	if eff.Personal {
		title = "👤 Personal schedule"
	}
	lines = append(lines, title)
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("⏰ Hours: %s - %s", eff.Start, eff.End))
	lines = append(lines, fmt.Sprintf("⏳ Tolerance: %d min", eff.ToleranceMinutes))
	lines = append(lines, fmt.Sprintf("📅 Working days: %s", strings.Join(eff.Days.Names(), ", ")))
	return strings.Join(lines, "\n")
}

// ParseScheduleArgs reads "09:00 18:00 10 mon,tue,wed,thu,fri".
// Tolerance and days are optional and default to 0 and Monday to Friday.
func (s *WorkScheduleService) ParseScheduleArgs(input string) (domain.WorkSchedule, error) {
	parts := strings.Fields(input)
	if len(parts) < 2 || len(parts) > 4 {
		return domain.WorkSchedule{}, fmt.Errorf("expected: start end [tolerance] [days], e.g. 09:00 18:00 10 mon,tue,wed,thu,fri")
	}

	start, err := domain.ParseTimeOfDay(parts[0])
	if err != nil {
		return domain.WorkSchedule{}, err
	}
	end, err := domain.ParseTimeOfDay(parts[1])
	if err != nil {
		return domain.WorkSchedule{}, err
	}

	schedule := domain.WorkSchedule{Start: start, End: end, Days: domain.Weekdays}
	if len(parts) > 2 {
		tolerance, err := strconv.Atoi(parts[2])
		if err != nil {
			return domain.WorkSchedule{}, fmt.Errorf("invalid tolerance %q", parts[2])
		}
		schedule.ToleranceMinutes = tolerance
	}
	if len(parts) > 3 {
		days, err := domain.WeekdaysFromNames(strings.Split(parts[3], ","))
		if err != nil {
			return domain.WorkSchedule{}, err
		}
		schedule.Days = days
	}
	if err := schedule.Validate(); err != nil {
		return domain.WorkSchedule{}, err
	}
	return schedule, nil
}
