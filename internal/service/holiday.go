package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"attendance-bot/internal/calendar"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/weekends"
)

type HolidayService struct {
	repo   repository.HolidayRepository
	logger *logrus.Logger
}

func NewHolidayService(repo repository.HolidayRepository, logger *logrus.Logger) *HolidayService {
	return &HolidayService{repo: repo, logger: logging.OrNew(logger)}
}

// LoadFromJSON imports a holiday file and returns how many dates it held.
func (s *HolidayService) LoadFromJSON(ctx context.Context, path string) (int, error) {
	holidays, err := weekends.ParseFile(path)
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Error("Failed to parse holiday file")
		return 0, err
	}
	if err := s.Import(ctx, holidays); err != nil {
		return 0, err
	}
	s.logger.WithFields(logrus.Fields{
		"path":  path,
		"count": len(holidays),
	}).Info("Holidays loaded")
	return len(holidays), nil
}

// Import upserts parsed holidays; re-importing the same file is a no-op.
func (s *HolidayService) Import(ctx context.Context, holidays []domain.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}
	rows := make([]models.Holiday, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, models.HolidayFromDomain(h))
	}
	return s.repo.Upsert(ctx, rows)
}

func (s *HolidayService) AddHoliday(ctx context.Context, date domain.Date, name string, recurring bool) error {
	if date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return s.Import(ctx, []domain.Holiday{{Date: date, Name: name, Recurring: recurring}})
}

func (s *HolidayService) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Holiday, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// IsHoliday returns the holiday name when date matches a fixed or recurring entry.
func (s *HolidayService) IsHoliday(ctx context.Context, date domain.Date) (bool, string, error) {
	holidays, err := s.ListHolidays(ctx)
	if err != nil {
		return false, "", err
	}
	h, ok := calendar.Find(date, holidays)
	if !ok {
		return false, "", nil
	}
	return true, h.Name, nil
}

// FormatHolidays lists recurring holidays and the fixed ones of year.
func (s *HolidayService) FormatHolidays(holidays []domain.Holiday, year int) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("🎉 Holidays %d:", year))
	lines = append(lines, "")
	n := 0
	for _, h := range holidays {
		if !h.Recurring && h.Date.Year != year {
			continue
		}
		date := h.Date.String()
		if h.Recurring {
			date = fmt.Sprintf("%02d-%02d (every year)", int(h.Date.Month), h.Date.Day)
		}
		name := h.Name
		if name == "" {
			name = "Holiday"
		}
		lines = append(lines, fmt.Sprintf("• %s %s", date, name))
		n++
	}
	if n == 0 {
		return fmt.Sprintf("📭 No holidays configured for %d.", year)
	}
	return strings.Join(lines, "\n")
}
