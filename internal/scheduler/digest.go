// Package scheduler runs the periodic jobs of the bot.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"
)

type Notifier interface {
	Send(chatID int64, text string) error
}

// LateReport lists and renders the late arrivals of a day.
type LateReport interface {
	LateArrivals(ctx context.Context, date domain.Date) ([]models.Attendance, error)
	FormatLateDigest(date domain.Date, rows []models.Attendance) string
}

// Digest posts the previous day's late arrivals to a chat.
type Digest struct {
	report   LateReport
	notifier Notifier
	chatID   int64
	loc      *time.Location
	now      func() time.Time
	logger   *logrus.Logger
}

func NewDigest(report LateReport, notifier Notifier, chatID int64, loc *time.Location, now func() time.Time, logger *logrus.Logger) *Digest {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Digest{
		report:   report,
		notifier: notifier,
		chatID:   chatID,
		loc:      loc,
		now:      now,
		logger:   logging.OrNew(logger),
	}
}

// Run sends the digest for the day before now.
func (d *Digest) Run(ctx context.Context) error {
	day := domain.DateOf(d.now(), d.loc).AddDays(-1)
	rows, err := d.report.LateArrivals(ctx, day)
	if err != nil {
		return fmt.Errorf("list late arrivals for %s: %w", day, err)
	}
	if err := d.notifier.Send(d.chatID, d.report.FormatLateDigest(day, rows)); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"date":    day.String(),
		"late":    len(rows),
		"chat_id": d.chatID,
	}).Info("Lateness digest sent")
	return nil
}

// Scheduler wraps a cron runner whose jobs share one context.
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

func New(loc *time.Location, logger *logrus.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logging.OrNew(logger),
	}
}

// AddDigest schedules d on a standard five-field cron spec.
func (s *Scheduler) AddDigest(ctx context.Context, spec string, d *Digest) error {
	id, err := s.cron.AddFunc(spec, func() {
		if err := d.Run(ctx); err != nil {
			s.logger.WithError(err).Error("Lateness digest failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	s.logger.WithFields(logrus.Fields{
		"spec":     spec,
		"entry_id": id,
	}).Info("Lateness digest scheduled")
	return nil
}

// Run starts the jobs and blocks until ctx is done, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
	return nil
}
