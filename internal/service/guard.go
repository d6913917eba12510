package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/balance"
	"attendance-bot/internal/conflict"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/lateness"
	"attendance-bot/internal/logging"
)

// GuardService is the entry point to conflict, lateness and balance evaluation.
// Every call runs under its own fetch deadline.
type GuardService struct {
	engine   *conflict.Engine
	lateness *lateness.Calculator
	balances *balance.Checker
	timeout  time.Duration
	logger   *logrus.Logger
}

func NewGuardService(access domain.ReadAccess, loc *time.Location, timeout time.Duration, clock Clock, logger *logrus.Logger) *GuardService {
	logger = logging.OrNew(logger)
	return &GuardService{
		engine:   conflict.NewEngine(access, loc, conflict.WithClock(orNow(clock)), conflict.WithLogger(logger)),
		lateness: lateness.NewCalculator(access, loc, logger),
		balances: balance.NewChecker(access, logger),
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *GuardService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GuardService) EvaluateCheckIn(ctx context.Context, personID domain.PersonID, checkIn time.Time) (lateness.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.lateness.Evaluate(ctx, personID, checkIn)
}

// ValidateCandidate is the commit gate. It never errors; failures come back as an invalid verdict.
func (s *GuardService) ValidateCandidate(ctx context.Context, persons []domain.Person, c domain.Candidate) conflict.Verdict {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	v := s.engine.ValidateForCommit(ctx, persons, c)
	if !v.IsValid {
		s.logger.WithFields(logrus.Fields{
			"kind":      c.Kind,
			"range":     c.Range.String(),
			"conflicts": len(v.Conflicts),
		}).Info("Candidate rejected")
	}
	return v
}

// ComputeDisabledDates returns the advisory report used to grey out calendar dates.
func (s *GuardService) ComputeDisabledDates(ctx context.Context, persons []domain.Person, c domain.Candidate) (conflict.Report, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.engine.CheckRange(ctx, persons, c)
}

func (s *GuardService) CheckBalance(ctx context.Context, personID domain.PersonID, kind domain.Kind, amount decimal.Decimal, year int) (balance.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.balances.Check(ctx, personID, kind, amount, year)
}

// Remaining returns nil when no balance is configured for year.
func (s *GuardService) Remaining(ctx context.Context, personID domain.PersonID, year int) (*balance.Remaining, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.balances.Remaining(ctx, personID, year)
}
