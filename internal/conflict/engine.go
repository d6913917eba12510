// Package conflict decides whether a proposed time-bound event may be committed
// next to everything already recorded for the same people.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"attendance-bot/internal/calendar"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/permission"
)

// MsgCouldNotValidate is the only message returned when a read fails.
const MsgCouldNotValidate = "could not validate conflicts"

var ErrNoPersons = errors.New("at least one person is required")

// Report is the advisory output used to disable calendar dates.
type Report struct {
	// ConflictDates holds every date with at least one critical conflict, ascending.
	ConflictDates []domain.Date            `json:"conflictDates"`
	Details       []domain.ConflictDetail `json:"details"`
	Summary       domain.ConflictSummary  `json:"summary"`
}

// Verdict is the authoritative commit gate result.
type Verdict struct {
	IsValid   bool     `json:"isValid"`
	Conflicts []string `json:"conflicts"`
	Warnings  []string `json:"warnings,omitempty"`
}

type mode int

const (
	// modeScan pre-disables calendar dates and includes non-working days.
	modeScan mode = iota
	// modeCommit gates a write and uses the live clock for hourly permissions.
	modeCommit
)

type Engine struct {
	access    domain.ReadAccess
	loc       *time.Location
	now       func() time.Time
	evaluator *permission.Evaluator
	logger    logrus.FieldLogger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(access domain.ReadAccess, loc *time.Location, opts ...Option) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{
		access:    access,
		loc:       loc,
		now:       time.Now,
		evaluator: permission.NewEvaluator(loc),
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckRange scans every date of the candidate range for each person.
// Any read failure aborts the whole evaluation.
func (e *Engine) CheckRange(ctx context.Context, persons []domain.Person, c domain.Candidate) (Report, error) {
	details, err := e.run(ctx, persons, c, modeScan)
	if err != nil {
		return Report{}, err
	}
	return newReport(details), nil
}

// ValidateForCommit re-runs the rules for the exact candidate and fails closed.
func (e *Engine) ValidateForCommit(ctx context.Context, persons []domain.Person, c domain.Candidate) Verdict {
	details, err := e.run(ctx, persons, c, modeCommit)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRange) || errors.Is(err, ErrNoPersons) {
			return Verdict{IsValid: false, Conflicts: []string{err.Error()}}
		}
		return Verdict{IsValid: false, Conflicts: []string{MsgCouldNotValidate}}
	}

	var critical, warnings []domain.ConflictDetail
	for _, d := range details {
		if d.Critical() {
			critical = append(critical, d)
		} else {
			warnings = append(warnings, d)
		}
	}
	tag := len(persons) > 1
	v := Verdict{
		IsValid:   len(critical) == 0,
		Conflicts: messages(critical, tag),
		Warnings:  messages(warnings, tag),
	}
	if v.Conflicts == nil {
		v.Conflicts = []string{}
	}
	return v
}

func (e *Engine) run(ctx context.Context, persons []domain.Person, c domain.Candidate, m mode) ([]domain.ConflictDetail, error) {
	if len(persons) == 0 {
		return nil, ErrNoPersons
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	log := e.logger.WithFields(logrus.Fields{
		"kind":    c.Kind,
		"range":   c.Range.String(),
		"persons": len(persons),
	})

	holidays, err := e.access.GetHolidays(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch holidays")
		return nil, &domain.DataFetchError{Source: "holidays", Err: err}
	}

	// Each branch owns its slot; results are merged only after Wait.
	results := make([][]domain.ConflictDetail, len(persons))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range persons {
		g.Go(func() error {
			snap, err := e.fetch(gctx, p.ID, c, m)
			if err != nil {
				return err
			}
			results[i] = e.detect(p, c, holidays, snap, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Failed to fetch events for conflict check")
		return nil, err
	}

	var details []domain.ConflictDetail
	for _, r := range results {
		details = append(details, r...)
	}
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Date.Before(details[j].Date)
	})
	log.WithField("conflicts", len(details)).Debug("Conflict check finished")
	return details, nil
}

type snapshot struct {
	trips      []domain.BusinessTrip
	leaves     []domain.LeaveRequest
	sick       []domain.SickLeave
	attendance []domain.AttendanceRecord
	schedule   *calendar.EffectiveSchedule
}

func (e *Engine) fetch(ctx context.Context, personID domain.PersonID, c domain.Candidate, m mode) (snapshot, error) {
	var (
		s   snapshot
		err error
	)
	if s.trips, err = e.access.ListApprovedBusinessTrips(ctx, personID); err != nil {
		return s, &domain.DataFetchError{Source: "business_trips", PersonID: personID, Err: err}
	}
	if s.leaves, err = e.access.ListApprovedLeaveRequests(ctx, personID); err != nil {
		return s, &domain.DataFetchError{Source: "leave_requests", PersonID: personID, Err: err}
	}
	if s.sick, err = e.access.ListSickLeaves(ctx, personID); err != nil {
		return s, &domain.DataFetchError{Source: "sick_leaves", PersonID: personID, Err: err}
	}
	if s.attendance, err = e.access.ListAttendance(ctx, personID); err != nil {
		return s, &domain.DataFetchError{Source: "attendance", PersonID: personID, Err: err}
	}
	if checksNonWorkingDays(c.Kind, m) {
		eff, err := calendar.ResolveFor(ctx, e.access, personID)
		if err != nil {
			return s, err
		}
		if gap := eff.Gap(personID); gap != nil {
			e.logger.WithError(gap).WithField("person_id", personID).Warn("No work schedule configured, treating every day as working")
		}
		s.schedule = &eff
	}
	return s, nil
}

// checksNonWorkingDays limits weekday checks to calendar scans for trips and presence.
// Leave kinds define the day off themselves, and overtime is allowed on days off.
func checksNonWorkingDays(k domain.Kind, m mode) bool {
	if m != modeScan {
		return false
	}
	return k == domain.KindBusinessTrip || k == domain.KindAttendance || k == domain.KindManualAttendance
}

func newReport(details []domain.ConflictDetail) Report {
	seen := make(map[domain.Date]bool)
	dates := []domain.Date{}
	for _, d := range details {
		if d.Critical() && !seen[d.Date] {
			seen[d.Date] = true
			dates = append(dates, d.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	if details == nil {
		details = []domain.ConflictDetail{}
	}
	return Report{ConflictDates: dates, Details: details, Summary: domain.Summarize(details)}
}

func labelOf(p domain.Person) string {
	if p.Label != "" {
		return p.Label
	}
	return string(p.ID)
}

// messages groups details of the same person and reason into one line each.
func messages(details []domain.ConflictDetail, tagPerson bool) []string {
	type key struct {
		person domain.PersonID
		kind   domain.ConflictKind
		desc   string
	}
	var order []key
	groups := make(map[key][]domain.Date)
	labels := make(map[key]string)
	for _, d := range details {
		k := key{person: d.PersonID, kind: d.Kind, desc: d.Description}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
			labels[k] = d.PersonLabel
		}
		groups[k] = append(groups[k], d.Date)
	}

	var out []string
	for _, k := range order {
		msg := fmt.Sprintf("%s: %s", formatDates(groups[k]), k.desc)
		if tagPerson {
			msg = fmt.Sprintf("[%s] %s", labels[k], msg)
		}
		out = append(out, msg)
	}
	return out
}

// formatDates renders a contiguous run as a range and anything else as a list.
func formatDates(dates []domain.Date) string {
	if len(dates) == 1 {
		return dates[0].String()
	}
	contiguous := true
	for i := 1; i < len(dates); i++ {
		if dates[i-1].AddDays(1) != dates[i] {
			contiguous = false
			break
		}
	}
	if contiguous {
		return domain.DateRange{From: dates[0], To: dates[len(dates)-1]}.String()
	}
	s := dates[0].String()
	for _, d := range dates[1:] {
		s += ", " + d.String()
	}
	return s
}
