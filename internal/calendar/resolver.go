package calendar

import (
	"context"
	"fmt"

	"attendance-bot/internal/domain"
)

// EffectiveSchedule is the schedule actually applied to a person.
type EffectiveSchedule struct {
	domain.WorkSchedule
	// Personal is true when the person's own override was used.
	Personal bool
	// Missing is true when neither schedule exists and the permissive default applies.
	Missing bool
}

// PermissiveDefault treats every day as working with zero tolerance.
var PermissiveDefault = domain.WorkSchedule{
	Start:            0,
	End:              domain.NewTimeOfDay(23, 59, 59),
	ToleranceMinutes: 0,
	Days:             domain.AllDays,
}

// Resolve prefers the personal schedule wholesale; there is no field-level merge.
func Resolve(personal, company *domain.WorkSchedule) EffectiveSchedule {
	switch {
	case personal != nil:
		return EffectiveSchedule{WorkSchedule: *personal, Personal: true}
	case company != nil:
		return EffectiveSchedule{WorkSchedule: *company}
	default:
		return EffectiveSchedule{WorkSchedule: PermissiveDefault, Missing: true}
	}
}

// ResolveFor fetches both schedules for personID and resolves them.
func ResolveFor(ctx context.Context, access domain.ReadAccess, personID domain.PersonID) (EffectiveSchedule, error) {
	personal, err := access.GetWorkSchedule(ctx, personID)
	if err != nil {
		return EffectiveSchedule{}, &domain.DataFetchError{Source: "work_schedule", PersonID: personID, Err: err}
	}
	if personal != nil {
		return Resolve(personal, nil), nil
	}
	company, err := access.GetWorkSchedule(ctx, "")
	if err != nil {
		return EffectiveSchedule{}, &domain.DataFetchError{Source: "work_schedule", Err: err}
	}
	return Resolve(nil, company), nil
}

// Gap returns an ErrConfigurationMissing error when the permissive default applies.
func (e EffectiveSchedule) Gap(personID domain.PersonID) error {
	if !e.Missing {
		return nil
	}
	return fmt.Errorf("%w: no work schedule for person %s", domain.ErrConfigurationMissing, personID)
}

// Schedule returns nil for the permissive default so IsWorkingDay stays permissive.
func (e EffectiveSchedule) Schedule() *domain.WorkSchedule {
	if e.Missing {
		return nil
	}
	s := e.WorkSchedule
	return &s
}
