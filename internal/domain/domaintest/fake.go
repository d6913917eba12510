// Package domaintest provides an in-memory domain.ReadAccess for tests.
package domaintest

import (
	"context"
	"sync"

	"attendance-bot/internal/domain"
)

// Fake serves fixed records. Setting an entry of Errors makes that source fail.
type Fake struct {
	mu sync.Mutex

	Trips      map[domain.PersonID][]domain.BusinessTrip
	Leaves     map[domain.PersonID][]domain.LeaveRequest
	Sick       map[domain.PersonID][]domain.SickLeave
	Attendance map[domain.PersonID][]domain.AttendanceRecord
	Holidays   []domain.Holiday
	Company    *domain.WorkSchedule
	Personal   map[domain.PersonID]*domain.WorkSchedule
	Balances   map[domain.PersonID]map[int]*domain.LeaveBalance

	// Errors keyed by source: trips, leaves, sick, attendance, holidays, schedule, balance.
	Errors map[string]error

	Calls map[string]int
}

func New() *Fake {
	return &Fake{
		Trips:      make(map[domain.PersonID][]domain.BusinessTrip),
		Leaves:     make(map[domain.PersonID][]domain.LeaveRequest),
		Sick:       make(map[domain.PersonID][]domain.SickLeave),
		Attendance: make(map[domain.PersonID][]domain.AttendanceRecord),
		Personal:   make(map[domain.PersonID]*domain.WorkSchedule),
		Balances:   make(map[domain.PersonID]map[int]*domain.LeaveBalance),
		Errors:     make(map[string]error),
		Calls:      make(map[string]int),
	}
}

func (f *Fake) hit(source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[source]++
	return f.Errors[source]
}

func (f *Fake) SetBalance(personID domain.PersonID, year int, b domain.LeaveBalance) {
	if f.Balances[personID] == nil {
		f.Balances[personID] = make(map[int]*domain.LeaveBalance)
	}
	f.Balances[personID][year] = &b
}

func (f *Fake) ListApprovedBusinessTrips(ctx context.Context, personID domain.PersonID) ([]domain.BusinessTrip, error) {
	if err := f.hit("trips"); err != nil {
		return nil, err
	}
	var out []domain.BusinessTrip
	for _, t := range f.Trips[personID] {
		if t.Status == domain.StatusApproved {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *Fake) ListApprovedLeaveRequests(ctx context.Context, personID domain.PersonID) ([]domain.LeaveRequest, error) {
	if err := f.hit("leaves"); err != nil {
		return nil, err
	}
	var out []domain.LeaveRequest
	for _, l := range f.Leaves[personID] {
		if l.RequestStatus() == domain.StatusApproved {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *Fake) ListSickLeaves(ctx context.Context, personID domain.PersonID) ([]domain.SickLeave, error) {
	if err := f.hit("sick"); err != nil {
		return nil, err
	}
	return f.Sick[personID], nil
}

func (f *Fake) ListAttendance(ctx context.Context, personID domain.PersonID) ([]domain.AttendanceRecord, error) {
	if err := f.hit("attendance"); err != nil {
		return nil, err
	}
	return f.Attendance[personID], nil
}

func (f *Fake) GetHolidays(ctx context.Context) ([]domain.Holiday, error) {
	if err := f.hit("holidays"); err != nil {
		return nil, err
	}
	return f.Holidays, nil
}

func (f *Fake) GetWorkSchedule(ctx context.Context, personID domain.PersonID) (*domain.WorkSchedule, error) {
	if err := f.hit("schedule"); err != nil {
		return nil, err
	}
	if personID == "" {
		return f.Company, nil
	}
	return f.Personal[personID], nil
}

func (f *Fake) GetLeaveBalance(ctx context.Context, personID domain.PersonID, year int) (*domain.LeaveBalance, error) {
	if err := f.hit("balance"); err != nil {
		return nil, err
	}
	return f.Balances[personID][year], nil
}
