package repository

import (
	"context"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/models"
)

// Store serves domain.ReadAccess from the gorm repositories.
type Store struct {
	repos *Repositories
}

var _ domain.ReadAccess = (*Store)(nil)

func NewStore(repos *Repositories) *Store {
	return &Store{repos: repos}
}

func (s *Store) ListApprovedBusinessTrips(ctx context.Context, personID domain.PersonID) ([]domain.BusinessTrip, error) {
	userID, err := models.UserIDOf(personID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Trips.GetApprovedByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BusinessTrip, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (s *Store) ListApprovedLeaveRequests(ctx context.Context, personID domain.PersonID) ([]domain.LeaveRequest, error) {
	userID, err := models.UserIDOf(personID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Leaves.GetApprovedByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LeaveRequest, 0, len(rows))
	for i := range rows {
		l, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Store) ListSickLeaves(ctx context.Context, personID domain.PersonID) ([]domain.SickLeave, error) {
	userID, err := models.UserIDOf(personID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.SickLeaves.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SickLeave, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (s *Store) ListAttendance(ctx context.Context, personID domain.PersonID) ([]domain.AttendanceRecord, error) {
	userID, err := models.UserIDOf(personID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Attendance.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AttendanceRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (s *Store) GetHolidays(ctx context.Context) ([]domain.Holiday, error) {
	rows, err := s.repos.Holidays.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Holiday, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (s *Store) GetWorkSchedule(ctx context.Context, personID domain.PersonID) (*domain.WorkSchedule, error) {
	var (
		row *models.WorkSchedule
		err error
	)
	if personID == "" {
		row, err = s.repos.Schedules.GetCompany(ctx)
	} else {
		userID, perr := models.UserIDOf(personID)
		if perr != nil {
			return nil, perr
		}
		row, err = s.repos.Schedules.GetByUserID(ctx, userID)
	}
	if err != nil || row == nil {
		return nil, err
	}
	ws, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *Store) GetLeaveBalance(ctx context.Context, personID domain.PersonID, year int) (*domain.LeaveBalance, error) {
	userID, err := models.UserIDOf(personID)
	if err != nil {
		return nil, err
	}
	row, err := s.repos.Balances.Get(ctx, userID, year)
	if err != nil || row == nil {
		return nil, err
	}
	b := row.ToDomain()
	return &b, nil
}
