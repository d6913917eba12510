package domain

import "context"

// ReadAccess is the read-only query capability the core consumes.
// Implementations return plain values; a nil schedule or balance means "not configured".
type ReadAccess interface {
	ListApprovedBusinessTrips(ctx context.Context, personID PersonID) ([]BusinessTrip, error)
	ListApprovedLeaveRequests(ctx context.Context, personID PersonID) ([]LeaveRequest, error)
	ListSickLeaves(ctx context.Context, personID PersonID) ([]SickLeave, error)
	ListAttendance(ctx context.Context, personID PersonID) ([]AttendanceRecord, error)
	GetHolidays(ctx context.Context) ([]Holiday, error)
	// GetWorkSchedule returns the company-wide schedule when personID is empty.
	GetWorkSchedule(ctx context.Context, personID PersonID) (*WorkSchedule, error)
	GetLeaveBalance(ctx context.Context, personID PersonID, year int) (*LeaveBalance, error)
}
