package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"attendance-bot/internal/conflict"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/domain/domaintest"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

var dbSeq atomic.Int64

func day(s string) domain.Date { return domain.MustParseDate(s) }

func span(from, to string) domain.DateRange {
	return domain.DateRange{From: day(from), To: day(to)}
}

func window(from, to string) domain.TimeRange {
	return domain.TimeRange{From: domain.MustParseTimeOfDay(from), To: domain.MustParseTimeOfDay(to)}
}

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	repos *repository.Repositories

	users      *UserService
	schedules  *WorkScheduleService
	holidays   *HolidayService
	guard      *GuardService
	attendance *AttendanceService
	absences   *AbsenceService

	employee *models.User
	admin    *models.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	// Monday.
	s.now = at("2024-06-10 09:25")

	db, err := repository.Open(fmt.Sprintf("file:service%d?mode=memory&cache=shared", dbSeq.Add(1)))
	s.Require().NoError(err)
	logger, _ := test.NewNullLogger()
	s.repos, err = repository.NewRepositories(db, logger)
	s.Require().NoError(err)

	store := repository.NewStore(s.repos)
	clock := func() time.Time { return s.now }
	s.users = NewUserService(s.repos.Users, logger)
	s.schedules = NewWorkScheduleService(s.repos.Schedules, store, logger)
	s.holidays = NewHolidayService(s.repos.Holidays, logger)
	s.guard = NewGuardService(store, time.UTC, 5*time.Second, clock, logger)
	s.attendance = NewAttendanceService(s.repos.Attendance, s.guard, time.UTC, clock, logger)
	s.absences = NewAbsenceService(s.repos, s.guard, time.UTC, clock, logger)

	s.employee, err = s.users.Register(s.ctx, 100, "ada", "Ada", "Lovelace")
	s.Require().NoError(err)
	s.Require().NoError(s.users.InitializeAdmin(s.ctx, 200))
	s.admin, err = s.users.GetUser(s.ctx, 200)
	s.Require().NoError(err)

	s.Require().NoError(s.schedules.SetCompanySchedule(s.ctx, domain.WorkSchedule{
		Start:            domain.MustParseTimeOfDay("09:00"),
		End:              domain.MustParseTimeOfDay("18:00"),
		ToleranceMinutes: 10,
		Days:             domain.Weekdays,
	}))
}

func (s *ServiceSuite) conflicts(err error) []string {
	var ce *ConflictError
	s.Require().ErrorAs(err, &ce)
	return ce.Conflicts
}

func (s *ServiceSuite) TestClockInLateThenOut() {
	res, err := s.attendance.ClockIn(s.ctx, s.employee)
	s.Require().NoError(err)
	s.True(res.Lateness.IsLate)
	s.Equal(25, res.Lateness.LateMinutes)
	s.True(res.Attendance.IsLate)

	_, err = s.attendance.ClockIn(s.ctx, s.employee)
	s.ErrorIs(err, ErrAlreadyClockedIn)

	s.now = at("2024-06-10 18:10")
	a, err := s.attendance.ClockOut(s.ctx, s.employee)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, a.Status)
	s.Equal(8*60+45, a.WorkedMinutes)

	_, err = s.attendance.ClockOut(s.ctx, s.employee)
	s.ErrorIs(err, ErrNotClockedIn)

	// The day is already recorded.
	_, err = s.attendance.ClockIn(s.ctx, s.employee)
	s.Contains(s.conflicts(err)[0], "Attendance recorded (check-in 09:25)")

	late, err := s.attendance.LateArrivals(s.ctx, day("2024-06-10"))
	s.Require().NoError(err)
	s.Require().Len(late, 1)
	s.Contains(s.attendance.FormatLateDigest(day("2024-06-10"), late), "Ada Lovelace: 25 min")
}

func (s *ServiceSuite) TestClockInOnTime() {
	s.now = at("2024-06-10 09:08")
	res, err := s.attendance.ClockIn(s.ctx, s.employee)
	s.Require().NoError(err)
	s.False(res.Lateness.IsLate)
	s.Empty(res.Warnings)

	today, err := s.attendance.Today(s.ctx, s.employee)
	s.Require().NoError(err)
	s.Require().NotNil(today)
	s.True(today.IsActive())
}

func (s *ServiceSuite) TestClockInBlockedByApprovedVacation() {
	sub, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-06-10", "2024-06-12"), "trip")
	s.Require().NoError(err)
	_, err = s.absences.ApproveLeave(s.ctx, sub.ID, s.admin)
	s.Require().NoError(err)

	_, err = s.attendance.ClockIn(s.ctx, s.employee)
	s.Equal([]string{"2024-06-10: Vacation 2024-06-10 – 2024-06-12"}, s.conflicts(err))
}

func (s *ServiceSuite) TestPendingVacationDoesNotBlock() {
	_, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-06-10", "2024-06-12"), "")
	s.Require().NoError(err)
	_, err = s.attendance.ClockIn(s.ctx, s.employee)
	s.NoError(err)
}

func (s *ServiceSuite) TestClockInBlockedBySickLeaveAndHoliday() {
	_, err := s.absences.AddSickLeave(s.ctx, s.employee, span("2024-06-10", "2024-06-11"), "flu")
	s.Require().NoError(err)
	s.Require().NoError(s.holidays.AddHoliday(s.ctx, day("2024-06-10"), "Founders Day", false))

	_, err = s.attendance.ClockIn(s.ctx, s.employee)
	s.Equal([]string{
		"2024-06-10: Holiday: Founders Day",
		"2024-06-10: Sick leave 2024-06-10 – 2024-06-11",
	}, s.conflicts(err))
}

func (s *ServiceSuite) TestHourlyPermissionDuringAndAfterWindow() {
	_, err := s.absences.SetBalance(s.ctx, s.employee.ID, 2024, decimal.NewFromInt(20), decimal.NewFromInt(16))
	s.Require().NoError(err)
	w := window("14:00", "16:00")
	sub, err := s.absences.RequestPermission(s.ctx, s.employee, day("2024-06-10"), &w, "dentist")
	s.Require().NoError(err)
	s.Empty(sub.Warnings)
	_, err = s.absences.ApproveLeave(s.ctx, sub.ID, s.admin)
	s.Require().NoError(err)

	s.now = at("2024-06-10 15:00")
	_, err = s.attendance.ClockIn(s.ctx, s.employee)
	s.Equal([]string{"2024-06-10: Permission 14:00-16:00"}, s.conflicts(err))

	s.now = at("2024-06-10 16:30")
	res, err := s.attendance.ClockIn(s.ctx, s.employee)
	s.Require().NoError(err)
	s.Equal([]string{"2024-06-10: Permission 14:00-16:00"}, res.Warnings)
	s.True(res.Lateness.IsLate)
	s.Equal(30, res.Lateness.LateMinutes)
	s.Equal(fmt.Sprint(sub.ID), res.Lateness.ShiftedBy)

	rem, err := s.absences.Balance(s.ctx, s.employee, 2024)
	s.Require().NoError(err)
	s.True(rem.PermissionHours.Equal(decimal.NewFromInt(14)), rem.PermissionHours.String())
}

func (s *ServiceSuite) TestVacationBalance() {
	_, err := s.absences.SetBalance(s.ctx, s.employee.ID, 2024, decimal.NewFromInt(2), decimal.NewFromInt(16))
	s.Require().NoError(err)

	// Wednesday to Friday.
	_, err = s.absences.RequestVacation(s.ctx, s.employee, span("2024-06-12", "2024-06-14"), "")
	var be *BalanceError
	s.Require().ErrorAs(err, &be)
	s.Equal("Requested 3 days vacation but only 2 remaining", be.Message)

	sub, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-06-13", "2024-06-14"), "")
	s.Require().NoError(err)
	_, err = s.absences.ApproveLeave(s.ctx, sub.ID, s.admin)
	s.Require().NoError(err)

	rem, err := s.absences.Balance(s.ctx, s.employee, 2024)
	s.Require().NoError(err)
	s.True(rem.VacationDays.IsZero())
}

func (s *ServiceSuite) TestVacationAcrossNewYearUsesStartYear() {
	_, err := s.absences.SetBalance(s.ctx, s.employee.ID, 2024, decimal.NewFromInt(5), decimal.NewFromInt(16))
	s.Require().NoError(err)

	// Monday 2024-12-30 to Thursday 2025-01-02: four weekdays, all booked on 2024.
	sub, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-12-30", "2025-01-02"), "")
	s.Require().NoError(err)
	s.Empty(sub.Warnings)
	_, err = s.absences.ApproveLeave(s.ctx, sub.ID, s.admin)
	s.Require().NoError(err)

	rem, err := s.absences.Balance(s.ctx, s.employee, 2024)
	s.Require().NoError(err)
	s.Require().NotNil(rem)
	s.True(rem.VacationDays.Equal(decimal.NewFromInt(1)), rem.VacationDays.String())

	next, err := s.absences.Balance(s.ctx, s.employee, 2025)
	s.Require().NoError(err)
	s.Nil(next)
}

func (s *ServiceSuite) TestVacationWithoutBalanceWarns() {
	sub, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-07-01", "2024-07-05"), "")
	s.Require().NoError(err)
	s.Require().Len(sub.Warnings, 1)
	s.Contains(sub.Warnings[0], "No leave balance configured for 2024")
}

func (s *ServiceSuite) TestPastVacationRejected() {
	_, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-06-07", "2024-06-11"), "")
	s.ErrorIs(err, ErrPastDate)
}

func (s *ServiceSuite) TestApprovalRevalidates() {
	first, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-07-01", "2024-07-05"), "")
	s.Require().NoError(err)
	second, err := s.absences.RequestVacation(s.ctx, s.employee, span("2024-07-04", "2024-07-08"), "")
	s.Require().NoError(err)

	_, err = s.absences.ApproveLeave(s.ctx, first.ID, s.admin)
	s.Require().NoError(err)
	_, err = s.absences.ApproveLeave(s.ctx, second.ID, s.admin)
	s.Equal([]string{"2024-07-04 – 2024-07-05: Vacation 2024-07-01 – 2024-07-05"}, s.conflicts(err))

	_, err = s.absences.ApproveLeave(s.ctx, first.ID, s.admin)
	s.ErrorIs(err, repository.ErrNotPending)

	rejected, err := s.absences.RejectLeave(s.ctx, second.ID, s.admin)
	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, rejected.Status)
}

func (s *ServiceSuite) TestOnlyAdminsReview() {
	sub, err := s.absences.RequestBusinessTrip(s.ctx, s.employee, span("2024-06-17", "2024-06-19"), "Oslo")
	s.Require().NoError(err)
	_, err = s.absences.ApproveTrip(s.ctx, sub.ID, s.employee)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.absences.RejectLeave(s.ctx, 999, s.admin)
	s.ErrorIs(err, ErrRequestNotFound)
}

func (s *ServiceSuite) TestBusinessTrips() {
	first, err := s.absences.RequestBusinessTrip(s.ctx, s.employee, span("2024-06-17", "2024-06-19"), "Oslo")
	s.Require().NoError(err)
	second, err := s.absences.RequestBusinessTrip(s.ctx, s.employee, span("2024-06-19", "2024-06-20"), "Bergen")
	s.Require().NoError(err)

	leaves, trips, err := s.absences.Pending(s.ctx)
	s.Require().NoError(err)
	s.Empty(leaves)
	s.Len(trips, 2)

	trip, err := s.absences.ApproveTrip(s.ctx, first.ID, s.admin)
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, trip.Status)

	_, err = s.absences.ApproveTrip(s.ctx, second.ID, s.admin)
	s.Equal([]string{"2024-06-19: Business trip to Oslo 2024-06-17 – 2024-06-19"}, s.conflicts(err))

	all, err := s.absences.ListAbsences(s.ctx, s.employee)
	s.Require().NoError(err)
	s.Len(all.Trips, 2)
	s.Contains(s.absences.FormatAbsences(all), "✅ #1 business trip 2024-06-17 – 2024-06-19 to Oslo")
}

func (s *ServiceSuite) TestManualAttendanceAndOvertime() {
	a, warnings, err := s.attendance.AddManualAttendance(s.ctx, s.employee, day("2024-06-07"), window("09:00", "18:00"), "forgot")
	s.Require().NoError(err)
	s.Empty(warnings)
	s.False(a.IsLate)
	s.Equal(9*60, a.WorkedMinutes)

	_, warnings, err = s.attendance.AddOvertime(s.ctx, s.employee, day("2024-06-07"), window("19:00", "21:00"), "")
	s.Require().NoError(err)
	s.Equal([]string{"2024-06-07: Attendance recorded (check-in 09:00)"}, warnings)

	_, _, err = s.attendance.AddManualAttendance(s.ctx, s.employee, day("2024-06-07"), window("10:00", "12:00"), "")
	s.NotEmpty(s.conflicts(err))

	_, _, err = s.attendance.AddManualAttendance(s.ctx, s.employee, day("2024-06-11"), window("09:00", "18:00"), "")
	s.ErrorIs(err, ErrFutureDate)

	rows, err := s.attendance.History(s.ctx, s.employee, 10)
	s.Require().NoError(err)
	s.Len(rows, 2)
}

func (s *ServiceSuite) TestSickLeaveBlockedByAttendance() {
	_, err := s.attendance.ClockIn(s.ctx, s.employee)
	s.Require().NoError(err)
	_, err = s.absences.AddSickLeave(s.ctx, s.employee, span("2024-06-10", "2024-06-12"), "")
	s.Equal([]string{"2024-06-10: Attendance recorded (check-in 09:25)"}, s.conflicts(err))
}

func (s *ServiceSuite) TestDisabledDatesIncludeWeekends() {
	s.Require().NoError(s.holidays.AddHoliday(s.ctx, day("2024-06-12"), "", false))
	report, err := s.guard.ComputeDisabledDates(s.ctx, []domain.Person{s.employee.Person()},
		domain.Candidate{Kind: domain.KindBusinessTrip, Range: span("2024-06-10", "2024-06-16")})
	s.Require().NoError(err)
	s.Equal([]domain.Date{day("2024-06-12"), day("2024-06-15"), day("2024-06-16")}, report.ConflictDates)
	s.Equal(3, report.Summary.TotalConflicts)
}

func (s *ServiceSuite) TestPersonalScheduleOverride() {
	s.Require().NoError(s.schedules.SetUserSchedule(s.ctx, s.employee.ID, domain.WorkSchedule{
		Start: domain.MustParseTimeOfDay("10:00"),
		End:   domain.MustParseTimeOfDay("19:00"),
		Days:  domain.Weekdays,
	}))
	eff, err := s.schedules.EffectiveSchedule(s.ctx, s.employee.PersonID())
	s.Require().NoError(err)
	s.True(eff.Personal)
	s.Contains(s.schedules.FormatSchedule(eff), "10:00 - 19:00")

	res, err := s.attendance.ClockIn(s.ctx, s.employee)
	s.Require().NoError(err)
	s.False(res.Lateness.IsLate)

	s.Require().NoError(s.schedules.ClearUserSchedule(s.ctx, s.employee.ID))
	eff, err = s.schedules.EffectiveSchedule(s.ctx, s.employee.PersonID())
	s.Require().NoError(err)
	s.False(eff.Personal)
}

func (s *ServiceSuite) TestUsers() {
	_, err := s.users.Register(s.ctx, 100, "ada", "Ada", "")
	s.ErrorIs(err, repository.ErrUserExists)

	_, err = s.users.GetUser(s.ctx, 404)
	s.ErrorIs(err, ErrUserNotFound)

	s.ErrorIs(s.users.UpdateRole(s.ctx, 100, 200, models.RoleEmployee), ErrForbidden)
	s.Require().NoError(s.users.UpdateRole(s.ctx, 200, 100, models.RoleAdmin))
	ok, err := s.users.IsAdmin(s.ctx, 100)
	s.Require().NoError(err)
	s.True(ok)

	list, err := s.users.FormatAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Contains(list, "👑 Admins: 2")
}

func (s *ServiceSuite) TestHolidayFile() {
	path := filepath.Join(s.T().TempDir(), "holidays.json")
	data := `{"holidays":[{"date":"2024-01-01","name":"New Year","recurring":true},{"date":"2024-06-12","name":"Founders Day"}]}`
	s.Require().NoError(os.WriteFile(path, []byte(data), 0o600))

	n, err := s.holidays.LoadFromJSON(s.ctx, path)
	s.Require().NoError(err)
	s.Equal(2, n)
	_, err = s.holidays.LoadFromJSON(s.ctx, path)
	s.Require().NoError(err)

	all, err := s.holidays.ListHolidays(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	ok, name, err := s.holidays.IsHoliday(s.ctx, day("2031-01-01"))
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("New Year", name)

	ok, _, err = s.holidays.IsHoliday(s.ctx, day("2025-06-12"))
	s.Require().NoError(err)
	s.False(ok)

	s.Contains(s.holidays.FormatHolidays(all, 2025), "01-01 (every year) New Year")
}

func TestGuardFailsClosed(t *testing.T) {
	fake := domaintest.New()
	fake.Errors["attendance"] = errors.New("db down")
	logger, hook := test.NewNullLogger()
	guard := NewGuardService(fake, time.UTC, time.Second, nil, logger)

	v := guard.ValidateCandidate(context.Background(), []domain.Person{{ID: "1"}},
		domain.Candidate{Kind: domain.KindVacation, Range: span("2024-06-10", "2024-06-12")})
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{conflict.MsgCouldNotValidate}, v.Conflicts)

	var sawError bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

func TestParseScheduleArgs(t *testing.T) {
	svc := NewWorkScheduleService(nil, nil, nil)
	tests := []struct {
		name    string
		input   string
		want    domain.WorkSchedule
		wantErr bool
	}{
		{
			name:  "defaults",
			input: "09:00 18:00",
			want:  domain.WorkSchedule{Start: domain.MustParseTimeOfDay("09:00"), End: domain.MustParseTimeOfDay("18:00"), Days: domain.Weekdays},
		},
		{
			name:  "all fields",
			input: "08:30 17:30 15 mon,tue,sat",
			want: domain.WorkSchedule{
				Start:            domain.MustParseTimeOfDay("08:30"),
				End:              domain.MustParseTimeOfDay("17:30"),
				ToleranceMinutes: 15,
				Days:             domain.WeekdaySet{false, true, true, false, false, false, true},
			},
		},
		{name: "missing end", input: "09:00", wantErr: true},
		{name: "end before start", input: "18:00 09:00", wantErr: true},
		{name: "bad tolerance", input: "09:00 18:00 ten", wantErr: true},
		{name: "bad day", input: "09:00 18:00 5 funday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseScheduleArgs(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
