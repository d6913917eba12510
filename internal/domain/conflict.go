package domain

type ConflictKind string

const (
	ConflictHoliday       ConflictKind = "holiday"
	ConflictNonWorkingDay ConflictKind = "non_working_day"
	ConflictBusinessTrip  ConflictKind = "business_trip"
	ConflictVacation      ConflictKind = "vacation"
	ConflictPermission    ConflictKind = "permission"
	ConflictSickLeave     ConflictKind = "sick_leave"
	ConflictAttendance    ConflictKind = "attendance"
)

type Severity string

const (
	// SeverityCritical blocks a commit outright.
	SeverityCritical Severity = "critical"
	// SeverityWarning is shown to the user but does not block.
	SeverityWarning Severity = "warning"
)

type ConflictDetail struct {
	PersonID    PersonID     `json:"personId"`
	PersonLabel string       `json:"personLabel,omitempty"`
	Date        Date         `json:"date"`
	Kind        ConflictKind `json:"kind"`
	Description string       `json:"description"`
	Severity    Severity     `json:"severity"`
}

func (c ConflictDetail) Critical() bool { return c.Severity == SeverityCritical }

// ConflictSummary counts distinct conflicting dates in TotalConflicts and reasons per kind.
type ConflictSummary struct {
	TotalConflicts int `json:"totalConflicts"`
	Holidays       int `json:"holidays"`
	NonWorkingDays int `json:"nonWorkingDays"`
	BusinessTrips  int `json:"businessTrips"`
	Vacations      int `json:"vacations"`
	Permissions    int `json:"permissions"`
	SickLeaves     int `json:"sickLeaves"`
	Attendances    int `json:"attendances"`
}

func (s *ConflictSummary) count(kind ConflictKind) {
	switch kind {
	case ConflictHoliday:
		s.Holidays++
	case ConflictNonWorkingDay:
		s.NonWorkingDays++
	case ConflictBusinessTrip:
		s.BusinessTrips++
	case ConflictVacation:
		s.Vacations++
	case ConflictPermission:
		s.Permissions++
	case ConflictSickLeave:
		s.SickLeaves++
	case ConflictAttendance:
		s.Attendances++
	}
}

// Summarize builds a summary from details.
func Summarize(details []ConflictDetail) ConflictSummary {
	var s ConflictSummary
	dates := make(map[Date]struct{})
	for _, d := range details {
		dates[d.Date] = struct{}{}
		s.count(d.Kind)
	}
	s.TotalConflicts = len(dates)
	return s
}
