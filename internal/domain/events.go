package domain

import "time"

// PersonID is an opaque person key; the core never owns person data.
type PersonID string

// Person pairs an id with the label used to tag conflict messages.
type Person struct {
	ID    PersonID `json:"id"`
	Label string   `json:"label,omitempty"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Kind is the kind of a time-bound event, used both for candidates and stored records.
type Kind string

const (
	KindAttendance       Kind = "attendance"
	KindManualAttendance Kind = "manual_attendance"
	KindOvertime         Kind = "overtime"
	KindVacation         Kind = "vacation"
	KindPermission       Kind = "permission"
	KindSickLeave        Kind = "sick_leave"
	KindBusinessTrip     Kind = "business_trip"
)

var kinds = []Kind{
	KindAttendance, KindManualAttendance, KindOvertime,
	KindVacation, KindPermission, KindSickLeave, KindBusinessTrip,
}

func ParseKind(s string) (Kind, bool) {
	for _, k := range kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// IsAttendance reports whether the kind writes an attendance record.
func (k Kind) IsAttendance() bool {
	return k == KindAttendance || k == KindManualAttendance || k == KindOvertime
}

// Holiday matches by month and day when Recurring, by full date otherwise.
type Holiday struct {
	Date      Date
	Recurring bool
	Name      string
}

// LeaveRequest is either a Vacation or a Permission.
type LeaveRequest interface {
	RequestID() string
	RequestKind() Kind
	RequestStatus() Status
	// Covers reports whether the request occupies d.
	Covers(d Date) bool
	leaveRequest()
}

type Vacation struct {
	ID     string
	From   Date
	To     Date
	Status Status
}

func (v Vacation) RequestID() string     { return v.ID }
func (Vacation) RequestKind() Kind       { return KindVacation }
func (v Vacation) RequestStatus() Status { return v.Status }
func (v Vacation) Range() DateRange      { return DateRange{From: v.From, To: v.To} }
func (v Vacation) Covers(d Date) bool    { return v.Range().Contains(d) }
func (Vacation) leaveRequest()           {}

// Permission is a single-day leave; a nil Window means the whole day.
type Permission struct {
	ID     string
	Day    Date
	Window *TimeRange
	Status Status
}

func (p Permission) RequestID() string     { return p.ID }
func (Permission) RequestKind() Kind       { return KindPermission }
func (p Permission) RequestStatus() Status { return p.Status }
func (p Permission) Covers(d Date) bool    { return p.Day == d }
func (p Permission) FullDay() bool         { return p.Window == nil }
func (Permission) leaveRequest()           {}

type BusinessTrip struct {
	ID          string
	Start       Date
	End         Date
	Destination string
	Status      Status
}

func (t BusinessTrip) Range() DateRange { return DateRange{From: t.Start, To: t.End} }

// SickLeave has no status: once recorded it always participates.
type SickLeave struct {
	ID    string
	Start Date
	End   Date
	Note  string
}

func (s SickLeave) Range() DateRange { return DateRange{From: s.Start, To: s.End} }

type AttendanceRecord struct {
	ID             string
	Date           Date
	Kind           Kind
	CheckIn        *time.Time
	CheckOut       *time.Time
	IsBusinessTrip bool
	IsSickLeave    bool
}

// CountsAsPresence reports whether the record blocks new submissions for its date.
func (a AttendanceRecord) CountsAsPresence() bool {
	return !a.IsBusinessTrip && !a.IsSickLeave
}

// Candidate is a proposed event awaiting validation.
type Candidate struct {
	Kind   Kind
	Range  DateRange
	Window *TimeRange
	// ExcludeID is the id of the record being edited; it never conflicts with itself.
	ExcludeID string
}

func (c Candidate) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if c.Window != nil {
		return c.Window.Validate()
	}
	return nil
}
