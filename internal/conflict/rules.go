package conflict

import (
	"fmt"

	"attendance-bot/internal/calendar"
	"attendance-bot/internal/domain"
)

// detect applies every rule to one person's snapshot. It never touches shared state.
func (e *Engine) detect(p domain.Person, c domain.Candidate, holidays []domain.Holiday, s snapshot, m mode) []domain.ConflictDetail {
	var out []domain.ConflictDetail
	add := func(d domain.Date, kind domain.ConflictKind, sev domain.Severity, desc string) {
		out = append(out, domain.ConflictDetail{
			PersonID:    p.ID,
			PersonLabel: labelOf(p),
			Date:        d,
			Kind:        kind,
			Description: desc,
			Severity:    sev,
		})
	}

	days := c.Range.Days()

	for _, d := range days {
		if h, ok := calendar.Find(d, holidays); ok {
			add(d, domain.ConflictHoliday, domain.SeverityCritical, "Holiday: "+holidayName(h))
		}
	}

	if s.schedule != nil && !s.schedule.Missing {
		for _, d := range days {
			if calendar.MatchAny(d, holidays) || s.schedule.Days.Has(d.Weekday()) {
				continue
			}
			add(d, domain.ConflictNonWorkingDay, domain.SeverityCritical, fmt.Sprintf("Non-working day (%s)", d.Weekday()))
		}
	}

	for _, t := range s.trips {
		if excludes(c, domain.KindBusinessTrip, t.ID) {
			continue
		}
		overlap, ok := c.Range.Intersect(t.Range())
		if !ok {
			continue
		}
		desc := fmt.Sprintf("Business trip %s", t.Range())
		if t.Destination != "" {
			desc = fmt.Sprintf("Business trip to %s %s", t.Destination, t.Range())
		}
		for _, d := range overlap.Days() {
			add(d, domain.ConflictBusinessTrip, domain.SeverityCritical, desc)
		}
	}

	for _, l := range s.leaves {
		if l.RequestStatus() != domain.StatusApproved || excludes(c, l.RequestKind(), l.RequestID()) {
			continue
		}
		for _, d := range days {
			if !l.Covers(d) {
				continue
			}
			switch r := l.(type) {
			case domain.Vacation:
				add(d, domain.ConflictVacation, domain.SeverityCritical, fmt.Sprintf("Vacation %s", r.Range()))
			case domain.Permission:
				add(d, domain.ConflictPermission, e.permissionSeverity(r, c.Kind, m), permissionDescription(r))
			}
		}
	}

	for _, sl := range s.sick {
		if excludes(c, domain.KindSickLeave, sl.ID) {
			continue
		}
		overlap, ok := c.Range.Intersect(sl.Range())
		if !ok {
			continue
		}
		desc := fmt.Sprintf("Sick leave %s", sl.Range())
		for _, d := range overlap.Days() {
			add(d, domain.ConflictSickLeave, domain.SeverityCritical, desc)
		}
	}

	if checksAttendance(c.Kind) {
		for _, a := range s.attendance {
			if !a.CountsAsPresence() || !c.Range.Contains(a.Date) {
				continue
			}
			if c.Kind.IsAttendance() && a.ID == c.ExcludeID {
				continue
			}
			add(a.Date, domain.ConflictAttendance, attendanceSeverity(c.Kind, a.Kind), attendanceDescription(a, e))
		}
	}

	return out
}

// excludes reports whether the record is the one being edited. Ids are only compared within one kind.
func excludes(c domain.Candidate, kind domain.Kind, id string) bool {
	return c.ExcludeID != "" && c.Kind == kind && id == c.ExcludeID
}

// permissionSeverity: leave kinds and full-day permissions always block.
// Hourly permissions only warn presence entries unless a commit happens while they are live.
func (e *Engine) permissionSeverity(p domain.Permission, k domain.Kind, m mode) domain.Severity {
	if !k.IsAttendance() || p.FullDay() {
		return domain.SeverityCritical
	}
	if m == modeCommit && e.evaluator.IsActive(p, e.now(), p.Day) {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}

// checksAttendance lists the kinds that cannot share a date with recorded presence.
// Permissions and trips may be filed for a day already worked.
func checksAttendance(k domain.Kind) bool {
	return k.IsAttendance() || k == domain.KindSickLeave || k == domain.KindVacation
}

// attendanceSeverity blocks a second entry of the same slot and warns across slots.
func attendanceSeverity(candidate, existing domain.Kind) domain.Severity {
	if !candidate.IsAttendance() {
		return domain.SeverityCritical
	}
	if slot(candidate) == slot(existing) {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}

func slot(k domain.Kind) domain.Kind {
	if k == domain.KindOvertime {
		return domain.KindOvertime
	}
	return domain.KindAttendance
}

func holidayName(h domain.Holiday) string {
	if h.Name == "" {
		return "Holiday"
	}
	return h.Name
}

func permissionDescription(p domain.Permission) string {
	if p.FullDay() {
		return "Full-day permission"
	}
	return fmt.Sprintf("Permission %s", p.Window)
}

func attendanceDescription(a domain.AttendanceRecord, e *Engine) string {
	label := "Attendance recorded"
	if a.Kind == domain.KindOvertime {
		label = "Overtime recorded"
	}
	if a.CheckIn == nil {
		return label
	}
	return fmt.Sprintf("%s (check-in %s)", label, domain.TimeOfDayOf(*a.CheckIn, e.loc))
}
