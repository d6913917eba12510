package models

import (
	"fmt"
	"time"

	"attendance-bot/internal/domain"
)

// Attendance statuses
const (
	StatusActive    = "active"    // clocked in
	StatusCompleted = "completed" // clocked out or entered after the fact
)

// Attendance is one presence entry. The unique index keeps a second entry of
// the same kind for the same day out even if two writers pass validation together.
type Attendance struct {
	ID             uint        `gorm:"primarykey" json:"id"`
	UserID         uint        `gorm:"not null;uniqueIndex:idx_attendance_user_date_kind" json:"user_id"`
	Date           time.Time   `gorm:"type:date;not null;uniqueIndex:idx_attendance_user_date_kind;index" json:"date"`
	Kind           domain.Kind `gorm:"type:varchar(20);not null;uniqueIndex:idx_attendance_user_date_kind" json:"kind"`
	ClockInTime    *time.Time  `json:"clock_in_time"`
	ClockOutTime   *time.Time  `json:"clock_out_time"`
	WorkedMinutes  int         `gorm:"not null;default:0" json:"worked_minutes"`
	IsLate         bool        `gorm:"not null;default:false;index" json:"is_late"`
	LateMinutes    int         `gorm:"not null;default:0" json:"late_minutes"`
	IsBusinessTrip bool        `gorm:"not null;default:false" json:"is_business_trip"`
	IsSickLeave    bool        `gorm:"not null;default:false" json:"is_sick_leave"`
	Status         string      `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Notes          string      `json:"notes"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Attendance) TableName() string {
	return "attendance"
}

func (a *Attendance) CalculateWorkedMinutes() int {
	if a.ClockInTime == nil || a.ClockOutTime == nil {
		return 0
	}
	return int(a.ClockOutTime.Sub(*a.ClockInTime).Minutes())
}

// UpdateCalculatedFields refreshes worked minutes and closes the entry once clocked out.
func (a *Attendance) UpdateCalculatedFields() {
	a.WorkedMinutes = a.CalculateWorkedMinutes()
	if a.ClockOutTime != nil {
		a.Status = StatusCompleted
	}
}

func (a *Attendance) IsActive() bool {
	return a.Status == StatusActive && a.ClockOutTime == nil
}

func (a *Attendance) Day() domain.Date {
	return DateFromColumn(a.Date)
}

func (a *Attendance) Duration() string {
	if a.ClockInTime == nil || a.ClockOutTime == nil {
		return "still at work"
	}
	d := a.ClockOutTime.Sub(*a.ClockInTime)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func (a *Attendance) FormatTime(loc *time.Location) string {
	if a.ClockInTime == nil {
		return "⏰ No clock-in recorded"
	}
	in := a.ClockInTime.In(loc).Format("15:04")
	if a.ClockOutTime == nil {
		return fmt.Sprintf("⏰ In: %s", in)
	}
	return fmt.Sprintf("⏰ In: %s | Out: %s", in, a.ClockOutTime.In(loc).Format("15:04"))
}

func (a *Attendance) ToDomain() domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:             idString(a.ID),
		Date:           a.Day(),
		Kind:           a.Kind,
		CheckIn:        a.ClockInTime,
		CheckOut:       a.ClockOutTime,
		IsBusinessTrip: a.IsBusinessTrip,
		IsSickLeave:    a.IsSickLeave,
	}
}
