package models

import (
	"strings"
	"time"

	"attendance-bot/internal/domain"
)

// WorkSchedule with a nil UserID is the company-wide schedule.
type WorkSchedule struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	UserID           *uint     `gorm:"uniqueIndex" json:"user_id"`
	StartTime        string    `gorm:"type:varchar(8);not null" json:"start_time"`
	EndTime          string    `gorm:"type:varchar(8);not null" json:"end_time"`
	ToleranceMinutes int       `gorm:"not null;default:0" json:"tolerance_minutes"`
	WorkDays         string    `gorm:"type:varchar(40);not null" json:"work_days"` // mon,tue,wed
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkSchedule) TableName() string {
	return "work_schedules"
}

func (ws *WorkSchedule) IsCompany() bool {
	return ws.UserID == nil
}

func (ws *WorkSchedule) ToDomain() (domain.WorkSchedule, error) {
	start, err := domain.ParseTimeOfDay(ws.StartTime)
	if err != nil {
		return domain.WorkSchedule{}, err
	}
	end, err := domain.ParseTimeOfDay(ws.EndTime)
	if err != nil {
		return domain.WorkSchedule{}, err
	}
	days, err := domain.WeekdaysFromNames(strings.Split(ws.WorkDays, ","))
	if err != nil {
		return domain.WorkSchedule{}, err
	}
	return domain.WorkSchedule{Start: start, End: end, ToleranceMinutes: ws.ToleranceMinutes, Days: days}, nil
}

func WorkScheduleFromDomain(userID *uint, s domain.WorkSchedule) *WorkSchedule {
	return &WorkSchedule{
		UserID:           userID,
		StartTime:        s.Start.String(),
		EndTime:          s.End.String(),
		ToleranceMinutes: s.ToleranceMinutes,
		WorkDays:         strings.ToLower(strings.Join(s.Days.Names(), ",")),
	}
}
