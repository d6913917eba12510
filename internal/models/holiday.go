package models

import (
	"time"

	"attendance-bot/internal/domain"
)

// Holiday rows with Recurring set repeat every year on the same month and day.
type Holiday struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;uniqueIndex:idx_holiday_date_recurring;not null" json:"date"`
	Recurring bool      `gorm:"uniqueIndex:idx_holiday_date_recurring;not null;default:false" json:"recurring"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

func (h *Holiday) ToDomain() domain.Holiday {
	return domain.Holiday{Date: DateFromColumn(h.Date), Recurring: h.Recurring, Name: h.Name}
}

func HolidayFromDomain(h domain.Holiday) Holiday {
	return Holiday{Date: DateColumn(h.Date), Recurring: h.Recurring, Name: h.Name}
}
