package models

import (
	"time"

	"attendance-bot/internal/domain"
)

// SickLeave has no approval step; a recorded row always counts.
type SickLeave struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (SickLeave) TableName() string {
	return "sick_leaves"
}

func (s *SickLeave) ToDomain() domain.SickLeave {
	return domain.SickLeave{
		ID:    idString(s.ID),
		Start: DateFromColumn(s.StartDate),
		End:   DateFromColumn(s.EndDate),
		Note:  s.Note,
	}
}
