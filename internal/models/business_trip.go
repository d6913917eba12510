package models

import (
	"time"

	"attendance-bot/internal/domain"
)

type BusinessTrip struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	StartDate   time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time     `gorm:"type:date;not null" json:"end_date"`
	Destination string        `gorm:"type:varchar(100)" json:"destination"`
	Status      domain.Status `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy  *uint         `json:"reviewed_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (BusinessTrip) TableName() string {
	return "business_trips"
}

func (t *BusinessTrip) Range() domain.DateRange {
	return domain.DateRange{From: DateFromColumn(t.StartDate), To: DateFromColumn(t.EndDate)}
}

func (t *BusinessTrip) ToDomain() domain.BusinessTrip {
	r := t.Range()
	return domain.BusinessTrip{ID: idString(t.ID), Start: r.From, End: r.To, Destination: t.Destination, Status: t.Status}
}

func (t *BusinessTrip) Candidate() domain.Candidate {
	return domain.Candidate{Kind: domain.KindBusinessTrip, Range: t.Range(), ExcludeID: idString(t.ID)}
}
