package models

import (
	"time"

	"github.com/shopspring/decimal"

	"attendance-bot/internal/domain"
)

type LeaveBalance struct {
	ID                   uint            `gorm:"primarykey" json:"id"`
	UserID               uint            `gorm:"not null;uniqueIndex:idx_balance_user_year" json:"user_id"`
	Year                 int             `gorm:"not null;uniqueIndex:idx_balance_user_year" json:"year"`
	VacationDaysTotal    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"vacation_days_total"`
	VacationDaysUsed     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"vacation_days_used"`
	PermissionHoursTotal decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"permission_hours_total"`
	PermissionHoursUsed  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"permission_hours_used"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (b *LeaveBalance) ToDomain() domain.LeaveBalance {
	return domain.LeaveBalance{
		VacationDaysTotal:    b.VacationDaysTotal,
		VacationDaysUsed:     b.VacationDaysUsed,
		PermissionHoursTotal: b.PermissionHoursTotal,
		PermissionHoursUsed:  b.PermissionHoursUsed,
	}
}

// Apply copies domain values onto the row, keeping its identity.
func (b *LeaveBalance) Apply(d domain.LeaveBalance) {
	b.VacationDaysTotal = d.VacationDaysTotal
	b.VacationDaysUsed = d.VacationDaysUsed
	b.PermissionHoursTotal = d.PermissionHoursTotal
	b.PermissionHoursUsed = d.PermissionHoursUsed
}
