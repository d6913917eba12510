package models

import (
	"time"

	"github.com/shopspring/decimal"

	"attendance-bot/internal/domain"
)

const (
	LeaveTypeVacation   = "vacation"
	LeaveTypePermission = "permission"
)

// LeaveRequest stores vacations and permissions. Permissions span one day;
// TimeFrom and TimeTo are set only for hourly permissions.
type LeaveRequest struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	Type       string          `gorm:"type:varchar(20);not null" json:"type"`
	StartDate  time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time       `gorm:"type:date;not null" json:"end_date"`
	TimeFrom   *string         `gorm:"type:varchar(8)" json:"time_from"`
	TimeTo     *string         `gorm:"type:varchar(8)" json:"time_to"`
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	Reason     string          `json:"reason"`
	Status     domain.Status   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy *uint           `json:"reviewed_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

func (l *LeaveRequest) Kind() domain.Kind {
	if l.Type == LeaveTypePermission {
		return domain.KindPermission
	}
	return domain.KindVacation
}

func (l *LeaveRequest) Range() domain.DateRange {
	return domain.DateRange{From: DateFromColumn(l.StartDate), To: DateFromColumn(l.EndDate)}
}

// Window returns nil for vacations and full-day permissions.
func (l *LeaveRequest) Window() (*domain.TimeRange, error) {
	if l.TimeFrom == nil || l.TimeTo == nil {
		return nil, nil
	}
	from, err := domain.ParseTimeOfDay(*l.TimeFrom)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseTimeOfDay(*l.TimeTo)
	if err != nil {
		return nil, err
	}
	return &domain.TimeRange{From: from, To: to}, nil
}

func (l *LeaveRequest) ToDomain() (domain.LeaveRequest, error) {
	if l.Type == LeaveTypePermission {
		w, err := l.Window()
		if err != nil {
			return nil, err
		}
		return domain.Permission{ID: idString(l.ID), Day: DateFromColumn(l.StartDate), Window: w, Status: l.Status}, nil
	}
	r := l.Range()
	return domain.Vacation{ID: idString(l.ID), From: r.From, To: r.To, Status: l.Status}, nil
}

// Candidate describes this request to the conflict engine, excluding itself.
func (l *LeaveRequest) Candidate() (domain.Candidate, error) {
	w, err := l.Window()
	if err != nil {
		return domain.Candidate{}, err
	}
	return domain.Candidate{Kind: l.Kind(), Range: l.Range(), Window: w, ExcludeID: idString(l.ID)}, nil
}

func NewLeaveRequest(userID uint, kind domain.Kind, r domain.DateRange, window *domain.TimeRange, amount decimal.Decimal, reason string) *LeaveRequest {
	l := &LeaveRequest{
		UserID:    userID,
		Type:      LeaveTypeVacation,
		StartDate: DateColumn(r.From),
		EndDate:   DateColumn(r.To),
		Amount:    amount,
		Reason:    reason,
		Status:    domain.StatusPending,
	}
	if kind == domain.KindPermission {
		l.Type = LeaveTypePermission
		l.EndDate = l.StartDate
		if window != nil {
			from, to := window.From.String(), window.To.String()
			l.TimeFrom, l.TimeTo = &from, &to
		}
	}
	return l
}
