package domain

import "github.com/shopspring/decimal"

// LeaveBalance is the yearly allowance of one person.
type LeaveBalance struct {
	VacationDaysTotal    decimal.Decimal
	VacationDaysUsed     decimal.Decimal
	PermissionHoursTotal decimal.Decimal
	PermissionHoursUsed  decimal.Decimal
}

func (b LeaveBalance) VacationDaysRemaining() decimal.Decimal {
	return floorZero(b.VacationDaysTotal.Sub(b.VacationDaysUsed))
}

func (b LeaveBalance) PermissionHoursRemaining() decimal.Decimal {
	return floorZero(b.PermissionHoursTotal.Sub(b.PermissionHoursUsed))
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
