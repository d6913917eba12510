package service

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrForbidden        = errors.New("admin rights required")
	ErrAlreadyClockedIn = errors.New("you are already clocked in")
	ErrNotClockedIn     = errors.New("you are not clocked in")
	ErrRequestNotFound  = errors.New("request not found")
	ErrPastDate         = errors.New("date is in the past")
	ErrFutureDate       = errors.New("date is in the future")
)

// ConflictError carries the messages of a failed commit gate.
type ConflictError struct {
	Conflicts []string
}

func (e *ConflictError) Error() string {
	return "conflicts: " + strings.Join(e.Conflicts, "; ")
}

// BalanceError is returned when a request needs more allowance than is left.
type BalanceError struct {
	Message string
}

func (e *BalanceError) Error() string {
	return e.Message
}

// Clock returns the current instant; tests pin it.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
