package models

import (
	"strconv"
	"time"

	"attendance-bot/internal/domain"
)

// Date columns hold UTC midnight so equality and range queries compare cleanly.

func DateColumn(d domain.Date) time.Time {
	return d.Midnight(time.UTC)
}

func DateFromColumn(t time.Time) domain.Date {
	return domain.DateOf(t, time.UTC)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a record id produced by the domain mappers.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
