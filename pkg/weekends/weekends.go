// Package weekends reads holiday calendars from JSON files.
//
// Two layouts are accepted. A production calendar lists the non-working days
// of one year per month:
//
//	{"year": 2025, "months": [{"month": 1, "days": "1,2,3,4,5,6,7,8,11,12,18,19,25,26"}]}
//
// Days marked "*" are shortened working days and are skipped; "+" marks a
// transferred day off and is kept. Saturdays and Sundays are dropped because
// the work schedule already covers them.
//
// A holiday list names each day explicitly:
//
//	{"holidays": [{"date": "2024-12-25", "name": "Christmas", "recurring": true}]}
package weekends

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"attendance-bot/internal/domain"
)

// WeekendJSON is the production calendar layout.
type WeekendJSON struct {
	Year        int             `json:"year"`
	Months      []MonthWeekends `json:"months"`
	Transitions []Transition    `json:"transitions"`
	Statistic   Statistic       `json:"statistic"`
}

type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Statistic struct {
	Workdays int     `json:"workdays"`
	Holidays int     `json:"holidays"`
	Hours40  float64 `json:"hours40"`
}

// HolidayListJSON is the explicit holiday list layout.
type HolidayListJSON struct {
	Holidays []HolidayJSON `json:"holidays"`
}

type HolidayJSON struct {
	Date      domain.Date `json:"date"`
	Name      string      `json:"name"`
	Recurring bool        `json:"recurring"`
}

var ErrUnknownFormat = errors.New("unknown holiday file format")

// ParseFile reads path and returns its holidays sorted by date.
func ParseFile(path string) ([]domain.Holiday, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday file: %w", err)
	}
	return Parse(data)
}

// Parse detects the layout of data and returns its holidays sorted by date.
func Parse(data []byte) ([]domain.Holiday, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	var (
		holidays []domain.Holiday
		err      error
	)
	switch {
	case probe["months"] != nil:
		holidays, err = parseProductionCalendar(data)
	case probe["holidays"] != nil:
		holidays, err = parseHolidayList(data)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays, nil
}

func parseProductionCalendar(data []byte) ([]domain.Holiday, error) {
	var calendar WeekendJSON
	if err := json.Unmarshal(data, &calendar); err != nil {
		return nil, fmt.Errorf("failed to unmarshal production calendar: %w", err)
	}
	if calendar.Year == 0 {
		return nil, errors.New("production calendar has no year")
	}

	holidays := []domain.Holiday{}
	for _, monthData := range calendar.Months {
		if monthData.Month < 1 || monthData.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", monthData.Month)
		}
		for _, dayStr := range strings.Split(monthData.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			if dayStr == "" || strings.HasSuffix(dayStr, "*") {
				continue
			}
			transferred := strings.HasSuffix(dayStr, "+")
			dayStr = strings.TrimSuffix(dayStr, "+")

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w", dayStr, monthData.Month, err)
			}
			date := domain.NewDate(calendar.Year, time.Month(monthData.Month), day)
			if date.Day != day {
				return nil, fmt.Errorf("day %d does not exist in month %d", day, monthData.Month)
			}
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}

			name := "Public holiday"
			if transferred {
				name = "Transferred day off"
			}
			holidays = append(holidays, domain.Holiday{Date: date, Name: name})
		}
	}
	return holidays, nil
}

func parseHolidayList(data []byte) ([]domain.Holiday, error) {
	var list HolidayListJSON
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holiday list: %w", err)
	}

	holidays := make([]domain.Holiday, 0, len(list.Holidays))
	for i, h := range list.Holidays {
		if h.Date.IsZero() {
			return nil, fmt.Errorf("holiday %d has no date", i+1)
		}
		holidays = append(holidays, domain.Holiday{Date: h.Date, Name: h.Name, Recurring: h.Recurring})
	}
	return holidays, nil
}
