package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/calendar"
)

// setSchedule handles "/setschedule [chatID] 09:00 18:00 [tolerance] [days]".
// A leading chat ID sets a personal schedule; otherwise the company one is replaced.
func (h *Handler) setSchedule(ctx context.Context, chatID int64, args []string) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	if len(args) == 0 {
		h.send(chatID, `📝 Work schedule

Format:
/setschedule [chatID] start end [tolerance] [days]

Examples:
/setschedule 09:00 18:00 10 mon,tue,wed,thu,fri
→ Company schedule, 10 minutes of tolerance

/setschedule 123456789 10:00 19:00 0 mon,tue,wed,thu
→ Personal schedule, replaces the company one for that user`)
		return
	}

	var target int64
	if !strings.Contains(args[0], ":") {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			h.send(chatID, "❌ Expected a chat ID or a start time, got "+args[0])
			return
		}
		target = id
		args = args[1:]
	}

	schedule, err := h.workScheduleService.ParseScheduleArgs(strings.Join(args, " "))
	if err != nil {
		h.logger.WithError(err).Warn("Failed to parse schedule")
		h.send(chatID, "❌ "+err.Error())
		return
	}

	if target == 0 {
		if err := h.workScheduleService.SetCompanySchedule(ctx, schedule); err != nil {
			h.send(chatID, errorText(err))
			return
		}
		h.send(chatID, fmt.Sprintf("✅ Company schedule saved: %s - %s, tolerance %d min, %s",
			schedule.Start, schedule.End, schedule.ToleranceMinutes, strings.Join(schedule.Days.Names(), ",")))
		return
	}

	user, err := h.userService.GetUser(ctx, target)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	if err := h.workScheduleService.SetUserSchedule(ctx, user.ID, schedule); err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Personal schedule saved for %s: %s - %s", user.DisplayName(), schedule.Start, schedule.End))
	h.send(user.ChatID, "📅 Your work schedule was updated. Use /schedule to see it.")
}

func (h *Handler) showSchedule(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	eff, err := h.workScheduleService.EffectiveSchedule(ctx, user.PersonID())
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, h.workScheduleService.FormatSchedule(eff))
}

// checkWorkingDay reports whether a date is a working day for the sender.
func (h *Handler) checkWorkingDay(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	date := h.today()
	if len(args) > 0 {
		d, err := parseDate(args[0], date)
		if err != nil {
			h.send(chatID, "❌ "+err.Error())
			return
		}
		date = d
	}

	holidays, err := h.holidayService.ListHolidays(ctx)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	eff, err := h.workScheduleService.EffectiveSchedule(ctx, user.PersonID())
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}

	response := fmt.Sprintf("📅 Date: %s (%s)\n", date, date.Weekday())
	switch {
	case calendar.MatchAny(date, holidays):
		response += "🎉 Holiday: " + calendar.NameFor(date, holidays)
	case calendar.IsWorkingDay(date, holidays, eff.Schedule()):
		response += fmt.Sprintf("✅ Working day\n⏰ %s - %s", eff.Start, eff.End)
	default:
		response += "❌ Day off"
	}
	h.send(chatID, response)
}

// addHoliday handles "/holiday date [yearly] name".
func (h *Handler) addHoliday(ctx context.Context, chatID int64, args []string) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	if len(args) == 0 {
		h.send(chatID, "🎉 Usage: /holiday date [yearly] name\nExample: /holiday 01.01 yearly New Year")
		return
	}
	date, err := parseDate(args[0], h.today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	rest := args[1:]
	recurring := len(rest) > 0 && rest[0] == "yearly"
	if recurring {
		rest = rest[1:]
	}
	name := strings.Join(rest, " ")

	if err := h.holidayService.AddHoliday(ctx, date, name, recurring); err != nil {
		h.send(chatID, errorText(err))
		return
	}
	when := date.String()
	if recurring {
		when = fmt.Sprintf("%02d-%02d every year", int(date.Month), date.Day)
	}
	h.send(chatID, fmt.Sprintf("✅ Holiday added: %s %s", when, name))
}

func (h *Handler) loadHolidays(ctx context.Context, chatID int64, args []string) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	path := ""
	if h.config != nil {
		path = h.config.HolidaysFile
	}
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		h.send(chatID, "❌ No file given and HOLIDAYS_FILE is not set.\nUsage: /loadholidays path/to/holidays.json")
		return
	}

	n, err := h.holidayService.LoadFromJSON(ctx, path)
	if err != nil {
		h.send(chatID, "❌ Failed to load holidays: "+err.Error())
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Loaded %d holidays from %s", n, path))
}

func (h *Handler) showHolidays(ctx context.Context, chatID int64, args []string) {
	year := h.today().Year
	if len(args) > 0 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			h.send(chatID, "❌ Year must be a number.")
			return
		}
		year = y
	}
	holidays, err := h.holidayService.ListHolidays(ctx)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, h.holidayService.FormatHolidays(holidays, year))
}
