package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/models"
)

func (h *Handler) today() domain.Date {
	return domain.DateOf(h.clockNow(), h.location())
}

func (h *Handler) clockIn(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	res, err := h.attendanceService.ClockIn(ctx, user)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Info("Clock-in refused")
		h.send(chatID, errorText(err))
		return
	}

	var lines []string
	lines = append(lines, "✅ Clocked in!")
	lines = append(lines, "")
	lines = append(lines, res.Attendance.FormatTime(h.location()))
	switch {
	case res.Lateness.ScheduleMissing:
		lines = append(lines, "ℹ️ No work schedule configured, lateness not checked.")
	case res.Lateness.NonWorkingDay:
		lines = append(lines, "ℹ️ Today is not a working day for you.")
	case res.Lateness.IsLate:
		lines = append(lines, fmt.Sprintf("⚠️ Late by %d min (expected at %s)",
			res.Lateness.LateMinutes, res.Lateness.ExpectedStart.In(h.location()).Format("15:04")))
	default:
		lines = append(lines, "👍 On time")
	}
	if w := bulletList("⚠️ Heads-up:", res.Warnings); w != "" {
		lines = append(lines, "", w)
	}
	lines = append(lines, "", "💡 Don't forget to clock out with /out")

	msg := tgbotapi.NewMessage(chatID, strings.Join(lines, "\n"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Clock out", "command_clock_out"),
		),
	)
	h.sendMessage(msg)

	if res.Lateness.IsLate {
		h.notifyAdmins(ctx, fmt.Sprintf("⏰ %s clocked in %d min late.", user.DisplayName(), res.Lateness.LateMinutes))
	}
}

func (h *Handler) clockOut(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	a, err := h.attendanceService.ClockOut(ctx, user)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Clocked out!\n\n%s\n⏳ Worked: %s", a.FormatTime(h.location()), a.Duration()))
}

func (h *Handler) showStatus(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	a, err := h.attendanceService.Today(ctx, user)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	if a == nil {
		msg := tgbotapi.NewMessage(chatID, "📭 You have not clocked in today.")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("▶️ Clock in", "command_clock_in"),
			),
		)
		h.sendMessage(msg)
		return
	}

	text := fmt.Sprintf("📅 %s\n%s", a.Day(), a.FormatTime(h.location()))
	if a.IsActive() {
		text += "\n🟢 At work"
	} else {
		text += fmt.Sprintf("\n⏳ Worked: %s", a.Duration())
	}
	if a.IsLate {
		text += fmt.Sprintf("\n⚠️ Late by %d min", a.LateMinutes)
	}
	h.send(chatID, text)
}

func (h *Handler) showHistory(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			h.send(chatID, "❌ N must be a positive number.")
			return
		}
		limit = n
	}

	rows, err := h.attendanceService.History(ctx, user, limit)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, h.attendanceService.FormatHistory(rows))
}

// entryArgs parses "date HH:MM HH:MM [notes]".
func (h *Handler) entryArgs(args []string) (domain.Date, domain.TimeRange, string, error) {
	if len(args) < 3 {
		return domain.Date{}, domain.TimeRange{}, "", fmt.Errorf("expected: date HH:MM HH:MM")
	}
	date, err := parseDate(args[0], h.today())
	if err != nil {
		return domain.Date{}, domain.TimeRange{}, "", err
	}
	w, err := parseWindow(args[1], args[2])
	if err != nil {
		return domain.Date{}, domain.TimeRange{}, "", err
	}
	return date, w, strings.Join(args[3:], " "), nil
}

func (h *Handler) addManualAttendance(ctx context.Context, chatID int64, args []string) {
	h.addEntry(ctx, chatID, args, "/manual 07.06.2024 09:00 18:00 forgot to clock in", h.attendanceService.AddManualAttendance)
}

func (h *Handler) addOvertime(ctx context.Context, chatID int64, args []string) {
	h.addEntry(ctx, chatID, args, "/overtime 07.06.2024 19:00 21:00 release", h.attendanceService.AddOvertime)
}

type entryFunc func(ctx context.Context, user *models.User, date domain.Date, w domain.TimeRange, notes string) (*models.Attendance, []string, error)

func (h *Handler) addEntry(ctx context.Context, chatID int64, args []string, example string, add entryFunc) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	date, w, notes, err := h.entryArgs(args)
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\nExample: "+example)
		return
	}

	a, warnings, err := add(ctx, user, date, w, notes)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"chat_id": chatID,
			"date":    date.String(),
		}).Info("Attendance entry refused")
		h.send(chatID, errorText(err))
		return
	}

	text := fmt.Sprintf("✅ Recorded %s\n%s (%s)", a.Day(), a.FormatTime(h.location()), a.Duration())
	if w := bulletList("⚠️ Heads-up:", warnings); w != "" {
		text += "\n\n" + w
	}
	h.send(chatID, text)
}

func (h *Handler) notifyAdmins(ctx context.Context, text string) {
	admins, err := h.userService.GetAdmins(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load admins")
		return
	}
	for _, admin := range admins {
		h.send(admin.ChatID, text)
	}
}
