package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"attendance-bot/internal/conflict"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/models"
	"attendance-bot/internal/service"
)

func (h *Handler) replySubmission(chatID int64, title string, sub *service.Submission) {
	text := fmt.Sprintf("✅ %s (#%d)", title, sub.ID)
	if w := bulletList("⚠️ Heads-up:", sub.Warnings); w != "" {
		text += "\n\n" + w
	}
	h.send(chatID, text)
}

// askReview sends a pending request to every admin with approve and reject buttons.
func (h *Handler) askReview(ctx context.Context, kind string, id uint, text string) {
	admins, err := h.userService.GetAdmins(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load admins")
		return
	}
	for _, admin := range admins {
		h.askReviewOne(admin.ChatID, kind, id, text)
	}
}

func (h *Handler) askReviewOne(chatID int64, kind string, id uint, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("review:approve:%s:%d", kind, id)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", fmt.Sprintf("review:reject:%s:%d", kind, id)),
		),
	)
	h.sendMessage(msg)
}

func (h *Handler) requestVacation(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	if len(args) == 0 {
		h.send(chatID, "🏖️ Usage: /vacation from [to] [reason]\nExample: /vacation 01.07.2024 14.07.2024 family trip\n\nVacations are counted in weekdays and need admin approval.")
		return
	}
	r, rest, err := parseRange(args, h.today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	sub, err := h.absenceService.RequestVacation(ctx, user, r, strings.Join(rest, " "))
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.replySubmission(chatID, "Vacation "+r.String()+" sent for approval", sub)
	h.askReview(ctx, "leave", sub.ID, fmt.Sprintf("🏖️ %s requests vacation %s", user.DisplayName(), r))
}

func (h *Handler) requestPermission(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	if len(args) == 0 {
		h.send(chatID, "🕐 Usage: /permission date [HH:MM HH:MM] [reason]\nExample: /permission 12.06.2024 14:00 16:00 dentist")
		return
	}
	day, err := parseDate(args[0], h.today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	rest := args[1:]
	var window *domain.TimeRange
	if len(rest) >= 2 {
		if w, err := parseWindow(rest[0], rest[1]); err == nil {
			window = &w
			rest = rest[2:]
		}
	}

	sub, err := h.absenceService.RequestPermission(ctx, user, day, window, strings.Join(rest, " "))
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	what := "Full-day permission " + day.String()
	if window != nil {
		what = fmt.Sprintf("Permission %s %s", day, window)
	}
	h.replySubmission(chatID, what+" sent for approval", sub)
	h.askReview(ctx, "leave", sub.ID, fmt.Sprintf("🕐 %s requests: %s", user.DisplayName(), what))
}

func (h *Handler) addSickLeave(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	if len(args) == 0 {
		h.send(chatID, "🤒 Usage: /sick from [to] [note]\nExample: /sick 10.06.2024 12.06.2024")
		return
	}
	r, rest, err := parseRange(args, h.today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	sub, err := h.absenceService.AddSickLeave(ctx, user, r, strings.Join(rest, " "))
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.replySubmission(chatID, "Sick leave "+r.String()+" recorded. Get well soon!", sub)
	h.notifyAdmins(ctx, fmt.Sprintf("🤒 %s is on sick leave %s", user.DisplayName(), r))
}

func (h *Handler) requestTrip(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	if len(args) == 0 {
		h.send(chatID, "✈️ Usage: /trip from [to] [destination]\nExample: /trip 17.06.2024 19.06.2024 Oslo")
		return
	}
	r, rest, err := parseRange(args, h.today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	destination := strings.Join(rest, " ")

	sub, err := h.absenceService.RequestBusinessTrip(ctx, user, r, destination)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.replySubmission(chatID, "Business trip "+r.String()+" sent for approval", sub)
	h.askReview(ctx, "trip", sub.ID, fmt.Sprintf("✈️ %s requests a business trip %s %s", user.DisplayName(), r, destination))
}

func (h *Handler) showMyAbsences(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	absences, err := h.absenceService.ListAbsences(ctx, user)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, "📋 Your absences:\n\n"+h.absenceService.FormatAbsences(absences))
}

func (h *Handler) showBalance(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	year := h.today().Year
	if len(args) > 0 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			h.send(chatID, "❌ Year must be a number.")
			return
		}
		year = y
	}

	rem, err := h.absenceService.Balance(ctx, user, year)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	if rem == nil {
		h.send(chatID, fmt.Sprintf("📭 No allowance configured for %d. Ask an admin to set one.", year))
		return
	}
	h.send(chatID, fmt.Sprintf("💼 Allowance %d:\n🏖️ Vacation days left: %s\n🕐 Permission hours left: %s",
		year, rem.VacationDays, rem.PermissionHours))
}

// candidateArgs parses "kind from [to] [HH:MM HH:MM]" and returns what is left.
func (h *Handler) candidateArgs(args []string) (domain.Candidate, []string, error) {
	if len(args) < 2 {
		return domain.Candidate{}, nil, fmt.Errorf("expected: kind from [to] [HH:MM HH:MM]")
	}
	kind, ok := domain.ParseKind(args[0])
	if !ok {
		return domain.Candidate{}, nil, fmt.Errorf("unknown kind %q", args[0])
	}
	r, rest, err := parseRange(args[1:], h.today())
	if err != nil {
		return domain.Candidate{}, nil, err
	}
	c := domain.Candidate{Kind: kind, Range: r}
	if len(rest) >= 2 {
		if w, err := parseWindow(rest[0], rest[1]); err == nil {
			c.Window = &w
			rest = rest[2:]
		}
	}
	return c, rest, nil
}

// checkCandidate dry-runs the commit gate without saving anything.
func (h *Handler) checkCandidate(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	c, _, err := h.candidateArgs(args)
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\nExample: /check vacation 01.07.2024 05.07.2024")
		return
	}
	h.send(chatID, verdictText(h.guardService.ValidateCandidate(ctx, []domain.Person{user.Person()}, c)))
}

func (h *Handler) showCalendar(ctx context.Context, chatID int64, args []string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	if len(args) == 0 {
		h.send(chatID, "📅 Usage: /calendar kind [YYYY-MM]\nExample: /calendar business_trip 2024-07")
		return
	}
	kind, ok := domain.ParseKind(args[0])
	if !ok {
		h.send(chatID, fmt.Sprintf("❌ Unknown kind %q", args[0]))
		return
	}
	month := ""
	if len(args) > 1 {
		month = args[1]
	}
	r, err := parseMonth(month, h.today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	report, err := h.guardService.ComputeDisabledDates(ctx, []domain.Person{user.Person()}, domain.Candidate{Kind: kind, Range: r})
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	if len(report.ConflictDates) == 0 {
		h.send(chatID, fmt.Sprintf("✅ Every date of %s is available for %s.", r, kind))
		return
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("📅 Unavailable for %s in %s:", kind, r))
	lines = append(lines, "")
	for _, d := range report.ConflictDates {
		var reasons []string
		for _, detail := range report.Details {
			if detail.Date == d && detail.Critical() {
				reasons = append(reasons, detail.Description)
			}
		}
		lines = append(lines, fmt.Sprintf("🚫 %s %s: %s", d, d.Weekday().String()[:3], strings.Join(reasons, "; ")))
	}
	h.send(chatID, strings.Join(lines, "\n"))
}

func verdictText(v conflict.Verdict) string {
	if !v.IsValid {
		text := bulletList("🚫 This would be rejected:", v.Conflicts)
		if w := bulletList("⚠️ Also:", v.Warnings); w != "" {
			text += "\n\n" + w
		}
		return text
	}
	if len(v.Warnings) == 0 {
		return "✅ No conflicts, you can submit this."
	}
	return "✅ Allowed, with warnings:\n• " + strings.Join(v.Warnings, "\n• ")
}

func formatLeaveForReview(l *models.LeaveRequest) string {
	return fmt.Sprintf("%s: %s", l.User.DisplayName(), service.FormatLeave(l))
}

func formatTripForReview(t *models.BusinessTrip) string {
	return fmt.Sprintf("%s: %s", t.User.DisplayName(), service.FormatTrip(t))
}
