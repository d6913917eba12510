package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/models"
)

func (h *Handler) showAllUsers(ctx context.Context, chatID int64) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	text, err := h.userService.FormatAllUsers(ctx)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, text)
}

func (h *Handler) promoteToAdmin(ctx context.Context, chatID int64, args []string) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	if len(args) != 1 {
		h.send(chatID, "❌ Specify the user's chat ID.\nExample: /promote 123456789")
		return
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Chat ID must be a number.")
		return
	}
	if err := h.userService.UpdateRole(ctx, chatID, target, models.RoleAdmin); err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ User %d is now an administrator!", target))
}

func (h *Handler) showPending(ctx context.Context, chatID int64) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	leaves, trips, err := h.absenceService.Pending(ctx)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	if len(leaves) == 0 && len(trips) == 0 {
		h.send(chatID, "📭 Nothing awaits review.")
		return
	}
	for i := range leaves {
		h.askReviewOne(chatID, "leave", leaves[i].ID, formatLeaveForReview(&leaves[i]))
	}
	for i := range trips {
		h.askReviewOne(chatID, "trip", trips[i].ID, formatTripForReview(&trips[i]))
	}
}

// reviewCommand handles "/approve leave 12" and "/reject trip 3".
func (h *Handler) reviewCommand(ctx context.Context, chatID int64, args []string, approve bool) {
	if len(args) != 2 || (args[0] != "leave" && args[0] != "trip") {
		h.send(chatID, "❌ Usage: /approve leave|trip ID")
		return
	}
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		h.send(chatID, "❌ ID must be a number.")
		return
	}
	h.review(ctx, chatID, approve, args[0], uint(id))
}

func (h *Handler) review(ctx context.Context, chatID int64, approve bool, kind string, id uint) {
	reviewer, ok := h.requireAdmin(ctx, chatID)
	if !ok {
		return
	}

	var (
		owner   models.User
		summary string
		err     error
	)
	switch kind {
	case "leave":
		var req *models.LeaveRequest
		if approve {
			req, err = h.absenceService.ApproveLeave(ctx, id, reviewer)
		} else {
			req, err = h.absenceService.RejectLeave(ctx, id, reviewer)
		}
		if req != nil {
			owner, summary = req.User, fmt.Sprintf("%s %s", req.Kind(), req.Range())
		}
	case "trip":
		var trip *models.BusinessTrip
		if approve {
			trip, err = h.absenceService.ApproveTrip(ctx, id, reviewer)
		} else {
			trip, err = h.absenceService.RejectTrip(ctx, id, reviewer)
		}
		if trip != nil {
			owner, summary = trip.User, fmt.Sprintf("business trip %s", trip.Range())
		}
	default:
		h.send(chatID, "❌ Unknown request type")
		return
	}

	log := h.logger.WithFields(logrus.Fields{
		"reviewer": reviewer.ID,
		"kind":     kind,
		"id":       id,
		"approve":  approve,
	})
	if err != nil {
		log.WithError(err).Info("Review refused")
		h.send(chatID, errorText(err))
		return
	}
	log.Info("Request reviewed")

	verdict := "❌ rejected"
	if approve {
		verdict = "✅ approved"
	}
	h.send(chatID, fmt.Sprintf("Request #%d %s: %s", id, verdict, summary))
	if owner.ChatID != 0 {
		h.send(owner.ChatID, fmt.Sprintf("Your %s was %s.", summary, verdict))
	}
}

func (h *Handler) setBalance(ctx context.Context, chatID int64, args []string) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	if len(args) != 4 {
		h.send(chatID, "❌ Usage: /setbalance chatID year days hours\nExample: /setbalance 123456789 2024 20 16")
		return
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Chat ID must be a number.")
		return
	}
	year, err := strconv.Atoi(args[1])
	if err != nil {
		h.send(chatID, "❌ Year must be a number.")
		return
	}
	days, err := decimal.NewFromString(args[2])
	if err != nil {
		h.send(chatID, "❌ Vacation days must be a number.")
		return
	}
	hours, err := decimal.NewFromString(args[3])
	if err != nil {
		h.send(chatID, "❌ Permission hours must be a number.")
		return
	}

	user, err := h.userService.GetUser(ctx, target)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	b, err := h.absenceService.SetBalance(ctx, user.ID, year, days, hours)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Allowance %d for %s: %s vacation days (%s used), %s permission hours (%s used)",
		year, user.DisplayName(), b.VacationDaysTotal, b.VacationDaysUsed, b.PermissionHoursTotal, b.PermissionHoursUsed))
}

// teamCheck validates one candidate for several people at once.
func (h *Handler) teamCheck(ctx context.Context, chatID int64, args []string) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}
	c, rest, err := h.candidateArgs(args)
	if err != nil || len(rest) != 1 {
		h.send(chatID, "❌ Usage: /teamcheck kind from [to] chatID,chatID\nExample: /teamcheck business_trip 17.06.2024 19.06.2024 111,222")
		return
	}

	var persons []domain.Person
	for _, raw := range strings.Split(rest[0], ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			h.send(chatID, fmt.Sprintf("❌ Invalid chat ID %q", raw))
			return
		}
		user, err := h.userService.GetUser(ctx, id)
		if err != nil {
			h.send(chatID, fmt.Sprintf("❌ User %d: %s", id, errorText(err)))
			return
		}
		persons = append(persons, user.Person())
	}

	h.send(chatID, verdictText(h.guardService.ValidateCandidate(ctx, persons, c)))
}

func (h *Handler) showLate(ctx context.Context, chatID int64, args []string) {
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
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
	rows, err := h.attendanceService.LateArrivals(ctx, date)
	if err != nil {
		h.send(chatID, errorText(err))
		return
	}
	h.send(chatID, h.attendanceService.FormatLateDigest(date, rows))
}
