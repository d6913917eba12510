package handler

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start":
		h.sendStartMessage(message)
	case "help":
		h.sendHelpMessage(message)
	case "helpadmin":
		h.sendAdminHelpMessage(ctx, message)
	case "register":
		h.startRegistration(ctx, message)
	case "myprofile":
		h.showProfile(ctx, chatID)

	// Attendance
	case "in":
		h.clockIn(ctx, chatID)
	case "out":
		h.clockOut(ctx, chatID)
	case "status", "today":
		h.showStatus(ctx, chatID)
	case "history":
		h.showHistory(ctx, chatID, args)
	case "manual":
		h.addManualAttendance(ctx, chatID, args)
	case "overtime":
		h.addOvertime(ctx, chatID, args)

	// Absences
	case "vacation":
		h.requestVacation(ctx, chatID, args)
	case "permission":
		h.requestPermission(ctx, chatID, args)
	case "sick":
		h.addSickLeave(ctx, chatID, args)
	case "trip":
		h.requestTrip(ctx, chatID, args)
	case "myabsences":
		h.showMyAbsences(ctx, chatID)
	case "balance":
		h.showBalance(ctx, chatID, args)
	case "check":
		h.checkCandidate(ctx, chatID, args)
	case "calendar":
		h.showCalendar(ctx, chatID, args)
	case "schedule":
		h.showSchedule(ctx, chatID)
	case "holidays":
		h.showHolidays(ctx, chatID, args)
	case "checkday":
		h.checkWorkingDay(ctx, chatID, args)

	// Admin
	case "allusers":
		h.showAllUsers(ctx, chatID)
	case "promote":
		h.promoteToAdmin(ctx, chatID, args)
	case "pending":
		h.showPending(ctx, chatID)
	case "approve":
		h.reviewCommand(ctx, chatID, args, true)
	case "reject":
		h.reviewCommand(ctx, chatID, args, false)
	case "setbalance":
		h.setBalance(ctx, chatID, args)
	case "teamcheck":
		h.teamCheck(ctx, chatID, args)
	case "late":
		h.showLate(ctx, chatID, args)
	case "setschedule":
		h.setSchedule(ctx, chatID, args)
	case "holiday":
		h.addHoliday(ctx, chatID, args)
	case "loadholidays":
		h.loadHolidays(ctx, chatID, args)

	default:
		h.send(chatID, "❌ Unknown command. Use /help to see the available commands.")
	}
}

const helpText = `📋 Available commands:

👤 Profile:
/register - Create your profile
/myprofile - Show your profile

⏰ Attendance:
/in - Clock in now
/out - Clock out now
/status - Today's attendance
/history [N] - Last N entries (default 10)
/manual date HH:MM HH:MM - Record a past working day
/overtime date HH:MM HH:MM - Record overtime

🏖️ Absences:
/vacation from [to] [reason] - Request a vacation
/permission date [HH:MM HH:MM] [reason] - Request a permission (whole day without times)
/sick from [to] [note] - Record sick leave
/trip from [to] [destination] - Request a business trip
/myabsences - Your absences
/balance [year] - Remaining allowance

📅 Calendar:
/check kind from [to] [HH:MM HH:MM] - Dry-run a submission
/calendar kind [YYYY-MM] - Dates you cannot pick this month
/schedule - Your work schedule
/holidays [year] - Holiday list
/checkday [date] - Is this a working day for you?

Kinds: attendance, manual_attendance, overtime, vacation, permission, sick_leave, business_trip
Dates: DD.MM.YYYY, DD.MM or YYYY-MM-DD`

func (h *Handler) sendStartMessage(message *tgbotapi.Message) {
	text := fmt.Sprintf("👋 Hi, %s!\n\nI keep track of attendance, leave and business trips.\nStart with /register, then clock in with /in.\n\n%s",
		message.From.FirstName, helpText)
	h.send(message.Chat.ID, text)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	h.send(message.Chat.ID, helpText)
}

func (h *Handler) sendAdminHelpMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	text := `👑 Admin commands:

/allusers - All users
/promote chatID - Grant admin rights
/pending - Requests awaiting review
/approve leave|trip ID - Approve a request
/reject leave|trip ID - Reject a request
/setbalance chatID year days hours - Set yearly allowance
/teamcheck kind from [to] chatID,chatID - Check a range for several people
/late [date] - Late arrivals of a day

📅 Schedules and holidays:
/setschedule [chatID] HH:MM HH:MM [tolerance] [mon,tue,...] - Company or personal schedule
/holiday date [yearly] name - Add a holiday
/loadholidays [path] - Import holidays from a JSON file`

	if h.config != nil && h.config.BaseAdminChatID != 0 {
		text += fmt.Sprintf("\n\n🔧 Base admin chat ID: %d", h.config.BaseAdminChatID)
	}
	h.send(chatID, text)
}
