package handler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"attendance-bot/internal/config"
	"attendance-bot/internal/models"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/telegram"
)

type Handler struct {
	client              *telegram.Client
	userService         *service.UserService
	workScheduleService *service.WorkScheduleService
	holidayService      *service.HolidayService
	guardService        *service.GuardService
	attendanceService   *service.AttendanceService
	absenceService      *service.AbsenceService
	config              *config.BotConfig
	logger              *logrus.Logger
	clockNow            func() time.Time

	mu         sync.Mutex
	userStates map[int64]string
}

func NewHandler(
	client *telegram.Client,
	userService *service.UserService,
	workScheduleService *service.WorkScheduleService,
	holidayService *service.HolidayService,
	guardService *service.GuardService,
	attendanceService *service.AttendanceService,
	absenceService *service.AbsenceService,
	cfg *config.BotConfig,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		client:              client,
		userService:         userService,
		workScheduleService: workScheduleService,
		holidayService:      holidayService,
		guardService:        guardService,
		attendanceService:   attendanceService,
		absenceService:      absenceService,
		config:              cfg,
		logger:              logger,
		clockNow:            time.Now,
		userStates:          make(map[int64]string),
	}
}

// HandleUpdates processes updates until ctx is done or the channel closes.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery != nil {
				h.handleCallbackQuery(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) location() *time.Location {
	if h.config != nil && h.config.Location != nil {
		return h.config.Location
	}
	return time.UTC
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.client.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

func (h *Handler) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := h.client.Bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", msg.ChatID).Error("Failed to send message")
	}
}

// currentUser loads the sender and tells them to register when unknown.
func (h *Handler) currentUser(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := h.userService.GetUser(ctx, chatID)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("User not found")
		h.send(chatID, "❌ Profile not found.\nUse /register to create one.")
		return nil, false
	}
	return user, true
}

func (h *Handler) requireAdmin(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := h.userService.GetUser(ctx, chatID)
	if err != nil || !user.IsAdmin() {
		h.logger.WithField("chat_id", chatID).Warn("Unauthorized access to admin command")
		h.send(chatID, "❌ Access denied. This command is for administrators only.")
		return nil, false
	}
	return user, true
}

func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
	h.client.Bot.Send(edit)

	switch {
	case data == "command_clock_in":
		h.clockIn(ctx, chatID)
	case data == "command_clock_out":
		h.clockOut(ctx, chatID)
	case strings.HasPrefix(data, "review:"):
		// review:<approve|reject>:<leave|trip>:<id>
		parts := strings.Split(data, ":")
		if len(parts) != 4 {
			break
		}
		id, err := strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			h.send(chatID, "❌ Invalid request id")
			break
		}
		h.review(ctx, chatID, parts[1] == "approve", parts[2], uint(id))
	}

	h.client.Bot.Request(tgbotapi.NewCallback(callback.ID, ""))
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	h.logger.Infof("[%s] %s", message.From.UserName, message.Text)

	chatID := message.Chat.ID
	h.mu.Lock()
	state, exists := h.userStates[chatID]
	h.mu.Unlock()
	if exists && !message.IsCommand() {
		h.handleProfileState(ctx, message, state)
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}
	h.send(chatID, "🤖 Use /help to see the available commands.")
}

func (h *Handler) setState(chatID int64, state string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if state == "" {
		delete(h.userStates, chatID)
		return
	}
	h.userStates[chatID] = state
}
