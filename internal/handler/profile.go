package handler

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	stateFirstName = "awaiting_first_name"
	stateLastName  = "awaiting_last_name:"
)

func (h *Handler) startRegistration(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if user, err := h.userService.GetUser(ctx, chatID); err == nil && user != nil {
		h.send(chatID, "❌ You already have a profile.\nUse /myprofile to see it.")
		return
	}

	h.setState(chatID, stateFirstName)
	h.send(chatID, "👤 Registration\n\nStep 1 of 2:\n✏️ Send your first name:")
}

func (h *Handler) handleProfileState(ctx context.Context, message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch {
	case state == stateFirstName:
		if text == "" {
			h.send(chatID, "✏️ Please send your first name:")
			return
		}
		h.setState(chatID, stateLastName+text)
		h.send(chatID, fmt.Sprintf("Step 2 of 2:\n✅ First name saved: %s\n✏️ Now send your last name (or \"-\" to skip):", text))

	case strings.HasPrefix(state, stateLastName):
		firstName := strings.TrimPrefix(state, stateLastName)
		lastName := text
		if lastName == "-" {
			lastName = ""
		}
		h.setState(chatID, "")

		user, err := h.userService.Register(ctx, chatID, message.From.UserName, firstName, lastName)
		if err != nil {
			h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to register user")
			h.send(chatID, errorText(err))
			return
		}
		h.send(chatID, "🎉 Profile created!\n\n"+h.userService.FormatUserInfo(user))

	default:
		h.setState(chatID, "")
	}
}

func (h *Handler) showProfile(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}
	h.send(chatID, h.userService.FormatUserInfo(user))
}
