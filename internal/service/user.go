package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{repo: repo, logger: logging.OrNew(logger)}
}

// Register creates an employee account for chatID.
func (s *UserService) Register(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.User, error) {
	if strings.TrimSpace(firstName) == "" && username == "" {
		return nil, fmt.Errorf("name must not be empty")
	}

	user := &models.User{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleEmployee,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns ErrUserNotFound for unknown chats.
func (s *UserService) GetUser(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAll(ctx)
}

func (s *UserService) GetAdmins(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAdmins(ctx)
}

func (s *UserService) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}

// UpdateRole lets an admin change the role of another user.
func (s *UserService) UpdateRole(ctx context.Context, adminChatID, targetChatID int64, role models.Role) error {
	ok, err := s.IsAdmin(ctx, adminChatID)
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	if err := s.repo.UpdateRole(ctx, targetChatID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// InitializeAdmin promotes or creates the admin configured for the deployment.
func (s *UserService) InitializeAdmin(ctx context.Context, adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(ctx, adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsAdmin() {
			return nil
		}
		return s.repo.UpdateRole(ctx, adminChatID, models.RoleAdmin)
	}

	s.logger.WithField("chat_id", adminChatID).Info("Creating base admin")
	return s.repo.Create(ctx, &models.User{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Administrator",
		Role:      models.RoleAdmin,
	})
}

func (s *UserService) FormatUserInfo(user *models.User) string {
	var lines []string
	lines = append(lines, "👤 Profile:")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 Chat ID: %d", user.ChatID))
	if user.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Username: @%s", user.Username))
	}
	lines = append(lines, fmt.Sprintf("👨‍💼 Name: %s", user.DisplayName()))

	roleEmoji := "👤"
	if user.IsAdmin() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Role: %s", roleEmoji, user.Role))
	return strings.Join(lines, "\n")
}

func (s *UserService) FormatAllUsers(ctx context.Context) (string, error) {
	users, err := s.GetAllUsers(ctx)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "📭 No users yet.", nil
	}

	var lines []string
	lines = append(lines, "📋 All users:")
	lines = append(lines, "")
	admins := 0
	for i, user := range users {
		roleEmoji := "👤"
		if user.IsAdmin() {
			roleEmoji = "👑"
			admins++
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s (user %d) - chat %d", i+1, roleEmoji, user.DisplayName(), user.ID, user.ChatID))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("📊 Total users: %d", len(users)))
	lines = append(lines, fmt.Sprintf("👑 Admins: %d", admins))
	return strings.Join(lines, "\n"), nil
}
