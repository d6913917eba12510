package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"attendance-bot/internal/models"
)

type LeaveBalanceRepository interface {
	Get(ctx context.Context, userID uint, year int) (*models.LeaveBalance, error)
	// Upsert replaces totals and used amounts for (UserID, Year).
	Upsert(ctx context.Context, balance *models.LeaveBalance) error
}

type GormLeaveBalanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveBalanceRepository(db *gorm.DB, logger *logrus.Logger) (*GormLeaveBalanceRepository, error) {
	if err := db.AutoMigrate(&models.LeaveBalance{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate leave_balances table")
		return nil, err
	}
	return &GormLeaveBalanceRepository{db: db, logger: logger}, nil
}

func (r *GormLeaveBalanceRepository) Get(ctx context.Context, userID uint, year int) (*models.LeaveBalance, error) {
	var b models.LeaveBalance
	result := r.db.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&b)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &b, nil
}

func (r *GormLeaveBalanceRepository) Upsert(ctx context.Context, balance *models.LeaveBalance) error {
	existing, err := r.Get(ctx, balance.UserID, balance.Year)
	if err != nil {
		return err
	}
	if existing != nil {
		balance.ID = existing.ID
		balance.CreatedAt = existing.CreatedAt
	}
	if err := r.db.WithContext(ctx).Save(balance).Error; err != nil {
		r.logger.WithError(err).Error("Failed to save leave balance")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id":          balance.UserID,
		"year":             balance.Year,
		"vacation_total":   balance.VacationDaysTotal.String(),
		"permission_total": balance.PermissionHoursTotal.String(),
	}).Info("Leave balance saved")
	return nil
}
