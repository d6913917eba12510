package repository

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"attendance-bot/internal/models"
)

type SickLeaveRepository interface {
	Create(ctx context.Context, sick *models.SickLeave) error
	GetByUserID(ctx context.Context, userID uint) ([]models.SickLeave, error)
}

type GormSickLeaveRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormSickLeaveRepository(db *gorm.DB, logger *logrus.Logger) (*GormSickLeaveRepository, error) {
	if err := db.AutoMigrate(&models.SickLeave{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate sick_leaves table")
		return nil, err
	}
	return &GormSickLeaveRepository{db: db, logger: logger}, nil
}

func (r *GormSickLeaveRepository) Create(ctx context.Context, sick *models.SickLeave) error {
	if err := r.db.WithContext(ctx).Create(sick).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create sick leave")
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"id":      sick.ID,
		"user_id": sick.UserID,
		"start":   sick.StartDate.Format("2006-01-02"),
		"end":     sick.EndDate.Format("2006-01-02"),
	}).Info("Sick leave recorded")
	return nil
}

func (r *GormSickLeaveRepository) GetByUserID(ctx context.Context, userID uint) ([]models.SickLeave, error) {
	var rows []models.SickLeave
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}
