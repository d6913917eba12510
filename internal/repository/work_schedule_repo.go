package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"attendance-bot/internal/models"
)

type WorkScheduleRepository interface {
	GetCompany(ctx context.Context) (*models.WorkSchedule, error)
	GetByUserID(ctx context.Context, userID uint) (*models.WorkSchedule, error)
	// Upsert replaces the schedule of schedule.UserID, or the company schedule when it is nil.
	Upsert(ctx context.Context, schedule *models.WorkSchedule) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type GormWorkScheduleRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkScheduleRepository(db *gorm.DB, logger *logrus.Logger) (*GormWorkScheduleRepository, error) {
	if err := db.AutoMigrate(&models.WorkSchedule{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate work_schedules table")
		return nil, err
	}
	logger.Debug("Work schedule repository initialized")
	return &GormWorkScheduleRepository{db: db, logger: logger}, nil
}

func (r *GormWorkScheduleRepository) find(ctx context.Context, query *gorm.DB) (*models.WorkSchedule, error) {
	var schedule models.WorkSchedule
	result := query.WithContext(ctx).First(&schedule)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get work schedule")
		return nil, result.Error
	}
	return &schedule, nil
}

func (r *GormWorkScheduleRepository) GetCompany(ctx context.Context) (*models.WorkSchedule, error) {
	return r.find(ctx, r.db.Where("user_id IS NULL"))
}

func (r *GormWorkScheduleRepository) GetByUserID(ctx context.Context, userID uint) (*models.WorkSchedule, error) {
	return r.find(ctx, r.db.Where("user_id = ?", userID))
}

func (r *GormWorkScheduleRepository) Upsert(ctx context.Context, schedule *models.WorkSchedule) error {
	fields := logrus.Fields{
		"owner":     owner(schedule.UserID),
		"start":     schedule.StartTime,
		"end":       schedule.EndTime,
		"tolerance": schedule.ToleranceMinutes,
		"days":      schedule.WorkDays,
	}

	var existing *models.WorkSchedule
	var err error
	if schedule.IsCompany() {
		existing, err = r.GetCompany(ctx)
	} else {
		existing, err = r.GetByUserID(ctx, *schedule.UserID)
	}
	if err != nil {
		return err
	}
	if existing != nil {
		schedule.ID = existing.ID
		schedule.CreatedAt = existing.CreatedAt
	}

	if err := r.db.WithContext(ctx).Save(schedule).Error; err != nil {
		r.logger.WithError(err).WithFields(fields).Error("Failed to save work schedule")
		return err
	}

	r.logger.WithFields(fields).Info("Work schedule saved")
	return nil
}

func (r *GormWorkScheduleRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.WorkSchedule{})
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete work schedule")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.logger.WithField("user_id", userID).Info("Personal work schedule removed")
	return nil
}

func owner(userID *uint) any {
	if userID == nil {
		return "company"
	}
	return *userID
}
