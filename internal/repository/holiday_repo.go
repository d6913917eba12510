package repository

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance-bot/internal/models"
)

type HolidayRepository interface {
	// Upsert inserts holidays, renaming existing rows with the same date and recurrence.
	Upsert(ctx context.Context, holidays []models.Holiday) error
	GetAll(ctx context.Context) ([]models.Holiday, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) error
}

type GormHolidayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormHolidayRepository(db *gorm.DB, logger *logrus.Logger) (*GormHolidayRepository, error) {
	if err := db.AutoMigrate(&models.Holiday{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate holidays table")
		return nil, err
	}
	return &GormHolidayRepository{db: db, logger: logger}, nil
}

func (r *GormHolidayRepository) Upsert(ctx context.Context, holidays []models.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "recurring"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&holidays).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to save holidays")
		return err
	}
	r.logger.WithField("count", len(holidays)).Info("Holidays saved")
	return nil
}

func (r *GormHolidayRepository) GetAll(ctx context.Context) ([]models.Holiday, error) {
	var days []models.Holiday
	err := r.db.WithContext(ctx).Order("date ASC").Find(&days).Error
	return days, err
}

func (r *GormHolidayRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Holiday{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormHolidayRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Holiday{}).Error
}
