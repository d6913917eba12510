package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/models"
)

type AttendanceRepository interface {
	// Create fails with ErrDuplicateAttendance when the user already has an entry of that kind for the date.
	Create(ctx context.Context, a *models.Attendance) error
	Update(ctx context.Context, a *models.Attendance) error
	GetByID(ctx context.Context, id uint) (*models.Attendance, error)
	GetByUserAndDate(ctx context.Context, userID uint, date domain.Date, kind domain.Kind) (*models.Attendance, error)
	GetActiveByUserID(ctx context.Context, userID uint) (*models.Attendance, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Attendance, error)
	GetLateByDate(ctx context.Context, date domain.Date) ([]models.Attendance, error)
	// CompleteSession clocks out the open entry of userID and returns it.
	CompleteSession(ctx context.Context, userID uint, clockOut time.Time) (*models.Attendance, error)
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB, logger *logrus.Logger) (*GormAttendanceRepository, error) {
	if err := db.AutoMigrate(&models.Attendance{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance table")
		return nil, err
	}
	logger.Debug("Attendance repository initialized")
	return &GormAttendanceRepository{db: db, logger: logger}, nil
}

func (r *GormAttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	fields := logrus.Fields{
		"user_id": a.UserID,
		"date":    a.Date.Format("2006-01-02"),
		"kind":    a.Kind,
	}

	a.UpdateCalculatedFields()
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.logger.WithFields(fields).Warn("Attendance already exists for this date")
			return ErrDuplicateAttendance
		}
		r.logger.WithError(err).WithFields(fields).Error("Failed to create attendance")
		return err
	}

	fields["id"] = a.ID
	fields["is_late"] = a.IsLate
	r.logger.WithFields(fields).Info("Attendance created")
	return nil
}

func (r *GormAttendanceRepository) Update(ctx context.Context, a *models.Attendance) error {
	a.UpdateCalculatedFields()
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		r.logger.WithError(err).WithField("id", a.ID).Error("Failed to update attendance")
		return err
	}
	return nil
}

func (r *GormAttendanceRepository) first(query *gorm.DB) (*models.Attendance, error) {
	var a models.Attendance
	result := query.First(&a)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &a, nil
}

func (r *GormAttendanceRepository) GetByID(ctx context.Context, id uint) (*models.Attendance, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormAttendanceRepository) GetByUserAndDate(ctx context.Context, userID uint, date domain.Date, kind domain.Kind) (*models.Attendance, error) {
	return r.first(r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND kind = ?", userID, models.DateColumn(date), kind))
}

func (r *GormAttendanceRepository) GetActiveByUserID(ctx context.Context, userID uint) (*models.Attendance, error) {
	return r.first(r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND clock_out_time IS NULL", userID, models.StatusActive).
		Order("date DESC"))
}

func (r *GormAttendanceRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *GormAttendanceRepository) GetLateByDate(ctx context.Context, date domain.Date) ([]models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.WithContext(ctx).Preload("User").
		Where("date = ? AND is_late = ?", models.DateColumn(date), true).
		Order("late_minutes DESC").
		Find(&rows).Error
	return rows, err
}

func (r *GormAttendanceRepository) CompleteSession(ctx context.Context, userID uint, clockOut time.Time) (*models.Attendance, error) {
	a, err := r.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}

	a.ClockOutTime = &clockOut
	if err := r.Update(ctx, a); err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"id":             a.ID,
		"user_id":        userID,
		"worked_minutes": a.WorkedMinutes,
	}).Info("Attendance completed")
	return a, nil
}
