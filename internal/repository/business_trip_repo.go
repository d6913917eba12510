package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"attendance-bot/internal/domain"
	"attendance-bot/internal/models"
)

type BusinessTripRepository interface {
	Create(ctx context.Context, trip *models.BusinessTrip) error
	GetByID(ctx context.Context, id uint) (*models.BusinessTrip, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.BusinessTrip, error)
	GetApprovedByUserID(ctx context.Context, userID uint) ([]models.BusinessTrip, error)
	GetPending(ctx context.Context) ([]models.BusinessTrip, error)
	Approve(ctx context.Context, id, reviewerID uint) error
	Reject(ctx context.Context, id, reviewerID uint) error
}

type GormBusinessTripRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormBusinessTripRepository(db *gorm.DB, logger *logrus.Logger) (*GormBusinessTripRepository, error) {
	if err := db.AutoMigrate(&models.BusinessTrip{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate business_trips table")
		return nil, err
	}
	return &GormBusinessTripRepository{db: db, logger: logger}, nil
}

func (r *GormBusinessTripRepository) Create(ctx context.Context, trip *models.BusinessTrip) error {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create business trip")
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"id":          trip.ID,
		"user_id":     trip.UserID,
		"destination": trip.Destination,
		"range":       trip.Range().String(),
	}).Info("Business trip created")
	return nil
}

func (r *GormBusinessTripRepository) GetByID(ctx context.Context, id uint) (*models.BusinessTrip, error) {
	var trip models.BusinessTrip
	result := r.db.WithContext(ctx).Preload("User").First(&trip, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &trip, nil
}

func (r *GormBusinessTripRepository) GetByUserID(ctx context.Context, userID uint) ([]models.BusinessTrip, error) {
	var rows []models.BusinessTrip
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *GormBusinessTripRepository) GetApprovedByUserID(ctx context.Context, userID uint) ([]models.BusinessTrip, error) {
	var rows []models.BusinessTrip
	err := r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, domain.StatusApproved).
		Order("start_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GormBusinessTripRepository) GetPending(ctx context.Context) ([]models.BusinessTrip, error) {
	var rows []models.BusinessTrip
	err := r.db.WithContext(ctx).Preload("User").
		Where("status = ?", domain.StatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GormBusinessTripRepository) Approve(ctx context.Context, id, reviewerID uint) error {
	if err := setStatus(r.db.WithContext(ctx), &models.BusinessTrip{}, id, domain.StatusApproved, reviewerID); err != nil {
		r.logger.WithError(err).WithField("id", id).Warn("Failed to approve business trip")
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"id":          id,
		"reviewer_id": reviewerID,
	}).Info("Business trip approved")
	return nil
}

func (r *GormBusinessTripRepository) Reject(ctx context.Context, id, reviewerID uint) error {
	if err := setStatus(r.db.WithContext(ctx), &models.BusinessTrip{}, id, domain.StatusRejected, reviewerID); err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"id":          id,
		"reviewer_id": reviewerID,
	}).Info("Business trip rejected")
	return nil
}
