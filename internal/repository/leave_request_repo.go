package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"attendance-bot/internal/balance"
	"attendance-bot/internal/domain"
	"attendance-bot/internal/models"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, req *models.LeaveRequest) error
	GetByID(ctx context.Context, id uint) (*models.LeaveRequest, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.LeaveRequest, error)
	GetApprovedByUserID(ctx context.Context, userID uint) ([]models.LeaveRequest, error)
	GetPending(ctx context.Context) ([]models.LeaveRequest, error)
	// Approve marks a pending request approved and books its amount against
	// the balance of year, if one exists, in a single transaction.
	Approve(ctx context.Context, id, reviewerID uint, year int) error
	Reject(ctx context.Context, id, reviewerID uint) error
}

type GormLeaveRequestRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveRequestRepository(db *gorm.DB, logger *logrus.Logger) (*GormLeaveRequestRepository, error) {
	if err := db.AutoMigrate(&models.LeaveRequest{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate leave_requests table")
		return nil, err
	}
	return &GormLeaveRequestRepository{db: db, logger: logger}, nil
}

func (r *GormLeaveRequestRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create leave request")
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"id":      req.ID,
		"user_id": req.UserID,
		"type":    req.Type,
		"range":   req.Range().String(),
	}).Info("Leave request created")
	return nil
}

func (r *GormLeaveRequestRepository) GetByID(ctx context.Context, id uint) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	result := r.db.WithContext(ctx).Preload("User").First(&req, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

func (r *GormLeaveRequestRepository) GetByUserID(ctx context.Context, userID uint) ([]models.LeaveRequest, error) {
	var rows []models.LeaveRequest
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *GormLeaveRequestRepository) GetApprovedByUserID(ctx context.Context, userID uint) ([]models.LeaveRequest, error) {
	var rows []models.LeaveRequest
	err := r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, domain.StatusApproved).
		Order("start_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GormLeaveRequestRepository) GetPending(ctx context.Context) ([]models.LeaveRequest, error) {
	var rows []models.LeaveRequest
	err := r.db.WithContext(ctx).Preload("User").
		Where("status = ?", domain.StatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GormLeaveRequestRepository) Approve(ctx context.Context, id, reviewerID uint, year int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.LeaveRequest
		if err := tx.First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := setStatus(tx, &models.LeaveRequest{}, id, domain.StatusApproved, reviewerID); err != nil {
			return err
		}

		var row models.LeaveBalance
		result := tx.Where("user_id = ? AND year = ?", req.UserID, year).First(&row)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		if result.Error != nil {
			return result.Error
		}
		row.Apply(balance.Consume(row.ToDomain(), req.Kind(), req.Amount))
		return tx.Save(&row).Error
	})
	if err != nil {
		r.logger.WithError(err).WithField("id", id).Error("Failed to approve leave request")
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"id":          id,
		"reviewer_id": reviewerID,
	}).Info("Leave request approved")
	return nil
}

func (r *GormLeaveRequestRepository) Reject(ctx context.Context, id, reviewerID uint) error {
	if err := setStatus(r.db.WithContext(ctx), &models.LeaveRequest{}, id, domain.StatusRejected, reviewerID); err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"id":          id,
		"reviewer_id": reviewerID,
	}).Info("Leave request rejected")
	return nil
}

// setStatus moves a pending row of model to status; anything else is ErrNotPending.
func setStatus(db *gorm.DB, model any, id uint, status domain.Status, reviewerID uint) error {
	result := db.Model(model).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{"status": status, "reviewed_by": reviewerID})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
