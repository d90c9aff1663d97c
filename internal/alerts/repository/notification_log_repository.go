package repository

import (
	"context"

	"golang-stock-alerts/internal/entity"

	"gorm.io/gorm"
)

// NotificationLogRepository defines the interface for delivery outcome records.
type NotificationLogRepository interface {
	Create(ctx context.Context, log *entity.NotificationLog) error
	FindByAlertID(ctx context.Context, alertID uint) ([]entity.NotificationLog, error)
}

// NewNotificationLogRepository creates a new GORM-based notification log repository.
func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

type notificationLogRepository struct {
	db *gorm.DB
}

// Create records a single delivery outcome.
func (r *notificationLogRepository) Create(ctx context.Context, log *entity.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByAlertID retrieves delivery outcomes for an alert, newest first.
func (r *notificationLogRepository) FindByAlertID(ctx context.Context, alertID uint) ([]entity.NotificationLog, error) {
	var logs []entity.NotificationLog
	if err := r.db.WithContext(ctx).Where("alert_id = ?", alertID).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
