package repository

import (
	"context"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/entity"

	"gorm.io/gorm"
)

// AlertRepository defines the interface for alert data operations.
type AlertRepository interface {
	Create(ctx context.Context, alert *entity.Alert) error
	FindByOwner(ctx context.Context, userID uint, triggered *bool) ([]entity.Alert, error)
	FindByIDForOwner(ctx context.Context, userID, id uint) (*entity.Alert, error)
	Delete(ctx context.Context, userID, id uint) error
	FindActive(ctx context.Context) ([]entity.Alert, error)
	ApplyDeltas(ctx context.Context, deltas []dto.AlertStateDelta) error
}

// NewAlertRepository creates a new GORM-based alert repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

type alertRepository struct {
	db *gorm.DB
}

// Create creates a new alert in the database.
func (r *alertRepository) Create(ctx context.Context, alert *entity.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// FindByOwner retrieves a user's alerts, optionally filtered by triggered state.
func (r *alertRepository) FindByOwner(ctx context.Context, userID uint, triggered *bool) ([]entity.Alert, error) {
	var alerts []entity.Alert
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if triggered != nil {
		query = query.Where("triggered = ?", *triggered)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// FindByIDForOwner retrieves a single alert scoped to its owner.
func (r *alertRepository) FindByIDForOwner(ctx context.Context, userID, id uint) (*entity.Alert, error) {
	var alert entity.Alert
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// Delete removes an alert scoped to its owner.
func (r *alertRepository) Delete(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Alert{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindActive retrieves all non-triggered alerts with their owners preloaded.
func (r *alertRepository) FindActive(ctx context.Context) ([]entity.Alert, error) {
	var alerts []entity.Alert
	if err := r.db.WithContext(ctx).Preload("User").Where("triggered = ?", false).Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// ApplyDeltas persists evaluator state changes. Alerts are independent, so
// the transaction is a convenience, not a correctness requirement.
func (r *alertRepository) ApplyDeltas(ctx context.Context, deltas []dto.AlertStateDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, delta := range deltas {
			if len(delta.Fields) == 0 {
				continue
			}
			if err := tx.Model(&entity.Alert{}).Where("id = ?", delta.AlertID).Updates(delta.Fields).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
