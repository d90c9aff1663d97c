package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/alerts/repository"
	"golang-stock-alerts/internal/entity"
	"golang-stock-alerts/pkg/logger"
)

// ErrValidation marks a malformed creation request. Such alerts are
// rejected here and never reach the evaluator.
var ErrValidation = errors.New("validation failed")

// AlertService defines the interface for managing user alerts.
type AlertService interface {
	CreateAlert(ctx context.Context, userID uint, req *dto.CreateAlertRequest) (*dto.AlertResponse, error)
	GetAlerts(ctx context.Context, userID uint, triggered *bool) ([]*dto.AlertResponse, error)
	GetAlertByID(ctx context.Context, userID, id uint) (*dto.AlertResponse, error)
	GetAlertNotifications(ctx context.Context, userID, id uint) ([]*dto.NotificationLogResponse, error)
	DeleteAlert(ctx context.Context, userID, id uint) error
}

// NewAlertService creates a new alert service. symbols is the fixed
// universe alerts may reference.
func NewAlertService(alertRepo repository.AlertRepository, logRepo repository.NotificationLogRepository, log *logger.Logger, symbols []string) AlertService {
	universe := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		universe[symbol] = struct{}{}
	}
	return &alertService{
		alertRepo: alertRepo,
		logRepo:   logRepo,
		logger:    log,
		universe:  universe,
	}
}

type alertService struct {
	alertRepo repository.AlertRepository
	logRepo   repository.NotificationLogRepository
	logger    *logger.Logger
	universe  map[string]struct{}
}

// CreateAlert validates and persists a new alert for its owner.
func (s *alertService) CreateAlert(ctx context.Context, userID uint, req *dto.CreateAlertRequest) (*dto.AlertResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	alert := &entity.Alert{
		UserID:      userID,
		Symbol:      req.Symbol,
		AlertType:   entity.AlertType(req.AlertType),
		Condition:   entity.AlertCondition(req.Condition),
		TargetPrice: req.TargetPrice,
	}
	if alert.AlertType == entity.AlertTypeDuration {
		alert.DurationMinutes = req.DurationMinutes
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		s.logger.Error("Failed to create alert", logger.ErrorField(err), logger.IntField("user_id", int(userID)))
		return nil, err
	}

	s.logger.Info("Alert created", logger.IntField("alert_id", int(alert.ID)), logger.IntField("user_id", int(userID)))
	return s.mapToAlertResponse(alert), nil
}

// GetAlerts retrieves the owner's alerts, optionally filtered by triggered state.
func (s *alertService) GetAlerts(ctx context.Context, userID uint, triggered *bool) ([]*dto.AlertResponse, error) {
	alerts, err := s.alertRepo.FindByOwner(ctx, userID, triggered)
	if err != nil {
		return nil, err
	}

	var responses []*dto.AlertResponse
	for i := range alerts {
		responses = append(responses, s.mapToAlertResponse(&alerts[i]))
	}
	return responses, nil
}

// GetAlertByID retrieves a single alert scoped to its owner.
func (s *alertService) GetAlertByID(ctx context.Context, userID, id uint) (*dto.AlertResponse, error) {
	alert, err := s.alertRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.mapToAlertResponse(alert), nil
}

// GetAlertNotifications retrieves the delivery history of an owner's alert.
func (s *alertService) GetAlertNotifications(ctx context.Context, userID, id uint) ([]*dto.NotificationLogResponse, error) {
	// Owner check first so a foreign alert reads as not found.
	if _, err := s.alertRepo.FindByIDForOwner(ctx, userID, id); err != nil {
		return nil, err
	}

	logs, err := s.logRepo.FindByAlertID(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.NotificationLogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, mapToNotificationLogResponse(&logs[i]))
	}
	return responses, nil
}

// DeleteAlert removes an alert scoped to its owner, excluding it from all
// future evaluation.
func (s *alertService) DeleteAlert(ctx context.Context, userID, id uint) error {
	if err := s.alertRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("Alert deleted", logger.IntField("alert_id", int(id)), logger.IntField("user_id", int(userID)))
	return nil
}

func (s *alertService) validate(req *dto.CreateAlertRequest) error {
	if _, ok := s.universe[req.Symbol]; !ok {
		return fmt.Errorf("%w: symbol %q is not in the supported universe", ErrValidation, req.Symbol)
	}

	switch entity.AlertType(req.AlertType) {
	case entity.AlertTypeThreshold:
		// duration_minutes is meaningless for threshold alerts and ignored.
	case entity.AlertTypeDuration:
		if req.DurationMinutes == nil || *req.DurationMinutes <= 0 {
			return fmt.Errorf("%w: duration_minutes is required for duration alerts", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown alert_type %q", ErrValidation, req.AlertType)
	}

	switch entity.AlertCondition(req.Condition) {
	case entity.ConditionAbove, entity.ConditionBelow:
	default:
		return fmt.Errorf("%w: unknown condition %q", ErrValidation, req.Condition)
	}

	return nil
}

// mapToAlertResponse maps an entity.Alert to a dto.AlertResponse.
func (s *alertService) mapToAlertResponse(alert *entity.Alert) *dto.AlertResponse {
	return &dto.AlertResponse{
		ID:              alert.ID,
		Symbol:          alert.Symbol,
		AlertType:       string(alert.AlertType),
		Condition:       string(alert.Condition),
		TargetPrice:     alert.TargetPrice,
		DurationMinutes: alert.DurationMinutes,
		Triggered:       alert.Triggered,
		TriggeredAt:     alert.TriggeredAt,
		CreatedAt:       alert.CreatedAt,
	}
}

func mapToNotificationLogResponse(log *entity.NotificationLog) *dto.NotificationLogResponse {
	resp := &dto.NotificationLogResponse{
		ID:        log.ID,
		Channel:   string(log.Channel),
		Recipient: log.Recipient,
		Status:    string(log.Status),
		Details:   json.RawMessage(log.Details),
		CreatedAt: log.CreatedAt,
	}
	if log.ErrorMessage.Valid {
		resp.Error = log.ErrorMessage.String
	}
	return resp
}
