package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateAlertRequest is the DTO for creating a new alert.
type CreateAlertRequest struct {
	Symbol          string          `json:"symbol"`
	AlertType       string          `json:"alert_type"`
	Condition       string          `json:"condition"`
	TargetPrice     decimal.Decimal `json:"target_price"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
}

// AlertResponse is the DTO for API responses containing alert details.
type AlertResponse struct {
	ID              uint            `json:"id"`
	Symbol          string          `json:"symbol"`
	AlertType       string          `json:"alert_type"`
	Condition       string          `json:"condition"`
	TargetPrice     decimal.Decimal `json:"target_price"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	Triggered       bool            `json:"triggered"`
	TriggeredAt     *time.Time      `json:"triggered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NotificationLogResponse is the DTO for an alert's delivery history.
type NotificationLogResponse struct {
	ID        uint            `json:"id"`
	Channel   string          `json:"channel"`
	Recipient string          `json:"recipient"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
