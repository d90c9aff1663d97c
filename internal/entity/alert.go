package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertType identifies how an alert decides to fire.
type AlertType string

const (
	AlertTypeThreshold AlertType = "threshold"
	AlertTypeDuration  AlertType = "duration"
)

// AlertCondition is the price comparison direction.
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// Alert is a user-owned price alert. ConditionStartTime, Triggered and
// TriggeredAt are mutated only by the evaluator; everything else is fixed
// at creation.
type Alert struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	UserID             uint            `gorm:"not null;index" json:"user_id"`
	User               User            `json:"-"`
	Symbol             string          `gorm:"not null;index" json:"symbol"`
	AlertType          AlertType       `gorm:"not null" json:"alert_type"`
	Condition          AlertCondition  `gorm:"not null" json:"condition"`
	TargetPrice        decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"target_price"`
	DurationMinutes    *int            `json:"duration_minutes,omitempty"`
	ConditionStartTime *time.Time      `json:"condition_start_time,omitempty"`
	Triggered          bool            `gorm:"not null;default:false;index" json:"triggered"`
	TriggeredAt        *time.Time      `json:"triggered_at,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// Duration returns the configured window for duration alerts, zero otherwise.
func (a *Alert) Duration() time.Duration {
	if a.AlertType != AlertTypeDuration || a.DurationMinutes == nil {
		return 0
	}
	return time.Duration(*a.DurationMinutes) * time.Minute
}
