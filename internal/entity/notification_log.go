package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// NotificationChannel identifies the transport a notification went through.
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelTelegram NotificationChannel = "telegram"
)

// NotificationStatus is the terminal outcome of one delivery attempt.
type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationSkipped NotificationStatus = "skipped"
)

// NotificationLog records the outcome of a single delivery attempt for a
// triggered alert. Delivery failures live here, never on the alert itself.
type NotificationLog struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	AlertID      uint                `gorm:"not null;index" json:"alert_id"`
	Channel      NotificationChannel `gorm:"not null" json:"channel"`
	Recipient    string              `json:"recipient"`
	Status       NotificationStatus  `gorm:"not null" json:"status"`
	ErrorMessage sql.NullString      `json:"error_message"`
	Details      datatypes.JSON      `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
