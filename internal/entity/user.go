package entity

import "time"

// User owns alerts and receives notifications. Registration and
// authentication live outside this service.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"not null;uniqueIndex" json:"email"`
	Name           string    `json:"name"`
	Timezone       string    `json:"timezone"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
