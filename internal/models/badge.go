package models

import "time"

// Badge is an earned achievement. Awards are idempotent per (username, name).
type Badge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null;uniqueIndex:idx_badges_user_name" json:"username"`
	Name      string    `gorm:"not null;uniqueIndex:idx_badges_user_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Badge) TableName() string {
	return "badges"
}
