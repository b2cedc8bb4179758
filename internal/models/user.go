package models

import "time"

// User represents a registered debater. The username is the primary key and
// the participant identifier stored on posts, votes and reactions.
type User struct {
	Username     string    `gorm:"primaryKey" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Bio          string    `gorm:"default:''" json:"bio"`
	AvatarURL    string    `gorm:"default:''" json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
