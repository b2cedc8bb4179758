package models

import "time"

// Like is approval of the currently announced duel outcome. Likes and flags
// are sentiment about a specific winner: both tables are cleared whenever
// arbitration swaps the winner.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"not null;uniqueIndex:idx_likes_post_liker" json:"post_id"`
	Liker     string    `gorm:"not null;uniqueIndex:idx_likes_post_liker" json:"liker"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}

// Flag is a protest against the currently announced duel outcome.
type Flag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"not null;uniqueIndex:idx_flags_post_flagger" json:"post_id"`
	Flagger   string    `gorm:"not null;uniqueIndex:idx_flags_post_flagger" json:"flagger"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Flag) TableName() string {
	return "flags"
}
