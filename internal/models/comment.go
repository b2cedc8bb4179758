package models

import "time"

// Comment is an argument on a post. Pre-duel arguments (is_duel=false) are
// limited to one per commenter per post; in-duel remarks (is_duel=true) are
// posted by the participants once the duel has started.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"not null;index" json:"post_id"`
	Commenter string    `gorm:"not null;index" json:"commenter"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	IsDuel    bool      `gorm:"not null;default:false" json:"is_duel"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}
