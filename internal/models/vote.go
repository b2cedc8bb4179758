package models

import "time"

// Vote is a ballot for a candidate commenter on a post. One ballot per
// (post, voter); a ballot may be withdrawn and re-cast.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"not null;uniqueIndex:idx_votes_post_voter" json:"post_id"`
	Voter     string    `gorm:"not null;uniqueIndex:idx_votes_post_voter" json:"voter"`
	Candidate string    `gorm:"not null;index" json:"candidate"`
	CommentID *uint     `json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Vote) TableName() string {
	return "votes"
}
