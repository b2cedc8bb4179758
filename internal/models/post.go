// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a debate post. The duel fields (winner, second,
// initial_votes, started, postponed, the deadlines and the completion flags)
// are owned exclusively by the duel lifecycle service; nothing else may
// write them.
type Post struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Author    string    `gorm:"not null;index" json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	MediaURLs []string  `gorm:"serializer:json" json:"media_urls"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// Duel lifecycle fields.
	Winner            *string    `json:"winner"`
	Second            *string    `json:"second"`
	InitialVotes      int        `gorm:"not null;default:0" json:"initial_votes"`
	Started           bool       `gorm:"not null;default:false" json:"started"`
	Postponed         bool       `gorm:"not null;default:false" json:"postponed"`
	VotingDeadline    *time.Time `json:"voting_deadline,omitempty"`
	DuelStartTime     *time.Time `json:"duel_start_time,omitempty"`
	CompletedByAuthor bool       `gorm:"not null;default:false" json:"completed_by_author"`
	CompletedByWinner bool       `gorm:"not null;default:false" json:"completed_by_winner"`
	Completed         bool       `gorm:"not null;default:false" json:"completed"`

	Tags []Tag `gorm:"many2many:post_tags" json:"tags,omitempty"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// HasWinner reports whether a winner has been determined for the post.
func (p *Post) HasWinner() bool {
	return p.Winner != nil && *p.Winner != ""
}

// IsParticipant reports whether username is the current winner or second.
func (p *Post) IsParticipant(username string) bool {
	if p.Winner != nil && *p.Winner == username {
		return true
	}
	return p.Second != nil && *p.Second == username
}
