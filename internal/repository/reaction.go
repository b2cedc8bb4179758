package repository

import (
	"context"

	"humbleop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository defines the interface for like and flag data operations
type ReactionRepository interface {
	Like(ctx context.Context, postID, liker string) (bool, error)
	Flag(ctx context.Context, postID, flagger string) (bool, error)
	CountLikes(ctx context.Context, postID string) (int64, error)
	CountFlags(ctx context.Context, postID string) (int64, error)
	ClearForPost(ctx context.Context, postID string) error
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Like records a like. Returns false when the user already liked the post;
// the conflict clause makes duplicates a no-op rather than an error.
func (r *reactionRepository) Like(ctx context.Context, postID, liker string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{PostID: postID, Liker: liker})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Flag records a flag, idempotent per (post, flagger).
func (r *reactionRepository) Flag(ctx context.Context, postID, flagger string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Flag{PostID: postID, Flagger: flagger})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *reactionRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *reactionRepository) CountFlags(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Flag{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// ClearForPost removes all likes and flags in one transaction. Called after
// an arbitration swap resets the new winner's standing.
func (r *reactionRepository) ClearForPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", postID).Delete(&models.Flag{}).Error
	})
}
