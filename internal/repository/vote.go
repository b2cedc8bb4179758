package repository

import (
	"context"

	"humbleop/internal/cache"
	"humbleop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	Cast(ctx context.Context, vote *models.Vote) error
	Withdraw(ctx context.Context, postID, voter string) error
	GetByVoter(ctx context.Context, postID, voter string) (*models.Vote, error)
	TallyByPost(ctx context.Context, postID string) (map[string]int, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	CountByVoter(ctx context.Context, voter string) (int64, error)
	CountForCandidate(ctx context.Context, candidate string) (int64, error)
	MaxVotesOnSinglePost(ctx context.Context, candidate string) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Cast records a ballot, replacing the voter's previous candidate on this
// post if one exists. The upsert keeps re-casting atomic under the
// (post_id, voter) unique index.
func (r *voteRepository) Cast(ctx context.Context, vote *models.Vote) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "voter"}},
			DoUpdates: clause.AssignmentColumns([]string{"candidate", "comment_id"}),
		}).
		Create(vote).Error
	if err == nil {
		cache.Invalidate(ctx, cache.TallyKey(vote.PostID))
	}
	return err
}

func (r *voteRepository) Withdraw(ctx context.Context, postID, voter string) error {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND voter = ?", postID, voter).
		Delete(&models.Vote{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.Invalidate(ctx, cache.TallyKey(postID))
	return nil
}

func (r *voteRepository) GetByVoter(ctx context.Context, postID, voter string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND voter = ?", postID, voter).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// TallyByPost groups ballots by candidate in a single query.
func (r *voteRepository) TallyByPost(ctx context.Context, postID string) (map[string]int, error) {
	type row struct {
		Candidate string
		Votes     int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("candidate, COUNT(*) as votes").
		Where("post_id = ?", postID).
		Group("candidate").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Candidate] = r.Votes
	}
	return counts, nil
}

func (r *voteRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *voteRepository) CountByVoter(ctx context.Context, voter string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("voter = ?", voter).
		Count(&count).Error
	return count, err
}

func (r *voteRepository) CountForCandidate(ctx context.Context, candidate string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("candidate = ?", candidate).
		Count(&count).Error
	return count, err
}

// MaxVotesOnSinglePost returns the candidate's highest vote count across all
// posts, 0 when they have never been voted for.
func (r *voteRepository) MaxVotesOnSinglePost(ctx context.Context, candidate string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("COUNT(*) as votes").
		Where("candidate = ?", candidate).
		Group("post_id").
		Order("votes DESC").
		Limit(1).
		Scan(&count).Error
	return count, err
}
